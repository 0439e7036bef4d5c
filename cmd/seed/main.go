package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"boxoffice/internal/inventory"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/database"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting boxoffice database seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("Seeding database...")
	if err := seeder.SeedDemoConcert(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"refund_entries",
		"cancellation_seats",
		"cancellation_records",
		"booking_seats",
		"bookings",
		"hold_seats",
		"holds",
		"seats",
		"concerts",
	}

	pg := s.db.GetPostgreSQL()
	for _, table := range tables {
		if err := pg.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// SeedDemoConcert creates one concert a month out with rows A-F, ten seats
// each, priced front to back.
func (s *Seeder) SeedDemoConcert() error {
	ctx := context.Background()
	repo := inventory.NewRepository(s.db.GetPostgreSQL())

	concert := &inventory.Concert{
		Title:     "Midnight Frequencies - Live",
		Venue:     "Harbourside Arena",
		EventDate: time.Now().AddDate(0, 0, 30).Truncate(time.Hour),
	}
	if err := repo.CreateConcert(ctx, concert); err != nil {
		return fmt.Errorf("failed to create concert: %w", err)
	}

	rowPrices := map[string]int64{
		"A": 12000,
		"B": 10000,
		"C": 8500,
		"D": 7000,
		"E": 5500,
		"F": 4000,
	}

	var seats []inventory.Seat
	for _, row := range []string{"A", "B", "C", "D", "E", "F"} {
		for seatNo := 1; seatNo <= 10; seatNo++ {
			seats = append(seats, inventory.Seat{
				ConcertID:      concert.ID,
				RowLabel:       row,
				SeatNumber:     seatNo,
				BasePriceCents: rowPrices[row],
				Status:         inventory.SeatAvailable,
			})
		}
	}
	if err := repo.CreateSeats(ctx, seats); err != nil {
		return fmt.Errorf("failed to create seats: %w", err)
	}

	fmt.Printf("Created concert %s with %d seats\n", concert.ID, len(seats))
	return nil
}
