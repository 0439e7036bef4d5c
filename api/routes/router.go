// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"boxoffice/internal/bookings"
	"boxoffice/internal/cancellation"
	"boxoffice/internal/holds"
	"boxoffice/internal/inventory"
	"boxoffice/internal/ledger"
	"boxoffice/internal/shared/config"
	"boxoffice/internal/shared/database"
	"boxoffice/pkg/cache"
	"boxoffice/pkg/logger"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config *config.Config
	db     *database.DB

	holdService    holds.Service
	refundProducer ledger.RefundProducer
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB) *Router {
	return &Router{
		config: cfg,
		db:     db,
	}
}

// HoldService exposes the hold manager so main can run the expiry sweeper
// against the same instance the routes use.
func (r *Router) HoldService() holds.Service {
	return r.holdService
}

// Close releases resources the router owns, currently the Kafka producer.
func (r *Router) Close() {
	if r.refundProducer != nil {
		if err := r.refundProducer.Close(); err != nil {
			logger.GetDefault().Error("failed to close refund producer", "error", err)
		}
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupFeatureRoutes(api)
	}
}

// setupFeatureRoutes wires the reservation pipeline. Construction order
// follows the dependency chain: inventory feeds holds, holds feed bookings,
// bookings feed cancellation, cancellation feeds the ledger.
func (r *Router) setupFeatureRoutes(rg *gin.RouterGroup) {
	pg := r.db.GetPostgreSQL()

	// Inventory
	inventoryRepo := inventory.NewRepository(pg)
	inventoryService := inventory.NewService(inventoryRepo, r.config)
	if r.db.Redis != nil {
		inventoryService.SetCacheService(cache.NewService(r.db.GetRedisClient()))
	}
	inventory.SetupInventoryRoutes(rg, inventory.NewController(inventoryService))

	// Holds
	var gate holds.Gate
	if r.db.Redis != nil {
		gate = holds.NewRedisGate(r.db.GetRedisClient())
	}
	holdRepo := holds.NewRepository(pg)
	r.holdService = holds.NewService(holdRepo, inventoryService, gate, r.config)
	holds.SetupHoldRoutes(rg, holds.NewController(r.holdService), r.config)

	// Bookings
	bookingRepo := bookings.NewRepository(pg)
	bookingService := bookings.NewService(bookingRepo, r.holdService, inventoryService)
	bookings.SetupBookingRoutes(rg, bookings.NewController(bookingService), r.config)

	// Refund ledger
	if r.config.Kafka.Enabled {
		producer, err := ledger.NewKafkaRefundProducer(&ledger.KafkaProducerConfig{
			Brokers:      r.config.Kafka.Brokers,
			Topic:        r.config.Kafka.Topic,
			RetryMax:     3,
			TimeoutMs:    10000,
			RequiredAcks: sarama.WaitForAll,
		})
		if err != nil {
			logger.GetDefault().Error("failed to create refund producer, continuing without Kafka", "error", err)
		} else {
			r.refundProducer = producer
		}
	}
	ledgerRepo := ledger.NewRepository(pg)
	ledgerService := ledger.NewService(ledgerRepo, r.refundProducer)
	ledger.SetupLedgerRoutes(rg, ledger.NewController(ledgerService), r.config)

	// Cancellation
	cancellationRepo := cancellation.NewRepository(pg)
	cancellationService := cancellation.NewService(
		cancellationRepo,
		bookingRepo,
		inventoryService,
		ledgerService,
		cancellation.NewSchedule(r.config.Refunds.Tiers),
	)
	cancellation.SetupCancellationRoutes(rg, cancellation.NewController(cancellationService), r.config)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "boxoffice",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "boxoffice",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}
