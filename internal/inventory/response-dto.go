package inventory

// RowView is one row of the public seat map.
type RowView struct {
	RowID          string     `json:"row_id"`
	BasePriceCents int64      `json:"base_price_cents"`
	Seats          []SeatView `json:"seats"`
}

// SeatView is a single seat in the public seat map.
type SeatView struct {
	SeatNo int    `json:"seat_no"`
	Status string `json:"status"`
}
