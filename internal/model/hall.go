package model

import "time"

// Hall layout bounds.  Values outside these ranges are rejected before
// any row is written.
const (
	MinRows        = 1
	MaxRows        = 50
	MinSeatsPerRow = 1
	MaxSeatsPerRow = 30
)

// Hall represents a screening hall.  Each hall has a unique number and
// a fixed row/seat layout from which its seats are generated.
type Hall struct {
	ID          uint64    `json:"id"`
	HallNumber  uint32    `json:"hall_number"`
	Name        string    `json:"name"`
	TotalRows   uint32    `json:"total_rows"`
	SeatsPerRow uint32    `json:"seats_per_row"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Capacity returns the total number of seats the hall layout defines.
func (h *Hall) Capacity() uint32 {
	return h.TotalRows * h.SeatsPerRow
}

// ValidLayout reports whether the row/seat counts are inside the
// allowed bounds.
func (h *Hall) ValidLayout() bool {
	return h.TotalRows >= MinRows && h.TotalRows <= MaxRows &&
		h.SeatsPerRow >= MinSeatsPerRow && h.SeatsPerRow <= MaxSeatsPerRow
}
