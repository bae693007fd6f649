package model

import (
	"fmt"
	"time"
)

// Seat describes a physical seat in a hall, identified by its hall,
// row number and seat number.  SeatCode is a derived unique code that
// physically enforces the (hall, row, seat) uniqueness invariant; it is
// recomputed on every insert and update, never taken from input.
type Seat struct {
	ID         uint64    `json:"id"`
	HallID     uint64    `json:"hall_id"`
	RowNumber  uint32    `json:"row_number"`
	SeatNumber uint32    `json:"seat_number"`
	SeatCode   string    `json:"seat_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SeatCode computes the derived unique code for a seat position.
// Every write path must call this; callers cannot supply their own.
func SeatCode(hallID uint64, row, seat uint32) string {
	return fmt.Sprintf("%d-%d-%d", hallID, row, seat)
}

// SeatGrid produces the full seat set for a hall layout in row-major
// order: row 1..rows, seat 1..seatsPerRow.  Seat codes are filled in.
func SeatGrid(hallID uint64, rows, seatsPerRow uint32) []Seat {
	seats := make([]Seat, 0, rows*seatsPerRow)
	for r := uint32(1); r <= rows; r++ {
		for s := uint32(1); s <= seatsPerRow; s++ {
			seats = append(seats, Seat{
				HallID:     hallID,
				RowNumber:  r,
				SeatNumber: s,
				SeatCode:   SeatCode(hallID, r, s),
			})
		}
	}
	return seats
}
