package model

import (
	"fmt"
	"math/rand"
	"time"
)

// TicketStatus is the lifecycle state of a ticket.  AVAILABLE is never
// stored: a seat with no non-cancelled ticket row for a session is
// available by definition.
type TicketStatus string

const (
	StatusAvailable TicketStatus = "AVAILABLE"
	StatusBooked    TicketStatus = "BOOKED"
	StatusSold      TicketStatus = "SOLD"
	StatusCancelled TicketStatus = "CANCELLED"
)

// IsValid reports whether s is one of the known statuses.
func (s TicketStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusSold, StatusCancelled:
		return true
	}
	return false
}

// CanConfirm reports whether a ticket in this status may transition to
// SOLD.  Only booked tickets can be confirmed.
func (s TicketStatus) CanConfirm() bool {
	return s == StatusBooked
}

// CanCancel reports whether a ticket in this status may transition to
// CANCELLED.  CANCELLED is terminal; everything else is cancellable
// before the session starts.
func (s TicketStatus) CanCancel() bool {
	return s == StatusBooked || s == StatusSold
}

// Occupies reports whether a ticket in this status holds its seat,
// i.e. counts against availability.
func (s TicketStatus) Occupies() bool {
	return s == StatusBooked || s == StatusSold
}

// Ticket binds one seat to one session, optionally for one user, with
// a lifecycle status.  UserID is nil after an expired reservation is
// reclaimed.  PurchaseTime is set the first time the status becomes
// SOLD.  The expiry sweep keys off CreatedAt.
type Ticket struct {
	ID           uint64       `json:"id"`
	TicketNumber string       `json:"ticket_number"`
	SessionID    uint64       `json:"session_id"`
	SeatID       uint64       `json:"seat_id"`
	UserID       *uint64      `json:"user_id,omitempty"`
	Status       TicketStatus `json:"status"`
	PurchaseTime *time.Time   `json:"purchase_time,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewTicketNumber builds a ticket number "TKT-{epochMillis}-{n}" where
// n is in 0..999.  Uniqueness is backed by the ticket_number unique
// key; on the rare collision the insert fails and the caller retries.
func NewTicketNumber(now time.Time, n int) string {
	return fmt.Sprintf("TKT-%d-%d", now.UnixMilli(), n%1000)
}

// RandomTicketNumber returns a ticket number for the current instant.
func RandomTicketNumber() string {
	return NewTicketNumber(time.Now().UTC(), rand.Intn(1000))
}
