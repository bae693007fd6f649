// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketsIssuedEvent is published when tickets become SOLD, either by
// direct purchase or by confirming a reservation.  It carries enough
// detail for downstream consumers to log or notify without querying
// the primary database.
type TicketsIssuedEvent struct {
	UserID           uint64   `json:"user_id"`
	SessionID        uint64   `json:"session_id"`
	MovieTitle       string   `json:"movie_title"`
	HallName         string   `json:"hall_name"`
	StartsAt         string   `json:"starts_at"`
	TicketNumbers    []string `json:"ticket_numbers"`
	SeatCodes        []string `json:"seats"`
	TotalAmountCents uint64   `json:"total_amount_cents"`
	IssuedAt         string   `json:"issued_at"`
}
