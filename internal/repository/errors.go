// Package repository holds data access logic for the booking domain.
// This file defines error values shared across repositories.  Sentinel
// errors let handlers distinguish failure kinds and map them onto the
// response envelope: not-found errors become HTTP 404, ErrConflict
// becomes 409, and business-rule errors become 409 as well.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Not-found sentinels, one per entity.
var (
	ErrMovieNotFound   = errors.New("movie not found")
	ErrHallNotFound    = errors.New("hall not found")
	ErrSeatNotFound    = errors.New("seat not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrUserNotFound    = errors.New("user not found")
)

// ErrConflict is returned when an insert or update violates a unique
// key (hall number, seat code, user email).
var ErrConflict = errors.New("conflict")

// ErrSeatsUnavailable is returned when one or more requested seats
// already carry a BOOKED or SOLD ticket for the session.  It is raised
// both by the availability pre-check and by the uq_active_seat unique
// key when two bookings race past the check.
var ErrSeatsUnavailable = errors.New("some seats are already occupied")

// ErrTicketNumberTaken is returned when a generated ticket number
// collides with an existing row.  Callers regenerate and retry.
var ErrTicketNumberTaken = errors.New("ticket number already taken")

// isDuplicate reports whether err is a MySQL duplicate-key error (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// isDuplicateKey reports whether err is a duplicate-key error on the
// named unique key.  MySQL puts the key name in the 1062 message
// ("Duplicate entry '...' for key 'tickets.uq_active_seat'").
func isDuplicateKey(err error, key string) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062 && strings.Contains(me.Message, key)
}
