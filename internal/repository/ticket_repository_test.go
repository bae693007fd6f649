package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// The bulk insert must tell a lost seat race apart from a ticket
// number collision, since only the latter is retryable with fresh
// numbers.
func TestCreateBulkTxDuplicateKeyMapping(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    error
	}{
		{
			name:    "seat already occupied",
			message: "Duplicate entry '9-4-1' for key 'tickets.uq_active_seat'",
			want:    ErrSeatsUnavailable,
		},
		{
			name:    "ticket number collision",
			message: "Duplicate entry 'TKT-1700000000000-1' for key 'tickets.uq_tickets_number'",
			want:    ErrTicketNumberTaken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectExec("INSERT INTO tickets").
				WillReturnError(&mysql.MySQLError{Number: 1062, Message: tt.message})
			mock.ExpectRollback()

			tx, err := db.Begin()
			require.NoError(t, err)
			defer tx.Rollback()

			uid := uint64(7)
			repo := NewTicketRepo(db)
			err = repo.CreateBulkTx(context.Background(), tx, []model.Ticket{{
				TicketNumber: "TKT-1700000000000-1",
				SessionID:    9,
				SeatID:       4,
				UserID:       &uid,
				Status:       model.StatusBooked,
			}})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
