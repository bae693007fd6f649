package model

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTicketStatusTransitions(t *testing.T) {
	tests := []struct {
		status     TicketStatus
		canConfirm bool
		canCancel  bool
		occupies   bool
	}{
		{StatusAvailable, false, false, false},
		{StatusBooked, true, true, true},
		{StatusSold, false, true, true},
		{StatusCancelled, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.canConfirm, tt.status.CanConfirm())
			assert.Equal(t, tt.canCancel, tt.status.CanCancel())
			assert.Equal(t, tt.occupies, tt.status.Occupies())
		})
	}
}

func TestTicketStatusIsValid(t *testing.T) {
	assert.True(t, StatusBooked.IsValid())
	assert.False(t, TicketStatus("PENDING").IsValid())
	assert.False(t, TicketStatus("").IsValid())
}

func TestNewTicketNumber(t *testing.T) {
	now := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, fmt.Sprintf("TKT-%d-42", now.UnixMilli()), NewTicketNumber(now, 42))
	// n is reduced modulo 1000
	assert.Equal(t, fmt.Sprintf("TKT-%d-1", now.UnixMilli()), NewTicketNumber(now, 2001))
}

func TestRandomTicketNumberFormat(t *testing.T) {
	re := regexp.MustCompile(`^TKT-\d{13,}-\d{1,3}$`)
	for i := 0; i < 50; i++ {
		assert.Regexp(t, re, RandomTicketNumber())
	}
}
