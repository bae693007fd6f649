package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSessionEndTime(t *testing.T) {
	start := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2030, 6, 1, 20, 0, 0, 0, time.UTC), SessionEndTime(start, 120))
	assert.Equal(t, start, SessionEndTime(start, 0))
}

func TestOverlaps(t *testing.T) {
	day := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	at := func(h int) time.Time { return day.Add(time.Duration(h) * time.Hour) }

	tests := []struct {
		name           string
		s1, e1, s2, e2 time.Time
		want           bool
	}{
		{"identical", at(18), at(20), at(18), at(20), true},
		{"partial overlap", at(18), at(20), at(19), at(21), true},
		{"contained", at(18), at(22), at(19), at(20), true},
		{"abutting after", at(18), at(20), at(20), at(22), false},
		{"abutting before", at(18), at(20), at(16), at(18), false},
		{"disjoint", at(10), at(12), at(18), at(20), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.s1, tt.e1, tt.s2, tt.e2))
			// overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.s2, tt.e2, tt.s1, tt.e1))
		})
	}
}

func TestSessionStarted(t *testing.T) {
	now := time.Date(2030, 6, 1, 18, 0, 0, 0, time.UTC)
	s := Session{StartTime: now.Add(time.Minute)}
	assert.False(t, s.Started(now))
	s.StartTime = now
	assert.True(t, s.Started(now))
	s.StartTime = now.Add(-time.Minute)
	assert.True(t, s.Started(now))
}
