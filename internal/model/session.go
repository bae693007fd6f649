package model

import "time"

// Session represents a scheduled screening of one movie in one hall.
// EndTime is always derived from StartTime plus the movie's duration
// and recomputed whenever either changes; it is never taken from
// input.  Within one hall no two sessions may have overlapping
// [StartTime, EndTime) intervals.
type Session struct {
	ID         uint64    `json:"id"`
	MovieID    uint64    `json:"movie_id"`
	HallID     uint64    `json:"hall_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	PriceCents uint32    `json:"price_cents"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// SessionEndTime derives a session's end time from its start time and
// the movie's duration in minutes.
func SessionEndTime(start time.Time, durationMin uint32) time.Time {
	return start.Add(time.Duration(durationMin) * time.Minute)
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// overlap: s1 < e2 && e1 > s2.  Abutting intervals do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// Started reports whether the session's start time is at or before now.
func (s *Session) Started(now time.Time) bool {
	return !s.StartTime.After(now)
}
