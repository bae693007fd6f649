package model

import "time"

// Movie represents a film in the catalog.  Sessions reference a movie
// and derive their end time from its duration.  Deleting a movie
// removes its sessions as well.
type Movie struct {
	ID             uint64    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	DurationMin    uint32    `json:"duration_min"`
	Genre          string    `json:"genre"`
	AgeRestriction uint8     `json:"age_restriction"`
	PosterURL      string    `json:"poster_url,omitempty"`
	Director       string    `json:"director"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Duration returns the movie's running time as a time.Duration.
func (m *Movie) Duration() time.Duration {
	return time.Duration(m.DurationMin) * time.Minute
}
