package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeatCode(t *testing.T) {
	assert.Equal(t, "7-3-12", SeatCode(7, 3, 12))
	assert.Equal(t, "1-1-1", SeatCode(1, 1, 1))
}

func TestSeatGrid(t *testing.T) {
	seats := SeatGrid(4, 5, 5)
	require.Len(t, seats, 25)

	// row-major order with every (row, seat) pair present exactly once
	seen := make(map[string]bool, len(seats))
	i := 0
	for r := uint32(1); r <= 5; r++ {
		for s := uint32(1); s <= 5; s++ {
			got := seats[i]
			assert.Equal(t, r, got.RowNumber)
			assert.Equal(t, s, got.SeatNumber)
			assert.Equal(t, uint64(4), got.HallID)
			assert.Equal(t, SeatCode(4, r, s), got.SeatCode)
			assert.False(t, seen[got.SeatCode], "duplicate seat code %s", got.SeatCode)
			seen[got.SeatCode] = true
			i++
		}
	}
}

func TestHallCapacityAndLayout(t *testing.T) {
	h := Hall{TotalRows: 5, SeatsPerRow: 5}
	assert.Equal(t, uint32(25), h.Capacity())
	assert.True(t, h.ValidLayout())

	assert.False(t, (&Hall{TotalRows: 0, SeatsPerRow: 5}).ValidLayout())
	assert.False(t, (&Hall{TotalRows: 51, SeatsPerRow: 5}).ValidLayout())
	assert.False(t, (&Hall{TotalRows: 5, SeatsPerRow: 31}).ValidLayout())
	assert.True(t, (&Hall{TotalRows: 50, SeatsPerRow: 30}).ValidLayout())
}
