package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	cutoffs []time.Time
	swept   int64
	err     error
}

func (f *fakeStore) CancelExpired(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.swept, f.err
}

func TestSweepOnceUsesGraceWindow(t *testing.T) {
	store := &fakeStore{swept: 3}
	s := NewExpirySweeper(store, 15*time.Minute, time.Minute)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.SweepOnce(context.Background(), now))

	require.Len(t, store.cutoffs, 1)
	assert.Equal(t, now.Add(-15*time.Minute), store.cutoffs[0])
}

func TestSweepOncePropagatesError(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	s := NewExpirySweeper(store, 15*time.Minute, time.Minute)

	err := s.SweepOnce(context.Background(), time.Now().UTC())
	assert.EqualError(t, err, "db down")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := &fakeStore{}
	s := NewExpirySweeper(store, time.Minute, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	time.Sleep(35 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.NotEmpty(t, store.cutoffs)
}
