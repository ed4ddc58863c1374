package source

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/19player/internal/domain/song"
)

// fakeClock is a manually advanced clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTransport(t *testing.T, cfg TransportConfig) (*transport, *fakeClock) {
	t.Helper()
	if cfg.Latency == "" {
		cfg.Latency = "0s"
	}
	tr, err := newTransport("test", cfg)
	require.NoError(t, err)
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	tr.now = clock.Now
	return tr, clock
}

func TestTransport_PositionTracking(t *testing.T) {
	tr, clock := newTestTransport(t, TransportConfig{})
	s := song.Song{ID: "a", Duration: 100 * time.Second}

	assert.Equal(t, time.Duration(0), tr.currentTime())
	assert.Equal(t, time.Duration(0), tr.duration())

	tr.start(s)
	clock.Advance(10 * time.Second)
	assert.Equal(t, 10*time.Second, tr.currentTime())
	assert.Equal(t, 100*time.Second, tr.duration())

	tr.pause()
	clock.Advance(30 * time.Second)
	assert.Equal(t, 10*time.Second, tr.currentTime(), "paused position must not advance")

	// Restarting the same song resumes
	tr.start(s)
	clock.Advance(5 * time.Second)
	assert.Equal(t, 15*time.Second, tr.currentTime())

	require.NoError(t, tr.seek(s, 90*time.Second))
	clock.Advance(20 * time.Second)
	assert.Equal(t, 100*time.Second, tr.currentTime(), "position is clamped to duration")

	tr.stop()
	assert.Equal(t, time.Duration(0), tr.currentTime())

	// A different song starts from zero
	tr.start(s)
	clock.Advance(3 * time.Second)
	tr.start(song.Song{ID: "b", Duration: 50 * time.Second})
	assert.Equal(t, time.Duration(0), tr.currentTime())
}

func TestTransport_SeekValidation(t *testing.T) {
	tr, _ := newTestTransport(t, TransportConfig{})
	a := song.Song{ID: "a", Duration: 10 * time.Second}

	assert.True(t, errors.Is(tr.seek(a, -time.Second), ErrInvalidSong))
	assert.True(t, errors.Is(tr.seek(a, 11*time.Second), ErrInvalidSong))
	assert.NoError(t, tr.seek(a, 10*time.Second))
}

func TestTransport_SeekCuesSong(t *testing.T) {
	tr, clock := newTestTransport(t, TransportConfig{})
	a := song.Song{ID: "a", Duration: 100 * time.Second}
	b := song.Song{ID: "b", Duration: 30 * time.Second}

	// Nothing played yet
	require.NoError(t, tr.seek(a, 40*time.Second))
	clock.Advance(10 * time.Second)
	assert.Equal(t, 40*time.Second, tr.currentTime(), "cued song does not advance")
	assert.Equal(t, 100*time.Second, tr.duration())

	tr.start(a)
	clock.Advance(5 * time.Second)
	assert.Equal(t, 45*time.Second, tr.currentTime(), "start resumes from the cued position")

	// Seeking another song while a is playing cues b
	require.NoError(t, tr.seek(b, 20*time.Second))
	clock.Advance(5 * time.Second)
	assert.Equal(t, 20*time.Second, tr.currentTime())
	assert.Equal(t, 30*time.Second, tr.duration())

	tr.start(b)
	clock.Advance(3 * time.Second)
	assert.Equal(t, 23*time.Second, tr.currentTime())
}

func TestTransport_RoundTrip(t *testing.T) {
	tr, _ := newTestTransport(t, TransportConfig{FailOperations: []string{"play", "seek"}})
	ctx := context.Background()

	assert.NoError(t, tr.roundTrip(ctx, OpLoad))
	assert.NoError(t, tr.roundTrip(ctx, OpPause))

	err := tr.roundTrip(ctx, OpPlay)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.Contains(t, err.Error(), "connection lost during play")

	assert.True(t, errors.Is(tr.roundTrip(ctx, OpSeek), ErrNetwork))
}

func TestTransport_RoundTripHonoursContext(t *testing.T) {
	tr, _ := newTestTransport(t, TransportConfig{Latency: "1h"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tr.roundTrip(ctx, OpLoad)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), time.Second)
}
