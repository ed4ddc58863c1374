package source

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/osa030/19player/internal/domain/song"
)

// Operation names a transport round trip.
type Operation string

const (
	OpLoad  Operation = "load"
	OpPlay  Operation = "play"
	OpPause Operation = "pause"
	OpStop  Operation = "stop"
	OpSeek  Operation = "seek"
)

// TransportConfig holds the simulated backend behaviour shared by all sources.
type TransportConfig struct {
	Latency        string   `yaml:"latency" mapstructure:"latency" default:"200ms"`
	FailOperations []string `yaml:"fail_operations" mapstructure:"fail_operations" validate:"dive,oneof=load play pause stop seek"`
}

// transport simulates a playback backend: it delays every round trip,
// fails the configured operations and tracks the playback position.
type transport struct {
	name    string
	latency time.Duration
	failOps []Operation
	now     func() time.Time

	mu        sync.Mutex
	current   *song.Song
	position  time.Duration // position at the last start/pause/seek
	startedAt time.Time     // wall clock at the last start while playing
	playing   bool
}

func newTransport(name string, cfg TransportConfig) (*transport, error) {
	latency, err := time.ParseDuration(cfg.Latency)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid latency %q", cfg.Latency)
	}
	if latency < 0 {
		return nil, errors.Newf("latency must not be negative: %s", latency)
	}
	return &transport{
		name:    name,
		latency: latency,
		failOps: lo.Map(cfg.FailOperations, func(op string, _ int) Operation { return Operation(op) }),
		now:     time.Now,
	}, nil
}

// roundTrip waits for the simulated latency and applies failure injection.
func (t *transport) roundTrip(ctx context.Context, op Operation) error {
	if t.latency > 0 {
		timer := time.NewTimer(t.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return errors.Mark(errors.Wrapf(ctx.Err(), "%s: %s interrupted", t.name, op), ErrNetwork)
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return errors.Mark(errors.Wrapf(err, "%s: %s interrupted", t.name, op), ErrNetwork)
	}

	if lo.Contains(t.failOps, op) {
		return errors.Mark(errors.Newf("%s: connection lost during %s", t.name, op), ErrNetwork)
	}
	return nil
}

// start begins playback of s. Restarting the paused song resumes it.
func (t *transport) start(s song.Song) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil || t.current.ID != s.ID {
		t.position = 0
	} else if t.playing {
		t.position = t.elapsedLocked()
	}
	t.current = &s
	t.startedAt = t.now()
	t.playing = true
}

func (t *transport) pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.playing {
		t.position = t.elapsedLocked()
		t.playing = false
	}
}

func (t *transport) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.position = 0
	t.playing = false
}

// seek moves to position within s. A song other than the loaded one is
// cued paused, so a following start of s resumes from position.
func (t *transport) seek(s song.Song, position time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if position < 0 || position > s.Duration {
		return errors.Wrapf(ErrInvalidSong, "position %s outside 0..%s", position, s.Duration)
	}
	if t.current == nil || t.current.ID != s.ID {
		t.current = &s
		t.playing = false
	}
	t.position = position
	t.startedAt = t.now()
	return nil
}

func (t *transport) currentTime() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return 0
	}
	return t.elapsedLocked()
}

func (t *transport) duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return 0
	}
	return t.current.Duration
}

func (t *transport) elapsedLocked() time.Duration {
	pos := t.position
	if t.playing {
		pos += t.now().Sub(t.startedAt)
	}
	return min(pos, t.current.Duration)
}
