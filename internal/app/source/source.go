// Package source provides the pluggable music source backends.
package source

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/19player/internal/domain/song"
)

var (
	// ErrNetwork marks failures talking to a source backend.
	ErrNetwork = errors.New("network error")
	// ErrInvalidSong marks songs a source cannot play.
	ErrInvalidSong = errors.New("invalid song")
	// ErrUnknownKind is returned for kinds with no registered factory.
	ErrUnknownKind = errors.New("unknown source kind")
)

// Source is the interface for music source backends.
// Every method blocks until the backend resolves; callers that need
// asynchrony run them on their own goroutine.
type Source interface {
	// Kind returns the source kind tag.
	Kind() song.Kind
	// Name returns a human-readable name.
	Name() string
	// LoadSongs retrieves the catalog of the source.
	LoadSongs(ctx context.Context) ([]song.Song, error)
	// Play starts playback of s.
	Play(ctx context.Context, s song.Song) error
	// Pause pauses playback.
	Pause(ctx context.Context) error
	// Stop stops playback and rewinds.
	Stop(ctx context.Context) error
	// Seek moves the playback position within s. Seeking a song other than
	// the one loaded cues s at position without starting it.
	Seek(ctx context.Context, s song.Song, position time.Duration) error
	// CurrentTime returns the playback position.
	CurrentTime(ctx context.Context) (time.Duration, error)
	// Duration returns the length of the loaded song.
	Duration(ctx context.Context) (time.Duration, error)
}

// Info describes a registered or configured source for listings.
type Info struct {
	Kind        song.Kind `json:"kind"`
	DisplayName string    `json:"display_name"`
	Registered  bool      `json:"registered"`
	Configured  bool      `json:"configured"`
}
