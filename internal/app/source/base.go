package source

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"github.com/osa030/19player/internal/domain/song"
)

// base implements the playback half of Source on top of a transport.
// Concrete sources embed it and provide LoadSongs.
type base struct {
	*transport
	kind song.Kind

	catalogMu sync.RWMutex
	catalog   map[string]song.Song
}

func newBase(kind song.Kind, name string, cfg TransportConfig) (*base, error) {
	t, err := newTransport(name, cfg)
	if err != nil {
		return nil, err
	}
	return &base{transport: t, kind: kind, catalog: map[string]song.Song{}}, nil
}

// Kind returns the source kind tag.
func (b *base) Kind() song.Kind {
	return b.kind
}

// Name returns the display name.
func (b *base) Name() string {
	return b.name
}

func (b *base) setCatalog(songs []song.Song) {
	b.catalogMu.Lock()
	defer b.catalogMu.Unlock()
	b.catalog = lo.KeyBy(songs, func(s song.Song) string { return s.ID })
}

func (b *base) knows(id string) bool {
	b.catalogMu.RLock()
	defer b.catalogMu.RUnlock()
	_, ok := b.catalog[id]
	return ok
}

// Play starts playback of s. Songs of another kind or outside the loaded
// catalog are rejected with ErrInvalidSong.
func (b *base) Play(ctx context.Context, s song.Song) error {
	if s.Kind != b.kind {
		return errors.Wrapf(ErrInvalidSong, "%s cannot play %s song %q", b.name, s.Kind, s.Title)
	}
	if !b.knows(s.ID) {
		return errors.Wrapf(ErrInvalidSong, "%s has no song %q", b.name, s.ID)
	}
	if err := b.roundTrip(ctx, OpPlay); err != nil {
		return err
	}
	b.start(s)
	return nil
}

// Pause pauses playback.
func (b *base) Pause(ctx context.Context) error {
	if err := b.roundTrip(ctx, OpPause); err != nil {
		return err
	}
	b.pause()
	return nil
}

// Stop stops playback and rewinds.
func (b *base) Stop(ctx context.Context) error {
	if err := b.roundTrip(ctx, OpStop); err != nil {
		return err
	}
	b.stop()
	return nil
}

// Seek moves the playback position within s, cueing s when another song
// is loaded.
func (b *base) Seek(ctx context.Context, s song.Song, position time.Duration) error {
	if s.Kind != b.kind || !b.knows(s.ID) {
		return errors.Wrapf(ErrInvalidSong, "%s has no song %q", b.name, s.ID)
	}
	if err := b.roundTrip(ctx, OpSeek); err != nil {
		return err
	}
	return b.seek(s, position)
}

// CurrentTime returns the playback position.
func (b *base) CurrentTime(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.currentTime(), nil
}

// Duration returns the length of the loaded song.
func (b *base) Duration(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return b.duration(), nil
}
