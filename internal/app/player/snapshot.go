package player

import (
	"context"
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/osa030/19player/internal/app/source"
	"github.com/osa030/19player/internal/domain/song"
)

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	SourceKind     song.Kind
	SourceName     string
	HasSource      bool
	AvailableSongs []song.Song
	Queue          []song.QueueItem
	CurrentIndex   int
	CurrentSong    *song.Song
	State          PlaybackState
	Progress       Progress
	Error          ErrorInfo
}

// Snapshot returns a deep copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		AvailableSongs: slices.Clone(s.songs),
		Queue:          slices.Clone(s.queue),
		CurrentIndex:   s.currentIndex,
		CurrentSong:    copySong(s.currentSong),
		State:          s.state,
		Progress:       s.progress,
		Error:          s.errInfo,
	}
	if s.source != nil {
		snap.HasSource = true
		snap.SourceKind = s.source.Kind()
		snap.SourceName = s.source.Name()
	}
	return snap
}

// CurrentSource returns the current source, or nil.
func (s *Session) CurrentSource() source.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.source
}

// CurrentSong returns a copy of the current song, or nil.
func (s *Session) CurrentSong() *song.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySong(s.currentSong)
}

// PlaybackState returns the playback state.
func (s *Session) PlaybackState() PlaybackState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Progress returns the playback progress.
func (s *Session) Progress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progress
}

// Queue returns a copy of the queue.
func (s *Session) Queue() []song.QueueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.queue)
}

// AvailableSongs returns a copy of the current source's catalog.
func (s *Session) AvailableSongs() []song.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.songs)
}

// ErrorMessage returns the last error message, or "".
func (s *Session) ErrorMessage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errInfo.Message
}

// Error returns the last error message and its kind.
func (s *Session) Error() ErrorInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errInfo
}

// CurrentQueueIndex returns the index of the current item.
func (s *Session) CurrentQueueIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIndex
}

// IsCurrentSong reports whether sg is the current song.
func (s *Session) IsCurrentSong(sg song.Song) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSong != nil && s.currentSong.Equal(sg)
}

// SourcePosition queries the current source for its own playback position.
func (s *Session) SourcePosition(ctx context.Context) (Progress, error) {
	src := s.CurrentSource()
	if src == nil {
		return Progress{}, ErrNoSourceSet
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.OperationTimeout)
	defer cancel()

	current, err := src.CurrentTime(ctx)
	if err != nil {
		return Progress{}, errors.Wrap(err, "failed to get source position")
	}
	duration, err := src.Duration(ctx)
	if err != nil {
		return Progress{}, errors.Wrap(err, "failed to get source duration")
	}
	return newProgress(current, duration), nil
}
