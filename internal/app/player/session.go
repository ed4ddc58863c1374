package player

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/osa030/19player/internal/app/notification"
	"github.com/osa030/19player/internal/app/source"
	"github.com/osa030/19player/internal/domain/song"
)

const (
	defaultTickInterval     = time.Second
	defaultOperationTimeout = 10 * time.Second

	// progressStep is how far one tick moves the simulated position.
	progressStep = time.Second
)

// Config holds session configuration.
type Config struct {
	TickInterval     time.Duration // Interval of the progress ticker
	OperationTimeout time.Duration // Timeout applied to every source call
	EventBuffer      int           // Per-subscriber channel capacity
	AudioSession     AudioSession  // Activated once in New (optional)
}

// Session owns the playback state: the current source, its catalog, the
// queue, the current song, the playback state, the progress and the last
// error. All mutations happen under mu, including the completions of source
// calls, which run on their own goroutines.
type Session struct {
	mu sync.RWMutex

	// Source
	source source.Source
	songs  []song.Song

	// Queue
	queue        []song.QueueItem
	currentIndex int
	currentSong  *song.Song

	// Playback
	state    PlaybackState
	progress Progress
	errInfo  ErrorInfo

	// Stale completion guards
	loadGen    uint64 // bumped by SetSource
	controlSeq uint64 // bumped by play/pause/stop and SetSource

	config Config
	topics *topics

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates a session with an empty queue in the stopped state and
// starts its progress ticker.
func New(config Config) *Session {
	if config.TickInterval <= 0 {
		config.TickInterval = defaultTickInterval
	}
	if config.OperationTimeout <= 0 {
		config.OperationTimeout = defaultOperationTimeout
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = notification.DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		queue:  make([]song.QueueItem, 0),
		state:  StateStopped,
		config: config,
		topics: newTopics(config.EventBuffer),
		ctx:    ctx,
		cancel: cancel,
	}

	if config.AudioSession != nil {
		if err := config.AudioSession.Activate(); err != nil {
			err = errors.Mark(errors.Wrap(err, "failed to activate audio session"), ErrAudioSession)
			zlog.Warn().Msgf("%v", err)
			s.errInfo = ErrorInfo{Message: err.Error(), Kind: ErrorKind(err)}
		}
	}

	s.wg.Add(1)
	go s.runTicker()

	return s
}

// Close stops the ticker, waits for in-flight source calls and ends all
// subscriptions. It is safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.topics.close()
	zlog.Debug().Msg("player session closed")
}

// Subscribe registers a new observer of the session fields.
func (s *Session) Subscribe() *Subscription {
	return s.topics.subscribe()
}

// Unsubscribe removes an observer and closes its channels.
func (s *Session) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	s.topics.unsubscribe(sub)
}

// SubscriberCount returns the number of active subscriptions.
func (s *Session) SubscriberCount() int {
	return s.topics.count()
}

// SetSource replaces the current source and loads its catalog.
// On success the queue is rebuilt from the catalog in load order.
func (s *Session) SetSource(src source.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if src == nil {
		return s.rejectLocked(ErrNoSourceSet)
	}

	s.loadGen++
	gen := s.loadGen
	s.controlSeq++

	s.source = src
	s.topics.source.Publish(src)
	s.setStateLocked(StateLoading)
	zlog.Info().Msgf("loading source: kind=%s name=%s generation=%d", src.Kind(), src.Name(), gen)

	var songs []song.Song
	s.runLocked(func(ctx context.Context) error {
		var err error
		songs, err = src.LoadSongs(ctx)
		return err
	}, func(err error) {
		if gen != s.loadGen {
			zlog.Debug().Msgf("discarding stale catalog load: kind=%s generation=%d latest=%d", src.Kind(), gen, s.loadGen)
			return
		}
		if err != nil {
			s.failLocked("load", err)
			return
		}
		s.applyCatalogLocked(songs)
		zlog.Info().Msgf("source loaded: kind=%s songs=%d", src.Kind(), len(songs))
	})
	return nil
}

// applyCatalogLocked replaces the catalog and rebuilds the queue from it.
func (s *Session) applyCatalogLocked(songs []song.Song) {
	s.songs = slices.Clone(songs)
	s.queue = lo.Map(songs, func(sg song.Song, _ int) song.QueueItem {
		return song.NewQueueItem(sg)
	})
	s.currentIndex = 0
	if len(s.queue) > 0 {
		s.selectLocked(0)
	} else {
		s.setCurrentSongLocked(nil)
		s.setProgressLocked(newProgress(0, 0))
	}
	s.topics.songs.Publish(slices.Clone(s.songs))
	s.publishQueueLocked()
	s.setStateLocked(StateStopped)
}

// Play starts playback of the current song.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked()
}

func (s *Session) playLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.currentSong == nil || s.source == nil {
		return s.rejectLocked(ErrNoSongsAvailable)
	}

	src, target := s.source, *s.currentSong
	return s.controlLocked("play", func(ctx context.Context) error {
		return src.Play(ctx, target)
	}, func() {
		// The current item was removed while the play was in flight.
		if s.currentSong == nil || s.currentSong.ID != target.ID {
			s.retargetLocked(target)
			return
		}
		s.setStateLocked(StatePlaying)
		zlog.Info().Msgf("playing: id=%s title=%s", target.ID, target.Title)
	})
}

// retargetLocked follows up a play that started a song which is no longer
// current: the new current song is played, or the source is stopped when
// the queue emptied.
func (s *Session) retargetLocked(started song.Song) {
	if s.currentSong == nil {
		zlog.Debug().Msgf("stopping removed song: id=%s", started.ID)
		_ = s.stopLocked()
		return
	}
	zlog.Debug().Msgf("replaying after removal: started=%s current=%s", started.ID, s.currentSong.ID)
	_ = s.playLocked()
}

// Pause pauses playback. It is forwarded to the source in any state.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.source == nil {
		return s.rejectLocked(ErrNoSourceSet)
	}

	src := s.source
	return s.controlLocked("pause", src.Pause, func() {
		s.setStateLocked(StatePaused)
	})
}

// Stop stops playback and rewinds the progress.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked()
}

func (s *Session) stopLocked() error {
	if s.closed {
		return ErrClosed
	}
	if s.source == nil {
		return s.rejectLocked(ErrNoSourceSet)
	}

	src := s.source
	return s.controlLocked("stop", src.Stop, func() {
		s.setStateLocked(StateStopped)
		s.setProgressLocked(newProgress(0, s.currentDurationLocked()))
	})
}

// controlLocked issues a play/pause/stop call. Only the most recently issued
// control call applies its outcome.
func (s *Session) controlLocked(op string, call func(ctx context.Context) error, onSuccess func()) error {
	s.controlSeq++
	seq := s.controlSeq
	s.setStateLocked(StateLoading)

	s.runLocked(call, func(err error) {
		if seq != s.controlSeq {
			zlog.Debug().Msgf("discarding stale %s completion: seq=%d latest=%d", op, seq, s.controlSeq)
			return
		}
		if err != nil {
			s.failLocked(op, err)
			return
		}
		onSuccess()
	})
	return nil
}

// Seek moves the position within the current song. Requests without a
// source or song, or outside 0..duration, are ignored.
func (s *Session) Seek(position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if s.source == nil || s.currentSong == nil {
		return nil
	}
	if position < 0 || position > s.currentSong.Duration {
		zlog.Debug().Msgf("ignoring seek outside song: position=%s duration=%s", position, s.currentSong.Duration)
		return nil
	}

	src, target := s.source, *s.currentSong
	s.runLocked(func(ctx context.Context) error {
		return src.Seek(ctx, target, position)
	}, func(err error) {
		if s.currentSong == nil || s.currentSong.ID != target.ID {
			return
		}
		if err != nil {
			s.failLocked("seek", err)
			return
		}
		s.setProgressLocked(newProgress(position, target.Duration))
	})
	return nil
}

// ClearError clears the error message. The playback state is unchanged.
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setErrorLocked(ErrorInfo{})
}

// runLocked runs call on its own goroutine with the operation timeout and
// hands the result to complete under the session lock.
func (s *Session) runLocked(call func(ctx context.Context) error, complete func(err error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(s.ctx, s.config.OperationTimeout)
		defer cancel()
		err := call(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		complete(err)
	}()
}

// rejectLocked records a rejected command without a state transition.
func (s *Session) rejectLocked(err error) error {
	zlog.Debug().Msgf("command rejected: %v", err)
	s.setErrorLocked(ErrorInfo{Message: err.Error(), Kind: ErrorKind(err)})
	return err
}

// failLocked records a source failure and moves to the error state.
// A nil err is a no-op.
func (s *Session) failLocked(op string, err error) {
	if err == nil {
		return
	}
	zlog.Error().Msgf("source %s failed: %v", op, err)
	s.setErrorLocked(ErrorInfo{Message: err.Error(), Kind: ErrorKind(err)})
	s.setStateLocked(StateError)
}

func (s *Session) setStateLocked(state PlaybackState) {
	if s.state == state {
		return
	}
	zlog.Debug().Msgf("playback state: %s -> %s", s.state, state)
	s.state = state
	s.topics.state.Publish(state)
}

func (s *Session) setCurrentSongLocked(sg *song.Song) {
	if s.currentSong == nil && sg == nil {
		return
	}
	if sg != nil {
		cp := *sg
		sg = &cp
	}
	s.currentSong = sg
	s.topics.song.Publish(copySong(sg))
}

func (s *Session) setProgressLocked(p Progress) {
	if s.progress == p {
		return
	}
	s.progress = p
	s.topics.progress.Publish(p)
}

func (s *Session) setErrorLocked(info ErrorInfo) {
	if s.errInfo == info {
		return
	}
	s.errInfo = info
	s.topics.err.Publish(info)
}

func (s *Session) publishQueueLocked() {
	s.topics.queue.Publish(slices.Clone(s.queue))
}

func (s *Session) currentDurationLocked() time.Duration {
	if s.currentSong == nil {
		return 0
	}
	return s.currentSong.Duration
}

func copySong(sg *song.Song) *song.Song {
	if sg == nil {
		return nil
	}
	cp := *sg
	return &cp
}
