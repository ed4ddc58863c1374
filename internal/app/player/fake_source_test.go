package player

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/osa030/19player/internal/domain/song"
)

// fakeSource is a scripted source. Operations fail with the error set in
// fail and block until the gate registered for them is closed.
type fakeSource struct {
	kind  song.Kind
	name  string
	songs []song.Song

	mu    sync.Mutex
	fail  map[string]error
	gates map[string]chan struct{}
	calls  []string
	played []string
	pos    time.Duration
}

func newFakeSource(songs ...song.Song) *fakeSource {
	return &fakeSource{
		kind:  song.KindLocal,
		name:  "fake",
		songs: songs,
		fail:  map[string]error{},
		gates: map[string]chan struct{}{},
	}
}

func (f *fakeSource) failOn(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[op] = err
}

// gate makes op block until the returned function is called.
func (f *fakeSource) gate(op string) (release func()) {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[op] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.gates, op)
			f.mu.Unlock()
			close(ch)
		})
	}
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSource) call(ctx context.Context, op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	gate := f.gates[op]
	err := f.fail[op]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeSource) Kind() song.Kind { return f.kind }
func (f *fakeSource) Name() string    { return f.name }

func (f *fakeSource) LoadSongs(ctx context.Context) ([]song.Song, error) {
	if err := f.call(ctx, "load"); err != nil {
		return nil, err
	}
	return f.songs, nil
}

func (f *fakeSource) Play(ctx context.Context, s song.Song) error {
	if err := f.call(ctx, "play"); err != nil {
		return err
	}
	f.mu.Lock()
	f.played = append(f.played, s.ID)
	f.mu.Unlock()
	return nil
}

func (f *fakeSource) Pause(ctx context.Context) error { return f.call(ctx, "pause") }
func (f *fakeSource) Stop(ctx context.Context) error  { return f.call(ctx, "stop") }

// Played returns the IDs of the songs successfully played, in order.
func (f *fakeSource) Played() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

func (f *fakeSource) Seek(ctx context.Context, _ song.Song, position time.Duration) error {
	if err := f.call(ctx, "seek"); err != nil {
		return err
	}
	f.mu.Lock()
	f.pos = position
	f.mu.Unlock()
	return nil
}

func (f *fakeSource) CurrentTime(context.Context) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pos, nil
}

func (f *fakeSource) Duration(context.Context) (time.Duration, error) {
	if len(f.songs) == 0 {
		return 0, nil
	}
	return f.songs[0].Duration, nil
}

// testSongs returns n songs whose durations cycle through 180s, 200s, 165s.
func testSongs(n int) []song.Song {
	durations := []time.Duration{180 * time.Second, 200 * time.Second, 165 * time.Second}
	songs := make([]song.Song, n)
	for i := range songs {
		songs[i] = song.Song{
			ID:       fmt.Sprintf("song-%d", i+1),
			Title:    fmt.Sprintf("Song %d", i+1),
			Artist:   "Artist",
			Duration: durations[i%len(durations)],
			Kind:     song.KindLocal,
		}
	}
	return songs
}

// newTestSession returns a session whose ticker never fires on its own.
func newTestSession(t *testing.T) *Session {
	t.Helper()
	s := New(Config{TickInterval: time.Hour, OperationTimeout: 2 * time.Second})
	t.Cleanup(s.Close)
	return s
}

func waitForState(t *testing.T, s *Session, want PlaybackState) {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.PlaybackState() == want
	}, time.Second, time.Millisecond, "expected state %s, got %s", want, s.PlaybackState())
}

// loadedSession returns a session with a fake source holding songs loaded.
func loadedSession(t *testing.T, songs []song.Song) (*Session, *fakeSource) {
	t.Helper()
	s := newTestSession(t)
	src := newFakeSource(songs...)
	require.NoError(t, s.SetSource(src))
	require.Eventually(t, func() bool {
		return s.PlaybackState() == StateStopped && len(s.AvailableSongs()) == len(songs) && s.CurrentSource() == src
	}, time.Second, time.Millisecond)
	return s, src
}

// playing returns a loaded session that is playing the first song.
func playing(t *testing.T, songs []song.Song) (*Session, *fakeSource) {
	t.Helper()
	s, src := loadedSession(t, songs)
	require.NoError(t, s.Play())
	waitForState(t, s, StatePlaying)
	return s, src
}

// assertQueueInvariant checks that the current song mirrors the current item.
func assertQueueInvariant(t *testing.T, s *Session) {
	t.Helper()
	snap := s.Snapshot()
	if len(snap.Queue) == 0 {
		require.Nil(t, snap.CurrentSong)
		return
	}
	require.GreaterOrEqual(t, snap.CurrentIndex, 0)
	require.Less(t, snap.CurrentIndex, len(snap.Queue))
	if snap.CurrentSong != nil {
		require.Equal(t, snap.Queue[snap.CurrentIndex].Song.ID, snap.CurrentSong.ID)
	}
	require.LessOrEqual(t, snap.Progress.CurrentTime, snap.Progress.Duration)
}
