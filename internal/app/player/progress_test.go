package player

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/osa030/19player/internal/app/source"
)

func TestNewProgress(t *testing.T) {
	tests := []struct {
		name     string
		current  time.Duration
		duration time.Duration
		want     Progress
	}{
		{"within range", 30 * time.Second, time.Minute, Progress{30 * time.Second, time.Minute}},
		{"clamped to duration", 2 * time.Minute, time.Minute, Progress{time.Minute, time.Minute}},
		{"negative current", -time.Second, time.Minute, Progress{0, time.Minute}},
		{"negative duration", time.Second, -time.Second, Progress{0, 0}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, newProgress(tt.current, tt.duration))
		})
	}
}

func TestProgress_Fraction(t *testing.T) {
	assert.Equal(t, 0.0, Progress{}.Fraction())
	assert.Equal(t, 0.5, newProgress(90*time.Second, 180*time.Second).Fraction())
	assert.Equal(t, 1.0, newProgress(time.Hour, 180*time.Second).Fraction())
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{5 * time.Second, "0:05"},
		{65 * time.Second, "1:05"},
		{179*time.Second + 900*time.Millisecond, "2:59"},
		{61 * time.Minute, "61:00"},
		{-time.Second, "0:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTime(tt.in), "FormatTime(%s)", tt.in)
	}
}

func TestPlaybackState(t *testing.T) {
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "unknown", PlaybackState(42).String())

	assert.True(t, StatePlaying.IsPlaying())
	assert.False(t, StatePlaying.IsPaused())
	assert.True(t, StatePaused.IsPaused())
	assert.True(t, StateLoading.IsLoading())
	assert.True(t, StateError.IsError())
	assert.False(t, StateError.IsPlaying())
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrNoSourceSet, KindNoSourceSet},
		{errors.Wrap(ErrNoSongsAvailable, "skip"), KindNoSongsAvailable},
		{errors.Wrap(source.ErrInvalidSong, "play"), KindInvalidSong},
		{errors.Mark(errors.New("timeout"), source.ErrNetwork), KindNetworkError},
		{errors.Mark(errors.New("busy"), ErrAudioSession), KindAudioSession},
		{ErrRemovePlaying, KindRemovePlaying},
		{ErrClosed, KindClosed},
		{errors.New("something else"), KindUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ErrorKind(tt.err), "ErrorKind(%v)", tt.err)
	}
}

func TestEventType_String(t *testing.T) {
	names := make([]string, 0, len(EventTypes()))
	for _, e := range EventTypes() {
		names = append(names, e.String())
	}
	assert.Equal(t, []string{"state", "song", "progress", "queue", "source", "songs", "error"}, names)
	assert.Equal(t, "unknown", EventType(99).String())
}
