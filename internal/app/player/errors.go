package player

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/19player/internal/app/source"
)

// Errors
var (
	ErrNoSourceSet      = errors.New("no source set")
	ErrNoSongsAvailable = errors.New("no song to play")
	ErrRemovePlaying    = errors.New("cannot remove currently playing song")
	ErrAudioSession     = errors.New("audio session error")
	ErrClosed           = errors.New("session closed")
)

// Error kinds reported alongside the error message.
const (
	KindNoSourceSet      = "noSourceSet"
	KindNoSongsAvailable = "noSongsAvailable"
	KindInvalidSong      = "invalidSong"
	KindNetworkError     = "networkError"
	KindAudioSession     = "audioSessionError"
	KindRemovePlaying    = "removePlaying"
	KindClosed           = "closed"
	KindUnknown          = "unknown"
)

// ErrorKind maps err to a stable kind string. It returns "" for nil.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNoSourceSet):
		return KindNoSourceSet
	case errors.Is(err, ErrNoSongsAvailable):
		return KindNoSongsAvailable
	case errors.Is(err, source.ErrInvalidSong):
		return KindInvalidSong
	case errors.Is(err, source.ErrNetwork):
		return KindNetworkError
	case errors.Is(err, ErrAudioSession):
		return KindAudioSession
	case errors.Is(err, ErrRemovePlaying):
		return KindRemovePlaying
	case errors.Is(err, ErrClosed):
		return KindClosed
	default:
		return KindUnknown
	}
}

// ErrorInfo is the error field of a session.
type ErrorInfo struct {
	Message string
	Kind    string
}

// AudioSession is the host audio session activated when a Session starts.
type AudioSession interface {
	Activate() error
}
