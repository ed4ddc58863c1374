// Package player provides the playback session state machine.
package player

// PlaybackState represents the playback state of a session.
type PlaybackState int

const (
	StateStopped PlaybackState = iota // Nothing playing, position at start
	StatePlaying                      // Source is playing the current song
	StatePaused                       // Source is paused
	StateLoading                      // A source call is in flight
	StateError                        // Last source call failed
)

// String returns the string representation of the state.
func (s PlaybackState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

func (s PlaybackState) IsPlaying() bool { return s == StatePlaying }
func (s PlaybackState) IsPaused() bool  { return s == StatePaused }
func (s PlaybackState) IsLoading() bool { return s == StateLoading }
func (s PlaybackState) IsError() bool   { return s == StateError }
