package player

// EventType identifies an observable session field.
type EventType int

const (
	EventState    EventType = iota // Playback state changed
	EventSong                      // Current song changed
	EventProgress                  // Progress changed
	EventQueue                     // Queue changed
	EventSource                    // Current source changed
	EventSongs                     // Available songs changed
	EventError                     // Error message changed
)

// EventTypes returns all event types.
func EventTypes() []EventType {
	return []EventType{EventState, EventSong, EventProgress, EventQueue, EventSource, EventSongs, EventError}
}

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventState:
		return "state"
	case EventSong:
		return "song"
	case EventProgress:
		return "progress"
	case EventQueue:
		return "queue"
	case EventSource:
		return "source"
	case EventSongs:
		return "songs"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}
