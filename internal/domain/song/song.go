// Package song provides the Song and QueueItem domain entities.
package song

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Kind identifies the source backend a song was loaded from.
type Kind string

const (
	KindLocal        Kind = "local"
	KindSpotify      Kind = "spotify"
	KindAppleMusic   Kind = "apple_music"
	KindYouTubeMusic Kind = "youtube_music"
)

// Kinds returns all known source kinds in display order.
func Kinds() []Kind {
	return []Kind{KindLocal, KindSpotify, KindAppleMusic, KindYouTubeMusic}
}

// String returns the kind tag.
func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return lo.Contains(Kinds(), k)
}

// Song represents a playable song as reported by a source.
type Song struct {
	ID         string        // Unique within a catalog
	Title      string        // Song title
	Artist     string        // Artist name
	Album      string        // Album name (optional)
	Duration   time.Duration // Song length, >0 once loaded
	Kind       Kind          // Source kind the song belongs to
	ArtworkURL string        // Artwork reference (optional)
	StreamURL  string        // Stream reference (remote sources)
	LocalPath  string        // File path (local source)
}

// Equal reports whether two songs are the same song.
// Songs compare by ID only.
func (s Song) Equal(other Song) bool {
	return s.ID == other.ID
}

// QueueItem represents a song placed in the play queue.
type QueueItem struct {
	ID      string    // Queue item ID, distinct from the song ID
	Song    Song      // Queued song
	AddedAt time.Time // Time when added to queue
}

// NewQueueItem wraps a song into a queue item with a fresh ID.
func NewQueueItem(s Song) QueueItem {
	return QueueItem{
		ID:      uuid.New().String(),
		Song:    s,
		AddedAt: time.Now(),
	}
}
