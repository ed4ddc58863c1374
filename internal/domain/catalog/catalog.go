// Package catalog provides the Catalog domain entity.
package catalog

import (
	"time"

	"github.com/osa030/19player/internal/domain/song"
)

// Catalog represents the ordered song list offered by one source.
type Catalog struct {
	Kind  song.Kind   // Source kind the catalog belongs to
	Name  string      // Display name of the catalog
	Songs []song.Song // Songs in load order
}

// SongIDs returns all song IDs in the catalog.
func (c *Catalog) SongIDs() []string {
	ids := make([]string, len(c.Songs))
	for i, s := range c.Songs {
		ids[i] = s.ID
	}
	return ids
}

// TotalDuration returns the total duration of all songs.
func (c *Catalog) TotalDuration() time.Duration {
	var total time.Duration
	for _, s := range c.Songs {
		total += s.Duration
	}
	return total
}

// Find returns the song with the given ID.
func (c *Catalog) Find(id string) (song.Song, bool) {
	for _, s := range c.Songs {
		if s.ID == id {
			return s, true
		}
	}
	return song.Song{}, false
}

// Contains reports whether the catalog holds a song with the given ID.
func (c *Catalog) Contains(id string) bool {
	_, ok := c.Find(id)
	return ok
}

// Len returns the number of songs.
func (c *Catalog) Len() int {
	return len(c.Songs)
}
