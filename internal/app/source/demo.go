package source

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/osa030/19player/internal/domain/catalog"
	"github.com/osa030/19player/internal/domain/song"
)

type demoEntry struct {
	title   string
	artist  string
	album   string
	seconds int
}

var demoEntries = map[song.Kind][]demoEntry{
	song.KindLocal: {
		{"Morning Static", "The Parlour Tapes", "Home Recordings", 184},
		{"Kitchen Radio", "The Parlour Tapes", "Home Recordings", 212},
		{"Loose Floorboard", "Ana Quell", "Attic", 167},
		{"Porch Light", "Ana Quell", "Attic", 243},
		{"Last Train Home", "Mill Street Band", "", 198},
	},
	song.KindSpotify: {
		{"Neon Avenue", "Velvet Circuit", "City Pulse", 201},
		{"Glass Horizon", "Velvet Circuit", "City Pulse", 189},
		{"Paper Satellites", "Nora Vale", "Orbit", 226},
		{"Slow Tide", "Nora Vale", "Orbit", 254},
		{"Midnight Arcade", "Pixel Drift", "Insert Coin", 175},
		{"High Score", "Pixel Drift", "Insert Coin", 162},
	},
	song.KindAppleMusic: {
		{"Amber Fields", "Clara Moss", "Seasons", 231},
		{"Winter Letters", "Clara Moss", "Seasons", 207},
		{"Harbor Lights", "The Lanterns", "Coastline", 193},
		{"Salt and Cedar", "The Lanterns", "Coastline", 248},
		{"Quiet Machines", "Echo Park Trio", "", 271},
	},
	song.KindYouTubeMusic: {
		{"Rooftop Session", "Kai Moreno", "Live Cuts", 305},
		{"Lo-Fi Study Loop", "Desk Plant", "Focus", 142},
		{"Subway Busker", "Kai Moreno", "Live Cuts", 219},
		{"Rainy Window", "Desk Plant", "Focus", 158},
		{"Festival Encore", "The Big Tent", "Summer Stage", 286},
	},
}

var demoNames = map[song.Kind]string{
	song.KindLocal:        "Local Library",
	song.KindSpotify:      "Spotify",
	song.KindAppleMusic:   "Apple Music",
	song.KindYouTubeMusic: "YouTube Music",
}

// DisplayName returns the default display name for kind.
func DisplayName(kind song.Kind) string {
	if name, ok := demoNames[kind]; ok {
		return name
	}
	return kind.String()
}

// DemoCatalog returns the built-in catalog for kind.
// Unknown kinds yield an empty catalog.
func DemoCatalog(kind song.Kind) catalog.Catalog {
	songs := lo.Map(demoEntries[kind], func(e demoEntry, i int) song.Song {
		id := fmt.Sprintf("%s-%03d", kind, i+1)
		s := song.Song{
			ID:       id,
			Title:    e.title,
			Artist:   e.artist,
			Album:    e.album,
			Duration: time.Duration(e.seconds) * time.Second,
			Kind:     kind,
		}
		if kind == song.KindLocal {
			s.LocalPath = fmt.Sprintf("demo/%s.mp3", id)
		} else {
			s.StreamURL = streamURL(kind, id)
			s.ArtworkURL = fmt.Sprintf("https://picsum.photos/seed/%s/300", id)
		}
		return s
	})
	return catalog.Catalog{Kind: kind, Name: DisplayName(kind), Songs: songs}
}

func streamURL(kind song.Kind, id string) string {
	switch kind {
	case song.KindSpotify:
		return "spotify:track:" + id
	case song.KindAppleMusic:
		return "https://music.apple.com/song/" + id
	case song.KindYouTubeMusic:
		return "https://music.youtube.com/watch?v=" + id
	default:
		return ""
	}
}
