package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dhowden/tag"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osa030/19player/internal/domain/song"
)

func init() {
	Register(song.KindLocal, func(settings map[string]any) (Source, error) {
		return NewLocalSource(settings)
	})
}

// LocalConfig holds settings for the local file source.
type LocalConfig struct {
	TransportConfig `mapstructure:",squash"`
	Name            string `yaml:"name" mapstructure:"name" default:"Local Library"`
	Manifest        string `yaml:"manifest" mapstructure:"manifest"`
}

// Manifest lists the files offered by a local library.
type Manifest struct {
	Root  string          `yaml:"root"`
	Songs []ManifestEntry `yaml:"songs" validate:"dive"`
}

// ManifestEntry describes one local file. Empty title, artist and album are
// read from the file's tags.
type ManifestEntry struct {
	ID       string `yaml:"id"`
	Path     string `yaml:"path" validate:"required"`
	Title    string `yaml:"title"`
	Artist   string `yaml:"artist"`
	Album    string `yaml:"album"`
	Duration string `yaml:"duration" validate:"required"`
}

// LocalSource plays songs from files on the local disk.
type LocalSource struct {
	*base
	config *LocalConfig
}

// NewLocalSource creates a new LocalSource.
func NewLocalSource(settings map[string]any) (*LocalSource, error) {
	var config LocalConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	zlog.Debug().Msgf("local source config: %+v", config)

	b, err := newBase(song.KindLocal, config.Name, config.TransportConfig)
	if err != nil {
		return nil, err
	}
	return &LocalSource{base: b, config: &config}, nil
}

// LoadSongs returns the manifest songs, or the demo catalog when no
// manifest is configured.
func (s *LocalSource) LoadSongs(ctx context.Context) ([]song.Song, error) {
	if err := s.roundTrip(ctx, OpLoad); err != nil {
		return nil, err
	}

	var songs []song.Song
	if s.config.Manifest == "" {
		songs = DemoCatalog(song.KindLocal).Songs
	} else {
		var err error
		songs, err = loadManifest(s.config.Manifest)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load manifest %s", s.config.Manifest)
		}
	}

	s.setCatalog(songs)
	zlog.Info().Msgf("local source loaded: name=%s songs=%d", s.Name(), len(songs))
	return songs, nil
}

func loadManifest(path string) ([]song.Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, "failed to parse manifest")
	}
	if err := validator.New().Struct(m); err != nil {
		return nil, errors.Wrap(err, "invalid manifest")
	}

	root := m.Root
	if root == "" {
		root = filepath.Dir(path)
	} else if !filepath.IsAbs(root) {
		root = filepath.Join(filepath.Dir(path), root)
	}

	songs := make([]song.Song, 0, len(m.Songs))
	for _, e := range m.Songs {
		d, err := time.ParseDuration(e.Duration)
		if err != nil {
			return nil, errors.Wrapf(err, "song %s has invalid duration", e.Path)
		}
		if d <= 0 {
			return nil, errors.Newf("song %s has non-positive duration %s", e.Path, d)
		}

		full := e.Path
		if !filepath.IsAbs(full) {
			full = filepath.Join(root, full)
		}

		id := e.ID
		if id == "" {
			id = "local-" + uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+full)).String()
		}

		s := song.Song{
			ID:        id,
			Title:     e.Title,
			Artist:    e.Artist,
			Album:     e.Album,
			Duration:  d,
			Kind:      song.KindLocal,
			LocalPath: full,
		}
		if s.Title == "" || s.Artist == "" || s.Album == "" {
			fillFromTags(&s)
		}
		songs = append(songs, s)
	}
	return songs, nil
}

// fillFromTags completes missing metadata from the file's tags, falling
// back to the file name for the title.
func fillFromTags(s *song.Song) {
	f, err := os.Open(s.LocalPath)
	if err == nil {
		defer f.Close()
		m, err := tag.ReadFrom(f)
		if err == nil {
			if s.Title == "" {
				s.Title = m.Title()
			}
			if s.Artist == "" {
				s.Artist = m.Artist()
			}
			if s.Album == "" {
				s.Album = m.Album()
			}
		} else {
			zlog.Debug().Msgf("no tags in local file: path=%s err=%v", s.LocalPath, err)
		}
	} else {
		zlog.Warn().Msgf("cannot open local file: path=%s err=%v", s.LocalPath, err)
	}

	if s.Title == "" {
		base := filepath.Base(s.LocalPath)
		s.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if s.Artist == "" {
		s.Artist = "Unknown Artist"
	}
}
