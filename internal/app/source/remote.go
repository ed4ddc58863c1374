package source

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/domain/catalog"
	"github.com/osa030/19player/internal/domain/song"
	catalogclient "github.com/osa030/19player/internal/infra/catalog"
)

func init() {
	for _, kind := range []song.Kind{song.KindSpotify, song.KindAppleMusic, song.KindYouTubeMusic} {
		kind := kind
		Register(kind, func(settings map[string]any) (Source, error) {
			return NewRemoteSource(kind, settings, nil)
		})
	}
}

// CatalogFetcher retrieves a catalog from an HTTP endpoint.
type CatalogFetcher interface {
	Fetch(ctx context.Context, url string) (catalog.Catalog, error)
}

var defaultFetcher CatalogFetcher = catalogclient.New(catalogclient.Config{Timeout: 10 * time.Second})

// RemoteConfig holds settings for the streaming service sources.
type RemoteConfig struct {
	TransportConfig `mapstructure:",squash"`
	Name            string `yaml:"name" mapstructure:"name"`
	CatalogURL      string `yaml:"catalog_url" mapstructure:"catalog_url" validate:"omitempty,url"`
}

// RemoteSource simulates a streaming service backend.
type RemoteSource struct {
	*base
	config  *RemoteConfig
	fetcher CatalogFetcher
}

// NewRemoteSource creates a new RemoteSource of the given kind.
// A nil fetcher uses the shared HTTP catalog client.
func NewRemoteSource(kind song.Kind, settings map[string]any, fetcher CatalogFetcher) (*RemoteSource, error) {
	if kind == song.KindLocal || !kind.Valid() {
		return nil, errors.Newf("not a remote kind: %s", kind)
	}

	var config RemoteConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	if config.Name == "" {
		config.Name = DisplayName(kind)
	}
	zlog.Debug().Msgf("remote source config: kind=%s config=%+v", kind, config)

	b, err := newBase(kind, config.Name, config.TransportConfig)
	if err != nil {
		return nil, err
	}
	if fetcher == nil {
		fetcher = defaultFetcher
	}
	return &RemoteSource{base: b, config: &config, fetcher: fetcher}, nil
}

// LoadSongs returns the catalog from catalog_url, or the demo catalog of
// the source kind.
func (s *RemoteSource) LoadSongs(ctx context.Context) ([]song.Song, error) {
	if err := s.roundTrip(ctx, OpLoad); err != nil {
		return nil, err
	}

	songs := DemoCatalog(s.kind).Songs
	if s.config.CatalogURL != "" {
		cat, err := s.fetcher.Fetch(ctx, s.config.CatalogURL)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "%s: failed to fetch catalog", s.Name()), ErrNetwork)
		}
		if cat.Kind != s.kind {
			return nil, errors.Newf("%s: catalog kind %s does not match source kind", s.Name(), cat.Kind)
		}
		songs = cat.Songs
	}

	s.setCatalog(songs)
	zlog.Info().Msgf("remote source loaded: kind=%s name=%s songs=%d", s.kind, s.Name(), len(songs))
	return songs, nil
}
