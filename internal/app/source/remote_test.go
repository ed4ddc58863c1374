package source

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/19player/internal/domain/catalog"
	"github.com/osa030/19player/internal/domain/song"
)

type stubFetcher struct {
	catalog catalog.Catalog
	err     error
	urls    []string
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (catalog.Catalog, error) {
	f.urls = append(f.urls, url)
	return f.catalog, f.err
}

func TestRemoteSource_DemoCatalogs(t *testing.T) {
	for _, kind := range []song.Kind{song.KindSpotify, song.KindAppleMusic, song.KindYouTubeMusic} {
		kind := kind
		t.Run(kind.String(), func(t *testing.T) {
			src, err := NewRemoteSource(kind, map[string]any{"latency": "0s"}, nil)
			require.NoError(t, err)
			assert.Equal(t, DisplayName(kind), src.Name())

			songs, err := src.LoadSongs(context.Background())
			require.NoError(t, err)
			require.NotEmpty(t, songs)
			for _, s := range songs {
				assert.Equal(t, kind, s.Kind)
				assert.NotEmpty(t, s.StreamURL)
				assert.NotEmpty(t, s.ArtworkURL)
			}
		})
	}
}

func TestRemoteSource_RejectsLocalKind(t *testing.T) {
	_, err := NewRemoteSource(song.KindLocal, nil, nil)
	assert.Error(t, err)
}

func TestRemoteSource_CatalogURL(t *testing.T) {
	fetcher := &stubFetcher{catalog: catalog.Catalog{
		Kind: song.KindSpotify,
		Songs: []song.Song{
			{ID: "x1", Title: "Remote", Duration: time.Minute, Kind: song.KindSpotify},
		},
	}}
	src, err := NewRemoteSource(song.KindSpotify, map[string]any{
		"latency":     "0s",
		"catalog_url": "http://localhost:8080/mock/catalog/spotify",
	}, fetcher)
	require.NoError(t, err)

	songs, err := src.LoadSongs(context.Background())
	require.NoError(t, err)
	require.Len(t, songs, 1)
	assert.Equal(t, "x1", songs[0].ID)
	assert.Equal(t, []string{"http://localhost:8080/mock/catalog/spotify"}, fetcher.urls)

	assert.NoError(t, src.Play(context.Background(), songs[0]))
}

func TestRemoteSource_CatalogErrors(t *testing.T) {
	settings := map[string]any{"latency": "0s", "catalog_url": "http://example.com/catalog"}

	t.Run("fetch failure is a network error", func(t *testing.T) {
		src, err := NewRemoteSource(song.KindAppleMusic, settings, &stubFetcher{err: errors.New("boom")})
		require.NoError(t, err)
		_, err = src.LoadSongs(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNetwork))
	})

	t.Run("kind mismatch", func(t *testing.T) {
		src, err := NewRemoteSource(song.KindAppleMusic, settings, &stubFetcher{catalog: catalog.Catalog{Kind: song.KindSpotify}})
		require.NoError(t, err)
		_, err = src.LoadSongs(context.Background())
		assert.Error(t, err)
	})
}

func TestRemoteSource_PlayFailure(t *testing.T) {
	ctx := context.Background()
	src, err := NewRemoteSource(song.KindYouTubeMusic, map[string]any{
		"latency":         "0s",
		"fail_operations": []any{"play"},
	}, nil)
	require.NoError(t, err)

	songs, err := src.LoadSongs(ctx)
	require.NoError(t, err)

	err = src.Play(ctx, songs[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNetwork))

	// Pause is unaffected
	assert.NoError(t, src.Pause(ctx))
}
