package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/osa030/19player/internal/domain/catalog"
	"github.com/osa030/19player/internal/domain/song"
)

func TestFetch(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "19player-test", r.Header.Get("User-Agent"))

		response := `{
			"kind": "spotify",
			"name": "Top Hits",
			"songs": [
				{"id": "sp-1", "title": "Song 1", "artist": "Artist 1", "duration_ms": 180000, "stream_url": "spotify:track:1"},
				{"id": "sp-2", "title": "Song 2", "artist": "Artist 2", "album": "Album", "duration_ms": 200000}
			]
		}`
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, response)
	}))
	defer server.Close()

	client := New(Config{UserAgent: "19player-test"})

	ctx := context.Background()
	cat, err := client.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.Equal(t, song.KindSpotify, cat.Kind)
	assert.Equal(t, "Top Hits", cat.Name)
	require.Len(t, cat.Songs, 2)
	assert.Equal(t, 180*time.Second, cat.Songs[0].Duration)
	assert.Equal(t, "spotify:track:1", cat.Songs[0].StreamURL)
	assert.Equal(t, song.KindSpotify, cat.Songs[1].Kind)
	assert.Equal(t, "Album", cat.Songs[1].Album)

	// Second fetch is served from cache
	cached, err := client.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.Equal(t, cat, cached)
	assert.Equal(t, int32(1), calls.Load())

	client.Invalidate(server.URL)
	_, err = client.Fetch(ctx, server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		errMsg string
	}{
		{
			name:   "api error envelope",
			status: http.StatusOK,
			body:   `{"error": 6, "message": "catalog not found"}`,
			errMsg: "catalog API error 6: catalog not found",
		},
		{
			name:   "non-200 status",
			status: http.StatusBadGateway,
			body:   `upstream down`,
			errMsg: "status 502",
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `{"kind":`,
			errMsg: "failed to parse response",
		},
		{
			name:   "unknown kind",
			status: http.StatusOK,
			body:   `{"kind": "tidal", "songs": []}`,
			errMsg: "unknown catalog kind",
		},
		{
			name:   "zero duration",
			status: http.StatusOK,
			body:   `{"kind": "local", "songs": [{"id": "x", "duration_ms": 0}]}`,
			errMsg: "invalid duration",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := New(Config{})
			_, err := client.Fetch(context.Background(), server.URL)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestFetch_EmptyURL(t *testing.T) {
	client := New(Config{})
	_, err := client.Fetch(context.Background(), "")
	assert.Error(t, err)
}

func TestDocumentRoundTrip(t *testing.T) {
	cat := domain.Catalog{
		Kind: song.KindAppleMusic,
		Name: "Chill",
		Songs: []song.Song{
			{ID: "am-1", Title: "T", Artist: "A", Duration: 90 * time.Second, Kind: song.KindAppleMusic, ArtworkURL: "https://img/1"},
		},
	}

	doc := FromCatalog(cat)
	assert.Equal(t, "apple_music", doc.Kind)
	assert.Equal(t, int64(90000), doc.Songs[0].DurationMS)

	back, err := doc.ToCatalog()
	require.NoError(t, err)
	assert.Equal(t, cat, back)
}
