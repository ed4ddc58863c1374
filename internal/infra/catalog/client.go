// Package catalog provides a client for JSON song catalog endpoints.
package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	domain "github.com/osa030/19player/internal/domain/catalog"
	"github.com/osa030/19player/internal/domain/song"
)

// catalogCacheEntry represents a cached catalog fetch.
type catalogCacheEntry struct {
	catalog domain.Catalog
}

// Client fetches song catalogs over HTTP.
type Client struct {
	httpClient *http.Client
	userAgent  string

	// Cache keyed by request URL
	cache   map[string]*catalogCacheEntry
	cacheMu sync.RWMutex
}

// Config represents catalog client configuration.
type Config struct {
	Timeout   time.Duration
	UserAgent string
}

// SongEntry is the wire representation of a song.
type SongEntry struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	ArtworkURL string `json:"artwork_url,omitempty"`
	StreamURL  string `json:"stream_url,omitempty"`
}

// Document is the wire representation of a catalog.
type Document struct {
	Kind  string      `json:"kind"`
	Name  string      `json:"name"`
	Songs []SongEntry `json:"songs"`
}

// APIError represents an error response from a catalog endpoint.
type APIError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// New creates a new catalog client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "19player"
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		cache:      make(map[string]*catalogCacheEntry),
	}
}

// Fetch retrieves the catalog served at url. Results are cached per URL.
func (c *Client) Fetch(ctx context.Context, url string) (domain.Catalog, error) {
	if url == "" {
		return domain.Catalog{}, errors.New("catalog url is required")
	}

	c.cacheMu.RLock()
	if entry, ok := c.cache[url]; ok {
		c.cacheMu.RUnlock()
		zlog.Debug().Msgf("using cached catalog: url=%s songs=%d", url, entry.catalog.Len())
		return entry.catalog, nil
	}
	c.cacheMu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Catalog{}, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Catalog{}, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Catalog{}, errors.Wrap(err, "failed to read response body")
	}

	// Check for API errors
	var apiError APIError
	if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error != 0 {
		return domain.Catalog{}, errors.Errorf("catalog API error %d: %s", apiError.Error, apiError.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Catalog{}, errors.Errorf("catalog endpoint returned status %d", resp.StatusCode)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.Catalog{}, errors.Wrap(err, "failed to parse response")
	}

	cat, err := doc.ToCatalog()
	if err != nil {
		return domain.Catalog{}, err
	}

	c.cacheMu.Lock()
	c.cache[url] = &catalogCacheEntry{catalog: cat}
	c.cacheMu.Unlock()

	zlog.Debug().Msgf("fetched catalog: url=%s kind=%s songs=%d", url, cat.Kind, cat.Len())
	return cat, nil
}

// Invalidate drops the cached catalog for url.
func (c *Client) Invalidate(url string) {
	c.cacheMu.Lock()
	delete(c.cache, url)
	c.cacheMu.Unlock()
}

// ToCatalog converts the wire document into a domain catalog.
func (d Document) ToCatalog() (domain.Catalog, error) {
	kind := song.Kind(d.Kind)
	if !kind.Valid() {
		return domain.Catalog{}, errors.Newf("unknown catalog kind: %q", d.Kind)
	}

	songs := make([]song.Song, 0, len(d.Songs))
	for i, e := range d.Songs {
		if e.ID == "" {
			return domain.Catalog{}, errors.Newf("song at index %d has no id", i)
		}
		if e.DurationMS <= 0 {
			return domain.Catalog{}, errors.Newf("song %s has invalid duration %d", e.ID, e.DurationMS)
		}
		songs = append(songs, song.Song{
			ID:         e.ID,
			Title:      e.Title,
			Artist:     e.Artist,
			Album:      e.Album,
			Duration:   time.Duration(e.DurationMS) * time.Millisecond,
			Kind:       kind,
			ArtworkURL: e.ArtworkURL,
			StreamURL:  e.StreamURL,
		})
	}

	return domain.Catalog{Kind: kind, Name: d.Name, Songs: songs}, nil
}

// FromCatalog converts a domain catalog into its wire document.
func FromCatalog(c domain.Catalog) Document {
	entries := make([]SongEntry, 0, len(c.Songs))
	for _, s := range c.Songs {
		entries = append(entries, SongEntry{
			ID:         s.ID,
			Title:      s.Title,
			Artist:     s.Artist,
			Album:      s.Album,
			DurationMS: s.Duration.Milliseconds(),
			ArtworkURL: s.ArtworkURL,
			StreamURL:  s.StreamURL,
		})
	}
	return Document{Kind: c.Kind.String(), Name: c.Name, Songs: entries}
}
