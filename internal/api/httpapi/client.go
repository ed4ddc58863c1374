package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/19player/internal/app/source"
)

// Client is a client for the player API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// APIError is an error response returned by the server.
type APIError struct {
	Status   int
	Response ErrorResponse
}

func (e *APIError) Error() string {
	if e.Response.Message != "" {
		return e.Response.Error + ": " + e.Response.Message
	}
	return e.Response.Error + " (status " + strconv.Itoa(e.Status) + ")"
}

// NewClient creates a new client for the server at baseURL.
func NewClient(httpClient *http.Client, baseURL, token string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		token:      token,
	}
}

// State returns the current session state.
func (c *Client) State(ctx context.Context) (*StateResponse, error) {
	var state StateResponse
	if err := c.do(ctx, http.MethodGet, "/state", nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Sources lists the known sources.
func (c *Client) Sources(ctx context.Context) ([]source.Info, error) {
	var infos []source.Info
	if err := c.do(ctx, http.MethodGet, "/sources", nil, &infos); err != nil {
		return nil, err
	}
	return infos, nil
}

// Position returns the position reported by the source.
func (c *Client) Position(ctx context.Context) (*ProgressResponse, error) {
	var p ProgressResponse
	if err := c.do(ctx, http.MethodGet, "/position", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetSource switches the source.
func (c *Client) SetSource(ctx context.Context, kind string) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/source", SetSourceRequest{Kind: kind})
}

// Play starts playback.
func (c *Client) Play(ctx context.Context) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/play", nil)
}

// Pause pauses playback.
func (c *Client) Pause(ctx context.Context) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/pause", nil)
}

// Stop stops playback.
func (c *Client) Stop(ctx context.Context) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/stop", nil)
}

// Skip plays the next song.
func (c *Client) Skip(ctx context.Context) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/skip", nil)
}

// Previous plays the previous song.
func (c *Client) Previous(ctx context.Context) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/previous", nil)
}

// ClearError clears the error message.
func (c *Client) ClearError(ctx context.Context) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/clear-error", nil)
}

// Seek moves to positionMS within the current song.
func (c *Client) Seek(ctx context.Context, positionMS int64) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/seek", SeekRequest{PositionMS: &positionMS})
}

// AddToQueue queues a song of the current catalog.
func (c *Client) AddToQueue(ctx context.Context, songID string) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/queue", AddToQueueRequest{SongID: songID})
}

// RemoveFromQueue removes the queue item at index.
func (c *Client) RemoveFromQueue(ctx context.Context, index int) (*StateResponse, error) {
	return c.command(ctx, http.MethodDelete, "/queue/"+strconv.Itoa(index), nil)
}

// ReorderQueue moves the queue item at from to to.
func (c *Client) ReorderQueue(ctx context.Context, from, to int) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/queue/reorder", ReorderQueueRequest{From: &from, To: &to})
}

// ClearQueue empties the queue.
func (c *Client) ClearQueue(ctx context.Context) (*StateResponse, error) {
	return c.command(ctx, http.MethodDelete, "/queue", nil)
}

// PlaySong plays the queue item at index.
func (c *Client) PlaySong(ctx context.Context, index int) (*StateResponse, error) {
	return c.command(ctx, http.MethodPost, "/queue/"+strconv.Itoa(index)+"/play", nil)
}

// Watch reads the event stream and calls fn for each event until ctx is
// done, the stream ends, or fn returns an error.
func (c *Client) Watch(ctx context.Context, fn func(name string, data json.RawMessage) error) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/events", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to open event stream")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	var name, data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data += strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			if name != "" {
				if err := fn(name, json.RawMessage(data)); err != nil {
					return err
				}
			}
			name, data = "", ""
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Wrap(scanner.Err(), "event stream ended")
}

func (c *Client) command(ctx context.Context, method, path string, body any) (*StateResponse, error) {
	var state StateResponse
	if err := c.do(ctx, method, path, body, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to send request: %s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return readAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "failed to parse response")
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request")
		}
		r = bytes.NewReader(data)
	}

	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, errors.Wrap(err, "invalid server url")
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}
	return req, nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(data, &apiErr.Response); err != nil || apiErr.Response.Error == "" {
		apiErr.Response.Error = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
