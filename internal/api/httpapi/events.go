package httpapi

import (
	"encoding/json"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/app/player"
	"github.com/osa030/19player/internal/app/source"
)

const (
	// snapshotEvent is sent once when a stream opens.
	snapshotEvent = "snapshot"
	pingEvent     = "ping"
)

// KeepAliveInterval is the interval between ping events on idle streams.
var KeepAliveInterval = 15 * time.Second

// StateEvent is the payload of "state" events.
type StateEvent struct {
	State string `json:"state"`
}

// Events handles GET /events
// It streams a snapshot followed by one named event per field change.
func (h *Handler) Events(c *gin.Context) {
	p := h.manager.Player()
	sub := p.Subscribe()
	defer p.Unsubscribe(sub)

	zlog.Info().Msgf("event stream opened: subscription_id=%s client_ip=%s", sub.ID, c.ClientIP())
	defer zlog.Info().Msgf("event stream closed: subscription_id=%s", sub.ID)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	sendEvent(c, snapshotEvent, h.state())
	c.Writer.Flush()

	keepAlive := time.NewTicker(KeepAliveInterval)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-sub.Done:
			return false
		case <-h.manager.Done():
			return false
		case st, ok := <-sub.StateChanged:
			if !ok {
				return false
			}
			sendEvent(c, player.EventState.String(), StateEvent{State: st.String()})
		case sg, ok := <-sub.SongChanged:
			if !ok {
				return false
			}
			sendEvent(c, player.EventSong.String(), toSongPtrResponse(sg))
		case pr, ok := <-sub.ProgressChanged:
			if !ok {
				return false
			}
			sendEvent(c, player.EventProgress.String(), toProgressResponse(pr))
		case q, ok := <-sub.QueueChanged:
			if !ok {
				return false
			}
			sendEvent(c, player.EventQueue.String(), toQueueResponse(q))
		case src, ok := <-sub.SourceChanged:
			if !ok {
				return false
			}
			sendEvent(c, player.EventSource.String(), toSourceResponse(src))
		case songs, ok := <-sub.SongsChanged:
			if !ok {
				return false
			}
			sendEvent(c, player.EventSongs.String(), toSongsResponse(songs))
		case info, ok := <-sub.ErrorChanged:
			if !ok {
				return false
			}
			sendEvent(c, player.EventError.String(), toErrorResponse(info))
		case t := <-keepAlive.C:
			sendEvent(c, pingEvent, t.UTC().Format(time.RFC3339))
		}
		return true
	})
}

// sendEvent writes v to the stream as a JSON data line.
func sendEvent(c *gin.Context, name string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		zlog.Error().Err(err).Msgf("failed to encode event: name=%s", name)
		return
	}
	c.SSEvent(name, string(data))
}

func toSourceResponse(src source.Source) *SourceResponse {
	if src == nil {
		return nil
	}
	return &SourceResponse{Kind: src.Kind().String(), Name: src.Name()}
}
