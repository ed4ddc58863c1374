package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/osa030/19player/internal/app/player"
	"github.com/osa030/19player/internal/app/session"
	"github.com/osa030/19player/internal/app/source"
	"github.com/osa030/19player/internal/domain/song"
)

// Handler serves the player API.
type Handler struct {
	manager *session.Manager
}

// NewHandler creates a new handler backed by manager.
func NewHandler(manager *session.Manager) *Handler {
	return &Handler{manager: manager}
}

// GetState handles GET /state
func (h *Handler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.state())
}

// GetPosition handles GET /position
// It asks the source directly instead of reporting the simulated progress.
func (h *Handler) GetPosition(c *gin.Context) {
	p, err := h.manager.Player().SourcePosition(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProgressResponse(p))
}

// ListSources handles GET /sources
func (h *Handler) ListSources(c *gin.Context) {
	c.JSON(http.StatusOK, h.manager.Sources())
}

// SetSource handles POST /source
func (h *Handler) SetSource(c *gin.Context) {
	var req SetSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	kind := song.Kind(req.Kind)
	if !kind.Valid() {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "unknown_source",
			Message: "unknown source kind: " + req.Kind,
		})
		return
	}
	h.command(c, func() error { return h.manager.SwitchSource(kind) })
}

// Play handles POST /play
func (h *Handler) Play(c *gin.Context) {
	h.command(c, h.manager.Player().Play)
}

// Pause handles POST /pause
func (h *Handler) Pause(c *gin.Context) {
	h.command(c, h.manager.Player().Pause)
}

// Stop handles POST /stop
func (h *Handler) Stop(c *gin.Context) {
	h.command(c, h.manager.Player().Stop)
}

// Skip handles POST /skip
func (h *Handler) Skip(c *gin.Context) {
	h.command(c, h.manager.Player().Skip)
}

// Previous handles POST /previous
func (h *Handler) Previous(c *gin.Context) {
	h.command(c, h.manager.Player().Previous)
}

// ClearError handles POST /clear-error
func (h *Handler) ClearError(c *gin.Context) {
	h.command(c, func() error {
		h.manager.Player().ClearError()
		return nil
	})
}

// Seek handles POST /seek
func (h *Handler) Seek(c *gin.Context) {
	var req SeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if *req.PositionMS < 0 {
		badRequest(c, "position_ms must not be negative")
		return
	}
	position := time.Duration(*req.PositionMS) * time.Millisecond
	h.command(c, func() error { return h.manager.Player().Seek(position) })
}

// AddToQueue handles POST /queue
// Only songs of the current catalog can be queued.
func (h *Handler) AddToQueue(c *gin.Context) {
	var req AddToQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p := h.manager.Player()
	sg, ok := lo.Find(p.AvailableSongs(), func(s song.Song) bool { return s.ID == req.SongID })
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "song_not_found",
			Message: "song is not in the current catalog: " + req.SongID,
		})
		return
	}
	h.command(c, func() error {
		p.AddToQueue(sg)
		return nil
	})
}

// RemoveFromQueue handles DELETE /queue/:index
func (h *Handler) RemoveFromQueue(c *gin.Context) {
	index, ok := h.queueIndex(c, c.Param("index"))
	if !ok {
		return
	}
	h.command(c, func() error { return h.manager.Player().RemoveFromQueue(index) })
}

// ReorderQueue handles POST /queue/reorder
func (h *Handler) ReorderQueue(c *gin.Context) {
	var req ReorderQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	n := len(h.manager.Player().Queue())
	if !inRange(*req.From, n) || !inRange(*req.To, n) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "index_out_of_range",
			Message: "queue has " + strconv.Itoa(n) + " items",
		})
		return
	}
	from, to := *req.From, *req.To
	h.command(c, func() error {
		h.manager.Player().ReorderQueue(from, to)
		return nil
	})
}

// ClearQueue handles DELETE /queue
func (h *Handler) ClearQueue(c *gin.Context) {
	h.command(c, func() error {
		h.manager.Player().ClearQueue()
		return nil
	})
}

// PlaySong handles POST /queue/:index/play
func (h *Handler) PlaySong(c *gin.Context) {
	index, ok := h.queueIndex(c, c.Param("index"))
	if !ok {
		return
	}
	h.command(c, func() error { return h.manager.Player().PlaySong(index) })
}

// command runs fn and answers with the state observed right after it.
// Source calls complete asynchronously, so the state is usually "loading".
func (h *Handler) command(c *gin.Context, fn func() error) {
	if err := fn(); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, h.state())
}

func (h *Handler) state() StateResponse {
	return toStateResponse(h.manager.GetStatus())
}

func (h *Handler) queueIndex(c *gin.Context, raw string) (int, bool) {
	index, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid queue index: "+raw)
		return 0, false
	}
	n := len(h.manager.Player().Queue())
	if !inRange(index, n) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "index_out_of_range",
			Message: "queue has " + strconv.Itoa(n) + " items",
		})
		return 0, false
	}
	return index, true
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		zlog.Error().Err(err).Msgf("request failed: path=%s", c.Request.URL.Path)
	}
	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}

// statusFor maps an error to an HTTP status and an error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, source.ErrUnknownKind):
		return http.StatusNotFound, "unknown_source"
	case errors.Is(err, session.ErrSessionNotRunning), errors.Is(err, player.ErrClosed):
		return http.StatusServiceUnavailable, "unavailable"
	}
	kind := player.ErrorKind(err)
	if kind == player.KindUnknown {
		return http.StatusInternalServerError, "internal"
	}
	return http.StatusConflict, kind
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: msg})
}

func inRange(i, n int) bool {
	return i >= 0 && i < n
}
