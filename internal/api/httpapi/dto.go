// Package httpapi provides the HTTP/JSON and SSE surface of the player.
package httpapi

import (
	"time"

	"github.com/samber/lo"

	"github.com/osa030/19player/internal/app/player"
	"github.com/osa030/19player/internal/app/session"
	"github.com/osa030/19player/internal/domain/song"
)

// ErrorResponse represents an error in API responses
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SongResponse represents a song in API responses
type SongResponse struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Duration   string `json:"duration"`
	Kind       string `json:"kind"`
	ArtworkURL string `json:"artwork_url,omitempty"`
	StreamURL  string `json:"stream_url,omitempty"`
	LocalPath  string `json:"local_path,omitempty"`
}

// QueueItemResponse represents a queue entry in API responses
type QueueItemResponse struct {
	ID      string       `json:"id"`
	Song    SongResponse `json:"song"`
	AddedAt time.Time    `json:"added_at"`
}

// ProgressResponse represents playback progress in API responses
type ProgressResponse struct {
	CurrentMS  int64   `json:"current_ms"`
	DurationMS int64   `json:"duration_ms"`
	Current    string  `json:"current"`
	Total      string  `json:"total"`
	Fraction   float64 `json:"fraction"`
}

// SourceResponse represents the current source in API responses
type SourceResponse struct {
	Kind string `json:"kind"`
	Name string `json:"name"`
}

// PlayerErrorResponse represents the error field of the session
type PlayerErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// StateResponse represents the full session state
type StateResponse struct {
	SessionID      string               `json:"session_id"`
	State          string               `json:"state"`
	Source         *SourceResponse      `json:"source"`
	CurrentSong    *SongResponse        `json:"current_song"`
	CurrentIndex   int                  `json:"current_index"`
	Progress       ProgressResponse     `json:"progress"`
	Queue          []QueueItemResponse  `json:"queue"`
	AvailableSongs []SongResponse       `json:"available_songs"`
	Error          *PlayerErrorResponse `json:"error"`
}

// SetSourceRequest represents a request to switch the source
type SetSourceRequest struct {
	Kind string `json:"kind" binding:"required"`
}

// SeekRequest represents a request to seek within the current song
type SeekRequest struct {
	PositionMS *int64 `json:"position_ms" binding:"required"`
}

// AddToQueueRequest represents a request to queue a song of the catalog
type AddToQueueRequest struct {
	SongID string `json:"song_id" binding:"required"`
}

// ReorderQueueRequest represents a request to move a queue item
type ReorderQueueRequest struct {
	From *int `json:"from" binding:"required"`
	To   *int `json:"to" binding:"required"`
}

func toSongResponse(s song.Song) SongResponse {
	return SongResponse{
		ID:         s.ID,
		Title:      s.Title,
		Artist:     s.Artist,
		Album:      s.Album,
		DurationMS: s.Duration.Milliseconds(),
		Duration:   player.FormatTime(s.Duration),
		Kind:       s.Kind.String(),
		ArtworkURL: s.ArtworkURL,
		StreamURL:  s.StreamURL,
		LocalPath:  s.LocalPath,
	}
}

func toSongPtrResponse(s *song.Song) *SongResponse {
	if s == nil {
		return nil
	}
	r := toSongResponse(*s)
	return &r
}

func toSongsResponse(songs []song.Song) []SongResponse {
	return lo.Map(songs, func(s song.Song, _ int) SongResponse { return toSongResponse(s) })
}

func toQueueResponse(queue []song.QueueItem) []QueueItemResponse {
	return lo.Map(queue, func(item song.QueueItem, _ int) QueueItemResponse {
		return QueueItemResponse{ID: item.ID, Song: toSongResponse(item.Song), AddedAt: item.AddedAt}
	})
}

func toProgressResponse(p player.Progress) ProgressResponse {
	return ProgressResponse{
		CurrentMS:  p.CurrentTime.Milliseconds(),
		DurationMS: p.Duration.Milliseconds(),
		Current:    player.FormatTime(p.CurrentTime),
		Total:      player.FormatTime(p.Duration),
		Fraction:   p.Fraction(),
	}
}

func toErrorResponse(info player.ErrorInfo) *PlayerErrorResponse {
	if info.Message == "" {
		return nil
	}
	return &PlayerErrorResponse{Kind: info.Kind, Message: info.Message}
}

func toStateResponse(status *session.Status) StateResponse {
	snap := status.Player
	resp := StateResponse{
		SessionID:      status.SessionID,
		State:          snap.State.String(),
		CurrentSong:    toSongPtrResponse(snap.CurrentSong),
		CurrentIndex:   snap.CurrentIndex,
		Progress:       toProgressResponse(snap.Progress),
		Queue:          toQueueResponse(snap.Queue),
		AvailableSongs: toSongsResponse(snap.AvailableSongs),
		Error:          toErrorResponse(snap.Error),
	}
	if snap.HasSource {
		resp.Source = &SourceResponse{Kind: snap.SourceKind.String(), Name: snap.SourceName}
	}
	return resp
}
