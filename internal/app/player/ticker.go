package player

import (
	"time"

	zlog "github.com/rs/zerolog/log"
)

// runTicker drives the simulated progress until the session is closed.
func (s *Session) runTicker() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick advances the progress by one step while playing and moves to the
// next song once the current one has finished.
func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StatePlaying || s.currentSong == nil {
		return
	}

	duration := s.currentSong.Duration
	s.setProgressLocked(newProgress(s.progress.CurrentTime+progressStep, duration))
	if s.progress.CurrentTime >= duration {
		zlog.Info().Msgf("song finished: id=%s title=%s", s.currentSong.ID, s.currentSong.Title)
		_ = s.skipLocked()
	}
}
