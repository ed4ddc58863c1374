package player

import (
	"slices"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/19player/internal/domain/song"
)

// AddToQueue appends s to the queue. Appending to an empty queue makes s
// the current song. It is a no-op on a closed session.
func (s *Session) AddToQueue(sg song.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	wasEmpty := len(s.queue) == 0
	s.queue = append(s.queue, song.NewQueueItem(sg))
	if wasEmpty {
		s.selectLocked(0)
	}
	s.publishQueueLocked()
	zlog.Debug().Msgf("queued song: id=%s title=%s size=%d", sg.ID, sg.Title, len(s.queue))
}

// RemoveFromQueue removes the item at index. Out-of-range indexes are
// ignored; removing the current item while playing is rejected.
func (s *Session) RemoveFromQueue(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(s.queue) {
		return nil
	}
	if index == s.currentIndex && s.state == StatePlaying {
		return s.rejectLocked(ErrRemovePlaying)
	}

	s.queue = slices.Delete(s.queue, index, index+1)

	switch {
	case index < s.currentIndex:
		s.currentIndex--
	case index == s.currentIndex:
		if len(s.queue) == 0 {
			s.currentIndex = 0
			s.setCurrentSongLocked(nil)
			s.setProgressLocked(newProgress(0, 0))
		} else {
			s.selectLocked(min(index, len(s.queue)-1))
		}
	}
	s.publishQueueLocked()
	return nil
}

// ReorderQueue moves the item at from to position to. The current item
// keeps being current.
func (s *Session) ReorderQueue(from, to int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	n := len(s.queue)
	if from == to || from < 0 || from >= n || to < 0 || to >= n {
		return
	}

	item := s.queue[from]
	s.queue = slices.Insert(slices.Delete(s.queue, from, from+1), to, item)

	switch {
	case from == s.currentIndex:
		s.currentIndex = to
	case from < s.currentIndex && to >= s.currentIndex:
		s.currentIndex--
	case from > s.currentIndex && to <= s.currentIndex:
		s.currentIndex++
	}
	s.publishQueueLocked()
}

// ClearQueue stops playback and empties the queue.
func (s *Session) ClearQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if s.source != nil {
		_ = s.stopLocked()
	} else {
		s.setStateLocked(StateStopped)
	}

	s.queue = make([]song.QueueItem, 0)
	s.currentIndex = 0
	s.setCurrentSongLocked(nil)
	s.setProgressLocked(newProgress(0, 0))
	s.publishQueueLocked()
}

// PlaySong makes the item at index current and plays it.
// Out-of-range indexes are ignored.
func (s *Session) PlaySong(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if index < 0 || index >= len(s.queue) {
		return nil
	}
	s.selectLocked(index)
	return s.playLocked()
}

// Skip advances to the next item, wrapping to the start, and plays it.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipLocked()
}

func (s *Session) skipLocked() error {
	if s.closed {
		return ErrClosed
	}
	if len(s.queue) > 0 {
		next := s.currentIndex + 1
		if next >= len(s.queue) {
			next = 0
		}
		s.selectLocked(next)
	}
	return s.playLocked()
}

// Previous moves to the previous item, wrapping to the end, and plays it.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if len(s.queue) > 0 {
		prev := s.currentIndex - 1
		if prev < 0 {
			prev = len(s.queue) - 1
		}
		s.selectLocked(prev)
	}
	return s.playLocked()
}

// selectLocked makes queue[index] current and rewinds the progress.
func (s *Session) selectLocked(index int) {
	s.currentIndex = index
	sg := s.queue[index].Song
	s.setCurrentSongLocked(&sg)
	s.setProgressLocked(newProgress(0, sg.Duration))
}
