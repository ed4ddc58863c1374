package player

import "time"

// Progress is the playback position within the current song.
type Progress struct {
	CurrentTime time.Duration
	Duration    time.Duration
}

// newProgress builds a Progress with 0 <= current <= duration.
func newProgress(current, duration time.Duration) Progress {
	duration = max(duration, 0)
	return Progress{
		CurrentTime: min(max(current, 0), duration),
		Duration:    duration,
	}
}

// Fraction returns the played fraction in [0, 1].
func (p Progress) Fraction() float64 {
	if p.Duration <= 0 {
		return 0
	}
	return float64(p.CurrentTime) / float64(p.Duration)
}
