// Package session provides the session manager.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/osa030/19player/internal/app/player"
	"github.com/osa030/19player/internal/app/source"
	"github.com/osa030/19player/internal/domain/song"
	"github.com/osa030/19player/internal/infra/config"
)

var (
	ErrSessionNotRunning = errors.New("session is not running")
)

// Manager owns the player session and wires configured sources into it.
type Manager struct {
	mu sync.RWMutex

	// Configuration
	config *config.Config

	// Components
	player *player.Session
	sub    *player.Subscription

	// Session info
	id         string
	startedAt  time.Time
	activeKind song.Kind
	running    bool

	// Autoplay after the initial catalog load
	autoplayPending bool

	// Channels
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Status represents the session status.
type Status struct {
	SessionID  string
	StartedAt  time.Time
	Running    bool
	ActiveKind song.Kind
	Player     player.Snapshot
}

// NewManager creates a new session manager.
func NewManager(cfg *config.Config, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	pcfg := player.Config{
		TickInterval:     cfg.TickInterval(),
		OperationTimeout: cfg.OperationTimeout(),
		EventBuffer:      cfg.Player.EventBuffer,
	}
	for _, opt := range opts {
		opt(&pcfg)
	}

	return &Manager{
		config: cfg,
		player: player.New(pcfg),
		id:     uuid.New().String(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Option customizes the player session created by NewManager.
type Option func(*player.Config)

// WithAudioSession sets the audio session activated by the player.
func WithAudioSession(as player.AudioSession) Option {
	return func(c *player.Config) {
		c.AudioSession = as
	}
}

// Start loads the initial source and starts the event loop.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return nil
	}
	select {
	case <-m.ctx.Done():
		m.mu.Unlock()
		return ErrSessionNotRunning
	default:
	}
	m.running = true
	m.startedAt = time.Now()
	m.autoplayPending = m.config.Session.Autoplay
	m.sub = m.player.Subscribe()
	m.mu.Unlock()

	go m.eventLoop(m.sub)

	initial := song.Kind(m.config.Session.InitialSource)
	zlog.Info().Msgf("session started: session_id=%s initial_source=%s autoplay=%v", m.id, initial, m.config.Session.Autoplay)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.SwitchSource(initial); err != nil {
		return errors.Wrap(err, "failed to load initial source")
	}
	return nil
}

// SwitchSource builds a fresh source of kind from the configured settings
// and hands it to the player.
func (m *Manager) SwitchSource(kind song.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return ErrSessionNotRunning
	}

	src, err := source.New(kind, m.settingsFor(kind))
	if err != nil {
		return err
	}
	if err := m.player.SetSource(src); err != nil {
		return err
	}
	m.activeKind = kind
	zlog.Info().Msgf("source switched: session_id=%s kind=%s name=%s", m.id, kind, src.Name())
	return nil
}

// settingsFor returns a copy of the configured settings of kind, with the
// configured display name applied.
func (m *Manager) settingsFor(kind song.Kind) map[string]any {
	settings := map[string]any{}
	sc, ok := m.config.SourceSettings(kind)
	if !ok {
		return settings
	}
	settings = lo.Assign(settings, sc.Settings)
	if _, has := settings["name"]; !has && sc.DisplayName != "" {
		settings["name"] = sc.DisplayName
	}
	return settings
}

// Sources describes every known source kind.
func (m *Manager) Sources() []source.Info {
	registered := source.Registered()
	return lo.Map(song.Kinds(), func(kind song.Kind, _ int) source.Info {
		info := source.Info{
			Kind:        kind,
			DisplayName: source.DisplayName(kind),
			Registered:  lo.Contains(registered, kind),
		}
		if sc, ok := m.config.SourceSettings(kind); ok {
			info.Configured = true
			if sc.DisplayName != "" {
				info.DisplayName = sc.DisplayName
			}
		}
		return info
	})
}

// Player returns the player session.
func (m *Manager) Player() *player.Session {
	return m.player
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() *Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &Status{
		SessionID:  m.id,
		StartedAt:  m.startedAt,
		Running:    m.running,
		ActiveKind: m.activeKind,
		Player:     m.player.Snapshot(),
	}
}

// SessionID returns the session ID.
func (m *Manager) SessionID() string {
	return m.id
}

// Done returns a channel that is closed when the session is closed.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Close closes the session manager.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		m.running = false
		sub := m.sub
		m.mu.Unlock()

		m.cancel()
		m.player.Unsubscribe(sub)
		m.player.Close()
		zlog.Info().Msgf("session closed: session_id=%s", m.id)
		close(m.done)
	})
}

// eventLoop logs session changes and performs autoplay.
func (m *Manager) eventLoop(sub *player.Subscription) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("event loop panicked: %v", r)
			// Restart loop to keep observing the session
			zlog.Info().Msg("restarting event loop")
			go m.eventLoop(sub)
		}
	}()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-sub.Done:
			return
		case st, ok := <-sub.StateChanged:
			if !ok {
				return
			}
			m.onStateChanged(st)
		case sg, ok := <-sub.SongChanged:
			if !ok {
				return
			}
			if sg != nil {
				zlog.Info().Msgf("player event: type=%s id=%s title=%s artist=%s", player.EventSong, sg.ID, sg.Title, sg.Artist)
			} else {
				zlog.Info().Msgf("player event: type=%s cleared", player.EventSong)
			}
		case q, ok := <-sub.QueueChanged:
			if !ok {
				return
			}
			zlog.Debug().Msgf("player event: type=%s size=%d", player.EventQueue, len(q))
		case src, ok := <-sub.SourceChanged:
			if !ok {
				return
			}
			zlog.Debug().Msgf("player event: type=%s kind=%s", player.EventSource, src.Kind())
		case songs, ok := <-sub.SongsChanged:
			if !ok {
				return
			}
			zlog.Debug().Msgf("player event: type=%s count=%d", player.EventSongs, len(songs))
		case info, ok := <-sub.ErrorChanged:
			if !ok {
				return
			}
			if info.Message != "" {
				zlog.Warn().Msgf("player event: type=%s kind=%s message=%s", player.EventError, info.Kind, info.Message)
			}
		case _, ok := <-sub.ProgressChanged:
			if !ok {
				return
			}
			// Too frequent to log
		}
	}
}

func (m *Manager) onStateChanged(st player.PlaybackState) {
	zlog.Info().Msgf("player event: type=%s state=%s session_id=%s", player.EventState, st, m.id)

	m.mu.Lock()
	pending := m.autoplayPending
	switch st {
	case player.StateStopped, player.StateError:
		m.autoplayPending = false
	}
	m.mu.Unlock()

	if pending && st == player.StateStopped {
		if err := m.player.Play(); err != nil {
			zlog.Debug().Msgf("autoplay: %v", err)
		}
	}
}
