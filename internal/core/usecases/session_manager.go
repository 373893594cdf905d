package usecases

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/core/ports"
	"github.com/samirrijal/openroute/internal/pkg/metrics"
)

// SessionManagerConfig configures a SessionManager.
type SessionManagerConfig struct {
	Session     SessionOptions
	NewSurface  func() ports.Surface
	TTL         time.Duration // idle time after which a session is closed
	MaxSessions int           // 0 means unlimited
	Now         func() time.Time
}

// SessionManager owns the open compare sessions of the service.
type SessionManager struct {
	cfg SessionManagerConfig
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*CompareSession
}

// NewSessionManager creates a SessionManager.
func NewSessionManager(cfg SessionManagerConfig) *SessionManager {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cfg.Session.Now = now
	return &SessionManager{
		cfg:      cfg,
		now:      now,
		sessions: make(map[string]*CompareSession),
	}
}

// Create opens a session on a fresh surface.
func (m *SessionManager) Create() (*CompareSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, domain.ErrSessionLimit
	}

	id := uuid.NewString()
	s := NewCompareSession(id, m.cfg.NewSurface(), m.cfg.Session)
	s.Touch(m.now())
	m.sessions[id] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))

	slog.Info("session opened", "session", id)
	return s, nil
}

// Get returns an open session and records activity on it.
func (m *SessionManager) Get(id string) (*CompareSession, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s.Touch(m.now())
	return s, nil
}

// Delete closes and forgets a session.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if !ok {
		return domain.ErrSessionNotFound
	}
	s.Close()
	slog.Info("session closed", "session", id)
	return nil
}

// List returns the open sessions ordered by id.
func (m *SessionManager) List() []*CompareSession {
	m.mu.RLock()
	out := make([]*CompareSession, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b *CompareSession) int {
		return strings.Compare(a.ID(), b.ID())
	})
	return out
}

// Len returns the number of open sessions.
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many
// were closed.
func (m *SessionManager) Sweep() int {
	if m.cfg.TTL <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.cfg.TTL)

	var expired []*CompareSession
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
		metrics.SessionsExpired.Inc()
		slog.Info("session expired", "session", s.ID())
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done.
func (m *SessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// CloseAll closes every session.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*CompareSession)
	metrics.ActiveSessions.Set(0)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
