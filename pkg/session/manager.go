package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/yumyai/snpview/pkg/model"
	"github.com/yumyai/snpview/pkg/render"
)

// Config carries the collaborators shared by every session. The
// validator and pipeline are read-only; each session still gets its
// own state, file set and event queue.
type Config struct {
	Validator  *model.Validator
	Pipeline   render.Pipeline
	Downloader Downloader
}

// Manager stores live sessions indexed by session ID.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		cfg:      cfg,
	}
}

// Create starts a new session with a fresh state and worker.
func (m *Manager) Create() *Session {

	s := newSession(uuid.New().String(), m.cfg.Validator, m.cfg.Pipeline, m.cfg.Downloader)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get fetches a session by ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close stops a session's worker and drops it from the registry.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
