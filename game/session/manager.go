package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/icebound/game/engine"
	"github.com/wricardo/icebound/game/service"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// idAttempts bounds the retries when a generated ID collides
const idAttempts = 16

// Manager handles game session lifecycle
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	log         logrus.FieldLogger
	mu          sync.RWMutex
}

// NewManager creates a new in-memory session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		log:      logrus.StandardLogger(),
	}
}

// NewManagerWithPersistence creates a new session manager with persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	m := NewManager()
	m.persistence = persistence
	return m
}

// SetLogger replaces the logger used for persistence warnings
func (m *Manager) SetLogger(l logrus.FieldLogger) {
	if l != nil {
		m.log = l
	}
}

// Create creates a new session for a level. An empty id is replaced by a
// generated 4-character one.
func (m *Manager) Create(id, levelID string, level *engine.LevelConfig, opts service.SessionOptions) (*service.Session, error) {
	if level == nil {
		return nil, fmt.Errorf("level cannot be nil")
	}
	if strings.ContainsAny(id, `/\. `) {
		return nil, ErrInvalidSessionID
	}

	eng, err := service.NewSessionEngine(level, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id, err = m.generateSessionID()
		if err != nil {
			return nil, err
		}
	} else if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session := &service.Session{
		ID:             strings.ToLower(id),
		LevelID:        levelID,
		Engine:         eng,
		Level:          level,
		Options:        opts,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[session.ID] = session

	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			// Creation still succeeds; the next save retries
			m.log.WithError(err).WithField("session", session.ID).Warn("failed to persist new session")
		}
	}

	return session, nil
}

// Get retrieves a session by ID (case-insensitive), loading it from
// persistence when it is not in memory
func (m *Manager) Get(id string) (*service.Session, error) {
	key := strings.ToLower(id)

	m.mu.RLock()
	session, exists := m.sessions[key]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence == nil || !m.persistence.Exists(key) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Another caller may have loaded it meanwhile
	if session, exists := m.sessions[key]; exists {
		return session, nil
	}
	m.sessions[key] = loaded
	return loaded, nil
}

// List returns all sessions in memory
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session from memory and storage
func (m *Manager) Delete(id string) error {
	key := strings.ToLower(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key]
	delete(m.sessions, key)

	if m.persistence != nil && m.persistence.Exists(key) {
		if err := m.persistence.Delete(key); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory removes a session from memory only
func (m *Manager) DeleteFromMemory(id string) error {
	key := strings.ToLower(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session. The
// caller must not hold the session lock.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	session.Touch()
	return nil
}

// Save saves a specific session to persistence. The caller must not hold
// the session lock.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return ErrSessionNotFound
	}

	session.Lock()
	defer session.Unlock()
	return m.persistence.Save(session)
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration from memory and storage
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	var expired []string
	for _, session := range m.List() {
		session.Lock()
		stale := session.LastAccessedAt.Before(cutoff)
		session.Unlock()
		if stale {
			expired = append(expired, session.ID)
		}
	}

	removed := 0
	for _, id := range expired {
		if err := m.Delete(id); err != nil {
			m.log.WithError(err).WithField("session", id).Warn("failed to remove expired session")
			continue
		}
		removed++
	}
	return removed
}

// PruneMissing drops in-memory sessions whose stored copy has been removed
// behind the manager's back
func (m *Manager) PruneMissing() int {
	if m.persistence == nil {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id := range m.sessions {
		if !m.persistence.Exists(id) {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned
}

// Count returns the number of sessions in memory
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Exists reports whether a session is in memory or storage
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	exists := m.sessionExists(id)
	m.mu.RUnlock()
	if exists {
		return true
	}
	return m.persistence != nil && m.persistence.Exists(strings.ToLower(id))
}

// generateSessionID returns an unused 4-character hex ID. Callers hold the
// write lock.
func (m *Manager) generateSessionID() (string, error) {
	bytes := make([]byte, 2)
	for i := 0; i < idAttempts; i++ {
		if _, err := rand.Read(bytes); err != nil {
			return "", fmt.Errorf("failed to generate session ID: %w", err)
		}
		id := hex.EncodeToString(bytes)
		if !m.sessionExists(id) && (m.persistence == nil || !m.persistence.Exists(id)) {
			return id, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique session ID after %d attempts", idAttempts)
}

// sessionExists checks if a session is in memory (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range sessionIDs {
		key := strings.ToLower(id)
		if _, exists := m.sessions[key]; exists {
			continue
		}

		session, err := m.persistence.Load(key)
		if err != nil {
			m.log.WithError(err).WithField("session", id).Warn("failed to load persisted session")
			continue
		}

		m.sessions[key] = session
		loadedCount++
	}

	if loadedCount > 0 {
		m.log.WithField("count", loadedCount).Info("loaded persisted sessions")
	}
	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	errorCount := 0
	for _, session := range m.List() {
		session.Lock()
		err := m.persistence.Save(session)
		session.Unlock()
		if err != nil {
			m.log.WithError(err).WithField("session", session.ID).Warn("failed to save session")
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}
	return nil
}
