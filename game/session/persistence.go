package session

import (
	"time"

	"github.com/wricardo/icebound/game/engine"
	"github.com/wricardo/icebound/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage. Callers hold the session lock.
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the stored form of a session
type PersistedSessionData struct {
	ID             string                   `json:"id" msgpack:"id"`
	LevelID        string                   `json:"level_id" msgpack:"level_id"`
	CreatedAt      time.Time                `json:"created_at" msgpack:"created_at"`
	LastAccessedAt time.Time                `json:"last_accessed_at" msgpack:"last_accessed_at"`
	Options        service.SessionOptions   `json:"options" msgpack:"options"`
	World          *engine.World            `json:"world" msgpack:"world"`
	History        []engine.CommandLogEntry `json:"history,omitempty" msgpack:"history"`
}
