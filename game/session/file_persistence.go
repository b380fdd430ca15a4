package session

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/icebound/game/service"
)

// FilePersistence implements SessionPersistence using file system storage
type FilePersistence struct {
	sessionsDir  string
	levelManager service.LevelManager
	codec        Codec
}

// FilePersistenceOpt customises a FilePersistence
type FilePersistenceOpt func(*FilePersistence)

// WithCodec selects the on-disk encoding
func WithCodec(c Codec) FilePersistenceOpt {
	return func(fp *FilePersistence) {
		if c != nil {
			fp.codec = c
		}
	}
}

// NewFilePersistence creates a new file-based session persistence layer
func NewFilePersistence(sessionsDir string, levelManager service.LevelManager, opts ...FilePersistenceOpt) (*FilePersistence, error) {
	if err := os.MkdirAll(sessionsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	fp := &FilePersistence{
		sessionsDir:  sessionsDir,
		levelManager: levelManager,
		codec:        JSONCodec{},
	}
	for _, opt := range opts {
		opt(fp)
	}
	return fp, nil
}

// Codec returns the encoding in use
func (fp *FilePersistence) Codec() Codec {
	return fp.codec
}

// Save persists a session. The caller holds the session lock.
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := PersistedSessionData{
		ID:             session.ID,
		LevelID:        session.LevelID,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Options:        session.Options,
		World:          session.Engine.World(),
		History:        session.Engine.History(),
	}

	encoded, err := fp.codec.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal session data: %w", err)
	}

	// Write then rename so a crash never leaves a torn file
	filePath := fp.getFilePath(session.ID)
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, filePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load retrieves a session from storage and rebuilds its engine
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	filePath := fp.getFilePath(id)

	raw, err := os.ReadFile(filePath)
	if os.IsNotExist(err) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var data PersistedSessionData
	if err := fp.codec.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session data: %w", err)
	}
	if data.World == nil {
		return nil, fmt.Errorf("session %s has no world", id)
	}

	level, err := fp.levelManager.LoadLevel(data.LevelID)
	if err != nil {
		return nil, fmt.Errorf("failed to load level '%s': %w", data.LevelID, err)
	}

	eng, err := service.NewSessionEngine(level, data.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if err := eng.SetWorld(data.World); err != nil {
		return nil, fmt.Errorf("failed to restore world: %w", err)
	}
	eng.RestoreHistory(data.History)

	return &service.Session{
		ID:             data.ID,
		LevelID:        data.LevelID,
		Engine:         eng,
		Level:          level,
		Options:        data.Options,
		CreatedAt:      data.CreatedAt,
		LastAccessedAt: data.LastAccessedAt,
	}, nil
}

// Delete removes a session file
func (fp *FilePersistence) Delete(id string) error {
	if !fp.Exists(id) {
		return ErrSessionNotFound
	}

	if err := os.Remove(fp.getFilePath(id)); err != nil {
		return fmt.Errorf("failed to remove session file: %w", err)
	}

	return nil
}

// ListAll returns all persisted session IDs for the active codec
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	ext := fp.codec.Extension()
	var sessionIDs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(name, ext) {
			sessionIDs = append(sessionIDs, strings.TrimSuffix(name, ext))
		}
	}

	return sessionIDs, nil
}

// Exists checks if a session file exists
func (fp *FilePersistence) Exists(id string) bool {
	_, err := os.Stat(fp.getFilePath(id))
	return err == nil
}

// getFilePath returns the full file path for a session ID
func (fp *FilePersistence) getFilePath(id string) string {
	return filepath.Join(fp.sessionsDir, strings.ToLower(id)+fp.codec.Extension())
}
