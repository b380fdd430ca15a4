package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/icebound/game/engine"
	"github.com/wricardo/icebound/game/service"
)

var (
	ErrLevelNotFound = errors.New("level not found")
	ErrInvalidLevel  = errors.New("invalid level")
)

// DefaultLevelID is loaded when no default has been chosen
const DefaultLevelID = "courtyard"

// Extensions lists the descriptor file extensions the manager reads, in
// lookup order
var Extensions = []string{".json", ".yaml", ".yml"}

// Manager handles level descriptor loading and caching
type Manager struct {
	levelDir     string
	defaultLevel *engine.LevelConfig
	levels       map[string]*engine.LevelConfig
	mu           sync.RWMutex
}

// NewManager creates a new level manager reading from levelDir
func NewManager(levelDir string) *Manager {
	m := &Manager{
		levelDir: levelDir,
		levels:   make(map[string]*engine.LevelConfig),
	}
	m.defaultLevel = m.loadDefaultLevel()
	return m
}

// LoadLevel loads a level by its file identifier (the file name without
// extension) or by its numeric id
func (m *Manager) LoadLevel(id string) (*engine.LevelConfig, error) {
	key := strings.ToLower(strings.TrimSpace(id))
	if isLevelFile(key) {
		key = levelID(key)
	}
	if key == "" {
		return m.GetDefault(), nil
	}

	m.mu.RLock()
	if level, ok := m.levels[key]; ok {
		m.mu.RUnlock()
		return level, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if level, ok := m.levels[key]; ok {
		return level, nil
	}

	level, err := m.readLevel(key)
	if errors.Is(err, ErrLevelNotFound) {
		level, err = m.findByNumber(key)
	}
	if err != nil {
		return nil, err
	}

	m.levels[key] = level
	return level, nil
}

// ListLevels returns every readable level in the directory, sorted by level
// number then identifier
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if os.IsNotExist(err) {
		return []*service.LevelInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	var levels []*service.LevelInfo
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !isLevelFile(entry.Name()) {
			continue
		}
		id := levelID(entry.Name())
		if seen[id] {
			continue
		}

		level, err := m.LoadLevel(id)
		if err != nil {
			// Skip unreadable descriptors; validate reports them
			continue
		}
		seen[id] = true

		levels = append(levels, &service.LevelInfo{
			Filename:         entry.Name(),
			LevelID:          id,
			Number:           level.ID,
			Name:             level.Name,
			Description:      level.Description,
			GridSize:         level.GridSize,
			Mode:             level.Mode,
			Difficulty:       level.Difficulty,
			TimeLimitSeconds: level.TimeLimitSeconds,
		})
	}

	sort.Slice(levels, func(i, j int) bool {
		if levels[i].Number != levels[j].Number {
			return levels[i].Number < levels[j].Number
		}
		return levels[i].LevelID < levels[j].LevelID
	})
	return levels, nil
}

// GetDefault returns the default level
func (m *Manager) GetDefault() *engine.LevelConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultLevel
}

// SetDefault sets the default level
func (m *Manager) SetDefault(id string) error {
	level, err := m.LoadLevel(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultLevel = level
	m.mu.Unlock()
	return nil
}

// RefreshCache drops every cached level and reloads the default
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.levels = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	def := m.loadDefaultLevel()

	m.mu.Lock()
	m.defaultLevel = def
	m.mu.Unlock()
}

// SaveLevel validates a level and writes it to the directory. The format
// follows the extension in id; a bare id is written as JSON.
func (m *Manager) SaveLevel(id string, level *engine.LevelConfig) error {
	if level == nil {
		return fmt.Errorf("%w: level cannot be nil", ErrInvalidLevel)
	}
	if err := engine.ValidateLevelConfig(level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	filename := filepath.Base(id)
	if !isLevelFile(filename) {
		filename += ".json"
	}
	key := levelID(filename)
	if key == "" {
		return fmt.Errorf("%w: empty level id", ErrInvalidLevel)
	}

	data, err := encodeLevel(filename, level)
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}

	if err := os.MkdirAll(m.levelDir, 0755); err != nil {
		return fmt.Errorf("failed to create level directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(m.levelDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.levels[key] = level
	m.mu.Unlock()
	return nil
}

// readLevel reads the descriptor for id. Callers hold the write lock.
func (m *Manager) readLevel(id string) (*engine.LevelConfig, error) {
	for _, ext := range Extensions {
		path := filepath.Join(m.levelDir, id+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return LoadFile(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, id)
}

// findByNumber scans the directory for a level whose numeric id is key.
// Callers hold the write lock.
func (m *Manager) findByNumber(key string) (*engine.LevelConfig, error) {
	n, err := strconv.Atoi(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, key)
	}

	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, key)
	}
	for _, entry := range entries {
		if entry.IsDir() || !isLevelFile(entry.Name()) {
			continue
		}
		level, err := LoadFile(filepath.Join(m.levelDir, entry.Name()))
		if err != nil {
			continue
		}
		if level.ID == n {
			return level, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, key)
}

// loadDefaultLevel loads the bundled default, falling back to the built-in level
func (m *Manager) loadDefaultLevel() *engine.LevelConfig {
	level, err := m.LoadLevel(DefaultLevelID)
	if err != nil {
		return engine.DefaultLevel()
	}
	return level
}

// LoadFile reads and validates a single level descriptor
func LoadFile(path string) (*engine.LevelConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, path)
		}
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	level, err := Decode(path, data)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateLevelConfig(level); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLevel, filepath.Base(path), err)
	}
	return level, nil
}

// Decode parses descriptor bytes. The format is chosen by the file extension
// of name.
func Decode(name string, data []byte) (*engine.LevelConfig, error) {
	var level engine.LevelConfig
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &level); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLevel, filepath.Base(name), err)
		}
	default:
		if err := json.Unmarshal(data, &level); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidLevel, filepath.Base(name), err)
		}
	}
	return &level, nil
}

func encodeLevel(filename string, level *engine.LevelConfig) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return yaml.Marshal(level)
	default:
		return json.MarshalIndent(level, "", "  ")
	}
}

func isLevelFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func levelID(filename string) string {
	return strings.ToLower(strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename)))
}
