// Package store is the persistence collaborator of the relay: a single JSON
// snapshot holding room definitions, per-name avatar profiles, and the
// recent message history of every room. Writes are debounced and
// best-effort; a lost snapshot never affects the live session state.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dialspace/dialspace/internal/protocol"
)

const defaultDebounce = 200 * time.Millisecond

// Profile is the persisted per-name state.
type Profile struct {
	Avatar string `json:"avatar"`
}

type data struct {
	Rooms    []protocol.RoomDef                `json:"rooms"`
	Profiles map[string]Profile                `json:"profiles"`
	Messages map[string][]protocol.HistoryItem `json:"messages"`
}

// FileStore persists relay state to one JSON file with debounced writes.
type FileStore struct {
	path       string
	maxHistory int
	debounce   time.Duration
	log        *zap.Logger

	mu     sync.Mutex
	data   data
	timer  *time.Timer
	closed bool
}

// Open loads the snapshot at path, falling back to defaults when the file is
// absent or corrupt. maxHistory bounds the retained history per room.
func Open(path string, defaults []protocol.RoomDef, maxHistory int, log *zap.Logger) *FileStore {
	if maxHistory <= 0 {
		maxHistory = 200
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &FileStore{
		path:       path,
		maxHistory: maxHistory,
		debounce:   defaultDebounce,
		log:        log,
		data: data{
			Rooms:    append([]protocol.RoomDef(nil), defaults...),
			Profiles: make(map[string]Profile),
			Messages: make(map[string][]protocol.HistoryItem),
		},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("store read failed, using defaults", zap.String("path", path), zap.Error(err))
		}
		return s
	}
	var loaded data
	if err := json.Unmarshal(raw, &loaded); err != nil {
		log.Warn("store snapshot corrupt, using defaults", zap.String("path", path), zap.Error(err))
		return s
	}
	if len(loaded.Rooms) > 0 {
		s.data.Rooms = loaded.Rooms
	}
	if loaded.Profiles != nil {
		s.data.Profiles = loaded.Profiles
	}
	if loaded.Messages != nil {
		s.data.Messages = loaded.Messages
	}
	return s
}

// Rooms returns the loaded room definitions.
func (s *FileStore) Rooms() []protocol.RoomDef {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.RoomDef(nil), s.data.Rooms...)
}

// PersistRooms replaces the persisted room definitions.
func (s *FileStore) PersistRooms(rooms []protocol.RoomDef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Rooms = append([]protocol.RoomDef(nil), rooms...)
	s.scheduleSaveLocked()
}

// AppendHistory appends one item to a room's durable log, trimming to the
// most recent maxHistory items.
func (s *FileStore) AppendHistory(roomID string, item protocol.HistoryItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	history := append(s.data.Messages[roomID], item)
	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	s.data.Messages[roomID] = history
	s.scheduleSaveLocked()
}

// History returns a copy of a room's durable log.
func (s *FileStore) History(roomID string) []protocol.HistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]protocol.HistoryItem(nil), s.data.Messages[roomID]...)
}

// SetProfile records the avatar for a display name, last write wins.
func (s *FileStore) SetProfile(name, avatar string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Profiles[name] = Profile{Avatar: avatar}
	s.scheduleSaveLocked()
}

// GetProfile returns the stored avatar for a display name, or "".
func (s *FileStore) GetProfile(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Profiles[name].Avatar
}

// scheduleSaveLocked arms the debounce timer. Callers hold s.mu.
func (s *FileStore) scheduleSaveLocked() {
	if s.timer != nil || s.closed {
		return
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		s.mu.Lock()
		s.timer = nil
		s.mu.Unlock()
		if err := s.Flush(); err != nil {
			s.log.Warn("store flush failed", zap.String("path", s.path), zap.Error(err))
		}
	})
}

// Flush writes the snapshot to disk immediately.
func (s *FileStore) Flush() error {
	s.mu.Lock()
	raw, err := json.MarshalIndent(s.data, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, raw, 0644)
}

// Close stops the debounce timer and flushes any pending state.
func (s *FileStore) Close() error {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.Flush()
}
