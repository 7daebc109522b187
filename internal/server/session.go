package server

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dialspace/dialspace/internal/protocol"
)

// ErrNameTaken is returned when a requested display name is already held by
// a session with a different reconnection key.
var ErrNameTaken = errors.New("display name already in use")

const defaultAvatar = "#6a7a8c"

// Conn is the transport side of one connected client. Send queues a frame
// without blocking and reports whether it was accepted; Close tears the
// underlying transport down.
type Conn interface {
	Send(data []byte) bool
	Close()
}

// Session binds a live connection to a persistent client identity. ID is
// stable across reconnects carrying the same reconnection key.
type Session struct {
	ID     string
	Name   string
	Avatar string
	Room   string
	Key    string

	conn Conn

	// Rate-guard state, touched only by the owning connection's event flow.
	msgTimes  []time.Time
	lastNudge time.Time
}

// Evicted describes a stale session detached during a reconnection takeover.
// Room is the room it occupied at detach time.
type Evicted struct {
	Session *Session
	Conn    Conn
	Room    string
}

// ProfileSource resolves stored avatars by display name.
type ProfileSource interface {
	GetProfile(name string) string
}

// SessionManager owns the connection-to-identity mapping: sessions keyed by
// live connection and by reconnection key, plus the per-room occupant index.
// The occupant index and session room assignments are mutated under one lock
// so the two can never disagree.
type SessionManager struct {
	profiles ProfileSource

	mu        sync.RWMutex
	byConn    map[Conn]*Session
	byKey     map[string]*Session
	occupants map[string]map[string]struct{} // room id -> session ids
}

// NewSessionManager creates an empty session table. profiles may be nil.
func NewSessionManager(profiles ProfileSource) *SessionManager {
	return &SessionManager{
		profiles:  profiles,
		byConn:    make(map[Conn]*Session),
		byKey:     make(map[string]*Session),
		occupants: make(map[string]map[string]struct{}),
	}
}

// Get returns the session bound to conn, or nil.
func (m *SessionManager) Get(conn Conn) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byConn[conn]
}

// NameTaken reports whether name is held, case-insensitively, by a session
// whose reconnection key differs from key. A client rejoining with its own
// key never collides with itself.
func (m *SessionManager) NameTaken(name, key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nameTakenLocked(name, key)
}

func (m *SessionManager) nameTakenLocked(name, key string) bool {
	target := strings.ToLower(name)
	for _, s := range m.byConn {
		if strings.ToLower(s.Name) == target && s.Key != key {
			return true
		}
	}
	return false
}

// GenerateGuestName produces an unused Guest### name. After a bounded number
// of attempts it falls back to a timestamp-derived name; it never fails.
func (m *SessionManager) GenerateGuestName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.guestNameLocked()
}

func (m *SessionManager) guestNameLocked() string {
	for i := 0; i < 5; i++ {
		candidate := fmt.Sprintf("Guest%d", rand.Intn(900)+100)
		if !m.nameTakenLocked(candidate, "") {
			return candidate
		}
	}
	ts := fmt.Sprintf("%d", time.Now().UnixMilli())
	return "Guest" + ts[len(ts)-4:]
}

// ResolveOrCreate implements the join identity step. If key is bound to a
// session on a different connection, that session is detached first and its
// id carries over, so other clients' references stay valid; the caller must
// close the returned Evicted.Conn. If conn already has a session it is
// updated in place. A case-insensitive name collision with a different key
// fails with ErrNameTaken and mutates nothing.
//
// Room binding is a separate step (BindRoom); the caller runs the leave
// transition for any prior room before calling this.
func (m *SessionManager) ResolveOrCreate(conn Conn, key, name, avatar string) (*Session, *Evicted, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if name != "" && m.nameTakenLocked(name, key) {
		return nil, nil, ErrNameTaken
	}

	var evicted *Evicted
	inheritedID, inheritedKey := "", ""
	if key != "" {
		if prior := m.byKey[key]; prior != nil && prior.conn != conn {
			evicted = &Evicted{Session: prior, Conn: prior.conn, Room: prior.Room}
			m.detachLocked(prior)
			inheritedID = prior.ID
			inheritedKey = prior.Key
		}
	}

	s := m.byConn[conn]
	if s == nil {
		userName := name
		if userName == "" {
			userName = m.guestNameLocked()
		}
		stored := ""
		if name != "" {
			stored = m.storedAvatar(userName)
		}
		s = &Session{
			ID:     firstNonEmpty(inheritedID, uuid.New().String()),
			Name:   userName,
			Avatar: firstNonEmpty(avatar, stored, defaultAvatar),
			Key:    firstNonEmpty(key, inheritedKey, uuid.New().String()),
			conn:   conn,
		}
		m.byConn[conn] = s
	} else {
		nextName := firstNonEmpty(name, s.Name)
		s.Name = nextName
		s.Avatar = firstNonEmpty(avatar, m.storedAvatar(nextName), s.Avatar)
		if key != "" && key != s.Key {
			delete(m.byKey, s.Key)
			s.Key = key
		}
	}
	m.byKey[s.Key] = s
	return s, evicted, nil
}

func (m *SessionManager) storedAvatar(name string) string {
	if m.profiles == nil {
		return ""
	}
	return m.profiles.GetProfile(name)
}

// BindRoom assigns the session to a room, updating the occupant index in the
// same critical section as the room assignment.
func (m *SessionManager) BindRoom(s *Session, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unbindLocked(s)
	s.Room = roomID
	set := m.occupants[roomID]
	if set == nil {
		set = make(map[string]struct{})
		m.occupants[roomID] = set
	}
	set[s.ID] = struct{}{}
}

// UnbindRoom clears the session's room and its occupant-index entry.
func (m *SessionManager) UnbindRoom(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unbindLocked(s)
}

func (m *SessionManager) unbindLocked(s *Session) {
	if s.Room == "" {
		return
	}
	if set := m.occupants[s.Room]; set != nil {
		delete(set, s.ID)
		if len(set) == 0 {
			delete(m.occupants, s.Room)
		}
	}
	s.Room = ""
}

// Remove detaches and discards the session for a closing connection,
// releasing its reconnection-key binding. It returns the removed session,
// or nil if the connection had none.
func (m *SessionManager) Remove(conn Conn) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.byConn[conn]
	if s == nil {
		return nil
	}
	m.detachLocked(s)
	return s
}

// detachLocked removes every index entry for s. The Room field is left
// intact so callers can announce the departure.
func (m *SessionManager) detachLocked(s *Session) {
	delete(m.byConn, s.conn)
	if m.byKey[s.Key] == s {
		delete(m.byKey, s.Key)
	}
	if s.Room != "" {
		if set := m.occupants[s.Room]; set != nil {
			delete(set, s.ID)
			if len(set) == 0 {
				delete(m.occupants, s.Room)
			}
		}
	}
}

// OccupantCount returns the live occupant count of a room.
func (m *SessionManager) OccupantCount(roomID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.occupants[roomID])
}

// UsersIn returns user snapshots for every session in a room, ordered by
// display name for stable output.
func (m *SessionManager) UsersIn(roomID string) []protocol.UserInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]protocol.UserInfo, 0, len(m.occupants[roomID]))
	for _, s := range m.byConn {
		if s.Room == roomID {
			users = append(users, userInfo(s))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Name < users[j].Name })
	return users
}

// ConnsIn returns the connections of every session in a room.
func (m *SessionManager) ConnsIn(roomID string) []Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conns := make([]Conn, 0, len(m.occupants[roomID]))
	for _, s := range m.byConn {
		if s.Room == roomID {
			conns = append(conns, s.conn)
		}
	}
	return conns
}

// Conns returns every live connection.
func (m *SessionManager) Conns() []Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conns := make([]Conn, 0, len(m.byConn))
	for conn := range m.byConn {
		conns = append(conns, conn)
	}
	return conns
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byConn)
}

func userInfo(s *Session) protocol.UserInfo {
	return protocol.UserInfo{ID: s.ID, Name: s.Name, Avatar: s.Avatar, Room: s.Room}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
