package server

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/dialspace/dialspace/internal/protocol"
)

// OccupantCounter reports live occupancy per room; the registry never stores
// counts itself.
type OccupantCounter interface {
	OccupantCount(roomID string) int
}

// DefaultRooms returns the built-in room set used when no snapshot exists.
func DefaultRooms() []protocol.RoomDef {
	return []protocol.RoomDef{
		{ID: "room-a", Name: "Chat Room A", Letter: "A", Capacity: 16},
		{ID: "room-b", Name: "Chat Room B", Letter: "B", Capacity: 16},
		{ID: "room-c", Name: "Chat Room C", Letter: "C", Capacity: 16},
		{ID: "room-d", Name: "Chat Room D", Letter: "D", Capacity: 16},
	}
}

// Registry holds the ordered set of room definitions. Rooms are created at
// startup or via Create and live for the process lifetime.
type Registry struct {
	counter  OccupantCounter
	maxRooms int
	capacity int

	mu    sync.RWMutex
	rooms []protocol.RoomDef
}

// NewRegistry builds a registry from defs. maxRooms caps dynamic creation
// and capacity is applied to newly created rooms.
func NewRegistry(defs []protocol.RoomDef, counter OccupantCounter, maxRooms, capacity int) *Registry {
	if maxRooms <= 0 {
		maxRooms = 12
	}
	if capacity <= 0 {
		capacity = 16
	}
	return &Registry{
		counter:  counter,
		maxRooms: maxRooms,
		capacity: capacity,
		rooms:    append([]protocol.RoomDef(nil), defs...),
	}
}

// Get returns the room with the given id, or nil.
func (r *Registry) Get(id string) *protocol.RoomDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.rooms {
		if r.rooms[i].ID == id {
			room := r.rooms[i]
			return &room
		}
	}
	return nil
}

// Resolve returns the room with the given id, defaulting to the first
// configured room when id is unknown.
func (r *Registry) Resolve(id string) protocol.RoomDef {
	if room := r.Get(id); room != nil {
		return *room
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rooms[0]
}

// List returns room snapshots in registry order with live count and signal
// derived at call time.
func (r *Registry) List() []protocol.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]protocol.RoomInfo, len(r.rooms))
	for i, room := range r.rooms {
		count := 0
		if r.counter != nil {
			count = r.counter.OccupantCount(room.ID)
		}
		out[i] = protocol.RoomInfo{
			ID:       room.ID,
			Name:     room.Name,
			Letter:   room.Letter,
			Image:    room.Image,
			Count:    count,
			Capacity: room.Capacity,
			Signal:   signalFor(count),
		}
	}
	return out
}

// Defs returns a copy of the room definitions for persistence.
func (r *Registry) Defs() []protocol.RoomDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]protocol.RoomDef(nil), r.rooms...)
}

// Create adds a room named name. It returns nil when the trimmed name is
// empty or the registry is full; below the cap a case-insensitive name
// match returns the existing room. New ids are slugified from the name and
// disambiguated with a numeric suffix.
func (r *Registry) Create(name, image string) *protocol.RoomDef {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.rooms) >= r.maxRooms {
		return nil
	}
	for i := range r.rooms {
		if strings.EqualFold(r.rooms[i].Name, trimmed) {
			room := r.rooms[i]
			return &room
		}
	}

	base := slugify(trimmed)
	if base == "" {
		base = fmt.Sprintf("%d", len(r.rooms)+1)
	}
	id := "room-" + base
	for suffix := 1; r.hasIDLocked(id); {
		suffix++
		id = fmt.Sprintf("room-%s-%d", base, suffix)
	}

	room := protocol.RoomDef{
		ID:       id,
		Name:     trimmed,
		Letter:   strings.ToUpper(string([]rune(trimmed)[0])),
		Image:    image,
		Capacity: r.capacity,
	}
	r.rooms = append(r.rooms, room)
	return &room
}

func (r *Registry) hasIDLocked(id string) bool {
	for i := range r.rooms {
		if r.rooms[i].ID == id {
			return true
		}
	}
	return false
}

// signalFor maps occupancy to the coarse 1-4 display level: an empty room
// shows full signal, a crowded one barely any.
func signalFor(count int) int {
	switch {
	case count == 0:
		return 4
	case count < 4:
		return 3
	case count < 8:
		return 2
	default:
		return 1
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(value string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(value), "-")
	return strings.Trim(slug, "-")
}
