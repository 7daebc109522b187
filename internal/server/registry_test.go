package server

import (
	"fmt"
	"testing"
)

type fixedCounts map[string]int

func (c fixedCounts) OccupantCount(roomID string) int { return c[roomID] }

func newTestRegistry(counts fixedCounts) *Registry {
	return NewRegistry(DefaultRooms(), counts, 12, 16)
}

func TestListDerivesCountAndSignal(t *testing.T) {
	reg := newTestRegistry(fixedCounts{"room-a": 0, "room-b": 3, "room-c": 7, "room-d": 12})

	rooms := reg.List()
	if len(rooms) != 4 {
		t.Fatalf("len = %d, want 4", len(rooms))
	}
	want := []struct {
		count, signal int
	}{{0, 4}, {3, 3}, {7, 2}, {12, 1}}
	for i, w := range want {
		if rooms[i].Count != w.count || rooms[i].Signal != w.signal {
			t.Fatalf("rooms[%d] count/signal = %d/%d, want %d/%d",
				i, rooms[i].Count, rooms[i].Signal, w.count, w.signal)
		}
	}
}

func TestCreateIsIdempotentOnName(t *testing.T) {
	reg := newTestRegistry(nil)

	room := reg.Create("chat room a", "")
	if room == nil {
		t.Fatal("idempotent create returned nil")
	}
	if room.ID != "room-a" {
		t.Fatalf("id = %q, want existing room-a", room.ID)
	}
	if got := len(reg.Defs()); got != 4 {
		t.Fatalf("registry size = %d, want unchanged 4", got)
	}
}

func TestCreateRejectsEmptyName(t *testing.T) {
	reg := newTestRegistry(nil)
	if reg.Create("   ", "") != nil {
		t.Fatal("blank name created a room")
	}
}

func TestCreateSlugCollisionGetsSuffix(t *testing.T) {
	reg := newTestRegistry(nil)

	// "A" slugifies to the already-taken id room-a.
	room := reg.Create("A", "")
	if room == nil {
		t.Fatal("create returned nil")
	}
	if room.ID != "room-a-2" {
		t.Fatalf("id = %q, want room-a-2", room.ID)
	}
	if room.Letter != "A" || room.Capacity != 16 {
		t.Fatalf("room = %+v", room)
	}
}

func TestCreateStopsAtRoomCap(t *testing.T) {
	reg := newTestRegistry(nil)

	for i := 0; len(reg.Defs()) < 12; i++ {
		if reg.Create(fmt.Sprintf("Extra %d", i), "") == nil {
			t.Fatalf("create %d failed below the cap", i)
		}
	}
	if reg.Create("One Too Many", "") != nil {
		t.Fatal("create succeeded past the 12-room cap")
	}
	// At the cap even an existing name is refused rather than returned.
	if reg.Create("Chat Room A", "") != nil {
		t.Fatal("existing-name create returned a room at the cap")
	}
	if got := len(reg.Defs()); got != 12 {
		t.Fatalf("registry size = %d, want 12", got)
	}
}

func TestResolveFallsBackToFirstRoom(t *testing.T) {
	reg := newTestRegistry(nil)

	if got := reg.Resolve("room-c").ID; got != "room-c" {
		t.Fatalf("Resolve(room-c) = %q", got)
	}
	if got := reg.Resolve("nope").ID; got != "room-a" {
		t.Fatalf("Resolve(nope) = %q, want room-a", got)
	}
}

func TestSlugify(t *testing.T) {
	cases := []struct{ in, want string }{
		{"The Lounge", "the-lounge"},
		{"  Café #9! ", "caf-9"},
		{"---", ""},
		{"Already-Slugged", "already-slugged"},
	}
	for _, c := range cases {
		if got := slugify(c.in); got != c.want {
			t.Fatalf("slugify(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
