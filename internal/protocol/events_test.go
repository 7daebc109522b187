package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecodeClientEvent(t *testing.T) {
	ev, ok := DecodeClientEvent([]byte(`{"type":"join","name":"Ann","room":"room-a","clientKey":"k1"}`))
	if !ok {
		t.Fatal("valid frame rejected")
	}
	if ev.Type != TypeJoin || ev.Name != "Ann" || ev.Room != "room-a" || ev.ClientKey != "k1" {
		t.Fatalf("decoded = %+v", ev)
	}
}

func TestDecodeClientEventRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "not json", "42", `"string"`, `{"name":"Ann"}`, `{"type":7}`} {
		if _, ok := DecodeClientEvent([]byte(raw)); ok {
			t.Fatalf("accepted %q", raw)
		}
	}
}

func TestOutboundEventsCarryDiscriminator(t *testing.T) {
	cases := []struct {
		event any
		want  string
	}{
		{NewRoomList(nil), TypeRoomList},
		{NewUserList(nil), TypeUserList},
		{NewMessage("id", UserInfo{}, "hi", 1), TypeMessage},
		{NewHistory("room-a", nil), TypeHistory},
		{NewTyping("u1", true), TypeTyping},
		{NewNudge(UserInfo{}), TypeNudge},
		{NewSystem("notice", 1), TypeSystem},
	}
	for _, c := range cases {
		raw, err := json.Marshal(c.event)
		if err != nil {
			t.Fatalf("marshal %T: %v", c.event, err)
		}
		var m map[string]any
		if err := json.Unmarshal(raw, &m); err != nil {
			t.Fatal(err)
		}
		if m["type"] != c.want {
			t.Fatalf("%T type = %v, want %s", c.event, m["type"], c.want)
		}
	}
}

func TestHistoryEventNeverNullItems(t *testing.T) {
	raw, err := json.Marshal(NewHistory("room-a", nil))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["items"].([]any); !ok {
		t.Fatalf("items marshaled as %T, want empty array", m["items"])
	}
}
