// Package protocol defines the wire events exchanged between the relay
// server and its clients. Every frame is a JSON object carrying a "type"
// discriminator; unrecognized types are ignored by both sides.
package protocol

import "encoding/json"

// Inbound event types.
const (
	TypeJoin          = "join"
	TypeMessage       = "message"
	TypeTyping        = "typing"
	TypeNudge         = "nudge"
	TypeLeave         = "leave"
	TypeUpdateProfile = "update_profile"
	TypeCreateRoom    = "create_room"
)

// Outbound event types.
const (
	TypeRoomList = "room_list"
	TypeUserList = "user_list"
	TypeHistory  = "history"
	TypeSystem   = "system"
)

// ClientEvent is the decoded form of one inbound frame. Fields beyond Type
// are populated depending on the event type.
type ClientEvent struct {
	Type      string `json:"type"`
	Name      string `json:"name,omitempty"`
	Room      string `json:"room,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	ClientKey string `json:"clientKey,omitempty"`
	Text      string `json:"text,omitempty"`
	IsTyping  bool   `json:"isTyping,omitempty"`
	Image     string `json:"image,omitempty"`
}

// DecodeClientEvent parses a raw frame. It returns false for frames that are
// not JSON objects with a string type discriminator.
func DecodeClientEvent(raw []byte) (ClientEvent, bool) {
	var ev ClientEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return ClientEvent{}, false
	}
	if ev.Type == "" {
		return ClientEvent{}, false
	}
	return ev, true
}

// RoomInfo is the per-room entry of a room_list snapshot. Count and Signal
// are derived from live occupancy at snapshot time.
type RoomInfo struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Letter   string `json:"letter"`
	Image    string `json:"image,omitempty"`
	Count    int    `json:"count"`
	Capacity int    `json:"capacity"`
	Signal   int    `json:"signal"`
}

// UserInfo is a point-in-time snapshot of a connected user.
type UserInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Room   string `json:"room"`
}

// RoomDef is a persisted room definition. It carries no derived fields.
type RoomDef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Letter   string `json:"letter"`
	Image    string `json:"image,omitempty"`
	Capacity int    `json:"capacity"`
}

// HistoryItem is one durably logged room event. Kind is "message" or
// "system"; ID and User are set only for messages.
type HistoryItem struct {
	Kind string    `json:"kind"`
	ID   string    `json:"id,omitempty"`
	User *UserInfo `json:"user,omitempty"`
	Text string    `json:"text"`
	TS   int64     `json:"ts"`
}

// RoomListEvent is broadcast whenever occupancy or the room set changes.
type RoomListEvent struct {
	Type  string     `json:"type"`
	Rooms []RoomInfo `json:"rooms"`
}

// NewRoomList builds a room_list event.
func NewRoomList(rooms []RoomInfo) RoomListEvent {
	return RoomListEvent{Type: TypeRoomList, Rooms: rooms}
}

// UserListEvent carries the full occupant list of one room.
type UserListEvent struct {
	Type  string     `json:"type"`
	Users []UserInfo `json:"users"`
}

// NewUserList builds a user_list event.
func NewUserList(users []UserInfo) UserListEvent {
	return UserListEvent{Type: TypeUserList, Users: users}
}

// MessageEvent is one chat message fanned out to a room.
type MessageEvent struct {
	Type string   `json:"type"`
	ID   string   `json:"id"`
	User UserInfo `json:"user"`
	Text string   `json:"text"`
	TS   int64    `json:"ts"`
}

// NewMessage builds a message event.
func NewMessage(id string, user UserInfo, text string, ts int64) MessageEvent {
	return MessageEvent{Type: TypeMessage, ID: id, User: user, Text: text, TS: ts}
}

// HistoryEvent replays a room's durable log to a joining client.
type HistoryEvent struct {
	Type   string        `json:"type"`
	RoomID string        `json:"roomId"`
	Items  []HistoryItem `json:"items"`
}

// NewHistory builds a history replay event.
func NewHistory(roomID string, items []HistoryItem) HistoryEvent {
	if items == nil {
		items = []HistoryItem{}
	}
	return HistoryEvent{Type: TypeHistory, RoomID: roomID, Items: items}
}

// TypingEvent signals that a user started or stopped typing.
type TypingEvent struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	IsTyping bool   `json:"isTyping"`
}

// NewTyping builds a typing event.
func NewTyping(userID string, isTyping bool) TypingEvent {
	return TypingEvent{Type: TypeTyping, UserID: userID, IsTyping: isTyping}
}

// NudgeEvent is an attention-grabbing broadcast carrying only the sender.
type NudgeEvent struct {
	Type     string   `json:"type"`
	FromUser UserInfo `json:"fromUser"`
}

// NewNudge builds a nudge event.
func NewNudge(from UserInfo) NudgeEvent {
	return NudgeEvent{Type: TypeNudge, FromUser: from}
}

// SystemEvent is a server-generated notice shown inline in chat.
type SystemEvent struct {
	Type string `json:"type"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// NewSystem builds a system notice.
func NewSystem(text string, ts int64) SystemEvent {
	return SystemEvent{Type: TypeSystem, Text: text, TS: ts}
}
