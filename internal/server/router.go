package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dialspace/dialspace/internal/config"
	"github.com/dialspace/dialspace/internal/metrics"
	"github.com/dialspace/dialspace/internal/moderation"
	"github.com/dialspace/dialspace/internal/protocol"
)

// Store is the persistence contract the router depends on. All calls are
// best-effort; the router never waits on or reacts to storage failures.
type Store interface {
	AppendHistory(roomID string, item protocol.HistoryItem)
	History(roomID string) []protocol.HistoryItem
	SetProfile(name, avatar string)
	GetProfile(name string) string
	PersistRooms(rooms []protocol.RoomDef)
}

// Router validates and dispatches every inbound client event, driving the
// session manager, room registry, rate guard, and dispatcher. All event
// handling is serialized through one mutex, so no two mutations of shared
// state interleave; each connection's events additionally arrive in order
// from its own read loop.
type Router struct {
	cfg      config.Config
	log      *zap.Logger
	sessions *SessionManager
	registry *Registry
	dispatch *Dispatcher
	store    Store
	guard    Guard

	mu  sync.Mutex
	now func() time.Time
}

// NewRouter wires the event router.
func NewRouter(cfg config.Config, log *zap.Logger, sessions *SessionManager, registry *Registry, dispatch *Dispatcher, store Store) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{
		cfg:      cfg,
		log:      log,
		sessions: sessions,
		registry: registry,
		dispatch: dispatch,
		store:    store,
		guard: Guard{
			Window:   cfg.RateWindow,
			Burst:    cfg.RateBurst,
			Cooldown: cfg.NudgeCooldown,
		},
		now: time.Now,
	}
}

// HandleOpen greets a new connection with a room-list snapshot.
func (r *Router) HandleOpen(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	metrics.ActiveConnections.Inc()
	r.dispatch.ToConn(conn, r.roomList())
}

// HandleEvent processes one inbound frame from conn. Malformed frames and
// unknown types are dropped silently. A panic while handling an event is
// contained here: it is logged and reported to the offending connection as
// a generic notice, and never disturbs other connections.
func (r *Router) HandleEvent(conn Conn, raw []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			r.log.Error("event handler panic", zap.Any("panic", rec), zap.ByteString("frame", truncateFrame(raw)))
			r.dispatch.ToConn(conn, protocol.NewSystem("Server error. Try again.", r.nowMillis()))
		}
	}()

	ev, ok := protocol.DecodeClientEvent(raw)
	if !ok {
		metrics.DroppedTotal.WithLabelValues(metrics.ReasonMalformed).Inc()
		return
	}
	metrics.EventsTotal.WithLabelValues(ev.Type).Inc()

	switch ev.Type {
	case protocol.TypeJoin:
		r.handleJoin(conn, ev)
	case protocol.TypeMessage:
		r.handleMessage(conn, ev)
	case protocol.TypeTyping:
		r.handleTyping(conn, ev)
	case protocol.TypeNudge:
		r.handleNudge(conn)
	case protocol.TypeLeave:
		r.handleLeave(conn)
	case protocol.TypeUpdateProfile:
		r.handleUpdateProfile(conn, ev)
	case protocol.TypeCreateRoom:
		r.handleCreateRoom(ev)
	default:
		// Unrecognized type discriminators are ignored.
	}
}

// HandleClose runs the close transition: leave the current room, then
// destroy the session and its reconnection-key binding.
func (r *Router) HandleClose(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	metrics.ActiveConnections.Dec()
	s := r.sessions.Get(conn)
	if s == nil {
		return
	}
	r.leaveRoom(s)
	r.sessions.Remove(conn)
}

func (r *Router) handleJoin(conn Conn, ev protocol.ClientEvent) {
	name := sanitizeText(ev.Name, r.cfg.NameMax)
	avatar := sanitizeText(ev.Avatar, r.cfg.AvatarMax)
	requestedRoom := sanitizeText(ev.Room, r.cfg.RoomIDMax)
	key := sanitizeText(ev.ClientKey, r.cfg.KeyMax)
	room := r.registry.Resolve(requestedRoom)

	if name != "" && r.sessions.NameTaken(name, key) {
		r.dispatch.ToConn(conn, protocol.NewSystem("Name already in use. Choose another.", r.nowMillis()))
		return
	}

	// Switching rooms via a fresh join is an explicit leave-then-join.
	if prior := r.sessions.Get(conn); prior != nil {
		r.leaveRoom(prior)
	}

	s, evicted, err := r.sessions.ResolveOrCreate(conn, key, name, avatar)
	if err != nil {
		r.dispatch.ToConn(conn, protocol.NewSystem("Name already in use. Choose another.", r.nowMillis()))
		return
	}
	if evicted != nil {
		r.announceDeparture(evicted.Session, evicted.Room)
		evicted.Conn.Close()
		r.log.Info("stale connection evicted",
			zap.String("session", evicted.Session.ID),
			zap.String("name", evicted.Session.Name))
	}

	// Pre-join occupant snapshot for the joiner, then the join broadcast.
	r.dispatch.ToConn(conn, protocol.NewUserList(r.sessions.UsersIn(room.ID)))
	r.sessions.BindRoom(s, room.ID)

	r.system(room.ID, fmt.Sprintf("%s joined the room.", s.Name))
	r.dispatch.ToConn(conn, protocol.NewHistory(room.ID, r.store.History(room.ID)))
	r.dispatch.ToRoom(room.ID, protocol.NewUserList(r.sessions.UsersIn(room.ID)))
	r.dispatch.ToAll(r.roomList())
}

func (r *Router) handleMessage(conn Conn, ev protocol.ClientEvent) {
	s := r.sessions.Get(conn)
	if s == nil || s.Room == "" {
		return
	}
	text := sanitizeMessage(ev.Text, r.cfg.MessageMax)
	if text == "" {
		return
	}
	if moderation.ContainsURL(text) {
		r.dispatch.ToConn(conn, protocol.NewSystem("Links are not allowed in chat.", r.nowMillis()))
		return
	}
	text = moderation.Censor(text)

	now := r.now()
	if !r.guard.AllowMessage(s, now) {
		metrics.DroppedTotal.WithLabelValues(metrics.ReasonRateLimited).Inc()
		return
	}

	user := userInfo(s)
	msg := protocol.NewMessage(uuid.New().String(), user, text, now.UnixMilli())
	r.dispatch.ToRoom(s.Room, msg)
	r.store.AppendHistory(s.Room, protocol.HistoryItem{
		Kind: "message",
		ID:   msg.ID,
		User: &user,
		Text: msg.Text,
		TS:   msg.TS,
	})
}

func (r *Router) handleTyping(conn Conn, ev protocol.ClientEvent) {
	s := r.sessions.Get(conn)
	if s == nil || s.Room == "" {
		return
	}
	r.dispatch.ToRoom(s.Room, protocol.NewTyping(s.ID, ev.IsTyping))
}

func (r *Router) handleNudge(conn Conn) {
	s := r.sessions.Get(conn)
	if s == nil || s.Room == "" {
		return
	}
	if !r.guard.AllowNudge(s, r.now()) {
		metrics.DroppedTotal.WithLabelValues(metrics.ReasonNudgeCooldown).Inc()
		return
	}
	r.dispatch.ToRoom(s.Room, protocol.NewNudge(userInfo(s)))
	r.system(s.Room, fmt.Sprintf("%s sent a nudge!", s.Name))
}

func (r *Router) handleLeave(conn Conn) {
	s := r.sessions.Get(conn)
	if s == nil {
		return
	}
	r.leaveRoom(s)
	r.dispatch.ToConn(conn, r.roomList())
}

func (r *Router) handleUpdateProfile(conn Conn, ev protocol.ClientEvent) {
	s := r.sessions.Get(conn)
	if s == nil {
		return
	}
	avatar := sanitizeText(ev.Avatar, r.cfg.AvatarMax)
	if avatar == "" {
		return
	}
	s.Avatar = avatar
	r.store.SetProfile(s.Name, avatar)
	if s.Room != "" {
		r.dispatch.ToRoom(s.Room, protocol.NewUserList(r.sessions.UsersIn(s.Room)))
	}
}

func (r *Router) handleCreateRoom(ev protocol.ClientEvent) {
	name := sanitizeText(ev.Name, r.cfg.RoomNameMax)
	image := sanitizeText(ev.Image, r.cfg.AvatarMax)
	room := r.registry.Create(name, image)
	if room == nil {
		return
	}
	r.store.PersistRooms(r.registry.Defs())
	r.dispatch.ToAll(r.roomList())
}

// leaveRoom runs the leave transition for a session that is in a room:
// unbind, departure notice, updated user list, updated room list. The
// departing connection receives the notice and the updated list too; it is
// addressed explicitly because the occupant set no longer includes it.
// No-op for sessions without a room.
func (r *Router) leaveRoom(s *Session) {
	room := s.Room
	if room == "" {
		return
	}
	r.sessions.UnbindRoom(s)
	ts := r.nowMillis()
	notice := protocol.NewSystem(fmt.Sprintf("%s left the room.", s.Name), ts)
	users := protocol.NewUserList(r.sessions.UsersIn(room))
	r.dispatch.ToConn(s.conn, notice)
	r.dispatch.ToRoom(room, notice)
	r.dispatch.ToConn(s.conn, users)
	r.dispatch.ToRoom(room, users)
	r.store.AppendHistory(room, protocol.HistoryItem{Kind: "system", Text: notice.Text, TS: ts})
	r.dispatch.ToAll(r.roomList())
}

// announceDeparture reports an evicted session's exit to the room it was
// detached from.
func (r *Router) announceDeparture(s *Session, room string) {
	if room == "" {
		return
	}
	r.system(room, fmt.Sprintf("%s left the room.", s.Name))
	r.dispatch.ToRoom(room, protocol.NewUserList(r.sessions.UsersIn(room)))
	r.dispatch.ToAll(r.roomList())
}

// system broadcasts a notice to a room and appends it to durable history.
func (r *Router) system(roomID, text string) {
	ts := r.nowMillis()
	r.dispatch.ToRoom(roomID, protocol.NewSystem(text, ts))
	r.store.AppendHistory(roomID, protocol.HistoryItem{Kind: "system", Text: text, TS: ts})
}

func (r *Router) roomList() protocol.RoomListEvent {
	return protocol.NewRoomList(r.registry.List())
}

func (r *Router) nowMillis() int64 {
	return r.now().UnixMilli()
}

func truncateFrame(raw []byte) []byte {
	const max = 256
	if len(raw) <= max {
		return raw
	}
	return raw[:max]
}
