package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait    = 10 * time.Second
	maxFrameSize = 256 * 1024 // inline avatar payloads dominate frame size
)

// Client is one live WebSocket connection. Outbound frames are queued on a
// buffered channel and flushed by writePump; a full queue drops the frame
// rather than blocking the dispatcher.
type Client struct {
	conn   *websocket.Conn
	router *Router
	log    *zap.Logger

	pingPeriod time.Duration
	pongWait   time.Duration

	send chan []byte
	done chan struct{}
	once sync.Once
}

// NewClient wraps an upgraded connection. heartbeat is the pong deadline;
// pings go out slightly more often, and a connection that fails to answer
// within one interval is torn down.
func NewClient(conn *websocket.Conn, router *Router, heartbeat time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		conn:       conn,
		router:     router,
		log:        log,
		pingPeriod: heartbeat * 9 / 10,
		pongWait:   heartbeat,
		send:       make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the pumps and announces the connection to the router.
func (c *Client) Run() {
	c.router.HandleOpen(c)
	go c.writePump()
	go c.readPump()
}

// Send queues a frame for delivery, reporting false when the client is too
// slow to keep up and the frame was dropped.
func (c *Client) Send(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Close tears the transport down. Safe to call from any goroutine, more
// than once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// readPump reads frames and hands them to the router in arrival order. It
// owns the close transition: when the read loop exits for any reason the
// session is destroyed.
func (c *Client) readPump() {
	defer func() {
		c.router.HandleClose(c)
		c.Close()
	}()
	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("ws read error", zap.String("remote", c.conn.RemoteAddr().String()), zap.Error(err))
			}
			return
		}
		c.router.HandleEvent(c, raw)
	}
}

// writePump flushes queued frames and probes liveness with periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
