package server

import (
	"testing"
	"time"
)

func TestClientHeartbeatDeadlines(t *testing.T) {
	c := NewClient(nil, nil, 30*time.Second, nil)
	if c.pongWait != 30*time.Second {
		t.Fatalf("pongWait = %s, want one heartbeat interval", c.pongWait)
	}
	if c.pingPeriod >= c.pongWait {
		t.Fatalf("pingPeriod %s must beat the pong deadline %s", c.pingPeriod, c.pongWait)
	}
}
