package server

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/dialspace/dialspace/internal/metrics"
)

// roster enumerates live connections for fan-out.
type roster interface {
	ConnsIn(roomID string) []Conn
	Conns() []Conn
}

// Dispatcher fans events out to room members or to every session. Delivery
// is fire-and-forget: a slow or closed connection is skipped without
// affecting the others.
type Dispatcher struct {
	roster roster
	log    *zap.Logger
}

// NewDispatcher builds a dispatcher over the given roster.
func NewDispatcher(roster roster, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{roster: roster, log: log}
}

// ToRoom sends event to every session currently in roomID.
func (d *Dispatcher) ToRoom(roomID string, event any) {
	data, ok := d.encode(event)
	if !ok {
		return
	}
	for _, conn := range d.roster.ConnsIn(roomID) {
		d.deliver(conn, data)
	}
}

// ToAll sends event to every session process-wide.
func (d *Dispatcher) ToAll(event any) {
	data, ok := d.encode(event)
	if !ok {
		return
	}
	for _, conn := range d.roster.Conns() {
		d.deliver(conn, data)
	}
}

// ToConn sends event to a single connection.
func (d *Dispatcher) ToConn(conn Conn, event any) {
	if data, ok := d.encode(event); ok {
		d.deliver(conn, data)
	}
}

func (d *Dispatcher) deliver(conn Conn, data []byte) {
	if conn.Send(data) {
		metrics.BroadcastsTotal.Inc()
	} else {
		metrics.DroppedTotal.WithLabelValues(metrics.ReasonSlowClient).Inc()
	}
}

func (d *Dispatcher) encode(event any) ([]byte, bool) {
	data, err := json.Marshal(event)
	if err != nil {
		d.log.Error("encode outbound event", zap.Error(err))
		return nil, false
	}
	return data, true
}
