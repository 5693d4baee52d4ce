package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cliptray/cliptray/internal/bus"
	"github.com/cliptray/cliptray/pkg/protocol"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
	wsMaxMessage = 4 * 1024
	wsSendBuffer = 64
)

// handleEvents upgrades to a WebSocket and streams library events. The
// stream is one-way; inbound messages are read only to process control
// frames.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		writeJSON(w, http.StatusNotFound, protocol.NewErrorResponse(protocol.ErrNotFound, "event stream not available"))
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return s.policy.Load().Allows(r.Header.Get("Origin"))
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("events: upgrade failed", "error", err)
		return
	}

	sub := &subscriber{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, wsSendBuffer),
		done: make(chan struct{}),
	}
	sub.push(protocol.EventFrame{
		Event:   protocol.EventHello,
		Payload: map[string]any{"version": protocol.ProtocolVersion},
	})

	s.bus.Subscribe(sub.id, func(e bus.Event) {
		sub.push(protocol.EventFrame{Event: e.Name, Payload: e.Payload, Seq: e.Seq, Source: e.Source})
	})
	slog.Debug("events: subscriber connected", "id", sub.id, "origin", r.Header.Get("Origin"))

	go sub.writePump()
	sub.readPump()

	s.bus.Unsubscribe(sub.id)
	close(sub.done)
	slog.Debug("events: subscriber disconnected", "id", sub.id)
}

type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// push queues a frame without blocking the publisher. Slow subscribers lose
// events rather than stall the library.
func (c *subscriber) push(frame protocol.EventFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		slog.Error("events: marshal failed", "event", frame.Event, "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		slog.Warn("events: send buffer full, dropping event", "id", c.id, "event", frame.Event)
	}
}

func (c *subscriber) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(wsMaxMessage)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("events: read error", "id", c.id, "error", err)
			}
			return
		}
	}
}

func (c *subscriber) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
