// Package monitor exposes the event stream to websocket clients, so a
// browser or a second terminal can watch a session live. The monitor is a
// read-only observer: clients receive every event but cannot inject traffic.
package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"serialterm/internal/bus"
	"serialterm/internal/model"
)

// message is the wire format pushed to websocket clients
type message struct {
	Type      string         `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// StatusFunc supplies the snapshot sent to a client right after it connects
type StatusFunc func() map[string]any

// Server upgrades HTTP connections to websockets and fans the event stream
// out to them. A client that cannot keep up has messages dropped rather
// than stalling the bus.
type Server struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger
	status   StatusFunc

	mu      sync.RWMutex
	clients map[uuid.UUID]*client

	sub     *bus.Subscription
	httpSrv *http.Server
}

// NewServer creates a monitor server. status may be nil.
func NewServer(logger *zap.Logger, status StatusFunc) *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger:  logger.With(zap.String("component", "monitor")),
		status:  status,
		clients: make(map[uuid.UUID]*client),
	}
}

// Attach subscribes the server to all events on b
func (s *Server) Attach(b *bus.Bus) {
	s.sub = b.Subscribe(s.broadcast)
}

// Handler returns the HTTP handler performing the websocket upgrade
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(s.handleUpgrade)
}

// ListenAndServe serves the websocket endpoint on addr until Close
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.Handler())

	s.mu.Lock()
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}
	srv := s.httpSrv
	s.mu.Unlock()

	s.logger.Info("Monitor listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close detaches from the bus and disconnects every client
func (s *Server) Close() error {
	if s.sub != nil {
		s.sub.Unsubscribe()
		s.sub = nil
	}

	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	srv := s.httpSrv
	s.httpSrv = nil
	s.mu.Unlock()

	for _, c := range clients {
		c.close()
	}

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
	return nil
}

// ClientCount returns the number of connected websocket clients
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade websocket connection", zap.Error(err))
		return
	}

	c := newClient(conn, s.logger)
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()

	s.logger.Info("Monitor client connected",
		zap.String("client_id", c.id.String()),
		zap.String("remote_addr", r.RemoteAddr),
	)

	if s.status != nil {
		c.send(s.encode(message{
			Type:      "status",
			Timestamp: time.Now(),
			Data:      s.status(),
		}))
	}

	go c.writeLoop()
	go func() {
		c.readLoop()
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		s.logger.Info("Monitor client disconnected", zap.String("client_id", c.id.String()))
	}()
}

// broadcast runs inside the bus delivery path; it must never block
func (s *Server) broadcast(ev model.Event) {
	s.mu.RLock()
	if len(s.clients) == 0 {
		s.mu.RUnlock()
		return
	}
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	payload := s.encode(eventMessage(ev))
	if payload == nil {
		return
	}
	for _, c := range clients {
		if !c.send(payload) {
			s.logger.Warn("Client send buffer full, dropping event",
				zap.String("client_id", c.id.String()),
				zap.String("event_type", string(ev.Type)),
			)
		}
	}
}

func (s *Server) encode(m message) []byte {
	data, err := json.Marshal(m)
	if err != nil {
		s.logger.Error("Failed to marshal monitor message", zap.Error(err))
		return nil
	}
	return data
}

// eventMessage flattens a bus event into the client wire format
func eventMessage(ev model.Event) message {
	m := message{
		Type:      string(ev.Type),
		Timestamp: ev.Timestamp,
		Data:      make(map[string]any),
	}

	switch ev.Type {
	case model.EventStateChanged:
		m.Data["old_state"] = ev.OldState.String()
		m.Data["new_state"] = ev.NewState.String()
	case model.EventIoFault:
		m.Data["reason"] = string(ev.Fault)
		if ev.Err != nil {
			m.Data["error"] = ev.Err.Error()
		}
	case model.EventDataReceived, model.EventDataSent:
		if ev.Frame != nil {
			m.Data["direction"] = string(ev.Frame.Direction)
			m.Data["ascii"] = ev.Frame.ASCII
			m.Data["hex"] = ev.Frame.Hex
			m.Data["delay_ms"] = float64(ev.Frame.InterFrameDelay) / float64(time.Millisecond)
		}
	}
	return m
}
