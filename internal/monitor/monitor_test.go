package monitor

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"serialterm/internal/bus"
	"serialterm/internal/model"
)

func dialTestServer(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Registration happens after the handshake completes on the server.
	deadline := time.Now().Add(2 * time.Second)
	for s.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if s.ClientCount() == 0 {
		t.Fatal("client never registered")
	}
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m message
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal %q: %v", data, err)
	}
	return m
}

func TestMonitorBroadcastsStateChanges(t *testing.T) {
	b := bus.New(zap.NewNop())
	s := NewServer(zap.NewNop(), nil)
	s.Attach(b)
	defer s.Close()

	conn := dialTestServer(t, s)

	b.Publish(model.NewStateChanged(model.StateClosed, model.StateConnecting))

	m := readMessage(t, conn)
	if m.Type != string(model.EventStateChanged) {
		t.Fatalf("type = %q", m.Type)
	}
	if m.Data["old_state"] != "closed" || m.Data["new_state"] != "connecting" {
		t.Errorf("data = %+v", m.Data)
	}
}

func TestMonitorBroadcastsFrames(t *testing.T) {
	b := bus.New(zap.NewNop())
	s := NewServer(zap.NewNop(), nil)
	s.Attach(b)
	defer s.Close()

	conn := dialTestServer(t, s)

	frame := &model.Frame{
		Payload:         []byte("OK"),
		ASCII:           "OK",
		Hex:             "4F 4B",
		Direction:       model.DirectionIn,
		Timestamp:       time.Now(),
		InterFrameDelay: 5 * time.Millisecond,
	}
	b.Publish(model.NewDataReceived(frame))

	m := readMessage(t, conn)
	if m.Type != string(model.EventDataReceived) {
		t.Fatalf("type = %q", m.Type)
	}
	if m.Data["ascii"] != "OK" || m.Data["hex"] != "4F 4B" {
		t.Errorf("data = %+v", m.Data)
	}
	if m.Data["delay_ms"] != 5.0 {
		t.Errorf("delay_ms = %v", m.Data["delay_ms"])
	}
}

func TestMonitorSendsStatusOnConnect(t *testing.T) {
	s := NewServer(zap.NewNop(), func() map[string]any {
		return map[string]any{"state": "closed"}
	})
	defer s.Close()

	conn := dialTestServer(t, s)

	m := readMessage(t, conn)
	if m.Type != "status" {
		t.Fatalf("type = %q, want status", m.Type)
	}
	if m.Data["state"] != "closed" {
		t.Errorf("data = %+v", m.Data)
	}
}
