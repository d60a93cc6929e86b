package session

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"serialterm/internal/bus"
	"serialterm/internal/model"
)

type memSink struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (s *memSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *memSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *memSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func frameEvent(t model.EventType, dir model.Direction, ascii string) model.Event {
	ts := time.Date(2025, 6, 1, 14, 30, 0, 500*int(time.Millisecond), time.UTC)
	ev := model.Event{Type: t, Timestamp: ts}
	ev.Frame = &model.Frame{
		ASCII:     ascii,
		Direction: dir,
		Timestamp: ts,
	}
	return ev
}

func TestRecorderWritesOneLinePerFrame(t *testing.T) {
	b := bus.New(zap.NewNop())
	sink := &memSink{}
	rec := NewRecorder(sink, zap.NewNop())
	rec.Attach(b)
	defer rec.Close()

	b.Publish(frameEvent(model.EventDataReceived, model.DirectionIn, "OK"))
	b.Publish(frameEvent(model.EventDataSent, model.DirectionOut, "AT"))

	lines := strings.Split(strings.TrimRight(sink.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), sink.String())
	}
	if lines[0] != "2025-06-01 14:30:00.500 RX: OK" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "2025-06-01 14:30:00.500 TX: AT" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestRecorderIgnoresNonDataEvents(t *testing.T) {
	b := bus.New(zap.NewNop())
	sink := &memSink{}
	rec := NewRecorder(sink, zap.NewNop())
	rec.Attach(b)
	defer rec.Close()

	b.Publish(model.NewStateChanged(model.StateClosed, model.StateConnecting))

	if sink.String() != "" {
		t.Errorf("state event was captured: %q", sink.String())
	}
}

func TestRecorderCloseStopsCapture(t *testing.T) {
	b := bus.New(zap.NewNop())
	sink := &memSink{}
	rec := NewRecorder(sink, zap.NewNop())
	rec.Attach(b)

	if err := rec.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if !sink.closed {
		t.Error("sink not closed")
	}

	b.Publish(frameEvent(model.EventDataReceived, model.DirectionIn, "late"))
	if sink.String() != "" {
		t.Errorf("frame captured after close: %q", sink.String())
	}
}
