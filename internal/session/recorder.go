// Package session records serial traffic to a capture file.
package session

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"

	"serialterm/internal/bus"
	"serialterm/internal/model"
)

const timestampLayout = "2006-01-02 15:04:05.000"

// FileConfig controls the capture file and its rotation
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Recorder appends every frame crossing the bus to a capture sink, one line
// per frame. Writes happen inside the bus delivery path, so they inherit its
// ordering; the recorder never reorders traffic.
type Recorder struct {
	mu     sync.Mutex
	sink   io.WriteCloser
	sub    *bus.Subscription
	logger *zap.Logger
	closed bool
}

// NewRecorder captures to an arbitrary sink. The recorder takes ownership
// of the sink and closes it on Close.
func NewRecorder(sink io.WriteCloser, logger *zap.Logger) *Recorder {
	return &Recorder{
		sink:   sink,
		logger: logger.With(zap.String("component", "session")),
	}
}

// NewFileRecorder captures to a size-rotated file
func NewFileRecorder(cfg FileConfig, logger *zap.Logger) *Recorder {
	return NewRecorder(&lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}, logger)
}

// Attach subscribes the recorder to data events on b
func (r *Recorder) Attach(b *bus.Bus) {
	r.sub = b.SubscribeTypes(r.record, model.EventDataReceived, model.EventDataSent)
}

// Close detaches from the bus and closes the underlying sink. Safe to call
// more than once.
func (r *Recorder) Close() error {
	if r.sub != nil {
		r.sub.Unsubscribe()
		r.sub = nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.sink.Close()
}

func (r *Recorder) record(ev model.Event) {
	frame := ev.Frame
	if frame == nil {
		return
	}

	dir := "RX"
	if frame.Direction == model.DirectionOut {
		dir = "TX"
	}
	line := fmt.Sprintf("%s %s: %s\n",
		frame.Timestamp.Format(timestampLayout), dir, frame.ASCII)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	if _, err := io.WriteString(r.sink, line); err != nil {
		r.logger.Error("Failed to write capture line", zap.Error(err))
	}
}
