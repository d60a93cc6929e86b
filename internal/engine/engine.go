// Package engine owns the serial handle and its connection state machine.
// One engine instance manages exactly one logical connection: it opens the
// port, drives a background read loop, performs bounded writes, and
// publishes everything it observes to the event bus. I/O errors discovered
// on the read path never cross the goroutine boundary as Go errors; they
// surface only as IoFault events.
package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"serialterm/internal/bus"
	"serialterm/internal/codec"
	"serialterm/internal/model"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultDrainTimeout = 2 * time.Second
	maxWriteAttempts    = 3
	readBufferSize      = 4096
)

// Stats is a snapshot of the engine's traffic counters since connect
type Stats struct {
	BytesReceived  int64     `json:"bytes_received"`
	BytesSent      int64     `json:"bytes_sent"`
	FramesReceived int64     `json:"frames_received"`
	FramesSent     int64     `json:"frames_sent"`
	ConnectedAt    time.Time `json:"connected_at"`
}

// Engine manages the lifecycle of a single serial connection
type Engine struct {
	bus    *bus.Bus
	logger *zap.Logger

	opener       Opener
	pollInterval time.Duration
	drainTimeout time.Duration

	mu         sync.Mutex
	writeMu    sync.Mutex
	state      model.ConnectionState
	stateWord  atomic.Int32
	port       Port
	params     model.ConnectionParameters
	stop       chan struct{}
	done       chan struct{}
	repeatStop chan struct{}

	tracker *Tracker
	faults  *faultMonitor

	bytesIn, bytesOut   atomic.Int64
	framesIn, framesOut atomic.Int64
	connectedAt         time.Time
}

// Option customizes an engine at construction time
type Option func(*Engine)

// WithOpener replaces the serial transport, used by tests
func WithOpener(o Opener) Option {
	return func(e *Engine) { e.opener = o }
}

// WithPollInterval sets the read loop's per-iteration timeout
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) { e.pollInterval = d }
}

// WithDrainTimeout bounds the best-effort flush on disconnect
func WithDrainTimeout(d time.Duration) Option {
	return func(e *Engine) { e.drainTimeout = d }
}

// New creates an engine in the Closed state
func New(b *bus.Bus, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		bus:          b,
		logger:       logger.With(zap.String("component", "engine")),
		opener:       openSerialPort,
		pollInterval: defaultPollInterval,
		drainTimeout: defaultDrainTimeout,
		tracker:      NewTracker(),
		faults:       newFaultMonitor(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current connection state
func (e *Engine) State() model.ConnectionState {
	return model.ConnectionState(e.stateWord.Load())
}

// Parameters returns the parameters of the current or last connection
func (e *Engine) Parameters() model.ConnectionParameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Stats returns a snapshot of the traffic counters
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	connectedAt := e.connectedAt
	e.mu.Unlock()
	return Stats{
		BytesReceived:  e.bytesIn.Load(),
		BytesSent:      e.bytesOut.Load(),
		FramesReceived: e.framesIn.Load(),
		FramesSent:     e.framesOut.Load(),
		ConnectedAt:    connectedAt,
	}
}

// transition mutates the state under e.mu
func (e *Engine) transition(to model.ConnectionState) {
	e.state = to
	e.stateWord.Store(int32(to))
}

// Connect validates params, opens the port and starts the background read
// loop. Fails with ErrInvalidParameters before any I/O when validation
// fails, with ErrAlreadyConnected unless the engine is Closed or Faulted,
// and with ErrOpenFailed (retryable) when the port cannot be opened.
// Calling Connect while Faulted performs the reset transition first.
func (e *Engine) Connect(params model.ConnectionParameters) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	e.mu.Lock()
	var events []model.Event
	if e.state == model.StateFaulted {
		e.transition(model.StateClosed)
		events = append(events, model.NewStateChanged(model.StateFaulted, model.StateClosed))
	}
	if e.state != model.StateClosed {
		e.mu.Unlock()
		return fmt.Errorf("%w: state is %s", ErrAlreadyConnected, e.State())
	}
	e.transition(model.StateConnecting)
	events = append(events, model.NewStateChanged(model.StateClosed, model.StateConnecting))

	e.logger.Info("Opening port",
		zap.String("port", params.Port),
		zap.Int("baud_rate", params.BaudRate),
		zap.String("settings", params.String()),
	)
	if params.FlowControl != model.FlowControlNone {
		e.logger.Warn("Flow control is configured at driver level and not applied by the transport",
			zap.String("flow_control", string(params.FlowControl)),
		)
	}

	port, err := e.opener(params)
	if err == nil {
		if terr := port.SetReadTimeout(e.pollInterval); terr != nil {
			port.Close()
			err = terr
		}
	}
	if err != nil {
		e.transition(model.StateClosed)
		e.mu.Unlock()
		events = append(events,
			model.NewIoFault(model.FaultOpenFailed, err),
			model.NewStateChanged(model.StateConnecting, model.StateClosed),
		)
		e.publishAll(events)
		e.logger.Error("Failed to open port", zap.String("port", params.Port), zap.Error(err))
		return fmt.Errorf("%w: %w", ErrOpenFailed, err)
	}

	e.port = port
	e.params = params
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.tracker.Reset()
	e.faults.reset()
	e.bytesIn.Store(0)
	e.bytesOut.Store(0)
	e.framesIn.Store(0)
	e.framesOut.Store(0)
	e.connectedAt = time.Now()
	e.transition(model.StateOpen)
	events = append(events, model.NewStateChanged(model.StateConnecting, model.StateOpen))

	// The loop is released only after the StateChanged events below are
	// on the bus, so no DataReceived can precede StateChanged(.,Open).
	ready := make(chan struct{})
	go e.readLoop(port, ready, e.stop, e.done)
	e.mu.Unlock()

	e.publishAll(events)
	close(ready)
	e.logger.Info("Connected", zap.String("port", params.Port))
	return nil
}

// Send writes payload to the open port. Partial writes are retried until
// complete or the attempt budget is exhausted (ErrWriteIncomplete). A
// DataSent event is published only after the write completed successfully.
func (e *Engine) Send(payload []byte) error {
	if len(payload) == 0 {
		return nil
	}

	e.mu.Lock()
	if e.state != model.StateOpen {
		e.mu.Unlock()
		return fmt.Errorf("%w: state is %s", ErrNotConnected, e.State())
	}
	port := e.port
	e.mu.Unlock()

	// e.mu is not held across port.Write: the transport has no write
	// deadline, so a write stalled at driver level (flow control asserted)
	// must not block Disconnect. Disconnect closes the handle, which
	// unblocks the write with an error. writeMu keeps concurrent senders
	// from interleaving their bytes.
	e.writeMu.Lock()
	written := 0
	var lastErr error
	for attempt := 0; attempt < maxWriteAttempts && written < len(payload); attempt++ {
		n, err := port.Write(payload[written:])
		written += n
		if err != nil {
			if classify(err) == faultFatal {
				e.writeMu.Unlock()
				if e.State() != model.StateOpen {
					// The handle was closed under us by a concurrent
					// disconnect or fault, not by device loss.
					return fmt.Errorf("%w: state is %s", ErrNotConnected, e.State())
				}
				e.escalate(err)
				return fmt.Errorf("%w: %w", ErrDeviceLost, err)
			}
			lastErr = err
		}
	}
	e.writeMu.Unlock()

	if written < len(payload) {
		if lastErr != nil {
			return fmt.Errorf("%w: wrote %d of %d bytes: %v", ErrWriteIncomplete, written, len(payload), lastErr)
		}
		return fmt.Errorf("%w: wrote %d of %d bytes", ErrWriteIncomplete, written, len(payload))
	}

	// A frame that raced a teardown still went out, but its DataSent may
	// not follow StateChanged(Open, Closed) on the bus.
	if e.State() != model.StateOpen {
		return nil
	}
	e.publishData(model.DirectionOut, payload)
	return nil
}

// SendText encodes text per the requested format and line-ending policy and
// sends the result. Codec errors are returned as-is and publish nothing.
func (e *Engine) SendText(text string, format model.Format, eol codec.LineEnding) error {
	data, err := codec.Encode(text, format, eol)
	if err != nil {
		return err
	}
	return e.Send(data)
}

// Disconnect stops the read loop, flushes pending writes best-effort and
// closes the port. Idempotent: calling it while not Open is a no-op.
func (e *Engine) Disconnect() error {
	e.mu.Lock()
	if e.state != model.StateOpen {
		e.mu.Unlock()
		return nil
	}
	e.transition(model.StateClosing)
	port := e.port
	stop := e.stop
	done := e.done
	e.port = nil
	e.stopRepeatLocked()
	e.mu.Unlock()

	close(stop)

	drained := make(chan struct{})
	go func() {
		port.Drain()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(e.drainTimeout):
		e.logger.Warn("Drain timed out, closing anyway")
	}
	port.Close()

	select {
	case <-done:
	case <-time.After(e.drainTimeout):
		e.logger.Warn("Read loop did not stop in time")
	}

	e.mu.Lock()
	e.transition(model.StateClosed)
	e.mu.Unlock()

	e.bus.Publish(model.NewStateChanged(model.StateOpen, model.StateClosed))
	e.logger.Info("Disconnected")
	return nil
}

// Reset clears a fault episode, returning the engine to Closed so a new
// Connect is allowed. No-op unless the engine is Faulted.
func (e *Engine) Reset() error {
	e.mu.Lock()
	if e.state != model.StateFaulted {
		e.mu.Unlock()
		return nil
	}
	e.transition(model.StateClosed)
	e.mu.Unlock()

	e.bus.Publish(model.NewStateChanged(model.StateFaulted, model.StateClosed))
	e.logger.Info("Fault cleared")
	return nil
}

// StartRepeat periodically resends payload until StopRepeat, Disconnect or
// a send failure.
func (e *Engine) StartRepeat(payload []byte, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("repeat interval must be positive, got %v", interval)
	}

	e.mu.Lock()
	if e.state != model.StateOpen {
		e.mu.Unlock()
		return fmt.Errorf("%w: state is %s", ErrNotConnected, e.State())
	}
	e.stopRepeatLocked()
	stop := make(chan struct{})
	e.repeatStop = stop
	e.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if err := e.Send(payload); err != nil {
					e.logger.Warn("Repeat send stopped", zap.Error(err))
					return
				}
			}
		}
	}()
	return nil
}

// StopRepeat cancels a running repeat sender, if any
func (e *Engine) StopRepeat() {
	e.mu.Lock()
	e.stopRepeatLocked()
	e.mu.Unlock()
}

func (e *Engine) stopRepeatLocked() {
	if e.repeatStop != nil {
		close(e.repeatStop)
		e.repeatStop = nil
	}
}

// readLoop polls the port until stopped or a fatal fault. Each iteration
// is bounded by the port's read timeout, so a pending Disconnect is
// honored within one poll interval.
func (e *Engine) readLoop(port Port, ready, stop, done chan struct{}) {
	defer close(done)

	select {
	case <-ready:
	case <-stop:
		return
	}

	buf := make([]byte, readBufferSize)
	for {
		select {
		case <-stop:
			return
		default:
		}

		n, err := port.Read(buf)
		if err != nil {
			select {
			case <-stop:
				// The error came from our own close during disconnect.
				return
			default:
			}
			if e.faults.observe(err) == faultFatal {
				e.escalate(err)
				return
			}
			e.logger.Debug("Transient read error, retrying", zap.Error(err))
			continue
		}
		e.faults.recovered()
		if n == 0 {
			// Poll timeout, no data pending.
			continue
		}

		payload := make([]byte, n)
		copy(payload, buf[:n])
		e.publishData(model.DirectionIn, payload)
	}
}

// escalate drives the engine into Faulted after a fatal I/O error. The
// state check makes the transition happen at most once per fault episode
// even when the read and write paths observe the same fault concurrently.
func (e *Engine) escalate(cause error) {
	e.mu.Lock()
	if e.state != model.StateOpen {
		e.mu.Unlock()
		return
	}
	e.transition(model.StateFaulted)
	port := e.port
	e.port = nil
	e.stopRepeatLocked()
	e.mu.Unlock()

	// The device is presumed gone: close immediately, no flush attempt.
	if port != nil {
		port.Close()
	}

	e.logger.Error("Device lost", zap.Error(cause))
	e.bus.Publish(model.NewIoFault(model.FaultDeviceLost, cause))
	e.bus.Publish(model.NewStateChanged(model.StateOpen, model.StateFaulted))
}

// publishData decodes payload, enriches it with timing metadata and
// publishes the matching data event.
func (e *Engine) publishData(dir model.Direction, payload []byte) {
	now := time.Now()
	decoded := codec.Decode(payload)
	frame := &model.Frame{
		Payload:         payload,
		ASCII:           decoded.ASCII,
		Hex:             decoded.Hex,
		Direction:       dir,
		Timestamp:       now,
		InterFrameDelay: e.tracker.Enrich(dir, now),
	}

	if dir == model.DirectionIn {
		e.bytesIn.Add(int64(len(payload)))
		e.framesIn.Add(1)
		e.bus.Publish(model.NewDataReceived(frame))
	} else {
		e.bytesOut.Add(int64(len(payload)))
		e.framesOut.Add(1)
		e.bus.Publish(model.NewDataSent(frame))
	}
}

func (e *Engine) publishAll(events []model.Event) {
	for _, ev := range events {
		e.bus.Publish(ev)
	}
}
