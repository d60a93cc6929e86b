package engine

import (
	"errors"
	"io"
	"os"
	"sync"
	"syscall"
	"time"

	"go.bug.st/serial"
)

// classification separates recoverable read errors from device loss
type classification int

const (
	faultTransient classification = iota
	faultFatal
)

// faultMonitor classifies I/O failures on the read path. A bounded number
// of consecutive transient errors are retried with a short backoff before
// escalating; anything indicating the device node is gone escalates
// immediately.
type faultMonitor struct {
	mu           sync.Mutex
	consecutive  int
	maxTransient int
	backoff      time.Duration
}

func newFaultMonitor() *faultMonitor {
	return &faultMonitor{
		maxTransient: 3,
		backoff:      50 * time.Millisecond,
	}
}

// observe classifies err and applies the backoff for transient errors.
// Returns faultFatal once the transient budget is exhausted.
func (m *faultMonitor) observe(err error) classification {
	if classify(err) == faultFatal {
		return faultFatal
	}

	m.mu.Lock()
	m.consecutive++
	exhausted := m.consecutive > m.maxTransient
	m.mu.Unlock()

	if exhausted {
		return faultFatal
	}
	time.Sleep(m.backoff)
	return faultTransient
}

// recovered clears the consecutive-error counter after a successful read
func (m *faultMonitor) recovered() {
	m.mu.Lock()
	m.consecutive = 0
	m.mu.Unlock()
}

// reset starts a fresh fault episode on connect
func (m *faultMonitor) reset() {
	m.recovered()
}

// classify maps an I/O error to transient or fatal. EOF and closed-handle
// errors are fatal: on Linux a removed USB adapter surfaces as EOF or EIO
// on the next read, and treating them as transient would spin.
func classify(err error) classification {
	if err == nil {
		return faultTransient
	}

	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortClosed, serial.PortNotFound, serial.InvalidSerialPort:
			return faultFatal
		}
	}

	if errors.Is(err, io.EOF) ||
		errors.Is(err, os.ErrClosed) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, syscall.EIO) ||
		errors.Is(err, syscall.ENXIO) ||
		errors.Is(err, syscall.ENODEV) ||
		errors.Is(err, syscall.ENOENT) ||
		errors.Is(err, syscall.EBADF) {
		return faultFatal
	}

	// Interrupted or would-block conditions are retried.
	if errors.Is(err, syscall.EINTR) || errors.Is(err, syscall.EAGAIN) {
		return faultTransient
	}

	// Unknown errors count toward the transient budget rather than
	// killing the link on a single occurrence.
	return faultTransient
}
