package model

import "time"

// EventType tags the variant carried by an Event
type EventType string

const (
	EventStateChanged EventType = "state_changed"
	EventDataReceived EventType = "data_received"
	EventDataSent     EventType = "data_sent"
	EventIoFault      EventType = "io_fault"
)

// FaultReason distinguishes the classes of I/O fault surfaced on the bus
type FaultReason string

const (
	// FaultOpenFailed is transient: the port could not be opened, the
	// caller may retry immediately.
	FaultOpenFailed FaultReason = "open_failed"
	// FaultDeviceLost is fatal until an explicit reset: the device was
	// removed or the handle invalidated while the link was open.
	FaultDeviceLost FaultReason = "device_lost"
)

// Event is published exactly once per occurrence and delivered to all
// subscribers registered before the publish began, in subscription order.
// Only the fields relevant to the Type are set.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	OldState  ConnectionState `json:"old_state,omitempty"`
	NewState  ConnectionState `json:"new_state,omitempty"`
	Frame     *Frame          `json:"frame,omitempty"`
	Fault     FaultReason     `json:"fault,omitempty"`
	Err       error           `json:"-"`
}

// NewStateChanged builds a StateChanged event
func NewStateChanged(old, next ConnectionState) Event {
	return Event{
		Type:      EventStateChanged,
		Timestamp: time.Now(),
		OldState:  old,
		NewState:  next,
	}
}

// NewDataReceived builds a DataReceived event carrying the given frame
func NewDataReceived(frame *Frame) Event {
	return Event{
		Type:      EventDataReceived,
		Timestamp: frame.Timestamp,
		Frame:     frame,
	}
}

// NewDataSent builds a DataSent event carrying the given frame
func NewDataSent(frame *Frame) Event {
	return Event{
		Type:      EventDataSent,
		Timestamp: frame.Timestamp,
		Frame:     frame,
	}
}

// NewIoFault builds an IoFault event with the underlying cause
func NewIoFault(reason FaultReason, err error) Event {
	return Event{
		Type:      EventIoFault,
		Timestamp: time.Now(),
		Fault:     reason,
		Err:       err,
	}
}
