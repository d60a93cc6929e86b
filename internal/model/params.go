package model

import "fmt"

// Parity represents the parity bit mode of a serial link
type Parity string

const (
	ParityNone  Parity = "none"
	ParityEven  Parity = "even"
	ParityOdd   Parity = "odd"
	ParityMark  Parity = "mark"
	ParitySpace Parity = "space"
)

// StopBits represents the number of stop bits
type StopBits string

const (
	StopBitsOne          StopBits = "1"
	StopBitsOnePointFive StopBits = "1.5"
	StopBitsTwo          StopBits = "2"
)

// FlowControl represents the flow control mode
type FlowControl string

const (
	FlowControlNone    FlowControl = "none"
	FlowControlXonXoff FlowControl = "xon_xoff"
	FlowControlRTSCTS  FlowControl = "rts_cts"
	FlowControlDSRDTR  FlowControl = "dsr_dtr"
)

// ConnectionParameters holds everything needed to open a serial link.
// A value is read once at connect time and never mutated afterwards;
// reconnecting with different settings requires a fresh value.
type ConnectionParameters struct {
	Port        string      `json:"port"`
	BaudRate    int         `json:"baud_rate"`
	DataBits    int         `json:"data_bits"`
	Parity      Parity      `json:"parity"`
	StopBits    StopBits    `json:"stop_bits"`
	FlowControl FlowControl `json:"flow_control"`
}

// Validate checks the parameters before any I/O is attempted
func (p ConnectionParameters) Validate() error {
	if p.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if p.BaudRate <= 0 {
		return fmt.Errorf("baud rate must be positive, got %d", p.BaudRate)
	}
	if p.DataBits < 5 || p.DataBits > 8 {
		return fmt.Errorf("data bits must be 5-8, got %d", p.DataBits)
	}
	switch p.Parity {
	case ParityNone, ParityEven, ParityOdd, ParityMark, ParitySpace:
	default:
		return fmt.Errorf("invalid parity %q", p.Parity)
	}
	switch p.StopBits {
	case StopBitsOne, StopBitsOnePointFive, StopBitsTwo:
	default:
		return fmt.Errorf("invalid stop bits %q", p.StopBits)
	}
	switch p.FlowControl {
	case FlowControlNone, FlowControlXonXoff, FlowControlRTSCTS, FlowControlDSRDTR:
	default:
		return fmt.Errorf("invalid flow control %q", p.FlowControl)
	}
	return nil
}

// String returns a short human-readable summary, e.g. "/dev/ttyUSB0 (115200 8N1)"
func (p ConnectionParameters) String() string {
	parity := "N"
	switch p.Parity {
	case ParityEven:
		parity = "E"
	case ParityOdd:
		parity = "O"
	case ParityMark:
		parity = "M"
	case ParitySpace:
		parity = "S"
	}
	return fmt.Sprintf("%s (%d %d%s%s)", p.Port, p.BaudRate, p.DataBits, parity, p.StopBits)
}
