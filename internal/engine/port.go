package engine

import (
	"fmt"
	"time"

	"go.bug.st/serial"

	"serialterm/internal/model"
)

// Port is the subset of the serial transport the engine drives. The handle
// is exclusively owned by the engine; no other component touches it.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(t time.Duration) error
	Drain() error
}

// Opener opens a port for the given parameters. Swapped out in tests.
type Opener func(params model.ConnectionParameters) (Port, error)

// openSerialPort is the default Opener, backed by go.bug.st/serial
func openSerialPort(params model.ConnectionParameters) (Port, error) {
	mode, err := buildMode(params)
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(params.Port, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

func buildMode(params model.ConnectionParameters) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: params.BaudRate,
		DataBits: params.DataBits,
	}

	switch params.Parity {
	case model.ParityNone:
		mode.Parity = serial.NoParity
	case model.ParityEven:
		mode.Parity = serial.EvenParity
	case model.ParityOdd:
		mode.Parity = serial.OddParity
	case model.ParityMark:
		mode.Parity = serial.MarkParity
	case model.ParitySpace:
		mode.Parity = serial.SpaceParity
	default:
		return nil, fmt.Errorf("unsupported parity %q", params.Parity)
	}

	switch params.StopBits {
	case model.StopBitsOne:
		mode.StopBits = serial.OneStopBit
	case model.StopBitsOnePointFive:
		mode.StopBits = serial.OnePointFiveStopBits
	case model.StopBitsTwo:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits %q", params.StopBits)
	}

	return mode, nil
}
