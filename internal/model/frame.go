package model

import "time"

// Direction indicates whether a frame was received or sent
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Format represents a textual rendering of frame payloads
type Format string

const (
	FormatASCII Format = "ascii"
	FormatHex   Format = "hex"
	FormatBoth  Format = "both"
)

// Frame is one logical unit of serial data plus its metadata. Frames are
// immutable after creation; subscribers must not modify the payload.
type Frame struct {
	Payload         []byte        `json:"-"`
	ASCII           string        `json:"ascii"`
	Hex             string        `json:"hex"`
	Direction       Direction     `json:"direction"`
	Timestamp       time.Time     `json:"timestamp"`
	InterFrameDelay time.Duration `json:"inter_frame_delay"`
}
