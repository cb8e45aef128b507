package proto

import "errors"

// HeaderSize: length header is always exactly 6 hex chars.
const HeaderSize = 6

// MaxPayloadSize: largest length representable in 6 hex digits.
const MaxPayloadSize = 0xFFFFFF

var ErrInvalidHeader = errors.New("invalid frame header")
var ErrPayloadTooLarge = errors.New("payload exceeds header range")

// Frame: one wire message. Header is the 6 hex chars as read or encoded,
// Payload has exactly the declared number of bytes.
type Frame struct {
	Header  string
	Payload []byte
}
