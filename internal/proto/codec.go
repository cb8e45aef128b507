package proto

import (
	"fmt"
	"io"
	"strconv"
)

// ReadFrame reads one frame: 6-char hex header, then exactly that many payload
// bytes. io.EOF passes through when the stream ends on a frame boundary.
func ReadFrame(r io.Reader) (*Frame, error) {
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	length, err := strconv.ParseUint(string(header[:]), 16, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHeader, string(header[:]))
	}
	var payload []byte
	if length > 0 {
		payload = make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}
	}
	return &Frame{Header: string(header[:]), Payload: payload}, nil
}

// WriteFrame writes header + payload to w (payload may be empty).
func WriteFrame(w io.Writer, payload []byte) error {
	header, err := EncodeHeader(len(payload))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}
	if len(payload) > 0 {
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}

// EncodeHeader returns n as 6 lowercase hex chars, zero-padded.
func EncodeHeader(n int) (string, error) {
	if n < 0 || n > MaxPayloadSize {
		return "", fmt.Errorf("%w: %d", ErrPayloadTooLarge, n)
	}
	return fmt.Sprintf("%06x", n), nil
}
