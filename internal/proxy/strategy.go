package proxy

import (
	"dev.c0redev.hexpipe/internal/proto"
)

// Mode selects the framing strategy for the whole session.
type Mode int

const (
	// ModeFramed is the interactive protocol mode: headers are stripped
	// inbound and generated outbound.
	ModeFramed Mode = iota
	// ModeRaw passes wire bytes through for inspection.
	ModeRaw
)

func (m Mode) String() string {
	if m == ModeRaw {
		return "raw"
	}
	return "framed"
}

// strategy is the per-mode relay policy. inbound relays one server frame to
// the console; outbound relays one console line to the server and reports the
// header and payload as sent, for the transcript.
type strategy interface {
	inbound(p *Pair, f *proto.Frame) error
	outbound(p *Pair, line []byte) (header string, payload []byte, err error)
}

func forMode(m Mode) strategy {
	if m == ModeRaw {
		return rawStrategy{}
	}
	return framedStrategy{}
}

// rawStrategy re-emits the wire format. Inbound keeps the header and adds one
// trailing newline; outbound forwards the console line untouched, terminator
// included, on the assumption that the operator framed it already.
type rawStrategy struct{}

func (rawStrategy) inbound(p *Pair, f *proto.Frame) error {
	buf := make([]byte, 0, len(f.Header)+len(f.Payload)+1)
	buf = append(buf, f.Header...)
	buf = append(buf, f.Payload...)
	buf = append(buf, '\n')
	return p.WriteConsole(buf)
}

func (rawStrategy) outbound(p *Pair, line []byte) (string, []byte, error) {
	if err := p.WriteServer(line); err != nil {
		return "", nil, err
	}
	return "", line, nil
}

// framedStrategy translates between newline-delimited console messages and
// length-prefixed wire frames.
type framedStrategy struct{}

func (framedStrategy) inbound(p *Pair, f *proto.Frame) error {
	buf := make([]byte, 0, len(f.Payload)+1)
	buf = append(buf, f.Payload...)
	buf = append(buf, '\n')
	return p.WriteConsole(buf)
}

func (framedStrategy) outbound(p *Pair, line []byte) (string, []byte, error) {
	msg := chompLine(line)
	header, err := proto.EncodeHeader(len(msg))
	if err != nil {
		return "", nil, err
	}
	buf := make([]byte, 0, len(header)+len(msg))
	buf = append(buf, header...)
	buf = append(buf, msg...)
	if err := p.WriteServer(buf); err != nil {
		return "", nil, err
	}
	return header, msg, nil
}

// chompLine strips one trailing LF or CRLF.
func chompLine(line []byte) []byte {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
	}
	return line
}
