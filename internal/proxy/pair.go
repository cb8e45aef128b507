package proxy

import (
	"bufio"
	"fmt"
	"io"

	"dev.c0redev.hexpipe/internal/proto"
)

// Pair wraps the two endpoints of a session: the connected server stream and
// the local console. Each operation blocks on its own endpoint only; the
// session loop multiplexes them.
type Pair struct {
	server io.ReadWriter
	sr     *bufio.Reader
	in     *bufio.Reader
	out    *bufio.Writer
}

func NewPair(server io.ReadWriter, consoleIn io.Reader, consoleOut io.Writer) *Pair {
	return &Pair{
		server: server,
		sr:     bufio.NewReader(server),
		in:     bufio.NewReader(consoleIn),
		out:    bufio.NewWriter(consoleOut),
	}
}

// ReadServerFrame reads one length-prefixed frame from the server endpoint.
func (p *Pair) ReadServerFrame() (*proto.Frame, error) {
	f, err := proto.ReadFrame(p.sr)
	if err != nil {
		return nil, fmt.Errorf("%w: server: %w", ErrRead, err)
	}
	return f, nil
}

// ReadConsoleLine reads one line, terminator included. A final unterminated
// line is still delivered; end-of-stream with no data is a read error.
func (p *Pair) ReadConsoleLine() ([]byte, error) {
	line, err := p.in.ReadBytes('\n')
	if err != nil {
		if len(line) > 0 {
			return line, nil
		}
		return nil, fmt.Errorf("%w: console: %w", ErrRead, err)
	}
	return line, nil
}

// WriteServer writes all bytes to the server endpoint.
func (p *Pair) WriteServer(b []byte) error {
	if _, err := p.server.Write(b); err != nil {
		return fmt.Errorf("%w: server: %w", ErrWrite, err)
	}
	return nil
}

// WriteConsole writes to console output and flushes immediately.
func (p *Pair) WriteConsole(b []byte) error {
	if _, err := p.out.Write(b); err != nil {
		return fmt.Errorf("%w: console: %w", ErrWrite, err)
	}
	if err := p.out.Flush(); err != nil {
		return fmt.Errorf("%w: console: %w", ErrWrite, err)
	}
	return nil
}
