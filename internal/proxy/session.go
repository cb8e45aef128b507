package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"dev.c0redev.hexpipe/internal/proto"
)

// DefaultPollInterval bounds how long the loop sleeps while both endpoints
// are idle, so an interrupt is observed promptly.
const DefaultPollInterval = 100 * time.Millisecond

// Transcript directions.
const (
	DirInbound  = "inbound"  // server -> console
	DirOutbound = "outbound" // console -> server
)

// Recorder receives a copy of every relayed message. Record failures are
// logged but never stop the session.
type Recorder interface {
	Record(direction, header string, payload []byte) error
}

// SessionOpts: optional collaborators and tuning for NewSessionWithOpts.
type SessionOpts struct {
	ConsoleIn    io.Reader
	ConsoleOut   io.Writer
	Recorder     Recorder
	PollInterval time.Duration
}

// Session owns one run of the proxy loop: a server endpoint, the console,
// and the framing strategy chosen at construction. The session closes the
// server endpoint when the loop exits; the console streams are not owned.
type Session struct {
	server io.ReadWriter
	pair   *Pair
	strat  strategy
	mode   Mode
	log    *slog.Logger
	rec    Recorder
	poll   time.Duration
}

func NewSession(server io.ReadWriter, mode Mode, log *slog.Logger) *Session {
	return NewSessionWithOpts(server, mode, log, nil)
}

func NewSessionWithOpts(server io.ReadWriter, mode Mode, log *slog.Logger, opts *SessionOpts) *Session {
	s := &Session{
		server: server,
		strat:  forMode(mode),
		mode:   mode,
		log:    log,
		poll:   DefaultPollInterval,
	}
	in := io.Reader(os.Stdin)
	out := io.Writer(os.Stdout)
	if opts != nil {
		if opts.ConsoleIn != nil {
			in = opts.ConsoleIn
		}
		if opts.ConsoleOut != nil {
			out = opts.ConsoleOut
		}
		s.rec = opts.Recorder
		if opts.PollInterval > 0 {
			s.poll = opts.PollInterval
		}
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	s.pair = NewPair(server, in, out)
	return s
}

type serverEvent struct {
	frame *proto.Frame
	err   error
}

type consoleEvent struct {
	line []byte
	err  error
}

// Run drives the proxy loop until either endpoint fails or ends, or ctx is
// cancelled. It returns the cause that stopped the loop (io.EOF in the wrap
// chain for a clean end-of-stream), or nil on cancellation. Any return is
// terminal: the server endpoint is closed and the session cannot be reused.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	defer s.closeServer()

	serverCh := make(chan serverEvent)
	consoleCh := make(chan consoleEvent)
	go s.readServer(done, serverCh)
	go s.readConsole(done, consoleCh)

	s.log.Debug("proxy loop running", "mode", s.mode.String(), "poll", s.poll)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()
	for {
		var sev *serverEvent
		var cev *consoleEvent
		select {
		case <-ctx.Done():
			s.log.Info("session interrupted", "cause", ctx.Err())
			return nil
		case <-ticker.C:
			continue
		case ev := <-serverCh:
			sev = &ev
		case ev := <-consoleCh:
			cev = &ev
		}
		// Drain both sides that are ready in this iteration, server first.
		if sev == nil {
			select {
			case ev := <-serverCh:
				sev = &ev
			default:
			}
		} else {
			select {
			case ev := <-consoleCh:
				cev = &ev
			default:
			}
		}
		if sev != nil {
			if err := s.relayInbound(*sev); err != nil {
				return s.stopped(err)
			}
		}
		if cev != nil {
			if err := s.relayOutbound(*cev); err != nil {
				return s.stopped(err)
			}
		}
	}
}

func (s *Session) stopped(cause error) error {
	s.log.Info("session stopped", "cause", cause)
	return cause
}

func (s *Session) relayInbound(ev serverEvent) error {
	if ev.err != nil {
		if errors.Is(ev.err, io.EOF) {
			s.log.Info("server endpoint closed")
		} else {
			s.log.Error("server endpoint read failed", "error", ev.err)
		}
		return ev.err
	}
	s.log.Debug("server frame", "header", ev.frame.Header, "size", len(ev.frame.Payload))
	if err := s.strat.inbound(s.pair, ev.frame); err != nil {
		s.log.Error("inbound relay failed", "error", err)
		return err
	}
	s.record(DirInbound, ev.frame.Header, ev.frame.Payload)
	return nil
}

func (s *Session) relayOutbound(ev consoleEvent) error {
	if ev.err != nil {
		if errors.Is(ev.err, io.EOF) {
			s.log.Info("console endpoint closed")
		} else {
			s.log.Error("console endpoint read failed", "error", ev.err)
		}
		return ev.err
	}
	s.log.Debug("console line", "size", len(ev.line))
	header, payload, err := s.strat.outbound(s.pair, ev.line)
	if err != nil {
		s.log.Error("outbound relay failed", "error", err)
		return err
	}
	s.record(DirOutbound, header, payload)
	return nil
}

func (s *Session) record(direction, header string, payload []byte) {
	if s.rec == nil {
		return
	}
	if err := s.rec.Record(direction, header, payload); err != nil {
		s.log.Warn("transcript record failed", "direction", direction, "error", err)
	}
}

// readServer delivers one fully-read frame at a time over an unbuffered
// channel, so at most one server message is in flight.
func (s *Session) readServer(done <-chan struct{}, ch chan<- serverEvent) {
	for {
		f, err := s.pair.ReadServerFrame()
		select {
		case ch <- serverEvent{frame: f, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *Session) readConsole(done <-chan struct{}, ch chan<- consoleEvent) {
	for {
		line, err := s.pair.ReadConsoleLine()
		select {
		case ch <- consoleEvent{line: line, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

func (s *Session) closeServer() {
	if c, ok := s.server.(io.Closer); ok {
		_ = c.Close()
	}
}
