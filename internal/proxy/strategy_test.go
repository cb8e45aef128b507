package proxy

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"dev.c0redev.hexpipe/internal/proto"
)

func testPair(serverOut io.Writer, consoleOut io.Writer) *Pair {
	if serverOut == nil {
		serverOut = io.Discard
	}
	if consoleOut == nil {
		consoleOut = io.Discard
	}
	return NewPair(rwStub{Reader: strings.NewReader(""), Writer: serverOut}, strings.NewReader(""), consoleOut)
}

func TestFramedInboundStripsHeader(t *testing.T) {
	var out bytes.Buffer
	p := testPair(nil, &out)
	f := &proto.Frame{Header: "00000a", Payload: []byte("HELLO TEST")}
	if err := (framedStrategy{}).inbound(p, f); err != nil {
		t.Fatal(err)
	}
	if out.String() != "HELLO TEST\n" {
		t.Fatalf("console output: %q", out.String())
	}
}

func TestFramedInboundEmptyFrame(t *testing.T) {
	var out bytes.Buffer
	p := testPair(nil, &out)
	f := &proto.Frame{Header: "000000"}
	if err := (framedStrategy{}).inbound(p, f); err != nil {
		t.Fatal(err)
	}
	if out.String() != "\n" {
		t.Fatalf("console output: %q", out.String())
	}
}

func TestFramedOutboundAddsHeader(t *testing.T) {
	var server bytes.Buffer
	p := testPair(&server, nil)
	header, payload, err := (framedStrategy{}).outbound(p, []byte("ping\n"))
	if err != nil {
		t.Fatal(err)
	}
	if server.String() != "000004ping" {
		t.Fatalf("server bytes: %q", server.String())
	}
	if header != "000004" || string(payload) != "ping" {
		t.Fatalf("reported header %q payload %q", header, payload)
	}
}

func TestFramedOutboundCRLF(t *testing.T) {
	var server bytes.Buffer
	p := testPair(&server, nil)
	if _, _, err := (framedStrategy{}).outbound(p, []byte("ping\r\n")); err != nil {
		t.Fatal(err)
	}
	if server.String() != "000004ping" {
		t.Fatalf("server bytes: %q", server.String())
	}
}

func TestFramedOutboundEmptyLine(t *testing.T) {
	var server bytes.Buffer
	p := testPair(&server, nil)
	if _, _, err := (framedStrategy{}).outbound(p, []byte("\n")); err != nil {
		t.Fatal(err)
	}
	if server.String() != "000000" {
		t.Fatalf("server bytes: %q", server.String())
	}
}

func TestFramedOutboundOversize(t *testing.T) {
	p := testPair(nil, nil)
	line := bytes.Repeat([]byte{'x'}, proto.MaxPayloadSize+1)
	_, _, err := (framedStrategy{}).outbound(p, line)
	if !errors.Is(err, proto.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestRawInboundKeepsHeader(t *testing.T) {
	var out bytes.Buffer
	p := testPair(nil, &out)
	f := &proto.Frame{Header: "00000a", Payload: []byte("HELLO TEST")}
	if err := (rawStrategy{}).inbound(p, f); err != nil {
		t.Fatal(err)
	}
	if out.String() != "00000aHELLO TEST\n" {
		t.Fatalf("console output: %q", out.String())
	}
}

func TestRawOutboundVerbatim(t *testing.T) {
	var server bytes.Buffer
	p := testPair(&server, nil)
	header, payload, err := (rawStrategy{}).outbound(p, []byte("00000aHELLO TEST\n"))
	if err != nil {
		t.Fatal(err)
	}
	if server.String() != "00000aHELLO TEST\n" {
		t.Fatalf("server bytes: %q", server.String())
	}
	if header != "" || string(payload) != "00000aHELLO TEST\n" {
		t.Fatalf("reported header %q payload %q", header, payload)
	}
}

func TestChompLine(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ping\n", "ping"},
		{"ping\r\n", "ping"},
		{"ping", "ping"},
		{"\n", ""},
		{"", ""},
		{"a\nb\n", "a\nb"},
	}
	for _, c := range cases {
		if got := string(chompLine([]byte(c.in))); got != c.want {
			t.Fatalf("chompLine(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
