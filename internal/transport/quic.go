package transport

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"github.com/quic-go/quic-go"
)

// ALPN token for the length-prefixed stream protocol.
const alpnProtocol = "hexpipe"

// streamConn wraps one quic stream as a net.Conn, so the session sees the
// same duplex byte stream it gets from TCP.
type streamConn struct {
	*quic.Stream
	conn *quic.Conn
}

func (c *streamConn) LocalAddr() net.Addr  { return c.conn.LocalAddr() }
func (c *streamConn) RemoteAddr() net.Addr { return c.conn.RemoteAddr() }

func (c *streamConn) Close() error {
	err := c.Stream.Close()
	_ = c.conn.CloseWithError(0, "")
	return err
}

// DefaultQUICClientTLS: client TLS for a local development server
// (InsecureSkipVerify; the proxy talks to localhost).
func DefaultQUICClientTLS() *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		MinVersion:         tls.VersionTLS12,
		NextProtos:         []string{alpnProtocol},
	}
}

// DialStream dials QUIC to addr, opens one stream, returns it as net.Conn.
func DialStream(ctx context.Context, addr string, tlsConfig *tls.Config) (net.Conn, error) {
	if tlsConfig == nil {
		tlsConfig = DefaultQUICClientTLS()
	}
	conn, err := quic.DialAddr(ctx, addr, tlsConfig, &quic.Config{
		MaxIdleTimeout: 30 * time.Second,
	})
	if err != nil {
		return nil, err
	}
	stream, err := conn.OpenStreamSync(ctx)
	if err != nil {
		_ = conn.CloseWithError(0, "")
		return nil, err
	}
	return &streamConn{Stream: stream, conn: conn}, nil
}

// ListenAddr listens for QUIC on addr; tlsConfig must carry Certificates and
// the hexpipe ALPN. Used by loopback tests and local fixtures.
func ListenAddr(addr string, tlsConfig *tls.Config) (*quic.Listener, error) {
	return quic.ListenAddr(addr, tlsConfig, &quic.Config{
		MaxIdleTimeout: 30 * time.Second,
	})
}
