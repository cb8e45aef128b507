package transport

import (
	"context"
	"fmt"
	"net"
	"time"
)

// DialTimeout for connecting the server endpoint.
const DialTimeout = 10 * time.Second

// Dial connects the server endpoint over the named transport, "tcp" or
// "quic". An empty kind means TCP.
func Dial(ctx context.Context, kind, addr string) (net.Conn, error) {
	switch kind {
	case "", "tcp":
		d := net.Dialer{Timeout: DialTimeout}
		return d.DialContext(ctx, "tcp", addr)
	case "quic":
		ctx, cancel := context.WithTimeout(ctx, DialTimeout)
		defer cancel()
		return DialStream(ctx, addr, nil)
	default:
		return nil, fmt.Errorf("unknown transport %q", kind)
	}
}
