package proxy

import "errors"

// Endpoint read/write failures. Framing failures come from the proto package
// sentinels and stay visible through the wrap chain.
var ErrRead = errors.New("read error")
var ErrWrite = errors.New("write error")
