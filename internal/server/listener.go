package server

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"sync"

	"golang.org/x/net/netutil"
)

type headContextKey struct{}

// Listen binds addr and returns a listener that hands out one connection at a
// time. The next Accept blocks until the previous connection is closed.
func Listen(addr string) (net.Listener, error) {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &BindError{Addr: addr, Err: err}
	}
	return &headListener{Listener: netutil.LimitListener(l, 1)}, nil
}

type headListener struct {
	net.Listener
}

func (l *headListener) Accept() (net.Conn, error) {
	c, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	return &headConn{Conn: c, limit: http.DefaultMaxHeaderBytes}, nil
}

// headConn keeps a copy of the request head (request line and header lines up
// to the blank line) as it is read off the wire.
type headConn struct {
	net.Conn

	mu        sync.Mutex
	buf       bytes.Buffer
	limit     int
	complete  bool
	truncated bool
}

func (c *headConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if n > 0 {
		c.record(p[:n])
	}
	return n, err
}

func (c *headConn) record(p []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.complete || c.truncated {
		return
	}
	c.buf.Write(p)
	end := headEnd(c.buf.Bytes())
	switch {
	case end > c.limit, end < 0 && c.buf.Len() > c.limit:
		c.truncated = true
		c.buf.Reset()
	case end >= 0:
		c.buf.Truncate(end)
		c.complete = true
	}
}

// Head returns the recorded request head, or nil if it has not been fully
// read or exceeded the size limit.
func (c *headConn) Head() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.complete {
		return nil
	}
	return bytes.Clone(c.buf.Bytes())
}

// headEnd returns the offset just past the blank line that terminates the
// request head, accepting both CRLF and bare LF line endings, or -1.
func headEnd(b []byte) int {
	for i, ch := range b {
		if ch != '\n' {
			continue
		}
		j := i + 1
		if j < len(b) && b[j] == '\r' {
			j++
		}
		if j < len(b) && b[j] == '\n' {
			return j + 1
		}
	}
	return -1
}

func withHead(ctx context.Context, c net.Conn) context.Context {
	if hc, ok := c.(*headConn); ok {
		return context.WithValue(ctx, headContextKey{}, hc)
	}
	return ctx
}

func headFromContext(ctx context.Context) []byte {
	hc, ok := ctx.Value(headContextKey{}).(*headConn)
	if !ok {
		return nil
	}
	return hc.Head()
}
