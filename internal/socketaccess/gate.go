package socketaccess

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"
)

// ErrSocketDenied is returned when a connection is attempted outside an elevated block
var ErrSocketDenied = errors.New("outbound socket not permitted")

// Gate is a Sandbox that keeps outbound connections closed unless at least one
// elevated block is active.
type Gate struct {
	open   atomic.Int32
	dialer net.Dialer
}

// NewGate creates a closed gate
func NewGate() *Gate {
	return &Gate{
		dialer: net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		},
	}
}

// Elevate implements Sandbox
func (g *Gate) Elevate() func() {
	g.open.Add(1)
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			g.open.Add(-1)
		}
	}
}

// Allowed reports whether outbound sockets may currently be created
func (g *Gate) Allowed() bool {
	return g.open.Load() > 0
}

// DialContext dials through the gate; it fails while the gate is closed.
// Plug it into http.Transport.DialContext.
func (g *Gate) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if !g.Allowed() {
		return nil, fmt.Errorf("dial %s %s: %w", network, addr, ErrSocketDenied)
	}
	return g.dialer.DialContext(ctx, network, addr)
}
