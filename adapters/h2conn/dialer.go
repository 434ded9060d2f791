// Package h2conn dials the gateway's data connections: one long-lived, multiplexed cleartext HTTP/2
// (h2c, prior knowledge) connection per module instance.
package h2conn

import (
	"context"
	"fmt"
	"net"
	"time"

	"mycenter/helpers"
	"mycenter/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/net/http2"
)

// Option configures the Dialer.
type Option func(*Dialer)

// WithKeepAlive sets the TCP keep-alive period (default 30s).
func WithKeepAlive(d time.Duration) Option {
	return func(dl *Dialer) { dl.netDialer.KeepAlive = d }
}

// WithReadIdleTimeout makes the transport ping a connection that received no frame for d and drop it when the
// ping is not answered within d. Zero disables health pings.
func WithReadIdleTimeout(d time.Duration) Option {
	return func(dl *Dialer) {
		dl.transport.ReadIdleTimeout = d
		dl.transport.PingTimeout = d
	}
}

// Dialer implements interfaces.Dialer over TCP and golang.org/x/net/http2.
type Dialer struct {
	netDialer *net.Dialer
	transport *http2.Transport
	logger    log.Logger
}

var _ interfaces.Dialer = (*Dialer)(nil)

// NewDialer creates a Dialer. Panics on nil logger.
//
// Called from cmd/main.
func NewDialer(logger log.Logger, opts ...Option) *Dialer {
	d := &Dialer{
		netDialer: &net.Dialer{KeepAlive: 30 * time.Second},
		transport: &http2.Transport{AllowHTTP: true},
		logger: log.With(helpers.NilPanic(logger, "h2conn.dialer.go: logger is required"), "component", "h2conn"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dial connects to address, performs the HTTP/2 preface and settings exchange and confirms the peer answers
// a PING before returning.
//
// Parameters: ctx - bounds the TCP dial and the PING round trip; address - host:port.
//
// Returns: (*Conn, nil) once the connection is usable; (nil, err) when the TCP dial, the handshake or the PING fails.
func (d *Dialer) Dial(ctx context.Context, address string) (interfaces.DataConnection, error) {
	raw, err := d.netDialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	watched := newWatchedConn(raw)
	cc, err := d.transport.NewClientConn(watched)
	if err != nil {
		watched.local.Store(true)
		_ = watched.Close()
		return nil, fmt.Errorf("http2 handshake with %s: %w", address, err)
	}
	if err := cc.Ping(ctx); err != nil {
		watched.local.Store(true)
		_ = cc.Close()
		_ = watched.Close()
		return nil, fmt.Errorf("ping %s: %w", address, err)
	}
	level.Debug(d.logger).Log("msg", "data connection established", "address", address, "local", raw.LocalAddr())
	return &Conn{address: address, cc: cc, watched: watched}, nil
}
