package interfaces

import (
	"context"
	"net/http"
)

// DataConnection is one multiplexed outbound connection from the gateway to a module instance.
// Many proxied requests share it concurrently.
//
// Done is closed once the connection is gone (peer close, transport error or Close); Err then
// reports nil for a clean close and the transport error otherwise. The registry uses this pair
// to choose between the offline and disabled retry targets.
//
// Implemented by adapters/h2conn. Used by service.Registry (lifecycle) and service.Router (proxying).
//
//go:generate moq -stub -out mock/data_connection.go -pkg mock . DataConnection
type DataConnection interface {
	// RoundTrip opens a new stream on the connection and returns the response as soon as headers arrive;
	// the body streams from the module.
	// Parameter req - outbound request with absolute URL; req.Context() cancels the stream.
	// Returns: (response, nil) on success; (nil, err) when the stream could not be opened or the connection died.
	// Called from service.Router.ServeHTTP.
	RoundTrip(req *http.Request) (*http.Response, error)

	// Done returns a channel closed when the connection has terminated.
	// Called from the lifecycle watcher in service.Registry and from service.Router to classify failures.
	Done() <-chan struct{}

	// Err returns nil while open or after a clean close, the terminating transport error otherwise.
	// Only meaningful after Done is closed.
	Err() error

	// Close tears the connection down; Done is closed and Err stays nil. Idempotent.
	// Called from service.Registry.Close on shutdown.
	Close() error
}

// Dialer opens data connections to module instances.
//
// Implemented by adapters/h2conn.Dialer. Called from service.Registry for every (re)connect attempt.
//
//go:generate moq -stub -out mock/dialer.go -pkg mock . Dialer
type Dialer interface {
	// Dial connects to address (host:port, IPv6 bracketed) and completes the protocol handshake.
	// Parameters: ctx - bounds the dial and handshake; address - from domain.Instance.Address.
	// Returns: (conn, nil) once the connection is usable; (nil, err) on transport or protocol failure.
	Dial(ctx context.Context, address string) (DataConnection, error)
}
