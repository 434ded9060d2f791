package service

import (
	"context"
	"sync"

	"mycenter/interfaces"
)

// Attempt is the one-shot outcome of a single connection attempt to an instance. The first Resolve or Reject
// wins; later calls are ignored. The registry replaces an instance's Attempt on every retry transition, and a
// superseded Attempt is never settled again, so anyone still waiting on it must be bounded by a context.
type Attempt struct {
	done chan struct{}

	mu      sync.Mutex
	settled bool
	conn    interfaces.DataConnection
	err     error
}

// NewAttempt creates an unsettled attempt.
//
// Called from service.Registry when an instance is created, on every retry transition, and before a dial when
// the current attempt is already settled.
func NewAttempt() *Attempt {
	return &Attempt{done: make(chan struct{})}
}

// Resolve settles the attempt with a usable connection.
//
// Parameter conn - the established data connection.
//
// Returns: true if this call settled the attempt, false if it was already settled.
//
// Called from service.Registry when a dial succeeds.
func (a *Attempt) Resolve(conn interfaces.DataConnection) bool {
	return a.settle(conn, nil)
}

// Reject settles the attempt with a failure. A nil err is replaced by ErrConnectionClosed.
//
// Parameter err - dial error, transport error or ErrConnectionClosed.
//
// Returns: true if this call settled the attempt, false if it was already settled (a connection that was
// resolved and later closed keeps its successful outcome).
//
// Called from service.Registry on connection close or error.
func (a *Attempt) Reject(err error) bool {
	if err == nil {
		err = ErrConnectionClosed
	}
	return a.settle(nil, err)
}

func (a *Attempt) settle(conn interfaces.DataConnection, err error) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.settled {
		return false
	}
	a.settled = true
	a.conn = conn
	a.err = err
	close(a.done)
	return true
}

// Done returns a channel closed once the attempt is settled.
func (a *Attempt) Done() <-chan struct{} {
	return a.done
}

// Settled reports whether Resolve or Reject has happened.
func (a *Attempt) Settled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settled
}

// Result returns the outcome without waiting.
//
// Returns: (conn, nil) when resolved; (nil, err) when rejected; (nil, nil) while pending (see Settled).
func (a *Attempt) Result() (interfaces.DataConnection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn, a.err
}

// Wait blocks until the attempt is settled or ctx is done.
//
// Parameter ctx - bounds the wait; an abandoned attempt is only ever left through ctx.
//
// Returns: (conn, nil) when resolved; (nil, err) when rejected; (nil, ctx.Err()) when ctx finishes first.
//
// Called from service.Router before proxying and from the arbitration race in service.Registry.Register.
func (a *Attempt) Wait(ctx context.Context) (interfaces.DataConnection, error) {
	select {
	case <-a.done:
		return a.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
