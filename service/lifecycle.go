package service

import (
	"context"
	"time"

	"mycenter/domain"
	"mycenter/interfaces"

	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-metrics"
)

const (
	actionRegister   = "register"
	actionReconnect  = "reconnect"
	actionDisconnect = "disconnect"
)

// connect moves n to connecting and starts one dial on its own goroutine. A reconnect fired after Close or after
// n was removed does nothing.
//
// Parameters: n - the instance; action - "register" for the first connect, "reconnect" afterwards (logs and metrics).
//
// Called from Register for a new instance and from the reconnect timer scheduled by onFailure.
func (r *Registry) connect(n *Entry, action string) {
	r.mu.Lock()
	delete(r.timers, n)
	if r.closed || n.removed {
		r.mu.Unlock()
		return
	}
	if n.attempt.Settled() {
		n.attempt = NewAttempt()
	}
	n.inst.Status = domain.StatusConnecting
	attempt := n.attempt
	snap := n.inst
	r.unlockNotify(func() { r.observer.InstanceUpdated(snap) })

	level.Info(r.logger).Log("msg", "connecting module", "action", action, "key", snap.Key(), "address", snap.Address())
	go r.dial(n, attempt, snap.Address(), action)
}

// dial opens the data connection and then watches it until it ends. Exactly one terminal event per dial reaches
// onFailure: the dial error, or the end of the established connection.
func (r *Registry) dial(n *Entry, attempt *Attempt, address string, action string) {
	ctx, cancel := context.WithTimeout(r.baseCtx, r.cfg.DialTimeout)
	conn, err := r.dialer.Dial(ctx, address)
	cancel()
	if err != nil {
		r.onFailure(n, attempt, err, domain.StatusDisabled, action)
		return
	}
	if !r.onConnected(n, attempt, conn, action) {
		_ = conn.Close()
		return
	}

	<-conn.Done()
	cause, target := conn.Err(), domain.StatusDisabled
	if cause == nil {
		cause, target = ErrConnectionClosed, domain.StatusOffline
	}
	r.onFailure(n, attempt, cause, target, actionDisconnect)
}

// onConnected records a successful dial: n goes online, keeps conn and its attempt resolves. The retry budget
// is not refilled; it counts every failure over the instance's lifetime. The pending control stream, if any, is acknowledged with the credential.
//
// Returns: false when the dial is stale (n removed, registry closed, or attempt superseded); the caller then
// closes conn.
func (r *Registry) onConnected(n *Entry, attempt *Attempt, conn interfaces.DataConnection, action string) bool {
	r.mu.Lock()
	if r.closed || n.removed || n.attempt != attempt {
		r.mu.Unlock()
		return false
	}
	n.inst.Status = domain.StatusOnline
	n.conn = conn
	ack := n.ack
	n.ack = nil
	attempt.Resolve(conn)
	snap := n.inst
	r.unlockNotify(func() { r.observer.InstanceUpdated(snap) })

	level.Info(r.logger).Log("msg", "module online", "action", action, "key", snap.Key())
	if ack != nil {
		ack.Ack(r.cfg.Credential)
	}
	r.sink.IncrCounterWithLabels(MetricConnectCount, 1, []metrics.Label{
		LabelModule.M(snap.ModuleName),
		LabelAction.M(action),
	})
	return true
}

// onFailure handles the terminal event of one dial. The attempt is rejected with cause and the retry budget
// decremented. At zero n is removed from the store and its control stream abandoned; otherwise n takes target
// status and a fresh attempt, and a reconnect is scheduled after the fixed delay.
//
// Events for an attempt that is no longer current, for a removed instance or after Close are ignored.
//
// Parameters: cause - dial error, transport error or ErrConnectionClosed; target - disabled for errors, offline for
// clean close; action - label for logs and metrics.
func (r *Registry) onFailure(n *Entry, attempt *Attempt, cause error, target domain.Status, action string) {
	r.mu.Lock()
	if r.closed || n.removed || n.attempt != attempt {
		r.mu.Unlock()
		return
	}
	n.conn = nil
	attempt.Reject(cause)
	n.inst.Status = target
	n.retriesLeft--

	if n.retriesLeft <= 0 {
		n.removed = true
		if r.storedLocked(n) {
			r.store.Remove(n.inst.Key())
		}
		ack := n.ack
		n.ack = nil
		snap := n.inst
		r.unlockNotify(func() { r.observer.InstanceRemoved(snap) })

		level.Error(r.logger).Log("msg", "too many reconnects, module removed", "key", snap.Key(), "err", cause)
		if ack != nil {
			ack.Abandon(ErrRetriesExhausted)
		}
		r.sink.IncrCounterWithLabels(MetricRemovalCount, 1, []metrics.Label{LabelModule.M(snap.ModuleName)})
		return
	}

	n.attempt = NewAttempt()
	r.timers[n] = time.AfterFunc(r.cfg.ReconnectDelay, func() {
		r.connect(n, actionReconnect)
	})
	snap, left := n.inst, n.retriesLeft
	r.unlockNotify(func() { r.observer.InstanceUpdated(snap) })

	if target == domain.StatusOffline {
		level.Warn(r.logger).Log("msg", "module offline", "key", snap.Key(), "retries_left", left, "delay", r.cfg.ReconnectDelay)
		r.sink.IncrCounterWithLabels(MetricDisconnectCount, 1, []metrics.Label{LabelModule.M(snap.ModuleName)})
	} else {
		level.Error(r.logger).Log("msg", "module failed", "action", action, "key", snap.Key(), "retries_left", left, "err", cause)
		r.sink.IncrCounterWithLabels(MetricConnectErrorCount, 1, []metrics.Label{
			LabelModule.M(snap.ModuleName),
			LabelAction.M(action),
		})
	}
}
