package myredis

import (
	"context"
	"sync"
	"time"

	"mycenter/domain"
	"mycenter/helpers"
	"mycenter/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const (
	opWrite = iota
	opDelete
)

type mirrorOp struct {
	kind int
	key  string
	inst domain.Instance
}

// Mirror is a registry observer that publishes every instance snapshot to a Cache under its instance key and
// deletes it on re-key and removal. Notifications are queued and applied in order by Run, so Redis latency
// never reaches the registry; when the queue is full the change is dropped and logged.
type Mirror struct {
	cache   interfaces.Cache[domain.Instance]
	timeout time.Duration
	logger  log.Logger

	queue chan mirrorOp

	mu      sync.Mutex
	dropped int
}

var _ interfaces.RegistryObserver = (*Mirror)(nil)

// NewMirror creates the mirror. Panics on nil cache/logger or a non-positive queue size or timeout.
//
// Parameters: cache - destination (NewCache over the Redis client); queueSize - pending changes kept before
// dropping; timeout - bound for one Redis call; logger - logger.
//
// Called from cmd/main when REDIS_ADDR is set.
func NewMirror(cache interfaces.Cache[domain.Instance], queueSize int, timeout time.Duration, logger log.Logger) *Mirror {
	return &Mirror{
		cache:   helpers.NilPanic(cache, "myredis.mirror.go: cache is required"),
		timeout: helpers.PositivePanic(timeout, "myredis.mirror.go: timeout must be positive"),
		logger:  log.With(helpers.NilPanic(logger, "myredis.mirror.go: logger is required"), "component", "redis_mirror"),
		queue:   make(chan mirrorOp, helpers.PositivePanic(queueSize, "myredis.mirror.go: queue size must be positive")),
	}
}

func (m *Mirror) InstanceUpdated(inst domain.Instance) {
	m.enqueue(mirrorOp{kind: opWrite, key: inst.Key(), inst: inst})
}

func (m *Mirror) InstanceRekeyed(oldKey string, inst domain.Instance) {
	m.enqueue(mirrorOp{kind: opDelete, key: oldKey})
	m.enqueue(mirrorOp{kind: opWrite, key: inst.Key(), inst: inst})
}

func (m *Mirror) InstanceRemoved(inst domain.Instance) {
	m.enqueue(mirrorOp{kind: opDelete, key: inst.Key()})
}

// Dropped returns how many changes were discarded because the queue was full.
func (m *Mirror) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

func (m *Mirror) enqueue(op mirrorOp) {
	select {
	case m.queue <- op:
	default:
		m.mu.Lock()
		m.dropped++
		m.mu.Unlock()
		level.Warn(m.logger).Log("msg", "mirror queue full, change dropped", "key", op.key)
	}
}

// Run applies queued changes until ctx is done. Errors are logged and the change is skipped.
//
// Called from cmd/main in its own goroutine.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case op := <-m.queue:
			m.apply(ctx, op)
		}
	}
}

func (m *Mirror) apply(ctx context.Context, op mirrorOp) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	var err error
	switch op.kind {
	case opWrite:
		err = m.cache.WriteValue(ctx, op.key, op.inst, 0)
	case opDelete:
		err = m.cache.DeleteValue(ctx, op.key)
	}
	if err != nil {
		level.Error(m.logger).Log("msg", "mirror update failed", "key", op.key, "err", err)
	}
}
