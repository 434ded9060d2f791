package service

import (
	"context"
	"sync"
	"time"

	"mycenter/domain"
	"mycenter/helpers"
	"mycenter/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-metrics"
)

// Defaults used by cmd/main when the YAML config leaves them unset.
const (
	DefaultReconnectDelay    = time.Second
	DefaultReconnectAttempts = 10
	DefaultDialTimeout       = 5 * time.Second
)

// Outcome is what Register did with a registration.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"   // new instance inserted and first connect started
	OutcomeDuplicate Outcome = "duplicate" // an instance with the same key already existed; nothing changed
	OutcomeReplaced  Outcome = "replaced"  // an existing instance of the slot was re-keyed to the new port
	OutcomeDropped   Outcome = "dropped"   // every connecting instance of the slot came online; nothing stored
)

// RegistryConfig holds the registry's fixed parameters.
// Credential is written back on every acknowledged control stream; ReconnectAttempts is the retry budget per
// instance; ReconnectDelay is the fixed wait before each reconnect; DialTimeout bounds one dial and handshake.
type RegistryConfig struct {
	Credential        string
	ReconnectDelay    time.Duration
	ReconnectAttempts int
	DialTimeout       time.Duration
}

// Entry is the registry's record for one instance: the domain snapshot plus the runtime state that never leaves
// the registry. Every field is guarded by Registry.mu.
type Entry struct {
	inst        domain.Instance
	conn        interfaces.DataConnection
	attempt     *Attempt
	retriesLeft int
	ack         interfaces.Acknowledger
	removed     bool
}

// Registry is the registration arbiter and connection lifecycle manager. It owns the registry store; one mutex
// serializes every store operation and every instance state transition, so each transition is atomic with
// respect to lookups. Dials, reconnect timers, attempt waits and observer calls all run outside the mutex.
type Registry struct {
	store    interfaces.Store[*Entry]
	dialer   interfaces.Dialer
	observer interfaces.RegistryObserver
	sink     metrics.MetricSink
	logger   log.Logger
	cfg      RegistryConfig

	baseCtx    context.Context
	cancelDial context.CancelFunc

	mu     sync.Mutex
	closed bool
	timers map[*Entry]*time.Timer

	// notifyMu is taken before mu is released so observers see transitions in the order they happened.
	notifyMu sync.Mutex
}

// NewRegistry creates the registry. Panics on nil store/dialer/observer/sink/logger, an empty credential or a
// non-positive reconnect delay, budget or dial timeout.
//
// Parameters: store - backing table, memstore.New[*service.Entry]() in cmd/main; dialer - opens data
// connections; observer - side views (helpers.NewObserverChain() for none); sink - metrics sink; logger - logger; cfg - fixed parameters.
//
// Returns: *Registry ready for Register.
//
// Called from cmd/main.
func NewRegistry(
	store interfaces.Store[*Entry],
	dialer interfaces.Dialer,
	observer interfaces.RegistryObserver,
	sink metrics.MetricSink,
	logger log.Logger,
	cfg RegistryConfig,
) *Registry {
	helpers.StrPanic(cfg.Credential, "service.registry.go: credential is required")
	helpers.PositivePanic(cfg.ReconnectDelay, "service.registry.go: reconnect delay must be positive")
	helpers.PositivePanic(cfg.ReconnectAttempts, "service.registry.go: reconnect attempts must be positive")
	helpers.PositivePanic(cfg.DialTimeout, "service.registry.go: dial timeout must be positive")
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		store:      helpers.NilPanic(store, "service.registry.go: store is required"),
		dialer:     helpers.NilPanic(dialer, "service.registry.go: dialer is required"),
		observer:   helpers.NilPanic(observer, "service.registry.go: observer is required"),
		sink:       helpers.NilPanic(sink, "service.registry.go: metric sink is required"),
		logger:     log.With(helpers.NilPanic(logger, "service.registry.go: logger is required"), "component", "registry"),
		cfg:        cfg,
		baseCtx:    ctx,
		cancelDial: cancel,
		timers:     make(map[*Entry]*time.Timer),
	}
}

// Register arbitrates one incoming registration:
//  1. an instance with the same key exists: duplicate, registry unchanged (the control stream is acknowledged
//     now if that instance is online, otherwise when it next connects);
//  2. no instance shares the (name, host, version) slot, or only online ones do: create an offline instance and
//     start its first connect;
//  3. otherwise pick a replacement target: any disabled candidate, else any offline one, else the first
//     connecting candidate whose attempt is rejected. The target is re-keyed to the new port with its status,
//     connection and retry budget untouched; its next reconnect dials the new port.
//  4. if every connecting candidate comes online instead, the registration is dropped and ack is abandoned.
//
// The race in step 3 waits outside the lock; the registry is re-checked afterwards and arbitration restarts if
// the target changed meanwhile.
//
// Parameters: ctx - lifetime of the control stream, bounds the race; reg - validated registration; ack - the control stream.
//
// Returns: (outcome, nil) once arbitration finished; ("", ctx.Err()) when the stream went away mid-race;
// ("", ErrRegistryClosed) after Close.
//
// Called from handlers.Gateway for every registration stream.
func (r *Registry) Register(ctx context.Context, reg domain.Registration, ack interfaces.Acknowledger) (Outcome, error) {
	ack = helpers.NilPanic(ack, "service.registry.go: acknowledger is required")
	key := reg.Key()
	level.Info(r.logger).Log("msg", "register module", "key", key)
	for {
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			ack.Abandon(ErrRegistryClosed)
			return "", ErrRegistryClosed
		}
		if existing, ok := r.store.FindByID(key); ok {
			online, superseded := r.attachAckLocked(existing, ack)
			r.mu.Unlock()
			if superseded != nil {
				superseded.Abandon(ErrRegistrationSuperseded)
			}
			if online {
				ack.Ack(r.cfg.Credential)
			}
			r.registered(reg, OutcomeDuplicate)
			return OutcomeDuplicate, nil
		}

		candidates := r.store.FindList(inSlot(reg.Slot()))
		target := firstWithStatus(candidates, domain.StatusDisabled)
		if target == nil {
			target = firstWithStatus(candidates, domain.StatusOffline)
		}
		if target != nil {
			oldKey, snap, superseded := r.rekeyLocked(target, reg.Port, ack)
			r.unlockNotify(func() { r.replaced(oldKey, snap, superseded) })
			r.registered(reg, OutcomeReplaced)
			return OutcomeReplaced, nil
		}

		var racers []*Entry
		var attempts []*Attempt
		for _, n := range candidates {
			if n.inst.Status == domain.StatusConnecting {
				racers = append(racers, n)
				attempts = append(attempts, n.attempt)
			}
		}
		if len(racers) == 0 {
			n, snap := r.createLocked(reg, ack)
			r.unlockNotify(func() { r.observer.InstanceUpdated(snap) })
			r.registered(reg, OutcomeCreated)
			r.connect(n, actionRegister)
			return OutcomeCreated, nil
		}
		r.mu.Unlock()

		idx, err := firstRejected(ctx, attempts)
		if err != nil {
			return "", err
		}
		if idx < 0 {
			level.Warn(r.logger).Log("msg", "registration dropped, all connecting instances came online", "key", key)
			ack.Abandon(ErrRegistrationDropped)
			r.registered(reg, OutcomeDropped)
			return OutcomeDropped, nil
		}

		picked := racers[idx]
		r.mu.Lock()
		if r.closed || picked.removed || !r.storedLocked(picked) {
			r.mu.Unlock()
			continue
		}
		if _, taken := r.store.FindByID(key); taken {
			r.mu.Unlock()
			continue
		}
		oldKey, snap, superseded := r.rekeyLocked(picked, reg.Port, ack)
		r.unlockNotify(func() { r.replaced(oldKey, snap, superseded) })
		r.registered(reg, OutcomeReplaced)
		return OutcomeReplaced, nil
	}
}

// createLocked inserts a new offline instance for reg holding ack. Caller must hold r.mu.
func (r *Registry) createLocked(reg domain.Registration, ack interfaces.Acknowledger) (*Entry, domain.Instance) {
	n := &Entry{
		inst: domain.Instance{
			ModuleName:     reg.ModuleName,
			ServiceVersion: reg.ServiceVersion,
			Host:           reg.Host,
			Port:           reg.Port,
			Status:         domain.StatusOffline,
		},
		attempt:     NewAttempt(),
		retriesLeft: r.cfg.ReconnectAttempts,
		ack:         ack,
	}
	r.store.Insert(n.inst.Key(), n)
	return n, n.inst
}

// rekeyLocked moves n from its current key to the key with the new port and hands it the new control stream.
// Status, connection, attempt and retry budget are kept. Caller must hold r.mu.
//
// Returns: the old key, the new snapshot and the control stream that was replaced (nil if none).
func (r *Registry) rekeyLocked(n *Entry, port int, ack interfaces.Acknowledger) (string, domain.Instance, interfaces.Acknowledger) {
	oldKey := n.inst.Key()
	r.store.Remove(oldKey)
	n.inst.Port = port
	r.store.Insert(n.inst.Key(), n)
	superseded := n.ack
	if superseded == ack {
		superseded = nil
	}
	n.ack = ack
	return oldKey, n.inst, superseded
}

// attachAckLocked gives a duplicate registration's control stream to an existing instance. Caller must hold r.mu.
//
// Returns: online - the instance is online and ack should be acknowledged right away; superseded - the
// previously pending control stream, to be abandoned.
func (r *Registry) attachAckLocked(n *Entry, ack interfaces.Acknowledger) (online bool, superseded interfaces.Acknowledger) {
	if n.inst.Status == domain.StatusOnline {
		return true, nil
	}
	if n.ack != ack {
		superseded = n.ack
	}
	n.ack = ack
	return false, superseded
}

// storedLocked reports whether n is still the record under its own key. Caller must hold r.mu.
func (r *Registry) storedLocked(n *Entry) bool {
	got, ok := r.store.FindByID(n.inst.Key())
	return ok && got == n
}

// unlockNotify releases r.mu and runs notify with observer order preserved. Caller must hold r.mu; notify must
// not take r.mu.
func (r *Registry) unlockNotify(notify func()) {
	r.notifyMu.Lock()
	r.mu.Unlock()
	defer r.notifyMu.Unlock()
	notify()
}

func (r *Registry) replaced(oldKey string, snap domain.Instance, superseded interfaces.Acknowledger) {
	if superseded != nil {
		superseded.Abandon(ErrRegistrationSuperseded)
	}
	level.Info(r.logger).Log("msg", "module replaced", "old", oldKey, "new", snap.Key(), "status", snap.Status)
	r.observer.InstanceRekeyed(oldKey, snap)
}

func (r *Registry) registered(reg domain.Registration, outcome Outcome) {
	r.sink.IncrCounterWithLabels(MetricRegistrationCount, 1, []metrics.Label{
		LabelModule.M(reg.ModuleName),
		LabelOutcome.M(string(outcome)),
	})
}

// Instances returns snapshots of the instances matching match (nil matches all), ordered by key.
// Implements interfaces.InstanceLister.
//
// Called from handlers.Console and handlers.AdminServer. Observers must not call it (see interfaces.RegistryObserver).
func (r *Registry) Instances(match func(domain.Instance) bool) []domain.Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	nodes := r.store.FindAll()
	out := make([]domain.Instance, 0, len(nodes))
	for _, n := range nodes {
		if match == nil || match(n.inst) {
			out = append(out, n.inst)
		}
	}
	return out
}

// Target is a routable instance handed to the router: the snapshot taken at lookup and the attempt that was
// current at that moment.
type Target struct {
	Instance domain.Instance
	attempt  *Attempt
	entry    *Entry
}

// Wait waits for the attempt captured at lookup. For an online target it is already resolved.
func (t Target) Wait(ctx context.Context) (interfaces.DataConnection, error) {
	return t.attempt.Wait(ctx)
}

// Targets returns the online instances of moduleName, ordered by key.
//
// Called from service.Router.ServeHTTP for each proxied request.
func (r *Registry) Targets(moduleName string) []Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	nodes := r.store.FindList(func(n *Entry) bool {
		return n.inst.ModuleName == moduleName && n.inst.Status == domain.StatusOnline
	})
	out := make([]Target, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, Target{Instance: n.inst, attempt: n.attempt, entry: n})
	}
	return out
}

// CurrentStatus returns the status of t's instance now (its last status if it has been removed).
//
// Called from service.Router when building the 503 body.
func (r *Registry) CurrentStatus(t Target) domain.Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return t.entry.inst.Status
}

// Close stops the registry: pending reconnects are cancelled, in-flight dials aborted, data connections closed
// and pending control streams abandoned with ErrRegistryClosed. Instances stay in the store with their last
// status. Idempotent.
//
// Called from cmd/main on shutdown.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	for n, t := range r.timers {
		t.Stop()
		delete(r.timers, n)
	}
	var conns []interfaces.DataConnection
	var acks []interfaces.Acknowledger
	for _, n := range r.store.FindAll() {
		if n.conn != nil {
			conns = append(conns, n.conn)
		}
		if n.ack != nil {
			acks = append(acks, n.ack)
			n.ack = nil
		}
	}
	r.mu.Unlock()

	r.cancelDial()
	for _, c := range conns {
		_ = c.Close()
	}
	for _, a := range acks {
		a.Abandon(ErrRegistryClosed)
	}
	return nil
}

func inSlot(slot domain.Slot) func(*Entry) bool {
	return func(n *Entry) bool {
		return n.inst.Slot() == slot
	}
}

func firstWithStatus(nodes []*Entry, status domain.Status) *Entry {
	for _, n := range nodes {
		if n.inst.Status == status {
			return n
		}
	}
	return nil
}

// firstRejected races attempts and returns the index of the first one to be rejected, or -1 once every attempt
// has resolved successfully.
//
// Returns: (index, nil), (-1, nil) or (-1, ctx.Err()) when ctx finishes first.
func firstRejected(ctx context.Context, attempts []*Attempt) (int, error) {
	type result struct {
		idx int
		err error
	}
	stop := make(chan struct{})
	defer close(stop)
	results := make(chan result, len(attempts))
	for i, a := range attempts {
		go func(i int, a *Attempt) {
			select {
			case <-a.Done():
				_, err := a.Result()
				results <- result{idx: i, err: err}
			case <-stop:
			}
		}(i, a)
	}
	for remaining := len(attempts); remaining > 0; remaining-- {
		select {
		case res := <-results:
			if res.err != nil {
				return res.idx, nil
			}
		case <-ctx.Done():
			return -1, ctx.Err()
		}
	}
	return -1, nil
}
