// Package grpchealth publishes per-module availability through the standard gRPC health service: a module
// is SERVING while at least one of its instances is online.
package grpchealth

import (
	"sync"

	"mycenter/domain"
	"mycenter/helpers"
	"mycenter/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Reporter is a registry observer keeping a health.Server in step with the registry. The empty service
// name reports the gateway itself and is SERVING until Shutdown.
type Reporter struct {
	server *health.Server
	logger log.Logger

	mu        sync.Mutex
	instances map[string]domain.Instance
	serving   map[string]bool
}

var _ interfaces.RegistryObserver = (*Reporter)(nil)

// NewReporter creates the reporter with its own health.Server. Panics on nil logger.
//
// Called from cmd/main when HEALTH_PORT_GRPC is set.
func NewReporter(logger log.Logger) *Reporter {
	r := &Reporter{
		server:    health.NewServer(),
		logger:    log.With(helpers.NilPanic(logger, "grpchealth.reporter.go: logger is required"), "component", "grpc_health"),
		instances: make(map[string]domain.Instance),
		serving:   make(map[string]bool),
	}
	r.server.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	return r
}

// Register exposes the health service on s.
func (r *Reporter) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, r.server)
}

// Server returns the underlying health server.
func (r *Reporter) Server() *health.Server {
	return r.server
}

// Shutdown reports every service NOT_SERVING and ignores later updates.
//
// Called from cmd/main when the gateway stops.
func (r *Reporter) Shutdown() {
	r.server.Shutdown()
}

func (r *Reporter) InstanceUpdated(inst domain.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[inst.Key()] = inst
	r.refreshLocked(inst.ModuleName)
}

func (r *Reporter) InstanceRekeyed(oldKey string, inst domain.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, oldKey)
	r.instances[inst.Key()] = inst
	r.refreshLocked(inst.ModuleName)
}

func (r *Reporter) InstanceRemoved(inst domain.Instance) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, inst.Key())
	r.refreshLocked(inst.ModuleName)
}

func (r *Reporter) refreshLocked(module string) {
	online := false
	for _, inst := range r.instances {
		if inst.ModuleName == module && inst.Status == domain.StatusOnline {
			online = true
			break
		}
	}
	if prev, known := r.serving[module]; known && prev == online {
		return
	}
	r.serving[module] = online
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if online {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	r.server.SetServingStatus(module, status)
	level.Debug(r.logger).Log("msg", "module health changed", "module", module, "status", status)
}
