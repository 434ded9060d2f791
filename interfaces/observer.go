package interfaces

import "mycenter/domain"

// RegistryObserver receives registry changes for side views (Redis mirror, gRPC health, metrics).
//
// Calls carry value snapshots and arrive one at a time, in the order the changes happened. They run on
// the goroutine that made the change while later notifications wait, so an observer must return quickly
// and must not call back into the registry.
//
// Implemented by adapters/myredis.Mirror, adapters/grpchealth.Reporter and composed in helpers.ObserverChain.
// Called from service.Registry.
//
//go:generate moq -stub -out mock/registry_observer.go -pkg mock . RegistryObserver
type RegistryObserver interface {
	// InstanceUpdated is called after creation and after every status change.
	InstanceUpdated(inst domain.Instance)

	// InstanceRekeyed is called after arbitration moved an instance from oldKey to inst.Key().
	InstanceRekeyed(oldKey string, inst domain.Instance)

	// InstanceRemoved is called after an instance left the registry for good.
	InstanceRemoved(inst domain.Instance)
}
