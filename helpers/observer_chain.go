package helpers

import (
	"strconv"

	"mycenter/domain"
	"mycenter/interfaces"
)

// ObserverChain fans registry changes out to several observers in order. Implements interfaces.RegistryObserver.
// Used to compose the Redis mirror and the gRPC health reporter behind the single observer slot of service.Registry.
type ObserverChain []interfaces.RegistryObserver

// NewObserverChain creates a chain from the given observers. Panics on a nil element (fail-fast at startup).
// An empty chain is valid and drops every notification.
//
// Parameters: observers - notified in the given order.
//
// Returns: ObserverChain implementing interfaces.RegistryObserver.
//
// Called from cmd/main when wiring the optional side views.
func NewObserverChain(observers ...interfaces.RegistryObserver) ObserverChain {
	for i, o := range observers {
		if o == nil {
			panic("helpers.observer_chain.go: observer at index " + strconv.Itoa(i) + " is required")
		}
	}
	return ObserverChain(observers)
}

// InstanceUpdated forwards to every observer.
func (c ObserverChain) InstanceUpdated(inst domain.Instance) {
	for _, o := range c {
		o.InstanceUpdated(inst)
	}
}

// InstanceRekeyed forwards to every observer.
func (c ObserverChain) InstanceRekeyed(oldKey string, inst domain.Instance) {
	for _, o := range c {
		o.InstanceRekeyed(oldKey, inst)
	}
}

// InstanceRemoved forwards to every observer.
func (c ObserverChain) InstanceRemoved(inst domain.Instance) {
	for _, o := range c {
		o.InstanceRemoved(inst)
	}
}
