package helpers

import (
	"testing"

	"mycenter/domain"
	"mycenter/interfaces"
	"mycenter/interfaces/mock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewObserverChain_Panics(t *testing.T) {
	assert.PanicsWithValue(t, "helpers.observer_chain.go: observer at index 1 is required", func() {
		NewObserverChain(&mock.RegistryObserverMock{}, nil)
	})
}

func TestObserverChain_ForwardsInOrder(t *testing.T) {
	var order []string
	first := &mock.RegistryObserverMock{
		InstanceUpdatedFunc: func(domain.Instance) { order = append(order, "first.updated") },
		InstanceRemovedFunc: func(domain.Instance) { order = append(order, "first.removed") },
	}
	second := &mock.RegistryObserverMock{
		InstanceUpdatedFunc: func(domain.Instance) { order = append(order, "second.updated") },
		InstanceRekeyedFunc: func(string, domain.Instance) { order = append(order, "second.rekeyed") },
	}
	var chain interfaces.RegistryObserver = NewObserverChain(first, second)

	inst := domain.Instance{ModuleName: "billing", Host: "h", Port: 9002}
	chain.InstanceUpdated(inst)
	chain.InstanceRekeyed("old", inst)
	chain.InstanceRemoved(inst)

	assert.Equal(t, []string{"first.updated", "second.updated", "second.rekeyed", "first.removed"}, order)
	require.Len(t, second.InstanceRekeyedCalls(), 1)
	assert.Equal(t, "old", second.InstanceRekeyedCalls()[0].OldKey)
	assert.Len(t, first.InstanceRekeyedCalls(), 1)
}

func TestObserverChain_Empty(t *testing.T) {
	chain := NewObserverChain()
	assert.NotPanics(t, func() {
		chain.InstanceUpdated(domain.Instance{})
		chain.InstanceRekeyed("", domain.Instance{})
		chain.InstanceRemoved(domain.Instance{})
	})
}
