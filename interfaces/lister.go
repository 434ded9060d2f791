package interfaces

import "mycenter/domain"

// InstanceLister is the read-only view of the registry used by the console and the admin API.
//
// Implemented by service.Registry.
//
//go:generate moq -stub -out mock/instance_lister.go -pkg mock . InstanceLister
type InstanceLister interface {
	// Instances returns snapshots of every instance matching match (nil matches all), ordered by key.
	Instances(match func(domain.Instance) bool) []domain.Instance
}
