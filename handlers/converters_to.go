package handlers

import (
	"mycenter/domain"
)

// InstanceInfo is one instance in admin API responses.
type InstanceInfo struct {
	Key            string `json:"key"`
	ModuleName     string `json:"module_name"`
	ServiceVersion string `json:"service_version"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Status         string `json:"status"`
}

// InstancesResponse is the body of GET /v1/instances.
type InstancesResponse struct {
	Instances []InstanceInfo `json:"instances"`
}

// ModuleResponse is the body of GET /v1/instances/{module_name}.
type ModuleResponse struct {
	ModuleName string         `json:"module_name"`
	Online     int            `json:"online"`
	Instances  []InstanceInfo `json:"instances"`
}

func toInstanceInfo(i domain.Instance) InstanceInfo {
	return InstanceInfo{
		Key:            i.Key(),
		ModuleName:     i.ModuleName,
		ServiceVersion: i.ServiceVersion,
		Host:           i.Host,
		Port:           i.Port,
		Status:         i.Status.String(),
	}
}

// toInstancesResponse converts domain instances to API response.
func toInstancesResponse(instances []domain.Instance) InstancesResponse {
	out := make([]InstanceInfo, 0, len(instances))
	for _, i := range instances {
		out = append(out, toInstanceInfo(i))
	}
	return InstancesResponse{Instances: out}
}

// toModuleResponse converts the instances of one module to API response.
func toModuleResponse(name string, instances []domain.Instance) ModuleResponse {
	online := 0
	for _, i := range instances {
		if i.Status == domain.StatusOnline {
			online++
		}
	}
	return ModuleResponse{
		ModuleName: name,
		Online:     online,
		Instances:  toInstancesResponse(instances).Instances,
	}
}
