package domain

import (
	"net"
	"strconv"
)

// Instance is one registered backend process: its network identity and current status.
// Runtime state (data connection, pending attempt, retry budget) lives with the registry, not here.
type Instance struct {
	ModuleName     string `json:"module_name"`
	ServiceVersion string `json:"service_version"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	Status         Status `json:"status"`
}

// Slot is the logical identity of an instance that survives port changes.
type Slot struct {
	ModuleName     string
	ServiceVersion string
	Host           string
}

// InstanceKey formats the registry primary key from the four identity fields.
func InstanceKey(moduleName, serviceVersion, host string, port int) string {
	return "[" + moduleName + "](V:" + serviceVersion + ")|[" + host + "]:" + strconv.Itoa(port)
}

// Key is the registry primary key. It changes whenever Port changes.
func (i Instance) Key() string {
	return InstanceKey(i.ModuleName, i.ServiceVersion, i.Host, i.Port)
}

// Slot returns the (name, version, host) triple shared by all generations of this instance.
func (i Instance) Slot() Slot {
	return Slot{ModuleName: i.ModuleName, ServiceVersion: i.ServiceVersion, Host: i.Host}
}

// Address is host:port suitable for dialing; IPv6 literals are bracketed.
func (i Instance) Address() string {
	return net.JoinHostPort(i.Host, strconv.Itoa(i.Port))
}
