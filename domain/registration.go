package domain

import (
	"strconv"
	"strings"
)

// Registration is the identity a module announces on its control stream.
type Registration struct {
	ModuleName     string
	ServiceVersion string
	Host           string
	Port           int
}

// Key is the instance key this registration would be stored under.
func (r Registration) Key() string {
	return InstanceKey(r.ModuleName, r.ServiceVersion, r.Host, r.Port)
}

// Slot is the logical slot this registration belongs to.
func (r Registration) Slot() Slot {
	return Slot{ModuleName: r.ModuleName, ServiceVersion: r.ServiceVersion, Host: r.Host}
}

// ValidateRegistration checks that name and host are set and the port is 1-65535.
// Version may be empty; it is still part of the key.
func ValidateRegistration(r Registration) error {
	if strings.TrimSpace(r.ModuleName) == "" {
		return &RegistrationError{Field: "module_name", Reason: "must be non-empty"}
	}
	if strings.Contains(r.ModuleName, "/") {
		return &RegistrationError{Field: "module_name", Reason: "must not contain /"}
	}
	if strings.TrimSpace(r.Host) == "" {
		return &RegistrationError{Field: "server_host", Reason: "must be non-empty"}
	}
	if r.Port <= 0 || r.Port > 65535 {
		return &RegistrationError{Field: "server_port", Reason: "must be 1-65535, got " + strconv.Itoa(r.Port)}
	}
	return nil
}

// RegistrationError is returned by ValidateRegistration for the first invalid field.
type RegistrationError struct {
	Field  string
	Reason string
}

// Error returns "register_<field>: <reason>", naming the header the module sent.
func (e *RegistrationError) Error() string {
	return "register_" + e.Field + ": " + e.Reason
}
