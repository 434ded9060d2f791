package domain

import "fmt"

// Status is the connection state of one module instance.
type Status int

const (
	StatusDisabled   Status = -1 // last attempt failed with a transport or protocol error
	StatusOffline    Status = 0  // connection closed cleanly, eligible for reconnect
	StatusOnline     Status = 1  // data connection established and usable
	StatusConnecting Status = 2  // attempt in flight
)

// String returns the lowercase status name used in 503 bodies, the console and the admin API.
func (s Status) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
	case StatusOffline:
		return "offline"
	case StatusOnline:
		return "online"
	case StatusConnecting:
		return "connecting"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText renders the status by name so JSON snapshots stay readable.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a status name produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "disabled":
		*s = StatusDisabled
	case "offline":
		*s = StatusOffline
	case "online":
		*s = StatusOnline
	case "connecting":
		*s = StatusConnecting
	default:
		return fmt.Errorf("unknown status %q", string(text))
	}
	return nil
}
