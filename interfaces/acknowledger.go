package interfaces

// Acknowledger is the registry's handle on a pending registration control stream.
//
// Ack is called once the gateway holds a usable data connection to the registered instance; the
// implementation writes credential as the stream's terminal payload. Abandon is called when the
// registration will never be acknowledged (dropped by arbitration, superseded by a newer control
// stream for the same slot, or retry budget exhausted). Implementations must accept at most one of
// the two calls and ignore the rest.
//
// Implemented by handlers.controlStream. Called from service.Registry.
//
//go:generate moq -stub -out mock/acknowledger.go -pkg mock . Acknowledger
type Acknowledger interface {
	// Ack completes the control stream successfully with the shared credential.
	Ack(credential string)

	// Abandon completes the control stream without acknowledgement.
	// Parameter reason - one of the service sentinel errors (ErrRegistrationDropped, ErrRegistrationSuperseded, ErrRetriesExhausted).
	Abandon(reason error)
}
