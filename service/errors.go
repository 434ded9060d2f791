package service

import "errors"

// ErrConnectionClosed rejects the pending attempt when a data connection closes cleanly; the retry target is offline.
var ErrConnectionClosed = errors.New("connection closed")

// ErrRegistrationDropped abandons a registration whose slot had only connecting instances and all of them came online.
var ErrRegistrationDropped = errors.New("registration dropped: every connecting instance of the slot came online")

// ErrRegistrationSuperseded abandons a control stream replaced by a newer registration for the same instance.
var ErrRegistrationSuperseded = errors.New("registration superseded by a newer control stream")

// ErrRetriesExhausted abandons the control stream of an instance removed after its reconnect budget ran out.
var ErrRetriesExhausted = errors.New("reconnect attempts exhausted")

// ErrRegistryClosed is returned by Register after Close and abandons every pending control stream on shutdown.
var ErrRegistryClosed = errors.New("registry is closed")

// ErrInvalidRegistration wraps a *domain.RegistrationError for a control stream with missing or malformed headers.
var ErrInvalidRegistration = errors.New("invalid registration")
