package helpers

import "reflect"

// StrPanic panics with panicMessage if s is empty; otherwise returns s. Only s == "" is checked (no TrimSpace).
//
// Parameters: s - required configuration string (shared credential, Redis key prefix, ...); panicMessage - value passed to panic.
//
// Returns: s unchanged when non-empty.
//
// Called from constructors: service.NewRegistry (credential), myredis.NewMirror (prefix), handlers.NewGateway.
func StrPanic(s string, panicMessage string) string {
	if s == "" {
		panic(panicMessage)
	}
	return s
}

// NilPanic panics with panicMessage if v is nil (nil interface, pointer, slice, map, chan or func, checked via reflect); otherwise returns v.
//
// Parameters: v - required dependency; panicMessage - panic value, by convention "pkg.file.go: name is required".
//
// Returns: v unchanged when non-nil, typed as T so no assertion is needed at the call site.
//
// Called from every constructor that takes collaborators (service.NewRegistry, service.NewRouter, handlers.NewGateway, adapters ...).
func NilPanic[T any](v T, panicMessage string) T {
	if isNil(v) {
		panic(panicMessage)
	}
	return v
}

// PositivePanic panics with panicMessage if v is not strictly positive; otherwise returns v.
//
// Parameters: v - a count or duration that must be > 0 (retry budget, reconnect delay); panicMessage - panic value.
//
// Returns: v unchanged.
//
// Called from service.NewRegistry for the retry budget and reconnect delay.
func PositivePanic[T ~int | ~int64](v T, panicMessage string) T {
	if v <= 0 {
		panic(panicMessage)
	}
	return v
}

// isNil reports whether v is nil or a typed nil pointer/slice/map/chan/func/interface.
//
// Called only from NilPanic.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// Ptr returns a pointer whose value is v.
func Ptr[T any](v T) *T {
	return &v
}
