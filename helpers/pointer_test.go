package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStrPanic(t *testing.T) {
	assert.PanicsWithValue(t, "boom", func() { StrPanic("", "boom") })
	assert.Equal(t, " ", StrPanic(" ", "boom"))
	assert.Equal(t, "token", StrPanic("token", "boom"))
}

func TestNilPanic(t *testing.T) {
	var nilPtr *int
	var nilMap map[string]int
	var nilFunc func()
	var nilSlice []int
	var nilIface interface{ Close() error }

	tests := []struct {
		name  string
		call  func()
		panic bool
	}{
		{"nil_pointer", func() { NilPanic(nilPtr, "msg") }, true},
		{"nil_map", func() { NilPanic(nilMap, "msg") }, true},
		{"nil_func", func() { NilPanic(nilFunc, "msg") }, true},
		{"nil_slice", func() { NilPanic(nilSlice, "msg") }, true},
		{"nil_interface", func() { NilPanic(nilIface, "msg") }, true},
		{"value", func() { NilPanic(42, "msg") }, false},
		{"empty_string", func() { NilPanic("", "msg") }, false},
		{"non_nil_map", func() { NilPanic(map[string]int{}, "msg") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.panic {
				assert.PanicsWithValue(t, "msg", tt.call)
				return
			}
			assert.NotPanics(t, tt.call)
		})
	}
}

func TestPositivePanic(t *testing.T) {
	assert.PanicsWithValue(t, "attempts", func() { PositivePanic(0, "attempts") })
	assert.PanicsWithValue(t, "delay", func() { PositivePanic(-time.Second, "delay") })
	assert.Equal(t, 10, PositivePanic(10, "attempts"))
	assert.Equal(t, time.Second, PositivePanic(time.Second, "delay"))
}

func TestPtr(t *testing.T) {
	p := Ptr("billing")
	if assert.NotNil(t, p) {
		assert.Equal(t, "billing", *p)
	}
}
