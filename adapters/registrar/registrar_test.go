package registrar

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mycenter/domain"
	"mycenter/helpers"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var billing = domain.Registration{ModuleName: "billing", ServiceVersion: "1.0.0", Host: "10.0.0.5", Port: 9001}

func TestNew_Panics(t *testing.T) {
	logger := log.NewNopLogger()
	t.Run("client_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "registrar.registrar.go: client is required", func() { New(nil, "http://gw", "tok", logger) })
	})
	t.Run("url_empty", func(t *testing.T) {
		assert.PanicsWithValue(t, "registrar.registrar.go: gateway url is required", func() { New(http.DefaultClient, "", "tok", logger) })
	})
	t.Run("token_empty", func(t *testing.T) {
		assert.PanicsWithValue(t, "registrar.registrar.go: token is required", func() { New(http.DefaultClient, "http://gw", "", logger) })
	})
	t.Run("logger_nil", func(t *testing.T) {
		assert.PanicsWithValue(t, "registrar.registrar.go: logger is required", func() { New(http.DefaultClient, "http://gw", "tok", nil) })
	})
}

func TestRegistrar_Register(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name: "acknowledged",
			handler: func(w http.ResponseWriter, r *http.Request) {
				got, err := helpers.ParseRegistration(r.Header)
				if err != nil || got != billing {
					http.Error(w, "bad registration", http.StatusBadRequest)
					return
				}
				tok, _ := helpers.GetToken(r.Header)
				_, _ = io.WriteString(w, tok)
			},
			check: func(t *testing.T, err error) { assert.NoError(t, err) },
		},
		{
			name:    "wrong_echo",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, "other") },
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrCredentialMismatch) },
		},
		{
			name: "dropped",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "registration dropped", http.StatusConflict)
			},
			check: func(t *testing.T, err error) {
				var se *StatusError
				require.ErrorAs(t, err, &se)
				assert.Equal(t, http.StatusConflict, se.Code)
				assert.Equal(t, "registration dropped", se.Body)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			t.Cleanup(srv.Close)
			err := New(srv.Client(), srv.URL, "s3cret", log.NewNopLogger()).Register(context.Background(), billing)
			tt.check(t, err)
		})
	}
}

func TestRegistrar_InvalidRegistration(t *testing.T) {
	r := New(http.DefaultClient, "http://127.0.0.1:1", "s3cret", log.NewNopLogger())
	err := r.Register(context.Background(), domain.Registration{ModuleName: "billing", Host: "10.0.0.5"})
	var regErr *domain.RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "server_port", regErr.Field)
}

func TestRegistrar_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := New(srv.Client(), srv.URL, "s3cret", log.NewNopLogger()).Register(ctx, billing)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewH2CClient(t *testing.T) {
	c := NewH2CClient()
	require.NotNil(t, c)
	assert.NotNil(t, c.Transport)
}
