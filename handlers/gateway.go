// Package handlers contains the gateway's inbound surfaces: the HTTP/2 listener that splits module
// registrations from client traffic, the read-only admin API and the interactive console.
package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"mycenter/domain"
	"mycenter/helpers"
	"mycenter/interfaces"
	"mycenter/service"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Registerer arbitrates registrations. Implemented by service.Registry.
type Registerer interface {
	Register(ctx context.Context, reg domain.Registration, ack interfaces.Acknowledger) (service.Outcome, error)
}

// Gateway is the single inbound handler. A request carrying the token header is a registration control
// stream; every other request goes to the proxy.
type Gateway struct {
	registry   Registerer
	proxy      http.Handler
	credential []byte
	logger     log.Logger
}

// NewGateway creates the handler. Panics on nil registry/proxy/logger or an empty credential.
//
// Called from cmd/main; wrap with NewGatewayServer to serve it.
func NewGateway(registry Registerer, proxy http.Handler, credential string, logger log.Logger) *Gateway {
	return &Gateway{
		registry:   helpers.NilPanic(registry, "handlers.gateway.go: registry is required"),
		proxy:      helpers.NilPanic(proxy, "handlers.gateway.go: proxy is required"),
		credential: []byte(helpers.StrPanic(credential, "handlers.gateway.go: credential is required")),
		logger:     log.With(helpers.NilPanic(logger, "handlers.gateway.go: logger is required"), "component", "gateway"),
	}
}

// ServeHTTP dispatches one request:
//   - no token header: proxied;
//   - wrong token: 403;
//   - right token: registration. Invalid headers give 400. Otherwise the stream stays open until the
//     instance is connected (200, the credential as the whole body), the registration is refused (409 dropped
//     or superseded, 503 retries exhausted or gateway stopping) or the module goes away.
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token, ok := helpers.GetToken(r.Header)
	if !ok {
		g.proxy.ServeHTTP(w, r)
		return
	}
	if subtle.ConstantTimeCompare([]byte(token), g.credential) != 1 {
		level.Warn(g.logger).Log("msg", "registration with invalid token", "remote", r.RemoteAddr)
		http.Error(w, "invalid token", http.StatusForbidden)
		return
	}
	reg, err := helpers.ParseRegistration(r.Header)
	if err != nil {
		level.Warn(g.logger).Log("msg", "invalid registration", "remote", r.RemoteAddr, "err", err)
		http.Error(w, fmt.Errorf("%w: %w", service.ErrInvalidRegistration, err).Error(), http.StatusBadRequest)
		return
	}

	stream := newControlStream()
	outcome, err := g.registry.Register(r.Context(), reg, stream)
	if err != nil && !errors.Is(err, service.ErrRegistryClosed) {
		level.Debug(g.logger).Log("msg", "control stream gone during arbitration", "key", reg.Key(), "err", err)
		return
	}
	level.Info(g.logger).Log("msg", "registration arbitrated", "key", reg.Key(), "outcome", outcome)

	start := time.Now()
	select {
	case res := <-stream.result:
		if res.err != nil {
			level.Warn(g.logger).Log("msg", "registration refused", "key", reg.Key(), "err", res.err)
			http.Error(w, res.err.Error(), abandonStatus(res.err))
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, res.credential)
		level.Info(g.logger).Log("msg", "registration acknowledged", "key", reg.Key(), "waited", time.Since(start))
	case <-r.Context().Done():
		level.Info(g.logger).Log("msg", "module closed its control stream", "key", reg.Key())
	}
}

func abandonStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrRegistrationDropped), errors.Is(err, service.ErrRegistrationSuperseded):
		return http.StatusConflict
	case errors.Is(err, service.ErrRetriesExhausted), errors.Is(err, service.ErrRegistryClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

type ackResult struct {
	credential string
	err        error
}

// controlStream is the Acknowledger handed to the registry for one registration. Only the first Ack or
// Abandon is delivered.
type controlStream struct {
	once   sync.Once
	result chan ackResult
}

var _ interfaces.Acknowledger = (*controlStream)(nil)

func newControlStream() *controlStream {
	return &controlStream{result: make(chan ackResult, 1)}
}

func (s *controlStream) Ack(credential string) {
	s.once.Do(func() { s.result <- ackResult{credential: credential} })
}

func (s *controlStream) Abandon(reason error) {
	s.once.Do(func() { s.result <- ackResult{err: reason} })
}

// NewGatewayServer wraps h for the listener. Without TLS it serves cleartext HTTP/2 with prior knowledge and
// HTTP/1.1 on the same port; with TLS, HTTP/2 is negotiated by ALPN (start it with ListenAndServeTLS).
//
// Parameters: addr - listen address; h - the Gateway; useTLS - whether TLS_CERT_FILE/TLS_KEY_FILE are configured.
func NewGatewayServer(addr string, h http.Handler, useTLS bool) (*http.Server, error) {
	h2 := &http2.Server{}
	srv := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if useTLS {
		srv.Handler = h
		if err := http2.ConfigureServer(srv, h2); err != nil {
			return nil, err
		}
		return srv, nil
	}
	srv.Handler = h2c.NewHandler(h, h2)
	return srv, nil
}
