// Package registrar is the module side of registration: it opens the control stream to the gateway and
// waits until the gateway has connected back and echoed the shared credential.
package registrar

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"mycenter/domain"
	"mycenter/helpers"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"golang.org/x/net/http2"
)

// ErrCredentialMismatch means the gateway acknowledged the registration with a different credential.
var ErrCredentialMismatch = errors.New("registrar: gateway answered with a different credential")

// maxAckSize bounds the acknowledgement body read from the gateway.
const maxAckSize = 4096

// StatusError is returned when the gateway refuses the registration.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("registrar: gateway answered %d: %s", e.Code, e.Body)
}

// NewH2CClient returns an HTTP client speaking cleartext HTTP/2 with prior knowledge, like the gateway's
// own data connections.
func NewH2CClient() *http.Client {
	return &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, network, addr)
			},
		},
	}
}

// Registrar announces one module instance to a gateway.
type Registrar struct {
	client     *http.Client
	gatewayURL string
	token      string
	logger     log.Logger
}

// New creates a Registrar. Panics on nil client/logger or empty gateway URL/token.
//
// Parameters: client - HTTP client (NewH2CClient for an h2c gateway); gatewayURL - e.g. http://gateway:8080/;
// token - the shared credential; logger - logger.
func New(client *http.Client, gatewayURL string, token string, logger log.Logger) *Registrar {
	return &Registrar{
		client:     helpers.NilPanic(client, "registrar.registrar.go: client is required"),
		gatewayURL: helpers.StrPanic(gatewayURL, "registrar.registrar.go: gateway url is required"),
		token:      helpers.StrPanic(token, "registrar.registrar.go: token is required"),
		logger:     log.With(helpers.NilPanic(logger, "registrar.registrar.go: logger is required"), "component", "registrar"),
	}
}

// Register opens the control stream for reg and blocks until the gateway acknowledges it.
//
// Parameters: ctx - cancels the wait (the gateway sees the stream go away); reg - this instance's identity.
//
// Returns: nil once the gateway connected back and echoed the credential; *StatusError when the gateway
// refused the registration (400 invalid, 403 bad token, 409 dropped, 503 retries exhausted);
// ErrCredentialMismatch for a wrong echo; the transport error otherwise.
func (r *Registrar) Register(ctx context.Context, reg domain.Registration) error {
	if err := domain.ValidateRegistration(reg); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.gatewayURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("registrar: build request: %w", err)
	}
	helpers.SetRegistration(req.Header, r.token, reg)

	level.Info(r.logger).Log("msg", "registering", "gateway", r.gatewayURL, "key", reg.Key())
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("registrar: open control stream: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAckSize))
	if err != nil {
		return fmt.Errorf("registrar: read acknowledgement: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if string(body) != r.token {
		return ErrCredentialMismatch
	}
	level.Info(r.logger).Log("msg", "registered", "key", reg.Key())
	return nil
}
