package helpers

import (
	"net/http"
	"strconv"
	"strings"

	"mycenter/domain"
)

// Control-stream header names. A request carrying HeaderToken is a registration, never proxied.
const (
	HeaderToken                  = "token"
	HeaderRegisterModuleName     = "register_module_name"
	HeaderRegisterServerHost     = "register_server_host"
	HeaderRegisterServerPort     = "register_server_port"
	HeaderRegisterServiceVersion = "register_service_version"
)

// HeaderRequestID carries the per-request id the gateway attaches to proxied requests.
const HeaderRequestID = "X-Request-Id"

// GetHeaderValue returns the first value of key in h. Lookup is done on the raw map with the key lowercased
// (HTTP/2 header names arrive lowercase) and then through canonical Get, so names with underscores still match.
//
// Parameters: h - request headers (nil allowed - returns ("", false)); key - header name.
//
// Returns: (value, true) when present and non-empty; ("", false) otherwise.
//
// Called from GetToken, ParseRegistration and handlers.Gateway.
func GetHeaderValue(h http.Header, key string) (string, bool) {
	if h == nil || key == "" {
		return "", false
	}
	if vals := h[strings.ToLower(key)]; len(vals) > 0 && vals[0] != "" {
		return vals[0], true
	}
	if v := h.Get(key); v != "" {
		return v, true
	}
	return "", false
}

// GetToken returns the registration credential header, if any.
//
// Parameter h - request headers.
//
// Returns: (token, true) when the "token" header is present and non-empty; ("", false) otherwise.
//
// Called from handlers.Gateway.ServeHTTP to split registrations from proxied traffic.
func GetToken(h http.Header) (string, bool) {
	return GetHeaderValue(h, HeaderToken)
}

// ParseRegistration reads the register_* headers into a domain.Registration and validates it.
//
// Parameter h - headers of a control stream already known to carry a valid token.
//
// Returns: (registration, nil) on success; (zero, *domain.RegistrationError) when the port is not a number
// or domain.ValidateRegistration rejects a field.
//
// Called from handlers.Gateway for every registration stream.
func ParseRegistration(h http.Header) (domain.Registration, error) {
	name, _ := GetHeaderValue(h, HeaderRegisterModuleName)
	host, _ := GetHeaderValue(h, HeaderRegisterServerHost)
	version, _ := GetHeaderValue(h, HeaderRegisterServiceVersion)
	portStr, _ := GetHeaderValue(h, HeaderRegisterServerPort)
	port, err := strconv.Atoi(strings.TrimSpace(portStr))
	if err != nil {
		return domain.Registration{}, &domain.RegistrationError{Field: "server_port", Reason: "must be an integer, got " + strconv.Quote(portStr)}
	}
	reg := domain.Registration{
		ModuleName:     strings.TrimSpace(name),
		ServiceVersion: strings.TrimSpace(version),
		Host:           strings.Trim(strings.TrimSpace(host), "[]"),
		Port:           port,
	}
	if err := domain.ValidateRegistration(reg); err != nil {
		return domain.Registration{}, err
	}
	return reg, nil
}

// SetRegistration writes reg and token as control-stream headers.
//
// Parameters: h - outgoing request headers; token - shared credential; reg - identity to announce.
//
// Called from adapters/registrar when a module opens its control stream, and from tests.
func SetRegistration(h http.Header, token string, reg domain.Registration) {
	h[HeaderToken] = []string{token}
	h[HeaderRegisterModuleName] = []string{reg.ModuleName}
	h[HeaderRegisterServerHost] = []string{reg.Host}
	h[HeaderRegisterServerPort] = []string{strconv.Itoa(reg.Port)}
	h[HeaderRegisterServiceVersion] = []string{reg.ServiceVersion}
}
