package service

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mycenter/domain"
	"mycenter/helpers"
	"mycenter/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"
	"github.com/hashicorp/go-metrics"
)

// FallbackPage is served (200) when a request names a module with no online instance.
type FallbackPage struct {
	ContentType string
	Body        string
}

// DefaultFallbackPage is used unless the YAML config sets fallback.content_type / fallback.body.
var DefaultFallbackPage = FallbackPage{ContentType: "text/html", Body: "<h1>Hello World</h1>"}

const (
	outcomeFallback    = "fallback"
	outcomeProxied     = "proxied"
	outcomeUnavailable = "unavailable"
	outcomeBadGateway  = "bad_gateway"
	outcomeCanceled    = "canceled"
)

// hopHeaders are connection-scoped and never forwarded in either direction.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// Router proxies client requests to module instances. The first path segment names the module; the
// remaining segments, with the query, form the path forwarded to one online instance picked uniformly at
// random. Requests are never retried on another instance.
type Router struct {
	registry   *Registry
	credential string
	fallback   FallbackPage
	sink       metrics.MetricSink
	logger     log.Logger
	intn       func(n int) int
}

// NewRouter creates the router. Panics on nil registry/sink/logger or an empty credential.
//
// Parameters: registry - source of online targets; credential - sent as the "token" header on every proxied
// request; fallback - page for modules without online instances (zero value means DefaultFallbackPage);
// sink - metrics sink; logger - logger.
//
// Returns: *Router, an http.Handler.
//
// Called from cmd/main; handlers.Gateway hands it every request without a token header.
func NewRouter(registry *Registry, credential string, fallback FallbackPage, sink metrics.MetricSink, logger log.Logger) *Router {
	if fallback.ContentType == "" && fallback.Body == "" {
		fallback = DefaultFallbackPage
	}
	return &Router{
		registry:   helpers.NilPanic(registry, "service.router.go: registry is required"),
		credential: helpers.StrPanic(credential, "service.router.go: credential is required"),
		fallback:   fallback,
		sink:       helpers.NilPanic(sink, "service.router.go: metric sink is required"),
		logger:     log.With(helpers.NilPanic(logger, "service.router.go: logger is required"), "component", "router"),
		intn:       rand.Intn,
	}
}

// ServeHTTP routes one request:
//  1. no online instance of the named module: fallback page, 200;
//  2. otherwise wait for the picked instance's attempt, bounded by the request context; a rejected attempt
//     gives 503 "MicroService [<name>] <status>";
//  3. open a stream on the instance's data connection and stream status, headers, body and trailers back.
//     A connection that dies before the response headers gives the same 503; any other upstream error 502.
func (rt *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	name, subPath := SplitModulePath(req.URL.EscapedPath())
	targets := rt.registry.Targets(name)
	if len(targets) == 0 {
		rt.serveFallback(w, name)
		return
	}
	target := targets[rt.intn(len(targets))]

	conn, err := target.Wait(req.Context())
	if err != nil {
		if req.Context().Err() != nil {
			rt.count(name, outcomeCanceled)
			return
		}
		rt.serveUnavailable(w, target, nil)
		return
	}

	requestID := req.Header.Get(helpers.HeaderRequestID)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	out, err := rt.outbound(req, target.Instance, subPath, requestID)
	if err != nil {
		level.Warn(rt.logger).Log("msg", "cannot build upstream request", "module", name, "err", err)
		rt.count(name, outcomeBadGateway)
		http.Error(w, "bad gateway", http.StatusBadGateway)
		return
	}

	resp, err := conn.RoundTrip(out)
	if err != nil {
		if req.Context().Err() != nil {
			rt.count(name, outcomeCanceled)
			return
		}
		select {
		case <-conn.Done():
			rt.serveUnavailable(w, target, conn)
		default:
			level.Warn(rt.logger).Log("msg", "upstream request failed", "module", name, "key", target.Instance.Key(), "request_id", requestID, "err", err)
			rt.count(name, outcomeBadGateway)
			http.Error(w, "bad gateway", http.StatusBadGateway)
		}
		return
	}
	defer resp.Body.Close()

	copyResponse(w, resp, requestID, rt.logger)
	rt.count(name, outcomeProxied)
	level.Debug(rt.logger).Log("msg", "proxied", "module", name, "path", subPath, "status", resp.StatusCode, "request_id", requestID, "took", time.Since(start))
}

func (rt *Router) serveFallback(w http.ResponseWriter, name string) {
	rt.count(name, outcomeFallback)
	w.Header().Set("Content-Type", rt.fallback.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, rt.fallback.Body)
}

// serveUnavailable writes the 503 naming the instance's status. When the registry has not yet seen the
// connection end, the status it is heading to is derived from conn.
func (rt *Router) serveUnavailable(w http.ResponseWriter, target Target, conn interfaces.DataConnection) {
	status := rt.registry.CurrentStatus(target)
	if status == domain.StatusOnline && conn != nil {
		status = domain.StatusOffline
		if conn.Err() != nil {
			status = domain.StatusDisabled
		}
	}
	level.Info(rt.logger).Log("msg", "module unavailable", "key", target.Instance.Key(), "status", status)
	rt.count(target.Instance.ModuleName, outcomeUnavailable)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = fmt.Fprintf(w, "MicroService [%s] %s", target.Instance.ModuleName, status)
}

// outbound builds the request sent on the data connection: same method, body and end-to-end headers,
// plus the credential, the request id and X-Forwarded-For.
func (rt *Router) outbound(req *http.Request, inst domain.Instance, subPath string, requestID string) (*http.Request, error) {
	path, err := url.PathUnescape(subPath)
	if err != nil {
		return nil, fmt.Errorf("unescape path %q: %w", subPath, err)
	}
	u := &url.URL{
		Scheme:   "http",
		Host:     inst.Address(),
		Path:     path,
		RawPath:  subPath,
		RawQuery: req.URL.RawQuery,
	}
	var body io.Reader = http.NoBody
	if req.Body != nil && req.ContentLength != 0 {
		body = req.Body
	}
	out, err := http.NewRequestWithContext(req.Context(), req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	out.ContentLength = req.ContentLength
	out.Header = req.Header.Clone()
	if out.Header == nil {
		out.Header = make(http.Header)
	}
	removeHopHeaders(out.Header)
	if req.Trailer != nil {
		out.Trailer = req.Trailer.Clone()
	}
	out.Header.Set(helpers.HeaderToken, rt.credential)
	out.Header.Set(helpers.HeaderRequestID, requestID)
	if ip, _, err := net.SplitHostPort(req.RemoteAddr); err == nil {
		if prior := out.Header.Values("X-Forwarded-For"); len(prior) > 0 {
			ip = strings.Join(prior, ", ") + ", " + ip
		}
		out.Header.Set("X-Forwarded-For", ip)
	}
	return out, nil
}

func (rt *Router) count(name string, outcome string) {
	rt.sink.IncrCounterWithLabels(MetricRequestCount, 1, []metrics.Label{
		LabelModule.M(name),
		LabelOutcome.M(outcome),
	})
}

// copyResponse writes resp to w, flushing after every chunk so streamed responses reach the client as the
// module produces them.
func copyResponse(w http.ResponseWriter, resp *http.Response, requestID string, logger log.Logger) {
	h := w.Header()
	for k, vv := range resp.Header {
		h[k] = append([]string(nil), vv...)
	}
	removeHopHeaders(h)
	for k := range resp.Trailer {
		h.Add("Trailer", k)
	}
	if h.Get(helpers.HeaderRequestID) == "" {
		h.Set(helpers.HeaderRequestID, requestID)
	}
	w.WriteHeader(resp.StatusCode)

	rc := http.NewResponseController(w)
	_ = rc.Flush()
	buf := make([]byte, 32*1024)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				level.Debug(logger).Log("msg", "client went away", "request_id", requestID, "err", werr)
				return
			}
			_ = rc.Flush()
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			level.Warn(logger).Log("msg", "upstream body interrupted", "request_id", requestID, "err", err)
			return
		}
	}
	for k, vv := range resp.Trailer {
		h[k] = append([]string(nil), vv...)
	}
}

func removeHopHeaders(h http.Header) {
	for _, f := range h.Values("Connection") {
		for _, name := range strings.Split(f, ",") {
			if name = strings.TrimSpace(name); name != "" {
				h.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		h.Del(name)
	}
}

// SplitModulePath splits an escaped request path into the module name (first non-empty segment) and the
// path forwarded to the module ("/" joined with the remaining non-empty segments).
//
// Examples: "/billing/invoice/1" → ("billing", "/invoice/1"); "//billing//" → ("billing", "/"); "/" → ("", "/").
func SplitModulePath(escapedPath string) (name string, subPath string) {
	var segments []string
	for _, s := range strings.Split(escapedPath, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) == 0 {
		return "", "/"
	}
	name = segments[0]
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name, "/" + strings.Join(segments[1:], "/")
}
