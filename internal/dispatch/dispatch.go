// Package dispatch provides the low-level HTTP transport used by every
// typed client in this module. It sends one request and returns the raw
// response; it never retries and never interprets status codes.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/finops-sre/opsprobe/internal/telemetry"
)

const tracerName = "github.com/finops-sre/opsprobe/internal/dispatch"

// Method is the closed set of HTTP methods the dispatcher accepts.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
	MethodPatch  Method = http.MethodPatch
)

var supportedMethods = map[Method]struct{}{
	MethodGet:    {},
	MethodPost:   {},
	MethodPut:    {},
	MethodDelete: {},
	MethodPatch:  {},
}

// Request describes one HTTP request. Body, when non-nil, is JSON-encoded.
type Request struct {
	Method Method
	Path   string
	Query  url.Values
	Header http.Header
	Body   any
}

// Response is the raw result of a dispatched request. The body is read in
// full so the caller can decode it lazily, or not at all.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// Dispatcher issues HTTP requests against a single base URL. It holds no
// per-request state and is safe for concurrent use.
type Dispatcher struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient replaces the underlying HTTP client. Useful for injecting
// a caching transport or a client with a custom timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.httpClient = c
	}
}

// WithLogger sets the logger used for request/response logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// New creates a Dispatcher for the given base URL.
func New(baseURL string, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Send issues the request and returns the raw response. Transport failures
// (including timeouts) are returned as *TransportError; the method being
// outside the closed set is returned as *UnsupportedMethodError.
func (d *Dispatcher) Send(ctx context.Context, req Request) (*Response, error) {
	if _, ok := supportedMethods[req.Method]; !ok {
		return nil, &UnsupportedMethodError{Method: req.Method}
	}

	target := d.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method), target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for key, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("%s %s", req.Method, req.Path),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", string(req.Method)),
			attribute.String("url.path", req.Path),
		),
	)
	defer span.End()

	start := time.Now()

	httpResp, err := d.httpClient.Do(httpReq)
	if err != nil {
		span.RecordError(err)
		d.logger.Warn().
			Str("method", string(req.Method)).
			Str("path", req.Path).
			Err(err).
			Msg("transport failure")
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}

	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int("http.response.status_code", httpResp.StatusCode))

	m := telemetry.GetMetrics()
	attrs := metric.WithAttributes(
		attribute.String("method", string(req.Method)),
		attribute.Int("status", httpResp.StatusCode),
	)
	m.RequestsTotal.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)

	d.logger.Debug().
		Str("method", string(req.Method)).
		Str("path", req.Path).
		Int("status", httpResp.StatusCode).
		Dur("elapsed", elapsed).
		Interface("headers", redactHeaders(httpReq.Header)).
		Msg("request completed")

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       respBody,
	}, nil
}

// headersToRedact are never written to logs verbatim.
var headersToRedact = map[string]struct{}{
	"authorization": {},
	"secret":        {},
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		if _, ok := headersToRedact[strings.ToLower(key)]; ok {
			out[key] = "REDACTED"
			continue
		}
		out[key] = strings.Join(values, ", ")
	}
	return out
}
