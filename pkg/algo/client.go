package algo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/DrSkyle/routeviz/pkg/telemetry"
	"github.com/DrSkyle/routeviz/pkg/version"
)

// Algorithm names a shortest-path routine offered by the backend.
type Algorithm string

const (
	Dijkstra    Algorithm = "dijkstra"
	BellmanFord Algorithm = "bellman-ford"
)

// ParseAlgorithm accepts the canonical names plus a few aliases.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dijkstra", "d":
		return Dijkstra, nil
	case "bellman-ford", "bellmanford", "bellman_ford", "bf", "b":
		return BellmanFord, nil
	}
	return "", fmt.Errorf("algo: unknown algorithm %q", s)
}

// Title is the display name.
func (a Algorithm) Title() string {
	switch a {
	case Dijkstra:
		return "Dijkstra"
	case BellmanFord:
		return "Bellman-Ford"
	}
	return string(a)
}

// SupportsNegativeEdges reports whether the routine accepts negative costs.
func (a Algorithm) SupportsNegativeEdges() bool { return a == BellmanFord }

// RequiresConnected reports whether the routine needs a connected graph.
func (a Algorithm) RequiresConnected() bool { return a == Dijkstra }

func (a Algorithm) path() string {
	return "/api/routing/" + string(a)
}

const validatePath = "/api/graph/validate"

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 8 << 20

// Client is the contract with the algorithm service.
type Client interface {
	Validate(ctx context.Context, req Request) (*Validation, error)
	Run(ctx context.Context, alg Algorithm, req Request) (*Response, error)
}

// ErrTransport wraps failures that never produced an HTTP response.
var ErrTransport = errors.New("algo: transport failure")

// BackendError is a non-2xx answer. Message carries the backend's own text
// when it sent one.
type BackendError struct {
	Status  int
	Message string
	Field   string
}

func (e *BackendError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.Status)
}

// FailureError is a 2xx run answer with success=false.
type FailureError struct {
	Message string
}

func (e *FailureError) Error() string {
	if e.Message == "" {
		return "algorithm run failed"
	}
	return e.Message
}

// HTTPClient talks JSON over HTTP to the routing backend.
type HTTPClient struct {
	BaseURL string
	http    *http.Client
	logger  *slog.Logger
}

// HTTPOption configures an HTTPClient.
type HTTPOption func(*HTTPClient)

// WithHTTPClient replaces the underlying client. Its transport is wrapped
// for tracing.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPClient) {
		cp := *c
		base := cp.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		cp.Transport = otelhttp.NewTransport(base)
		h.http = &cp
	}
}

func WithClientLogger(l *slog.Logger) HTTPOption {
	return func(h *HTTPClient) { h.logger = l }
}

// NewHTTPClient initializes the backend integration.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...HTTPOption) *HTTPClient {
	h := &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ Client = (*HTTPClient)(nil)

func (h *HTTPClient) Validate(ctx context.Context, req Request) (*Validation, error) {
	var out Validation
	status, err := h.post(ctx, "validate", validatePath, req, &out)
	if err != nil {
		// The backend answers an invalid graph with 400 and a validation body.
		var be *BackendError
		if errors.As(err, &be) && status == http.StatusBadRequest {
			return &Validation{Valid: false, Error: be.Message, Field: be.Field}, nil
		}
		return nil, err
	}
	return &out, nil
}

func (h *HTTPClient) Run(ctx context.Context, alg Algorithm, req Request) (*Response, error) {
	if alg != Dijkstra && alg != BellmanFord {
		return nil, fmt.Errorf("algo: unknown algorithm %q", alg)
	}
	var out Response
	if _, err := h.post(ctx, string(alg), alg.path(), req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return &out, &FailureError{Message: out.Error}
	}
	return &out, nil
}

func (h *HTTPClient) post(ctx context.Context, op, path string, body any, out any) (int, error) {
	ctx, span := telemetry.Tracer("routeviz/algo").Start(ctx, "algo."+op)
	defer span.End()

	requestID := uuid.NewString()
	span.SetAttributes(
		attribute.String("routeviz.request_id", requestID),
		attribute.String("http.route", path),
	)

	payload, err := json.Marshal(body)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := h.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		h.logger.Warn("backend call failed", "op", op, "request_id", requestID, "error", err)
		return 0, fmt.Errorf("%w: %s %s: %v", ErrTransport, op, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: reading %s response: %v", ErrTransport, op, err)
	}

	h.logger.Debug("backend call",
		"op", op,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start).String(),
	)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		be := &BackendError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			be.Message = eb.Message
			if be.Message == "" {
				be.Message = eb.Error
			}
			be.Field = eb.Field
		}
		if be.Message == "" {
			be.Message = strings.TrimSpace(string(raw))
		}
		span.SetStatus(codes.Error, be.Error())
		return resp.StatusCode, be
	}

	if err := json.Unmarshal(raw, out); err != nil {
		span.RecordError(err)
		return resp.StatusCode, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return resp.StatusCode, nil
}
