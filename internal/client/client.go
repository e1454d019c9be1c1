package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/gofrs/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/vasiliy-maslov/tg-storefront/internal/metric"
	"github.com/vasiliy-maslov/tg-storefront/internal/trace"
)

var (
	ErrNetworkFailure    = errors.New("upstream unreachable")
	ErrRejected          = errors.New("upstream rejected the request")
	ErrMalformedResponse = errors.New("upstream returned a malformed response")
)

const maxErrorBody = 4 << 10

// RejectedError is returned for any non-2xx upstream response.
type RejectedError struct {
	Op     string
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: upstream responded %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: upstream responded %d: %s", e.Op, e.Status, e.Body)
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrRejected
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithHeaders adds fixed headers to every request, e.g. tunnel bypass headers.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.headers[k] = v
		}
	}
}

// Client talks to the storefront REST API. It implements cart.Store, checkout.ProfileStore,
// checkout.OrderSubmitter and catalog.Provider.
type Client struct {
	baseURL string
	http    *http.Client
	headers map[string]string
	tracer  oteltrace.Tracer
}

func New(baseURL string, opts ...Option) *Client {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	c := &Client{
		baseURL: baseURL,
		http:    cleanhttp.DefaultPooledClient(),
		headers: make(map[string]string),
		tracer:  otel.Tracer("storefront/client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends one request. A nil body sends no payload, a nil out discards the response body.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "client."+op, oteltrace.WithSpanKind(oteltrace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.path", path),
	)

	start := time.Now()
	err := c.send(ctx, op, method, path, body, out)

	outcome := "success"
	switch {
	case errors.Is(err, ErrRejected):
		outcome = "rejected"
	case errors.Is(err, ErrNetworkFailure):
		outcome = "network"
	case err != nil:
		outcome = "malformed"
	}
	metric.ObserveUpstream(op, outcome, time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		trace.Logger(ctx).Error().Err(err).Str("op", op).Str("method", method).Str("path", path).Msg("client: upstream call failed")
		return err
	}

	trace.Logger(ctx).Debug().Str("op", op).Dur("took", time.Since(start)).Msg("client: upstream call succeeded")
	return nil
}

func (c *Client) send(ctx context.Context, op, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", op, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: failed to build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &RejectedError{Op: op, Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w: %w", op, ErrNetworkFailure, ctx.Err())
		}
		return fmt.Errorf("%s: %w: %w", op, ErrMalformedResponse, err)
	}
	return nil
}

// requestID reuses the inbound request id when the call is made on behalf of an HTTP request.
func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}
