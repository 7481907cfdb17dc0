package snippetapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/pkg/metrics"
	"github.com/samirrijal/snippetmap/internal/pkg/telemetry"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config locates the snippets application.
type Config struct {
	BaseURL      string
	FeedPath     string
	SnippetsPath string
	Cookies      string
	CSRFCookie   string
	CSRFHeader   string
	FeedTimeout  time.Duration
}

// Client implements ports.SnippetAPI over fasthttp.
type Client struct {
	cfg    Config
	http   *fasthttp.Client
	jar    *cookieJar
	tracer trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithDial replaces the connection dialer, e.g. with an in-memory listener.
func WithDial(dial fasthttp.DialFunc) Option {
	return func(c *Client) { c.http.Dial = dial }
}

// New creates a client.
func New(cfg Config, opts ...Option) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.FeedTimeout <= 0 {
		cfg.FeedTimeout = 15 * time.Second
	}
	if cfg.CSRFCookie == "" {
		cfg.CSRFCookie = "csrftoken"
	}
	if cfg.CSRFHeader == "" {
		cfg.CSRFHeader = "X-CSRFToken"
	}
	c := &Client{
		cfg: cfg,
		http: &fasthttp.Client{
			Name:                "snippetmap",
			MaxIdleConnDuration: 30 * time.Second,
		},
		jar:    newCookieJar(cfg.Cookies),
		tracer: telemetry.Tracer(telemetry.ScopeSnippetAPI),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchFeed reads the GeoJSON feed, optionally filtered to bbox.
func (c *Client) FetchFeed(ctx context.Context, bbox *domain.Bounds) (*domain.Feed, error) {
	ctx, span := c.tracer.Start(ctx, "snippetapi.FetchFeed")
	defer span.End()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.BaseURL + c.cfg.FeedPath)
	if bbox != nil {
		req.URI().QueryArgs().Set("bbox", bbox.BBoxParam())
		span.SetAttributes(attribute.String("bbox", bbox.BBoxParam()))
	}
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	if err := c.do(ctx, "feed", req, resp, c.cfg.FeedTimeout); err != nil {
		return nil, fail(span, err)
	}
	if status := resp.StatusCode(); status >= 400 {
		return nil, fail(span, httpError(resp))
	}

	feed, err := DecodeFeed(resp.Body())
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("features", feed.Len()))
	return feed, nil
}

// UpdateLocation persists new coordinates for snippet id.
func (c *Client) UpdateLocation(ctx context.Context, id string, at domain.LatLng) error {
	ctx, span := c.tracer.Start(ctx, "snippetapi.UpdateLocation", trace.WithAttributes(attribute.String("snippet.id", id)))
	defer span.End()

	body, err := json.Marshal(map[string]string{"lat": at.LatString(), "lng": at.LngString()})
	if err != nil {
		return fail(span, fmt.Errorf("marshal location: %w", err))
	}
	return fail(span, c.mutate(ctx, "update_location", c.snippetURL(id, "update_location"), body))
}

// Delete removes snippet id.
func (c *Client) Delete(ctx context.Context, id string) error {
	ctx, span := c.tracer.Start(ctx, "snippetapi.Delete", trace.WithAttributes(attribute.String("snippet.id", id)))
	defer span.End()

	return fail(span, c.mutate(ctx, "delete", c.snippetURL(id, "delete"), nil))
}

func (c *Client) snippetURL(id, action string) string {
	return c.cfg.BaseURL + c.cfg.SnippetsPath + id + "/" + action + "/"
}

func (c *Client) mutate(ctx context.Context, op, uri string, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	req.Header.Set(c.cfg.CSRFHeader, c.jar.get(c.cfg.CSRFCookie))
	if body != nil {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := c.do(ctx, op, req, resp, 0); err != nil {
		return err
	}
	return decodeResult(resp)
}

// do sends req. A zero timeout waits indefinitely.
func (c *Client) do(ctx context.Context, op string, req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return &domain.TransportError{Err: err}
	}

	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	c.jar.apply(req)

	start := time.Now()
	var err error
	if timeout > 0 {
		err = c.http.DoTimeout(req, resp, timeout)
	} else {
		err = c.http.Do(req, resp)
	}
	metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	if err != nil {
		slog.Warn("snippet api request failed", "op", op, "request_id", reqID, "error", err)
		return &domain.TransportError{Err: err}
	}
	c.jar.update(resp)
	slog.Debug("snippet api request", "op", op, "request_id", reqID, "status", resp.StatusCode(),
		"duration", time.Since(start).String())
	return nil
}

type result struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
}

// decodeResult maps a {success, error} response onto the domain errors.
func decodeResult(resp *fasthttp.Response) error {
	var r result
	jsonErr := json.Unmarshal(resp.Body(), &r)
	if jsonErr == nil && r.Success != nil && !*r.Success {
		return &domain.RejectedError{Reason: r.Error}
	}
	if resp.StatusCode() >= 400 {
		return httpError(resp)
	}
	if jsonErr != nil {
		return &domain.TransportError{Status: resp.StatusCode(), Err: fmt.Errorf("decode response: %w", jsonErr)}
	}
	if r.Success == nil {
		return &domain.TransportError{Status: resp.StatusCode(), Err: fmt.Errorf("response missing success flag")}
	}
	return nil
}

// httpError builds the failure of a response with status ≥ 400, falling
// back to the status text when the body is empty.
func httpError(resp *fasthttp.Response) error {
	status := resp.StatusCode()
	body := strings.TrimSpace(string(resp.Body()))
	var msg struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(resp.Body(), &msg) == nil {
		if msg.Error != "" {
			body = msg.Error
		} else if msg.Message != "" {
			body = msg.Message
		}
	}
	if body == "" {
		body = fasthttp.StatusMessage(status)
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return &domain.TransportError{Status: status, Body: body}
}

func fail(span trace.Span, err error) error {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
