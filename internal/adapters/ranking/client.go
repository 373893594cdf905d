// Package ranking talks to the route suggestion backend over HTTP.
package ranking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/openroute/internal/core/domain"
	"github.com/samirrijal/openroute/internal/pkg/metrics"
	"github.com/samirrijal/openroute/internal/pkg/telemetry"
)

// Client implements ports.Ranker.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
}

// NewClient creates a client for the backend at baseURL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "openroute",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

type requestBody struct {
	Start          string             `json:"start"`
	End            string             `json:"end"`
	MaxSuggestions int                `json:"max_suggestions"`
	Preferences    domain.Preferences `json:"preferences"`
}

// Suggest POSTs req to {base}/suggestions. A non-2xx answer becomes a
// *domain.RankingError carrying the response body as its message.
func (c *Client) Suggest(ctx context.Context, req domain.SuggestionRequest) (*domain.SuggestionResponse, error) {
	ctx, span := telemetry.Tracer().Start(ctx, telemetry.SpanRankingSuggest)
	defer span.End()
	span.SetAttributes(attribute.Int(telemetry.AttrMaxSuggestions, req.MaxSuggestions))

	start := time.Now()
	resp, status, err := c.suggest(ctx, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.RankingRequestDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.Int(telemetry.AttrHTTPStatus, status))
	if err != nil {
		return nil, err
	}

	metrics.SuggestionsReceived.Observe(float64(len(resp.Suggestions)))
	span.SetAttributes(attribute.Int(telemetry.AttrSuggestions, len(resp.Suggestions)))
	return resp, nil
}

func (c *Client) suggest(ctx context.Context, req domain.SuggestionRequest) (*domain.SuggestionResponse, int, error) {
	body, err := json.Marshal(requestBody{
		Start:          req.Start,
		End:            req.End,
		MaxSuggestions: req.MaxSuggestions,
		Preferences:    req.Preferences,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("encode request: %w", err)
	}

	httpReq := fasthttp.AcquireRequest()
	httpResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(httpReq)
	defer fasthttp.ReleaseResponse(httpResp)

	httpReq.SetRequestURI(c.baseURL + "/suggestions")
	httpReq.Header.SetMethod(fasthttp.MethodPost)
	httpReq.Header.SetContentType("application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.SetBody(body)

	if err := c.http.DoDeadline(httpReq, httpResp, c.deadline(ctx)); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, 0, ctxErr
		}
		return nil, 0, &domain.RankingError{Message: transportMessage(err)}
	}

	status := httpResp.StatusCode()
	if status < 200 || status > 299 {
		msg := strings.TrimSpace(string(httpResp.Body()))
		if msg == "" {
			msg = fmt.Sprintf("Request failed (%d)", status)
		}
		return nil, status, &domain.RankingError{Status: status, Message: msg}
	}

	var out domain.SuggestionResponse
	if err := json.Unmarshal(httpResp.Body(), &out); err != nil {
		return nil, status, &domain.RankingError{
			Status:  status,
			Message: fmt.Sprintf("Invalid response from ranking backend: %v", err),
		}
	}
	return &out, status, nil
}

// Health GETs {base}/health.
func (c *Client) Health(ctx context.Context) error {
	httpReq := fasthttp.AcquireRequest()
	httpResp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(httpReq)
	defer fasthttp.ReleaseResponse(httpResp)

	httpReq.SetRequestURI(c.baseURL + "/health")
	httpReq.Header.SetMethod(fasthttp.MethodGet)

	if err := c.http.DoDeadline(httpReq, httpResp, c.deadline(ctx)); err != nil {
		return fmt.Errorf("ranking health: %w", err)
	}
	if code := httpResp.StatusCode(); code != fasthttp.StatusOK {
		return fmt.Errorf("ranking health: HTTP %d", code)
	}
	return nil
}

// deadline is the earlier of the context deadline and the client timeout.
func (c *Client) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.timeout)
	if ctxD, ok := ctx.Deadline(); ok && ctxD.Before(d) {
		return ctxD
	}
	return d
}

func transportMessage(err error) string {
	if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
		return "Ranking backend timed out"
	}
	return fmt.Sprintf("Ranking backend unreachable: %v", err)
}
