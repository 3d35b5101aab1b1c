// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package aiscorer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/platewise/internal/config"
	"github.com/tomtom215/platewise/internal/metrics"
	"github.com/tomtom215/platewise/internal/recommend"
)

const (
	rankPath     = "/v1/rank"
	breakerName  = "ai-scorer"
	maxErrorBody = 512
	maxRespBody  = 4 << 20
)

var (
	// ErrCircuitOpen is returned while the breaker rejects calls.
	ErrCircuitOpen = errors.New("ai scorer circuit open")

	// ErrEmptyResult is returned when the service ranks nothing usable.
	ErrEmptyResult = errors.New("ai scorer returned no results")

	// ErrRateLimited is returned when no token is available before the call deadline.
	ErrRateLimited = errors.New("ai scorer rate limited")
)

// Outcome labels recorded in metrics.
const (
	outcomeSuccess     = "success"
	outcomeEmpty       = "empty"
	outcomeError       = "error"
	outcomeCircuitOpen = "circuit_open"
	outcomeRateLimited = "rate_limited"
)

type rankResponse struct {
	Items []recommend.ExternalScore `json:"items"`
}

// Client calls the external ranking service.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	limiter    *rate.Limiter
	cb         *gobreaker.CircuitBreaker[[]recommend.ExternalScore]
	logger     zerolog.Logger
}

// New creates a client from cfg. The config is expected to be validated.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.AIScorerConfig, logger zerolog.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("ai scorer url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	threshold := cfg.BreakerFailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger.With().Str("component", "ai-scorer").Logger(),
	}

	metrics.SetExternalScorerBreakerState(stateToInt(gobreaker.StateClosed))
	c.cb = gobreaker.NewCircuitBreaker[[]recommend.ExternalScore](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerInterval,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
			metrics.SetExternalScorerBreakerState(stateToInt(to))
		},
	})

	return c, nil
}

// Rank asks the service to order req.CandidateIDs. Entries for unknown or
// duplicate restaurants are dropped; an answer with nothing left is
// ErrEmptyResult.
func (c *Client) Rank(ctx context.Context, req recommend.ExternalRequest) (_ []recommend.ExternalScore, err error) {
	start := time.Now()
	outcome := outcomeSuccess
	defer func() {
		metrics.RecordExternalScorerCall(outcome, time.Since(start))
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		outcome = outcomeRateLimited
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
	}

	items, err := c.cb.Execute(func() ([]recommend.ExternalScore, error) {
		return c.post(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = outcomeCircuitOpen
			return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		outcome = outcomeError
		return nil, err
	}

	items = filterCandidates(items, req.CandidateIDs)
	if len(items) == 0 {
		outcome = outcomeEmpty
		return nil, ErrEmptyResult
	}
	if req.Limit > 0 && len(items) > req.Limit {
		items = items[:req.Limit]
	}
	return items, nil
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.cb.State()
}

func (c *Client) post(ctx context.Context, rr recommend.ExternalRequest) ([]recommend.ExternalScore, error) {
	body, err := json.Marshal(rr)
	if err != nil {
		return nil, fmt.Errorf("encode rank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+rankPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ai scorer request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("ai scorer returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out rankResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRespBody)).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode ai scorer response: %w", err)
	}
	return out.Items, nil
}

func filterCandidates(items []recommend.ExternalScore, candidates []string) []recommend.ExternalScore {
	allowed := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		allowed[id] = true
	}
	out := items[:0]
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if it.RestaurantID == "" || !allowed[it.RestaurantID] || seen[it.RestaurantID] {
			continue
		}
		seen[it.RestaurantID] = true
		out = append(out, it)
	}
	return out
}

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
