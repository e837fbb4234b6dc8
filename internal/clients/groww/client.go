// Package groww provides the Groww trading API client and its domain.BrokerClient adapter.
package groww

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/shubhams167/aura/internal/domain"
	"github.com/shubhams167/aura/internal/metrics"
)

const (
	// DefaultBaseURL is the production Groww API host
	DefaultBaseURL = "https://api.groww.in"
	// DefaultTimeout bounds every outbound call
	DefaultTimeout = 15 * time.Second

	routeToken     = "/v1/token/api/access"
	routeHoldings  = "/v1/holdings/user"
	routePositions = "/v1/positions/user"
	routeLTP       = "/v1/live-data/ltp"

	apiVersion       = "1.0"
	keyTypeApproval  = "approval"
	maxDiagnosticLen = 500
	brokerLabel      = "groww"
)

// operationSubjects names each read operation in failure messages
var operationSubjects = map[string]string{
	"holdings":  "Groww holdings",
	"positions": "Groww positions",
	"ltp":       "LTP",
}

// Client talks to the Groww REST API. It holds no credentials or tokens;
// every call receives them from the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	log        zerolog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another host (tests, sandboxes)
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTimeout sets the per-call deadline
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithMetrics records call latency on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithClock overrides the handshake timestamp source
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a new Groww API client
func NewClient(log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
		log:     log.With().Str("component", "groww-client").Logger(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c
}

// GenerateChecksum returns the lowercase hex SHA-256 of apiSecret followed by
// the decimal timestamp, as required by the token handshake
func GenerateChecksum(apiSecret string, timestamp int64) string {
	sum := sha256.Sum256([]byte(apiSecret + strconv.FormatInt(timestamp, 10)))
	return hex.EncodeToString(sum[:])
}

// GetAccessToken exchanges an API key and secret for a session token.
// Every failure, including transport errors and timeouts, wraps domain.ErrBrokerAuth.
func (c *Client) GetAccessToken(ctx context.Context, apiKey, apiSecret string) (_ *TokenResponse, err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveBrokerRequest(brokerLabel, "token", err, start) }()

	timestamp := c.now().Unix()
	payload, err := json.Marshal(TokenRequest{
		KeyType:   keyTypeApproval,
		Checksum:  GenerateChecksum(apiSecret, timestamp),
		Timestamp: strconv.FormatInt(timestamp, 10),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode token request: %v", domain.ErrBrokerAuth, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+routeToken, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", domain.ErrBrokerAuth, err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: Failed to get Groww access token: %v", domain.ErrBrokerAuth, err)
	}

	if status < 200 || status > 299 {
		c.log.Error().
			Int("status_code", status).
			Str("url", routeToken).
			Msg("Token handshake rejected")
		return nil, fmt.Errorf("%w: Failed to get Groww access token: %s", domain.ErrBrokerAuth, truncate(string(body)))
	}

	var token TokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("%w: failed to parse token response: %v", domain.ErrBrokerAuth, err)
	}
	if token.Token == "" {
		return nil, fmt.Errorf("%w: token response did not contain a token", domain.ErrBrokerAuth)
	}

	return &token, nil
}

// GetHoldings returns the demat holdings of the session's account
func (c *Client) GetHoldings(ctx context.Context, accessToken string) ([]Holding, error) {
	var resp HoldingsResponse
	if err := c.get(ctx, "holdings", routeHoldings, nil, accessToken, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(resp.Status, resp.Error, "Failed to fetch holdings"); err != nil {
		return nil, err
	}
	if resp.Payload == nil {
		return []Holding{}, nil
	}
	return resp.Payload.Holdings, nil
}

// GetPositions returns the positions of the session's account for a segment
func (c *Client) GetPositions(ctx context.Context, accessToken, segment string) ([]Position, error) {
	if segment == "" {
		segment = string(domain.SegmentCash)
	}

	var resp PositionsResponse
	query := url.Values{"segment": {segment}}
	if err := c.get(ctx, "positions", routePositions, query, accessToken, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(resp.Status, resp.Error, "Failed to fetch positions"); err != nil {
		return nil, err
	}
	if resp.Payload == nil {
		return []Position{}, nil
	}
	return resp.Payload.Positions, nil
}

// GetLTP returns last traded prices in one batched request, keyed by bare
// trading symbol. An empty symbol list returns an empty map without I/O.
func (c *Client) GetLTP(ctx context.Context, accessToken string, symbols []string, exchange string) (map[string]float64, error) {
	prices := make(map[string]float64)
	if len(symbols) == 0 {
		return prices, nil
	}
	if exchange == "" {
		exchange = domain.DefaultExchange
	}

	prefix := exchange + "_"
	exchangeSymbols := make([]string, len(symbols))
	for i, s := range symbols {
		exchangeSymbols[i] = prefix + s
	}

	var resp LTPResponse
	query := url.Values{
		"segment":          {string(domain.SegmentCash)},
		"exchange_symbols": {strings.Join(exchangeSymbols, ",")},
	}
	if err := c.get(ctx, "ltp", routeLTP, query, accessToken, &resp); err != nil {
		return nil, err
	}
	if err := envelopeError(resp.Status, resp.Error, "Failed to fetch LTP"); err != nil {
		return nil, err
	}

	for key, price := range resp.Payload {
		prices[strings.TrimPrefix(key, prefix)] = price
	}
	return prices, nil
}

// get performs an authenticated read. Every failure wraps domain.ErrBrokerData.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, accessToken string, out interface{}) (err error) {
	start := time.Now()
	defer func() { c.metrics.ObserveBrokerRequest(brokerLabel, op, err, start) }()

	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", domain.ErrBrokerData, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-API-VERSION", apiVersion)

	status, body, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%w: Failed to fetch %s: %v", domain.ErrBrokerData, operationSubjects[op], err)
	}

	if status < 200 || status > 299 {
		c.log.Error().
			Int("status_code", status).
			Str("url", path).
			Msg("API returned non-2xx status")
		return fmt.Errorf("%w: Failed to fetch %s: %s", domain.ErrBrokerData, operationSubjects[op], diagnostic(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.log.Error().
			Err(err).
			Str("response_body", truncate(string(body))).
			Str("url", path).
			Msg("Failed to parse JSON response")
		return fmt.Errorf("%w: failed to parse %s response: %v", domain.ErrBrokerData, op, err)
	}
	return nil
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return 0, nil, fmt.Errorf("request timed out after %s", c.timeout)
		}
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func envelopeError(status string, apiErr *APIError, fallback string) error {
	if status != StatusFailure {
		return nil
	}
	msg := fallback
	if apiErr != nil && apiErr.Message != "" {
		msg = apiErr.Message
	}
	return fmt.Errorf("%w: %s", domain.ErrBrokerData, msg)
}

// diagnostic extracts the most useful message from an error body
func diagnostic(body []byte) string {
	if gjson.ValidBytes(body) {
		for _, path := range []string{"error.message", "message", "error"} {
			if v := gjson.GetBytes(body, path); v.Exists() && v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
	}
	return truncate(string(body))
}

func truncate(s string) string {
	if len(s) > maxDiagnosticLen {
		return s[:maxDiagnosticLen] + "..."
	}
	return s
}
