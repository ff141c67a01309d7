// Package groww provides client functionality for interacting with the Groww
// trading API.
package groww

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/akshaybhat/equiscan/internal/domain"
)

const defaultBaseURL = "https://api.groww.in/v1"

// requestTimeout bounds every gateway call; a hanging call must never stall
// a screening batch beyond its per-symbol timeout.
const requestTimeout = 30 * time.Second

// Client is an HTTP client for the Groww API implementing
// domain.BrokerClient. All requests go through a circuit breaker so a broker
// outage degrades into fast skip-and-log failures instead of piling up
// 30-second timeouts.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	baseURL    string
	apiKey     string
	apiSecret  string
	log        zerolog.Logger
}

// NewClient creates a new Groww client. Credentials may be empty in research
// mode; authenticated endpoints will then fail with domain.ErrAuth.
func NewClient(apiKey, apiSecret string, log zerolog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "groww",
		Timeout: 60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		breaker:    breaker,
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		log:        log.With().Str("client", "groww").Logger(),
	}
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// GetHoldings returns current account holdings with P&L computed at the
// boundary, so downstream code never deals with missing optional fields.
func (c *Client) GetHoldings(ctx context.Context) ([]domain.Holding, error) {
	body, err := c.get(ctx, "/holdings")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holdings: %w", err)
	}

	var resp holdingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode holdings response: %w", err)
	}

	holdings := make([]domain.Holding, 0, len(resp.Holdings))
	for _, raw := range resp.Holdings {
		h := transformHolding(raw)
		if h.Symbol == "" {
			c.log.Warn().Msg("Skipping holding with empty trading symbol")
			continue
		}
		holdings = append(holdings, h)
	}

	return holdings, nil
}

// GetQuote returns the current trading-day snapshot for a symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*domain.PriceSnapshot, error) {
	body, err := c.get(ctx, "/quote/"+normalizeSymbol(symbol))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}

	var raw rawQuote
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode quote for %s: %w", symbol, err)
	}

	snap := transformQuote(symbol, raw)
	if snap.CurrentPrice <= 0 {
		return nil, fmt.Errorf("quote for %s: %w", symbol, domain.ErrNoData)
	}
	return &snap, nil
}

// GetCandles returns up to days of daily history, oldest first. History is
// best-effort: brokers without a candle endpoint return an empty slice and
// the analyzer falls back to snapshot-only indicators.
func (c *Client) GetCandles(ctx context.Context, symbol string, days int) ([]domain.Candle, error) {
	path := fmt.Sprintf("/candles/%s?interval=1d&days=%d", normalizeSymbol(symbol), days)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candles for %s: %w", symbol, err)
	}

	var resp candlesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode candles for %s: %w", symbol, err)
	}

	return transformCandles(resp.Candles), nil
}

// PlaceBuyOrder submits a market (or limit, when limitPrice > 0) buy order.
func (c *Client) PlaceBuyOrder(ctx context.Context, symbol string, quantity int, limitPrice float64) (*domain.OrderResult, error) {
	return c.placeOrder(ctx, symbol, "BUY", quantity, limitPrice)
}

// PlaceSellOrder submits a market (or limit, when limitPrice > 0) sell order.
func (c *Client) PlaceSellOrder(ctx context.Context, symbol string, quantity int, limitPrice float64) (*domain.OrderResult, error) {
	return c.placeOrder(ctx, symbol, "SELL", quantity, limitPrice)
}

func (c *Client) placeOrder(ctx context.Context, symbol, side string, quantity int, limitPrice float64) (*domain.OrderResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("order quantity must be positive, got %d", quantity)
	}

	req := orderRequest{
		Symbol:         normalizeSymbol(symbol),
		Side:           side,
		Quantity:       quantity,
		Price:          limitPrice,
		OrderType:      "MARKET",
		Exchange:       "NSE",
		ClientOrderRef: uuid.NewString(),
	}
	if limitPrice > 0 {
		req.OrderType = "LIMIT"
	}

	c.log.Info().
		Str("symbol", symbol).
		Str("side", side).
		Int("quantity", quantity).
		Float64("limit_price", limitPrice).
		Msg("Placing order")

	body, err := c.post(ctx, "/orders", req)
	if err != nil {
		return nil, fmt.Errorf("failed to place %s order for %s: %w", side, symbol, err)
	}

	var raw rawOrderResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode order result for %s: %w", symbol, err)
	}

	return transformOrderResult(raw, symbol, side, quantity), nil
}

// get performs an authenticated GET through the circuit breaker.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

// post performs an authenticated POST through the circuit breaker.
func (c *Client) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, body)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, err
		}
		c.sign(req)
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}

		if err := classifyStatus(resp.StatusCode); err != nil {
			return nil, err
		}
		return data, nil
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, fmt.Errorf("%w: circuit breaker open", domain.ErrSourceUnavailable)
		}
		return nil, err
	}
	return result.([]byte), nil
}

// classifyStatus maps HTTP status codes onto the error taxonomy so callers
// can tell auth failures from transient outages from bad symbols.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrAuth, status)
	case status == http.StatusNotFound || status == http.StatusBadRequest:
		return fmt.Errorf("%w: status %d", domain.ErrInvalidSymbol, status)
	default:
		return fmt.Errorf("%w: status %d", domain.ErrSourceUnavailable, status)
	}
}

// sign attaches the API key and an HMAC checksum over the request timestamp.
func (c *Client) sign(req *http.Request) {
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(ts))

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Request-Timestamp", ts)
	req.Header.Set("X-Request-Checksum", hex.EncodeToString(mac.Sum(nil)))
}
