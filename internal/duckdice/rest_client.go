package duckdice

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"duckdice-bet-bot/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	playPath     = "/api/play"
	userInfoPath = "/api/bot/user-info"
)

// Client defines the interface for the DuckDice REST API client.
type Client interface {
	PlaceBet(ctx context.Context, req BetRequest) (*BetResult, error)
	Balance(ctx context.Context, currency string, faucet bool) (decimal.Decimal, error)
}

// BetRequest describes one dice bet to submit.
type BetRequest struct {
	Currency string
	Amount   decimal.Decimal
	Chance   decimal.Decimal
	High     bool
	Faucet   bool
}

// BetResult is the settled outcome of one bet, including the authoritative
// post-settlement balance reported by the server.
type BetResult struct {
	Hash             string
	Won              bool
	Roll             decimal.Decimal
	PayoutMultiplier decimal.Decimal
	Profit           decimal.Decimal
	BalanceAfter     decimal.Decimal
}

// RestClient is a client for the DuckDice REST API.
// It implements the Client interface and fails over across mirror domains.
type RestClient struct {
	client  *resty.Client
	mirrors []string
	current int
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// ensure RestClient implements the interface
var _ Client = (*RestClient)(nil)

// NewRestClient creates a new DuckDice REST API client.
func NewRestClient(cfg *config.API, logger *zap.Logger) *RestClient {
	mirrors := cfg.Mirrors
	if len(mirrors) == 0 {
		mirrors = []string{"https://duckdice.io"}
	}
	logger.Info("Using DuckDice mirrors", zap.Strings("mirrors", mirrors))

	client := resty.New().
		SetBaseURL(mirrors[0]).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &RestClient{
		client:  client,
		mirrors: mirrors,
		apiKey:  cfg.Key,
		logger:  logger,
		limiter: limiter,
	}
}

// apiErrorBody is the error envelope DuckDice returns on non-2xx responses.
type apiErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// doRequest executes a request with rate limiting and mirror failover.
// Each mirror gets one attempt per call; a 4xx stops immediately with a
// BusinessError, anything else rotates to the next mirror. The engine owns
// retries of the whole call on top of this.
func (c *RestClient) doRequest(ctx context.Context, method, path string, build func(*resty.Request) *resty.Request) (*resty.Response, error) {
	var lastErr error

	for i := 0; i < len(c.mirrors); i++ {
		// Wait for the rate limiter
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &TransientError{Err: fmt.Errorf("rate limiter wait failed: %w", err)}
		}

		base := c.mirrors[c.current]
		c.client.SetBaseURL(base)

		req := build(c.client.R().SetContext(ctx).SetQueryParam("api_key", c.apiKey))
		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", base+path))

		resp, err := req.Execute(method, path)
		if err == nil && !resp.IsError() {
			return resp, nil // Success
		}

		if err == nil {
			status := resp.StatusCode()
			if status >= 400 && status < 500 && status != http.StatusTooManyRequests {
				var body apiErrorBody
				_ = json.Unmarshal(resp.Body(), &body)
				msg := body.Message
				if msg == "" {
					msg = body.Error
				}
				if msg == "" {
					msg = resp.String()
				}
				return nil, &BusinessError{Status: status, Code: body.Code, Message: msg}
			}
			lastErr = fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		} else {
			lastErr = err
		}

		c.logger.Warn("Request failed, failing over to next mirror",
			zap.String("mirror", base),
			zap.Error(lastErr),
		)
		c.current = (c.current + 1) % len(c.mirrors)
	}

	return nil, &TransientError{Err: fmt.Errorf("all %d mirrors failed: %w", len(c.mirrors), lastErr)}
}

// playResponse models the /api/play response. Monetary fields arrive as
// strings and are parsed into decimals before leaving this package.
type playResponse struct {
	Bet struct {
		Hash   string      `json:"hash"`
		Result bool        `json:"result"`
		Number json.Number `json:"number"`
		Chance string      `json:"chance"`
		Payout string      `json:"payout"`
		Profit string      `json:"profit"`
		IsHigh bool        `json:"isHigh"`
		Symbol string      `json:"symbol"`
	} `json:"bet"`
	User struct {
		Balance string `json:"balance"`
	} `json:"user"`
}

// PlaceBet submits one dice bet and returns its settled result.
func (c *RestClient) PlaceBet(ctx context.Context, betReq BetRequest) (*BetResult, error) {
	body := map[string]interface{}{
		"symbol": betReq.Currency,
		"amount": betReq.Amount.String(),
		"chance": betReq.Chance.String(),
		"isHigh": betReq.High,
	}
	if betReq.Faucet {
		body["faucet"] = true
	}

	resp, err := c.doRequest(ctx, http.MethodPost, playPath, func(r *resty.Request) *resty.Request {
		return r.
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			SetResult(&playResponse{})
	})
	if err != nil {
		return nil, err
	}

	result := resp.Result().(*playResponse)

	roll, err := decimal.NewFromString(result.Bet.Number.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse roll number %q: %w", result.Bet.Number.String(), err)
	}
	payout, err := decimal.NewFromString(result.Bet.Payout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payout %q: %w", result.Bet.Payout, err)
	}
	profit, err := decimal.NewFromString(result.Bet.Profit)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profit %q: %w", result.Bet.Profit, err)
	}
	balance, err := decimal.NewFromString(result.User.Balance)
	if err != nil {
		return nil, fmt.Errorf("failed to parse balance %q: %w", result.User.Balance, err)
	}

	return &BetResult{
		Hash:             result.Bet.Hash,
		Won:              result.Bet.Result,
		Roll:             roll,
		PayoutMultiplier: payout,
		Profit:           profit,
		BalanceAfter:     balance,
	}, nil
}

// userInfoResponse models the /api/bot/user-info response.
type userInfoResponse struct {
	Balances []struct {
		Currency string `json:"currency"`
		Main     string `json:"main"`
		Faucet   string `json:"faucet"`
	} `json:"balances"`
}

// Balance fetches the current balance for a currency, from the faucet ledger
// when faucet is set and from the main ledger otherwise.
// This is also a good endpoint to test connectivity and the API key.
func (c *RestClient) Balance(ctx context.Context, currency string, faucet bool) (decimal.Decimal, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, userInfoPath, func(r *resty.Request) *resty.Request {
		return r.SetResult(&userInfoResponse{})
	})
	if err != nil {
		return decimal.Zero, err
	}

	result := resp.Result().(*userInfoResponse)
	for _, b := range result.Balances {
		if b.Currency == currency {
			raw := b.Main
			if faucet {
				raw = b.Faucet
			}
			balance, err := decimal.NewFromString(raw)
			if err != nil {
				return decimal.Zero, fmt.Errorf("failed to parse balance %q: %w", raw, err)
			}
			return balance, nil
		}
	}

	return decimal.Zero, fmt.Errorf("no balance found for currency %s", currency)
}
