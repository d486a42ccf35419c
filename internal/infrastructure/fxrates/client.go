package fxrates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

const DefaultBaseURL = "https://api.currencyapi.com"

var ErrMissingAPIKey = errors.New("currency api key is not configured")

// Client fetches fiat and crypto rates relative to USD from currencyapi.com, with retry on 429.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	baseDelay  time.Duration
}

func NewClient(baseURL, apiKey string, maxRetries int, baseDelay time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

type latestResponse struct {
	Data map[string]struct {
		Code  string      `json:"code"`
		Value json.Number `json:"value"`
	} `json:"data"`
}

// Latest returns the rates of every supported currency
func (c *Client) Latest(ctx context.Context) (entities.FxRates, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	codes := lo.Map(entities.SupportedCurrencies, func(c entities.SupportedCurrency, _ int) string {
		return string(c)
	})
	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("base_currency", string(entities.CurrencyUSD))
	query.Set("currencies", strings.Join(codes, ","))

	body, err := c.get(ctx, "/v3/latest?"+query.Encode())
	if err != nil {
		return nil, err
	}

	var resp latestResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing currency api response: %w", err)
	}

	rates := make(entities.FxRates, len(resp.Data))
	for code, r := range resp.Data {
		value, err := entities.ParseDecimal(r.Value.String())
		if err != nil {
			continue
		}
		if r.Code == "" {
			r.Code = code
		}
		rates[code] = entities.FxRate{Code: r.Code, Value: value}
	}
	return rates, nil
}

// get performs a GET request with retry on 429.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	target := c.baseURL + path

	var lastErr error
	for attempt := range c.maxRetries + 1 {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return body, nil
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("HTTP 429 from currency api (attempt %d/%d)", attempt+1, c.maxRetries+1)
			if attempt < c.maxRetries {
				delay := c.baseDelay * time.Duration(1<<uint(attempt))
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(delay):
				}
				continue
			}
			return nil, lastErr
		}

		// the request url carries the api key and is never part of an error
		return nil, fmt.Errorf("HTTP %d from currency api: %s", resp.StatusCode, string(body))
	}

	return nil, lastErr
}
