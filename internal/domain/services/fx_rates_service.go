package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/infrastructure/cache"
)

const DefaultFxRatesTTL = 5 * time.Minute

// FxRatesSource fetches USD based fiat rates
type FxRatesSource interface {
	Latest(ctx context.Context) (entities.FxRates, error)
}

// FxRatesService converts USD values to the user's currency. Missing rates
// count as 1, so conversion degrades to USD.
type FxRatesService struct {
	source FxRatesSource
	cache  cache.Cache
	ttl    time.Duration
	group  singleflight.Group

	fetchTimeout time.Duration

	mu      sync.RWMutex
	last    entities.FxRates
	lastErr error
}

func NewFxRatesService(source FxRatesSource, c cache.Cache, ttl time.Duration) *FxRatesService {
	if ttl <= 0 {
		ttl = DefaultFxRatesTTL
	}
	return &FxRatesService{source: source, cache: c, ttl: ttl}
}

// Rates returns the rate table. The last known table is served when a refresh fails.
func (s *FxRatesService) Rates(ctx context.Context) (entities.FxRates, error) {
	key := cache.FxRatesKey()

	var rates entities.FxRates
	if found, err := s.cache.Get(ctx, key, &rates); err != nil {
		slog.Warn("fx rates cache read failed", "error", err)
	} else if found {
		return rates, nil
	}

	v, err := sharedFetch(ctx, &s.group, key, s.fetchTimeout, func(ctx context.Context) (any, error) {
		fetched, err := s.source.Latest(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, fetched, s.ttl); err != nil {
			slog.Warn("fx rates cache write failed", "error", err)
		}
		return fetched, nil
	})

	if err != nil && callerGaveUp(ctx, err) {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		if s.last == nil {
			return nil, err
		}
		slog.Warn("serving last known fx rates", "error", err)
		return s.last, nil
	}
	s.last = v.(entities.FxRates)
	s.lastErr = nil
	return s.last, nil
}

// LastError returns the error of the last failed refresh
func (s *FxRatesService) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Rate returns the rate of currency against USD, 1 when unknown
func (s *FxRatesService) Rate(ctx context.Context, currency entities.SupportedCurrency) decimal.Decimal {
	if currency == entities.CurrencyUSD {
		return decimal.NewFromInt(1)
	}
	rates, err := s.Rates(ctx)
	if err != nil {
		return decimal.NewFromInt(1)
	}
	return rates.Rate(currency)
}

// Convert converts a USD value to currency
func (s *FxRatesService) Convert(ctx context.Context, usd decimal.Decimal, currency entities.SupportedCurrency) decimal.Decimal {
	return usd.Mul(s.Rate(ctx, currency))
}

// Format converts a USD value and renders it with the currency symbol and two
// decimals. Without rates the value stays in USD and is shown with "$".
func (s *FxRatesService) Format(ctx context.Context, usd decimal.Decimal, currency entities.SupportedCurrency) string {
	symbol := "$"
	value := usd
	if currency != entities.CurrencyUSD {
		if rates, err := s.Rates(ctx); err == nil && len(rates) > 0 {
			symbol = currency.Symbol()
			value = usd.Mul(rates.Rate(currency))
		}
	}
	var b strings.Builder
	if value.IsNegative() {
		b.WriteString("-")
		value = value.Neg()
	}
	b.WriteString(symbol)
	b.WriteString(value.StringFixed(2))
	return b.String()
}
