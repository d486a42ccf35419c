package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/networks"
	"github.com/bimakw/dex-swap/internal/infrastructure/cache"
)

const (
	DefaultTokenListTTL = 20 * time.Minute
	DefaultPriceTTL     = 5 * time.Minute
)

// TokenSource fetches token metadata and USD prices per chain
type TokenSource interface {
	Tokens(ctx context.Context, chain entities.Chain) ([]entities.Token, error)
	TokenPrices(ctx context.Context, chain entities.Chain) ([]entities.TokenPrice, error)
}

var ErrTokenNotFound = errors.New("token not found")

// TokenDirectory caches token lists and prices per chain. One fetch per
// chain key runs at a time; concurrent callers share its result and a caller
// leaving early does not cancel it. When a fetch fails the last known data is
// served and the error is kept for LastError.
type TokenDirectory struct {
	source   TokenSource
	cache    cache.Cache
	registry *networks.Registry
	static   *entities.TokenList
	tokenTTL time.Duration
	priceTTL time.Duration

	group        singleflight.Group
	fetchTimeout time.Duration

	mu         sync.RWMutex
	lastTokens map[entities.Chain][]entities.Token
	lastPrices map[entities.Chain][]entities.TokenPrice
	errs       map[entities.Chain]error
}

// NewTokenDirectory creates a directory. static may be nil; its tokens are
// served alongside the source's and whenever the source has nothing.
func NewTokenDirectory(source TokenSource, c cache.Cache, registry *networks.Registry, static *entities.TokenList, tokenTTL, priceTTL time.Duration) *TokenDirectory {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenListTTL
	}
	if priceTTL <= 0 {
		priceTTL = DefaultPriceTTL
	}
	if static == nil {
		static = entities.NewTokenList()
	}
	return &TokenDirectory{
		source:     source,
		cache:      c,
		registry:   registry,
		static:     static,
		tokenTTL:   tokenTTL,
		priceTTL:   priceTTL,
		lastTokens: make(map[entities.Chain][]entities.Token),
		lastPrices: make(map[entities.Chain][]entities.TokenPrice),
		errs:       make(map[entities.Chain]error),
	}
}

// Tokens returns every swappable token of chain
func (d *TokenDirectory) Tokens(ctx context.Context, chain entities.Chain) ([]entities.Token, error) {
	key := cache.TokensKey(string(chain))

	var tokens []entities.Token
	if found, err := d.cache.Get(ctx, key, &tokens); err != nil {
		slog.Warn("token cache read failed", "chain", chain, "error", err)
	} else if found {
		return d.withStatic(chain, tokens), nil
	}

	v, err := sharedFetch(ctx, &d.group, key, d.fetchTimeout, func(ctx context.Context) (any, error) {
		fetched, err := d.source.Tokens(ctx, chain)
		if err != nil {
			return nil, err
		}
		if err := d.cache.Set(ctx, key, fetched, d.tokenTTL); err != nil {
			slog.Warn("token cache write failed", "chain", chain, "error", err)
		}
		return fetched, nil
	})
	if err != nil {
		if callerGaveUp(ctx, err) {
			return nil, err
		}
		d.recordError(chain, err)
		d.mu.RLock()
		stale := d.lastTokens[chain]
		d.mu.RUnlock()
		merged := d.withStatic(chain, stale)
		if len(merged) == 0 {
			return nil, fmt.Errorf("fetching tokens for %s: %w", chain, err)
		}
		slog.Warn("serving last known tokens", "chain", chain, "error", err)
		return merged, nil
	}

	tokens = v.([]entities.Token)
	d.mu.Lock()
	d.lastTokens[chain] = tokens
	d.mu.Unlock()
	return d.withStatic(chain, tokens), nil
}

func (d *TokenDirectory) withStatic(chain entities.Chain, tokens []entities.Token) []entities.Token {
	extra := d.static.ByChain(chain)
	if len(extra) == 0 {
		return tokens
	}
	out := make([]entities.Token, 0, len(tokens)+len(extra))
	out = append(out, tokens...)
	for _, t := range extra {
		if _, ok := entities.FindToken(tokens, t.Address, chain); !ok {
			out = append(out, t)
		}
	}
	return out
}

// GetToken returns the metadata of address on chain. The native asset is
// synthesized from the network registry.
func (d *TokenDirectory) GetToken(ctx context.Context, address common.Address, chain entities.Chain) (entities.Token, error) {
	if d.registry != nil {
		if cfg, err := d.registry.GetConfig(chain); err == nil && cfg.IsNativeAsset(address) {
			return entities.Token{
				Address:  address,
				Chain:    chain,
				ChainID:  cfg.ChainID,
				Symbol:   cfg.NativeAsset.Symbol,
				Name:     cfg.NativeAsset.Name,
				Decimals: cfg.NativeAsset.Decimals,
			}, nil
		}
	}

	tokens, err := d.Tokens(ctx, chain)
	if err != nil {
		return entities.Token{}, err
	}
	for _, t := range tokens {
		// Chain is not compared: some sources omit it
		if entities.IsSameAddress(t.Address.Hex(), address.Hex()) {
			return t, nil
		}
	}
	return entities.Token{}, fmt.Errorf("%w: %s on %s", ErrTokenNotFound, address.Hex(), chain)
}

// TokenPrices returns the USD prices of chain's tokens
func (d *TokenDirectory) TokenPrices(ctx context.Context, chain entities.Chain) ([]entities.TokenPrice, error) {
	key := cache.PricesKey(string(chain))

	var prices []entities.TokenPrice
	if found, err := d.cache.Get(ctx, key, &prices); err != nil {
		slog.Warn("price cache read failed", "chain", chain, "error", err)
	} else if found {
		return prices, nil
	}

	v, err := sharedFetch(ctx, &d.group, key, d.fetchTimeout, func(ctx context.Context) (any, error) {
		fetched, err := d.source.TokenPrices(ctx, chain)
		if err != nil {
			return nil, err
		}
		if err := d.cache.Set(ctx, key, fetched, d.priceTTL); err != nil {
			slog.Warn("price cache write failed", "chain", chain, "error", err)
		}
		return fetched, nil
	})
	if err != nil {
		if callerGaveUp(ctx, err) {
			return nil, err
		}
		d.recordError(chain, err)
		d.mu.RLock()
		stale, ok := d.lastPrices[chain]
		d.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("fetching prices for %s: %w", chain, err)
		}
		slog.Warn("serving last known prices", "chain", chain, "error", err)
		return stale, nil
	}

	prices = v.([]entities.TokenPrice)
	d.mu.Lock()
	d.lastPrices[chain] = prices
	d.mu.Unlock()
	return prices, nil
}

// PriceOf returns the USD price of address, zero when unknown. The native
// asset is priced as its wrapped form.
func (d *TokenDirectory) PriceOf(ctx context.Context, chain entities.Chain, address common.Address) (decimal.Decimal, error) {
	prices, err := d.TokenPrices(ctx, chain)
	if err != nil {
		return decimal.Zero, err
	}
	if d.registry != nil {
		if cfg, err := d.registry.GetConfig(chain); err == nil && cfg.IsNativeAsset(address) {
			address = cfg.WrappedNativeAsset
		}
	}
	return entities.PriceForToken(entities.Token{Address: address}, prices), nil
}

// UsdValue returns amount of address in USD
func (d *TokenDirectory) UsdValue(ctx context.Context, chain entities.Chain, address common.Address, amount string) (decimal.Decimal, error) {
	if amount == "" {
		return decimal.Zero, nil
	}
	price, err := d.PriceOf(ctx, chain, address)
	if err != nil {
		return decimal.Zero, err
	}
	return entities.SafeParse(amount).Mul(price), nil
}

func (d *TokenDirectory) recordError(chain entities.Chain, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs[chain] = err
}

// LastError returns the error of the last failed fetch for chain
func (d *TokenDirectory) LastError(chain entities.Chain) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.errs[chain]
}

func (d *TokenDirectory) ResetError(chain entities.Chain) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.errs, chain)
}

// ClearCache drops the cached tokens and prices of chain so the next read refetches
func (d *TokenDirectory) ClearCache(ctx context.Context, chain entities.Chain) error {
	if err := d.cache.Delete(ctx, cache.TokensKey(string(chain))); err != nil {
		return err
	}
	return d.cache.Delete(ctx, cache.PricesKey(string(chain)))
}

func (d *TokenDirectory) ClearAllCache(ctx context.Context) error {
	if err := d.cache.DeletePrefix(ctx, cache.TokensKey("")); err != nil {
		return err
	}
	return d.cache.DeletePrefix(ctx, cache.PricesKey(""))
}
