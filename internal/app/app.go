package app

import (
	"fmt"
	"log/slog"

	"github.com/bimakw/dex-swap/internal/config"
	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/networks"
	"github.com/bimakw/dex-swap/internal/domain/services"
	"github.com/bimakw/dex-swap/internal/infrastructure/balancer"
	"github.com/bimakw/dex-swap/internal/infrastructure/cache"
	"github.com/bimakw/dex-swap/internal/infrastructure/contracts"
	"github.com/bimakw/dex-swap/internal/infrastructure/ethereum"
	"github.com/bimakw/dex-swap/internal/infrastructure/fxrates"
)

// App holds the wired services shared by the API server and the CLI
type App struct {
	Config   config.Config
	Registry *networks.Registry
	Clients  *ethereum.ClientSet
	Cache    cache.Cache

	Tokens      *services.TokenDirectory
	FxRates     *services.FxRatesService
	Swaps       *services.SwapService
	Sessions    *services.SessionStore
	PriceImpact *services.PriceImpactService
	Executor    *services.SwapExecutor

	closers []func()
}

// New wires every service from cfg. RPC connections are dialed lazily.
func New(cfg config.Config, registry *networks.Registry) (*App, error) {
	a := &App{
		Config:   cfg,
		Registry: registry,
		Clients:  ethereum.NewClientSet(cfg.RPCURLs),
	}
	a.closers = append(a.closers, a.Clients.Close)

	a.Cache = a.newCache()

	static := entities.NewTokenList()
	if cfg.TokenListPath != "" {
		if err := static.LoadFromFile(cfg.TokenListPath); err != nil {
			return nil, fmt.Errorf("failed to load token list: %w", err)
		}
		slog.Info("loaded static token list", "path", cfg.TokenListPath, "tokens", static.Count())
	}

	api := balancer.NewAPIClient(cfg.BalancerAPIURL, cfg.HTTPTimeout)
	a.Tokens = services.NewTokenDirectory(api, a.Cache, registry, static, cfg.TokenListTTL, cfg.TokenPriceTTL)

	fx := fxrates.NewClient(cfg.CurrencyAPIURL, cfg.CurrencyAPIKey, cfg.FxRetryMax, cfg.FxRetryBaseDelay)
	a.FxRates = services.NewFxRatesService(fx, a.Cache, cfg.FxRatesTTL)

	resolver := services.NewStrategyResolver(
		registry,
		services.NewDefaultSwapHandler(api, balancer.NewOnchainQuerier(a.Clients)),
		services.NewNativeWrapHandler(),
		map[entities.WrapHandler]services.SwapHandler{
			entities.WrapHandlerLido: services.NewLidoWrapHandler(contracts.NewRateReader(a.Clients)),
		},
	)
	a.Swaps = services.NewSwapService(resolver, a.Tokens)
	a.Sessions = services.NewSessionStore(a.Swaps)
	a.PriceImpact = services.NewPriceImpactService(a.Tokens)
	a.Executor = services.NewSwapExecutor(a.Swaps, services.NewApprovalCoordinator(), services.NewTransactionCoordinator())

	slog.Info("services ready", "rpcChains", len(cfg.RPCURLs), "networks", len(registry.Configs()))
	return a, nil
}

// newCache prefers Redis and falls back to memory when it is unreachable
func (a *App) newCache() cache.Cache {
	if a.Config.RedisAddr == "" {
		slog.Info("using in-memory cache")
		return cache.NewInMemoryCache()
	}
	redisCache, err := cache.NewRedisCache(a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB)
	if err != nil {
		slog.Warn("failed to connect to redis, using in-memory cache", "addr", a.Config.RedisAddr, "error", err)
		return cache.NewInMemoryCache()
	}
	slog.Info("connected to redis", "addr", a.Config.RedisAddr)
	a.closers = append(a.closers, func() { _ = redisCache.Close() })
	return redisCache
}

// Close releases RPC connections and the cache
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
