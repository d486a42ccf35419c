package services

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/networks"
)

// ResolveStrategy picks how the pair executes on cfg's chain. A pair of the
// native asset and its wrapped form wraps natively, a registered wrapper pair
// goes through its provider, anything else is routed through the AMM.
func ResolveStrategy(cfg entities.NetworkConfig, tokenIn, tokenOut common.Address) entities.ExecutionStrategy {
	if tokenIn != tokenOut && cfg.IsNativeOrWrapped(tokenIn) && cfg.IsNativeOrWrapped(tokenOut) {
		return entities.ExecutionStrategy{Kind: entities.StrategyNativeWrap}
	}
	if w, ok := cfg.WrapperFor(tokenIn, tokenOut); ok {
		return entities.ExecutionStrategy{
			Kind:                entities.StrategyLiquidStakingWrap,
			Provider:            w.Handler,
			RateProviderAddress: w.RateProvider,
			Wrapper:             &w,
		}
	}
	return entities.ExecutionStrategy{Kind: entities.StrategyDefaultSwap}
}

// ResolvedStrategy is a strategy bound to its handler and network
type ResolvedStrategy struct {
	Strategy entities.ExecutionStrategy
	Handler  SwapHandler
	Network  entities.NetworkConfig
}

// StrategyResolver maps a request to the handler that executes it
type StrategyResolver struct {
	registry    *networks.Registry
	defaultSwap SwapHandler
	nativeWrap  SwapHandler
	providers   map[entities.WrapHandler]SwapHandler
}

func NewStrategyResolver(registry *networks.Registry, defaultSwap, nativeWrap SwapHandler, providers map[entities.WrapHandler]SwapHandler) *StrategyResolver {
	if providers == nil {
		providers = make(map[entities.WrapHandler]SwapHandler)
	}
	return &StrategyResolver{
		registry:    registry,
		defaultSwap: defaultSwap,
		nativeWrap:  nativeWrap,
		providers:   providers,
	}
}

func (r *StrategyResolver) Resolve(chain entities.Chain, tokenIn, tokenOut common.Address) (ResolvedStrategy, error) {
	cfg, err := r.registry.GetConfig(chain)
	if err != nil {
		return ResolvedStrategy{}, err
	}

	strategy := ResolveStrategy(cfg, tokenIn, tokenOut)
	resolved := ResolvedStrategy{Strategy: strategy, Network: cfg}

	switch strategy.Kind {
	case entities.StrategyNativeWrap:
		resolved.Handler = r.nativeWrap
	case entities.StrategyLiquidStakingWrap:
		h, ok := r.providers[strategy.Provider]
		if !ok {
			return ResolvedStrategy{}, entities.NewSwapError(entities.KindUnsupportedWrapConfig,
				fmt.Sprintf("no handler for wrap provider %q", strategy.Provider), nil)
		}
		resolved.Handler = h
	default:
		resolved.Handler = r.defaultSwap
	}
	if resolved.Handler == nil {
		return ResolvedStrategy{}, fmt.Errorf("no handler configured for strategy %s", strategy.Kind)
	}
	return resolved, nil
}
