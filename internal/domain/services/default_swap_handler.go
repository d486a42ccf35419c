package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/infrastructure/balancer"
)

// PathOracle returns candidate swap paths for a request
type PathOracle interface {
	SorGetSwapPaths(ctx context.Context, q entities.SwapPathsQuery) (*entities.SwapPathsResult, error)
}

// OnchainQuerier runs the read-only swap query that prices a plan on chain
type OnchainQuerier interface {
	Query(ctx context.Context, cfg entities.NetworkConfig, plan entities.SwapPlan) (entities.OnchainQueryOutput, error)
}

// DefaultSwapHandler routes swaps through Balancer pools: paths come from the
// oracle, amounts from the on-chain query
type DefaultSwapHandler struct {
	oracle  PathOracle
	querier OnchainQuerier
}

func NewDefaultSwapHandler(oracle PathOracle, querier OnchainQuerier) *DefaultSwapHandler {
	return &DefaultSwapHandler{oracle: oracle, querier: querier}
}

func (h *DefaultSwapHandler) Kind() entities.StrategyKind {
	return entities.StrategyDefaultSwap
}

func (h *DefaultSwapHandler) Simulate(ctx context.Context, cfg entities.NetworkConfig, req entities.SwapRequest) (entities.SimulationResult, error) {
	res, err := h.oracle.SorGetSwapPaths(ctx, entities.SwapPathsQuery{
		Chain:      req.Chain,
		TokenIn:    req.TokenIn,
		TokenOut:   req.TokenOut,
		SwapAmount: req.SwapAmount,
		SwapType:   req.SwapType,
		PoolIDs:    req.PoolIDs,
	})
	if err != nil {
		if _, ok := entities.KindOf(err); ok {
			return nil, err
		}
		return nil, entities.NewSwapError(entities.KindOracleTransport, "path oracle request failed", err)
	}
	if res == nil || len(res.Paths) == 0 {
		return nil, entities.NewSwapError(entities.KindNoRouteFound, entities.NoPathMessage, nil)
	}

	plan := entities.SwapPlan{
		ChainID:         cfg.ChainID,
		Chain:           cfg.Chain,
		Kind:            req.SwapType.Kind(),
		ProtocolVersion: res.ProtocolVersion,
		Paths:           wrapNativePaths(cfg, res.Paths),
	}

	out, err := h.querier.Query(ctx, cfg, plan)
	if err != nil {
		return nil, entities.NewSwapError(entities.KindOnchainSimulation, "on-chain swap query failed", err)
	}
	if out.To == (common.Address{}) {
		return nil, entities.NewSwapError(entities.KindOnchainSimulation, "no router found in swap query output", nil)
	}
	if out.ExpectedAmount == nil || out.ExpectedAmount.Sign() < 0 {
		return nil, entities.NewSwapError(entities.KindOnchainSimulation, "swap query returned an invalid amount", nil)
	}

	returnAmount := entities.FormatUnits(out.ExpectedAmount, out.ExpectedToken.Decimals)

	amountIn, amountOut := entities.SafeParse(req.SwapAmount), entities.SafeParse(returnAmount)
	if req.SwapType == entities.SwapExactOut {
		amountIn, amountOut = amountOut, amountIn
	}

	return &entities.AmmQuote{
		QuoteBase: entities.QuoteBase{
			SwapType:               req.SwapType,
			EffectivePrice:         entities.DivOrZero(amountIn, amountOut).String(),
			EffectivePriceReversed: entities.DivOrZero(amountOut, amountIn).String(),
			ReturnAmount:           returnAmount,
		},
		Plan:            plan,
		QueryOutput:     out,
		ProtocolVersion: res.ProtocolVersion,
		HopCount:        res.HopCount(),
		Router:          out.To,
	}, nil
}

// wrapNativePaths replaces the native placeholder with the wrapped native
// asset, the only form pools hold
func wrapNativePaths(cfg entities.NetworkConfig, paths []entities.Path) []entities.Path {
	out := make([]entities.Path, len(paths))
	for i, p := range paths {
		tokens := make([]entities.PathToken, len(p.Tokens))
		for j, t := range p.Tokens {
			if cfg.IsNativeAsset(t.Address) {
				t.Address = cfg.WrappedNativeAsset
			}
			tokens[j] = t
		}
		p.Tokens = tokens
		out[i] = p
	}
	return out
}

func (h *DefaultSwapHandler) Build(cfg entities.NetworkConfig, in entities.BuildInput) (entities.TransactionPayload, error) {
	quote, ok := in.Quote.(*entities.AmmQuote)
	if !ok || quote == nil {
		return entities.TransactionPayload{}, errors.New("default swap build requires an AMM quote")
	}
	if quote.QueryOutput.ExpectedAmount == nil {
		return entities.TransactionPayload{}, errors.New("quote has no expected amount")
	}

	slippage, err := entities.SlippageFromPercentage(in.SlippagePercent)
	if err != nil {
		return entities.TransactionPayload{}, err
	}

	plan := quote.Plan
	expected := quote.QueryOutput.ExpectedAmount
	call := balancer.SwapCall{
		Kind:          plan.Kind,
		Paths:         plan.Paths,
		Account:       in.Account,
		WethIsEth:     in.WethIsEth || cfg.IsNativeAsset(in.TokenIn.Address) || cfg.IsNativeAsset(in.TokenOut.Address),
		WrappedNative: cfg.WrappedNativeAsset,
		Permit2:       in.Permit2,
	}

	// inLimit is what the account may spend at most
	var inLimit *big.Int
	if plan.Kind == entities.SwapKindGivenIn {
		inLimit = plan.TotalInput()
		call.LimitIn = inLimit
		call.LimitOut = slippage.ApplyTo(expected, -1)
	} else {
		inLimit = slippage.ApplyTo(expected, 1)
		call.LimitIn = inLimit
		call.LimitOut = plan.TotalOutput()
	}

	var data []byte
	if quote.ProtocolVersion == entities.ProtocolV3 {
		call.PathLimits = pathLimits(plan, quote.QueryOutput, slippage)
		data, err = balancer.EncodeBatchRouterSwap(call)
	} else {
		call.Permit2 = nil
		data, err = balancer.EncodeVaultBatchSwap(call)
	}
	if err != nil {
		return entities.TransactionPayload{}, fmt.Errorf("build swap calldata: %w", err)
	}

	value := new(big.Int)
	if cfg.IsNativeAsset(in.TokenIn.Address) {
		value.Set(inLimit)
	}

	return entities.TransactionPayload{
		Account: in.Account,
		ChainID: cfg.ChainID,
		To:      quote.Router,
		Data:    data,
		Value:   value,
	}, nil
}

// pathLimits returns the per path minimum out (GivenIn) or maximum in
// (GivenOut), from the queried path amounts when present
func pathLimits(plan entities.SwapPlan, out entities.OnchainQueryOutput, slippage entities.Slippage) []*big.Int {
	limits := make([]*big.Int, len(plan.Paths))
	for i, p := range plan.Paths {
		var amount *big.Int
		if i < len(out.PathAmounts) && out.PathAmounts[i] != nil {
			amount = out.PathAmounts[i]
		} else if plan.Kind == entities.SwapKindGivenIn {
			amount = p.OutputAmountRaw
		} else {
			amount = p.InputAmountRaw
		}
		if amount == nil {
			amount = new(big.Int)
		}
		if plan.Kind == entities.SwapKindGivenIn {
			limits[i] = slippage.ApplyTo(amount, -1)
		} else {
			limits[i] = slippage.ApplyTo(amount, 1)
		}
	}
	return limits
}

// Spender is the vault of the quote's protocol version. The native asset is
// sent as value and needs no approval.
func (h *DefaultSwapHandler) Spender(cfg entities.NetworkConfig, in entities.BuildInput) (common.Address, bool) {
	if cfg.IsNativeAsset(in.TokenIn.Address) {
		return common.Address{}, false
	}
	version := entities.ProtocolV2
	if quote, ok := in.Quote.(*entities.AmmQuote); ok && quote != nil {
		version = quote.ProtocolVersion
	}
	vault := cfg.VaultFor(version)
	if vault == (common.Address{}) {
		return common.Address{}, false
	}
	return vault, true
}
