package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/infrastructure/contracts"
)

// rateScale is the number of fraction digits kept when applying a wrap rate
const rateScale = 18

// RateSource reads an 18 decimal wrapped/base rate from a rate provider contract
type RateSource interface {
	GetRate(ctx context.Context, chainID uint64, provider common.Address) (*big.Int, error)
}

// LidoWrapHandler wraps stETH into wstETH and back at the rate reported by
// the wstETH rate provider
type LidoWrapHandler struct {
	rates RateSource
}

func NewLidoWrapHandler(rates RateSource) *LidoWrapHandler {
	return &LidoWrapHandler{rates: rates}
}

func (h *LidoWrapHandler) Kind() entities.StrategyKind {
	return entities.StrategyLiquidStakingWrap
}

func (h *LidoWrapHandler) Simulate(ctx context.Context, cfg entities.NetworkConfig, req entities.SwapRequest) (entities.SimulationResult, error) {
	wt, err := wrapTypeOf(cfg, req.TokenIn, req.TokenOut)
	if err != nil {
		return nil, err
	}
	w, ok := cfg.WrapperFor(req.TokenIn, req.TokenOut)
	if !ok || w.RateProvider == (common.Address{}) {
		return nil, entities.NewSwapError(entities.KindUnsupportedWrapConfig, "no rate provider for chain "+string(cfg.Chain), nil)
	}

	amount, err := entities.ParseDecimal(req.SwapAmount)
	if err != nil {
		return nil, err
	}

	raw, err := h.rates.GetRate(ctx, cfg.ChainID, w.RateProvider)
	if err != nil {
		return nil, entities.NewSwapError(entities.KindOnchainSimulation, "failed to read wrap rate", err)
	}
	rate := entities.FromFixed18(raw)
	if !rate.IsPositive() {
		return nil, entities.NewSwapError(entities.KindOnchainSimulation, "wrap rate is zero", nil)
	}

	returnAmount := ApplyWrapRate(amount, rate, wt, req.SwapType)
	return &entities.RateWrapQuote{
		QuoteBase: wrapQuoteBase(req.SwapType, returnAmount.String()),
		Rate:      rate.String(),
	}, nil
}

// ApplyWrapRate converts amount across a wrap. rate is base tokens per
// wrapped token. For EXACT_IN amount is the input and the output is
// returned; for EXACT_OUT amount is the output and the required input is
// returned.
func ApplyWrapRate(amount, rate decimal.Decimal, wt entities.WrapType, swapType entities.SwapType) decimal.Decimal {
	divide := wt == entities.WrapTypeWrap
	if swapType == entities.SwapExactOut {
		divide = !divide
	}
	if divide {
		q, _ := amount.QuoRem(rate, rateScale)
		return q
	}
	return amount.Mul(rate).Truncate(rateScale)
}

func (h *LidoWrapHandler) Build(cfg entities.NetworkConfig, in entities.BuildInput) (entities.TransactionPayload, error) {
	wt, err := wrapTypeOf(cfg, in.TokenIn.Address, in.TokenOut.Address)
	if err != nil {
		return entities.TransactionPayload{}, err
	}
	w, _ := cfg.WrapperFor(in.TokenIn.Address, in.TokenOut.Address)

	amount := in.TokenIn.ScaledAmount
	if amount == nil {
		amount = new(big.Int)
	}

	var data []byte
	if wt == entities.WrapTypeWrap {
		data, err = contracts.EncodeWstETHWrap(amount)
	} else {
		data, err = contracts.EncodeWstETHUnwrap(amount)
	}
	if err != nil {
		return entities.TransactionPayload{}, err
	}

	return entities.TransactionPayload{
		Account: in.Account,
		ChainID: cfg.ChainID,
		To:      w.WrappedToken,
		Data:    data,
		Value:   new(big.Int),
	}, nil
}

// Spender is the wrapped token contract when wrapping, which pulls the base
// token. Unwrapping burns the caller's own wrapped balance.
func (h *LidoWrapHandler) Spender(cfg entities.NetworkConfig, in entities.BuildInput) (common.Address, bool) {
	wt, ok := cfg.WrapTypeFor(in.TokenIn.Address, in.TokenOut.Address)
	if !ok || wt != entities.WrapTypeWrap {
		return common.Address{}, false
	}
	w, ok := cfg.WrapperFor(in.TokenIn.Address, in.TokenOut.Address)
	if !ok {
		return common.Address{}, false
	}
	return w.WrappedToken, true
}
