package services

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

// UsdValuer prices a token amount in USD
type UsdValuer interface {
	UsdValue(ctx context.Context, chain entities.Chain, address common.Address, amount string) (decimal.Decimal, error)
}

// PriceImpactReport is the price impact of a quote with the USD values it came from
type PriceImpactReport struct {
	entities.PriceImpact
	TokenInUsd              decimal.Decimal `json:"tokenInUsd"`
	TokenOutUsd             decimal.Decimal `json:"tokenOutUsd"`
	RequiresAcknowledgement bool            `json:"requiresAcknowledgement"`
	Label                   string          `json:"label"`
}

func newPriceImpactReport(ratio *decimal.Decimal, usdIn, usdOut decimal.Decimal) PriceImpactReport {
	impact := entities.NewPriceImpact(ratio)
	return PriceImpactReport{
		PriceImpact:             impact,
		TokenInUsd:              usdIn,
		TokenOutUsd:             usdOut,
		RequiresAcknowledgement: entities.RequiresAcknowledgement(impact.Level),
		Label:                   entities.PriceImpactLabel(ratio),
	}
}

func unknownPriceImpact() PriceImpactReport {
	return newPriceImpactReport(nil, decimal.Zero, decimal.Zero)
}

type PriceImpactService struct {
	prices UsdValuer
}

func NewPriceImpactService(prices UsdValuer) *PriceImpactService {
	return &PriceImpactService{prices: prices}
}

// Calculate derives the price impact of swapping amountIn of tokenIn for
// amountOut of tokenOut. The level is unknown when a price cannot be read.
func (s *PriceImpactService) Calculate(ctx context.Context, chain entities.Chain, tokenIn, tokenOut common.Address, amountIn, amountOut string) PriceImpactReport {
	usdIn, err := s.prices.UsdValue(ctx, chain, tokenIn, amountIn)
	if err != nil {
		slog.Warn("price impact: token in price unavailable", "chain", chain, "token", tokenIn.Hex(), "error", err)
		return unknownPriceImpact()
	}
	usdOut, err := s.prices.UsdValue(ctx, chain, tokenOut, amountOut)
	if err != nil {
		slog.Warn("price impact: token out price unavailable", "chain", chain, "token", tokenOut.Hex(), "error", err)
		return unknownPriceImpact()
	}

	ratio := entities.CalcPriceImpactRatio(usdIn, usdOut)
	return newPriceImpactReport(&ratio, usdIn, usdOut)
}

// ForQuote computes the price impact of a quote; without a quote it is unknown
func (s *PriceImpactService) ForQuote(ctx context.Context, quote *SwapQuote) PriceImpactReport {
	if quote == nil || quote.Result == nil {
		return unknownPriceImpact()
	}
	req := quote.Request
	amountIn, amountOut := req.SwapAmount, quote.Result.Quote().ReturnAmount
	if req.SwapType == entities.SwapExactOut {
		amountIn, amountOut = amountOut, amountIn
	}
	return s.Calculate(ctx, req.Chain, req.TokenIn, req.TokenOut, amountIn, amountOut)
}
