package services

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/infrastructure/contracts"
)

// NativeWrapHandler wraps and unwraps the native asset 1:1 through the
// wrapped native contract
type NativeWrapHandler struct{}

func NewNativeWrapHandler() *NativeWrapHandler {
	return &NativeWrapHandler{}
}

func (h *NativeWrapHandler) Kind() entities.StrategyKind {
	return entities.StrategyNativeWrap
}

func (h *NativeWrapHandler) Simulate(_ context.Context, cfg entities.NetworkConfig, req entities.SwapRequest) (entities.SimulationResult, error) {
	if _, err := wrapTypeOf(cfg, req.TokenIn, req.TokenOut); err != nil {
		return nil, err
	}
	return &entities.WrapQuote{QuoteBase: wrapQuoteBase(req.SwapType, req.SwapAmount)}, nil
}

func (h *NativeWrapHandler) Build(cfg entities.NetworkConfig, in entities.BuildInput) (entities.TransactionPayload, error) {
	wt, err := wrapTypeOf(cfg, in.TokenIn.Address, in.TokenOut.Address)
	if err != nil {
		return entities.TransactionPayload{}, err
	}
	amount := in.TokenIn.ScaledAmount
	if amount == nil {
		amount = new(big.Int)
	}

	payload := entities.TransactionPayload{
		Account: in.Account,
		ChainID: cfg.ChainID,
		To:      cfg.WrappedNativeAsset,
	}
	if wt == entities.WrapTypeWrap {
		payload.Data, err = contracts.EncodeDeposit()
		payload.Value = new(big.Int).Set(amount)
	} else {
		payload.Data, err = contracts.EncodeWithdraw(amount)
		payload.Value = new(big.Int)
	}
	if err != nil {
		return entities.TransactionPayload{}, err
	}
	return payload, nil
}

// Spender is never needed: deposit sends value and withdraw burns the caller's own balance
func (h *NativeWrapHandler) Spender(entities.NetworkConfig, entities.BuildInput) (common.Address, bool) {
	return common.Address{}, false
}
