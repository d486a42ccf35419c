package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

var gasMargin = decimal.RequireFromString("1.1")

// PadGas adds a 10% margin to a gas estimate, rounding up
func PadGas(estimate uint64) uint64 {
	padded := decimal.NewFromBigInt(new(big.Int).SetUint64(estimate), 0).Mul(gasMargin).Ceil()
	return padded.BigInt().Uint64()
}

type TransactionResult struct {
	TxHash   common.Hash    `json:"txHash"`
	GasLimit uint64         `json:"gasLimit"`
	Receipt  *types.Receipt `json:"-"`
}

// TransactionCoordinator estimates, sends and confirms built payloads
type TransactionCoordinator struct{}

func NewTransactionCoordinator() *TransactionCoordinator {
	return &TransactionCoordinator{}
}

// Send submits payload with a padded gas limit and waits for confirmations
func (c *TransactionCoordinator) Send(ctx context.Context, backend ChainBackend, lifecycle *entities.Lifecycle, payload entities.TransactionPayload, confirmations int) (TransactionResult, error) {
	fail := func(stage string, err error) (TransactionResult, error) {
		lifecycle.Fail(err)
		slog.Error("Error in Sending Transaction", "stage", stage, "to", payload.To.Hex(), "error", err)
		return TransactionResult{}, entities.NewSwapError(entities.KindTransactionRejectFailed, "transaction "+stage+" failed", err)
	}

	if err := lifecycle.Transition(entities.StateSimulating); err != nil {
		return TransactionResult{}, err
	}
	to := payload.To
	estimate, err := backend.EstimateGas(ctx, ethereum.CallMsg{
		From:  backend.Account(),
		To:    &to,
		Data:  payload.Data,
		Value: payload.Value,
	})
	if err != nil {
		return fail("gas estimation", err)
	}
	gasLimit := PadGas(estimate)
	if err := lifecycle.Transition(entities.StateReady); err != nil {
		return TransactionResult{}, err
	}

	if err := lifecycle.Transition(entities.StateSubmitting); err != nil {
		return TransactionResult{}, err
	}
	hash, err := backend.Send(ctx, payload, gasLimit)
	if err != nil {
		return fail("submission", err)
	}
	slog.Info("transaction submitted", "chainId", payload.ChainID, "to", to.Hex(), "tx", hash.Hex(), "gas", gasLimit)

	if err := lifecycle.Transition(entities.StatePendingConfirmation); err != nil {
		return TransactionResult{}, err
	}
	receipt, err := backend.WaitForConfirmations(ctx, hash, confirmations)
	if err != nil {
		return fail("confirmation", fmt.Errorf("tx %s: %w", hash.Hex(), err))
	}
	if err := lifecycle.Transition(entities.StateConfirmed); err != nil {
		return TransactionResult{}, err
	}
	return TransactionResult{TxHash: hash, GasLimit: gasLimit, Receipt: receipt}, nil
}
