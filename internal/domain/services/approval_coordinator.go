package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/infrastructure/contracts"
)

// ChainBackend signs, sends and watches transactions for one account on one chain
type ChainBackend interface {
	Account() common.Address
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	Send(ctx context.Context, payload entities.TransactionPayload, gasLimit uint64) (common.Hash, error)
	WaitForConfirmations(ctx context.Context, hash common.Hash, confirmations int) (*types.Receipt, error)
}

// ApprovalRequest asks for spender to be allowed at least Amount of Token
type ApprovalRequest struct {
	ChainID       uint64
	Token         common.Address
	Spender       common.Address
	Amount        *big.Int
	Confirmations int
}

type ApprovalResult struct {
	Skipped bool           `json:"skipped"`
	TxHash  common.Hash    `json:"txHash,omitempty"`
	Receipt *types.Receipt `json:"-"`
}

// ApprovalCoordinator grants unlimited allowances, skipping tokens already
// approved for the amount
type ApprovalCoordinator struct{}

func NewApprovalCoordinator() *ApprovalCoordinator {
	return &ApprovalCoordinator{}
}

// Approve runs Simulating -> Ready -> Submitting -> PendingConfirmation ->
// Confirmed on lifecycle. A sufficient allowance leaves lifecycle untouched.
func (c *ApprovalCoordinator) Approve(ctx context.Context, backend ChainBackend, lifecycle *entities.Lifecycle, req ApprovalRequest) (ApprovalResult, error) {
	account := backend.Account()

	if req.Amount != nil {
		allowance, err := contracts.Allowance(ctx, backend, req.Token, account, req.Spender)
		if err != nil {
			slog.Warn("allowance read failed, approving anyway", "token", req.Token.Hex(), "error", err)
		} else if allowance.Cmp(req.Amount) >= 0 {
			return ApprovalResult{Skipped: true}, nil
		}
	}

	fail := func(stage string, err error) (ApprovalResult, error) {
		lifecycle.Fail(err)
		slog.Error("Error in Approving Token", "stage", stage, "token", req.Token.Hex(), "spender", req.Spender.Hex(), "error", err)
		return ApprovalResult{}, entities.NewSwapError(entities.KindApprovalRejectedFailed, "token approval "+stage+" failed", err)
	}

	if err := lifecycle.Transition(entities.StateSimulating); err != nil {
		return ApprovalResult{}, err
	}

	data, err := contracts.EncodeApprove(req.Token, req.Spender, contracts.MaxUint256)
	if err != nil {
		return fail("encode", err)
	}
	msg := ethereum.CallMsg{From: account, To: &req.Token, Data: data}
	result, err := backend.CallContract(ctx, msg)
	if err != nil {
		return fail("simulation", err)
	}
	if err := contracts.DecodeApproveResult(req.Token, result); err != nil {
		return fail("simulation", err)
	}
	gas, err := backend.EstimateGas(ctx, msg)
	if err != nil {
		return fail("gas estimation", err)
	}
	if err := lifecycle.Transition(entities.StateReady); err != nil {
		return ApprovalResult{}, err
	}

	if err := lifecycle.Transition(entities.StateSubmitting); err != nil {
		return ApprovalResult{}, err
	}
	hash, err := backend.Send(ctx, entities.TransactionPayload{
		Account: account,
		ChainID: req.ChainID,
		To:      req.Token,
		Data:    data,
		Value:   new(big.Int),
	}, gas)
	if err != nil {
		return fail("submission", err)
	}
	slog.Info("approval submitted", "token", req.Token.Hex(), "spender", req.Spender.Hex(), "tx", hash.Hex())

	if err := lifecycle.Transition(entities.StatePendingConfirmation); err != nil {
		return ApprovalResult{}, err
	}
	receipt, err := backend.WaitForConfirmations(ctx, hash, req.Confirmations)
	if err != nil {
		return fail("confirmation", fmt.Errorf("tx %s: %w", hash.Hex(), err))
	}
	if err := lifecycle.Transition(entities.StateConfirmed); err != nil {
		return ApprovalResult{}, err
	}
	return ApprovalResult{TxHash: hash, Receipt: receipt}, nil
}
