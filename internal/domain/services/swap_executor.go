package services

import (
	"context"
	"math/big"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

type ExecutionResult struct {
	Payload     entities.TransactionPayload `json:"payload"`
	Approval    *ApprovalResult             `json:"approval,omitempty"`
	Transaction TransactionResult           `json:"transaction"`
}

// SwapExecutor approves when needed, then sends the swap. The approval is
// confirmed before the swap is submitted.
type SwapExecutor struct {
	swaps     *SwapService
	approvals *ApprovalCoordinator
	txs       *TransactionCoordinator

	ApprovalLifecycle    *entities.Lifecycle
	TransactionLifecycle *entities.Lifecycle
}

func NewSwapExecutor(swaps *SwapService, approvals *ApprovalCoordinator, txs *TransactionCoordinator) *SwapExecutor {
	return &SwapExecutor{
		swaps:                swaps,
		approvals:            approvals,
		txs:                  txs,
		ApprovalLifecycle:    entities.NewLifecycle(),
		TransactionLifecycle: entities.NewLifecycle(),
	}
}

// Execute builds a fresh payload from in and runs it through backend
func (e *SwapExecutor) Execute(ctx context.Context, backend ChainBackend, in entities.BuildInput) (ExecutionResult, error) {
	cfg, err := e.swaps.Network(in.Chain)
	if err != nil {
		return ExecutionResult{}, err
	}
	in.Account = backend.Account()

	payload, err := e.swaps.Build(in)
	if err != nil {
		return ExecutionResult{}, err
	}
	result := ExecutionResult{Payload: payload}

	spender, needsApproval, err := e.swaps.Spender(in)
	if err != nil {
		return result, err
	}
	if needsApproval {
		approval, err := e.approvals.Approve(ctx, backend, e.ApprovalLifecycle, ApprovalRequest{
			ChainID:       cfg.ChainID,
			Token:         in.TokenIn.Address,
			Spender:       spender,
			Amount:        approvalAmount(in),
			Confirmations: cfg.Confirmations(),
		})
		if err != nil {
			return result, err
		}
		result.Approval = &approval
	}

	tx, err := e.txs.Send(ctx, backend, e.TransactionLifecycle, payload, cfg.Confirmations())
	if err != nil {
		return result, err
	}
	result.Transaction = tx
	return result, nil
}

// approvalAmount is the most tokenIn the swap can pull: the exact input, or
// the slippage adjusted maximum for EXACT_OUT
func approvalAmount(in entities.BuildInput) *big.Int {
	amount := in.TokenIn.ScaledAmount
	if amount == nil {
		return nil
	}
	if in.SwapType != entities.SwapExactOut {
		return amount
	}
	slippage, err := entities.SlippageFromPercentage(in.SlippagePercent)
	if err != nil {
		return amount
	}
	return slippage.ApplyTo(amount, 1)
}
