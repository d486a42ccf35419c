package ethereum

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var ErrTransactionReverted = errors.New("transaction reverted")

// ReceiptReader reads receipts and the chain head
type ReceiptReader interface {
	TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// WaitForConfirmations polls until hash is included and confirmations blocks
// deep (the inclusion block counts as one). A reverted receipt returns
// ErrTransactionReverted together with the receipt.
func WaitForConfirmations(ctx context.Context, reader ReceiptReader, hash common.Hash, confirmations int, pollInterval time.Duration) (*types.Receipt, error) {
	if confirmations < 1 {
		confirmations = 1
	}
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var receipt *types.Receipt
	for {
		if receipt == nil {
			r, err := reader.TransactionReceipt(ctx, hash)
			switch {
			case errors.Is(err, ethereum.NotFound):
				slog.Debug("transaction not mined yet", "hash", hash.Hex())
			case err != nil:
				return nil, fmt.Errorf("failed to get receipt: %w", err)
			default:
				if r.Status != types.ReceiptStatusSuccessful {
					return r, fmt.Errorf("%w: %s", ErrTransactionReverted, hash.Hex())
				}
				receipt = r
			}
		}

		if receipt != nil {
			head, err := reader.BlockNumber(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to get block number: %w", err)
			}
			mined := receipt.BlockNumber.Uint64()
			if head >= mined && int(head-mined)+1 >= confirmations {
				return receipt, nil
			}
		}

		select {
		case <-ctx.Done():
			return receipt, ctx.Err()
		case <-ticker.C:
		}
	}
}
