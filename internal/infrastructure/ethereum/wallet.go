package ethereum

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

// Wallet holds the signing key of one account
type Wallet struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewWallet parses a hex private key, with or without 0x prefix
func NewWallet(hexKey string) (*Wallet, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return &Wallet{
		privateKey: key,
		address:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (w *Wallet) Address() common.Address {
	return w.address
}

// SignTx signs tx for chainID with the latest signer the chain supports
func (w *Wallet) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), w.privateKey)
}

// txClient is the subset of Client a Signer needs
type txClient interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	ReceiptReader
}

// Signer sends wallet signed transactions on one chain
type Signer struct {
	client       txClient
	wallet       *Wallet
	chainID      *big.Int
	pollInterval time.Duration
}

func NewSigner(client txClient, wallet *Wallet, chainID uint64) *Signer {
	return &Signer{
		client:       client,
		wallet:       wallet,
		chainID:      new(big.Int).SetUint64(chainID),
		pollInterval: 3 * time.Second,
	}
}

func (s *Signer) Account() common.Address {
	return s.wallet.Address()
}

func (s *Signer) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return s.client.CallContract(ctx, msg)
}

func (s *Signer) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return s.client.EstimateGas(ctx, msg)
}

// Send signs and broadcasts payload with the given gas limit. EIP-1559 fees are
// used when the latest header carries a base fee.
func (s *Signer) Send(ctx context.Context, payload entities.TransactionPayload, gasLimit uint64) (common.Hash, error) {
	if payload.Account != (common.Address{}) && payload.Account != s.wallet.Address() {
		return common.Hash{}, fmt.Errorf("payload account %s does not match wallet %s", payload.Account.Hex(), s.wallet.Address().Hex())
	}

	nonce, err := s.client.PendingNonceAt(ctx, s.wallet.Address())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get nonce: %w", err)
	}

	value := payload.Value
	if value == nil {
		value = new(big.Int)
	}
	to := payload.To

	head, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to get latest header: %w", err)
	}

	var tx *types.Transaction
	if head.BaseFee != nil {
		tip, err := s.client.SuggestGasTipCap(ctx)
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to get gas tip cap: %w", err)
		}
		feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
		tx = types.NewTx(&types.DynamicFeeTx{
			ChainID:   s.chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gasLimit,
			To:        &to,
			Value:     value,
			Data:      payload.Data,
		})
	} else {
		gasPrice, err := s.client.SuggestGasPrice(ctx)
		if err != nil {
			return common.Hash{}, fmt.Errorf("failed to get gas price: %w", err)
		}
		tx = types.NewTx(&types.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gasLimit,
			To:       &to,
			Value:    value,
			Data:     payload.Data,
		})
	}

	signed, err := s.wallet.SignTx(tx, s.chainID)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return signed.Hash(), nil
}

// WaitForConfirmations blocks until hash is mined with the given confirmations
func (s *Signer) WaitForConfirmations(ctx context.Context, hash common.Hash, confirmations int) (*types.Receipt, error) {
	return WaitForConfirmations(ctx, s.client, hash, confirmations, s.pollInterval)
}
