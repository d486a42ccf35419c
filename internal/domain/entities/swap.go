package entities

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// SwapType matches GqlSorSwapType
type SwapType string

const (
	SwapExactIn  SwapType = "EXACT_IN"
	SwapExactOut SwapType = "EXACT_OUT"
)

func (t SwapType) Valid() bool {
	return t == SwapExactIn || t == SwapExactOut
}

// SwapKind is the on-chain swap kind: 0 given in, 1 given out
type SwapKind uint8

const (
	SwapKindGivenIn  SwapKind = 0
	SwapKindGivenOut SwapKind = 1
)

func (t SwapType) Kind() SwapKind {
	if t == SwapExactOut {
		return SwapKindGivenOut
	}
	return SwapKindGivenIn
}

type WrapType string

const (
	WrapTypeWrap   WrapType = "wrap"
	WrapTypeUnwrap WrapType = "unwrap"
)

type StrategyKind string

const (
	StrategyNativeWrap        StrategyKind = "NATIVE_WRAP"
	StrategyLiquidStakingWrap StrategyKind = "LIQUID_STAKING_WRAP"
	StrategyDefaultSwap       StrategyKind = "DEFAULT_SWAP"
)

// ExecutionStrategy is the resolved way a token pair executes on a chain.
// Provider and RateProviderAddress are only set for StrategyLiquidStakingWrap.
type ExecutionStrategy struct {
	Kind                StrategyKind   `json:"kind"`
	Provider            WrapHandler    `json:"provider,omitempty"`
	RateProviderAddress common.Address `json:"rateProviderAddress,omitempty"`
	Wrapper             *Wrapper       `json:"wrapper,omitempty"`
}

var (
	ErrInvalidSwapType = errors.New("invalid swap type")
	ErrSameToken       = errors.New("tokenIn and tokenOut must differ")
)

// SwapRequest is an immutable quote request. A new request replaces the previous one.
type SwapRequest struct {
	Chain      Chain          `json:"chain"`
	TokenIn    common.Address `json:"tokenIn"`
	TokenOut   common.Address `json:"tokenOut"`
	SwapAmount string         `json:"swapAmount"`
	SwapType   SwapType       `json:"swapType"`
	PoolIDs    []string       `json:"poolIds,omitempty"`
}

// Validate checks the request is complete and the amount is positive
func (r SwapRequest) Validate() error {
	if r.Chain == "" {
		return errors.New("chain is required")
	}
	if !r.SwapType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSwapType, r.SwapType)
	}
	if r.TokenIn == (common.Address{}) || r.TokenOut == (common.Address{}) {
		return errors.New("tokenIn and tokenOut are required")
	}
	if r.TokenIn == r.TokenOut {
		return ErrSameToken
	}
	amount, err := ParseDecimal(r.SwapAmount)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: swap amount must be positive", ErrInvalidAmount)
	}
	return nil
}

// CacheKey identifies the simulation inputs: amount:type:tokenIn:tokenOut:chain:poolIds
func (r SwapRequest) CacheKey() string {
	poolIDs, _ := json.Marshal(r.PoolIDs)
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s", r.SwapAmount, r.SwapType, r.TokenIn.Hex(), r.TokenOut.Hex(), r.Chain, poolIDs)
}

// PathToken is a token appearing in an oracle path
type PathToken struct {
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
}

// Path is one oracle path with its raw amounts decoded
type Path struct {
	Pools           []string        `json:"pools"`
	IsBuffer        []bool          `json:"isBuffer"`
	Tokens          []PathToken     `json:"tokens"`
	InputAmountRaw  *big.Int        `json:"inputAmountRaw"`
	OutputAmountRaw *big.Int        `json:"outputAmountRaw"`
	ProtocolVersion ProtocolVersion `json:"protocolVersion"`
}

// SwapPlan is the opaque path set handed to the on-chain query and the builder
type SwapPlan struct {
	ChainID         uint64          `json:"chainId"`
	Chain           Chain           `json:"chain"`
	Kind            SwapKind        `json:"swapKind"`
	ProtocolVersion ProtocolVersion `json:"protocolVersion"`
	Paths           []Path          `json:"paths"`
}

func (p SwapPlan) TokenIn() PathToken {
	if len(p.Paths) == 0 || len(p.Paths[0].Tokens) == 0 {
		return PathToken{}
	}
	return p.Paths[0].Tokens[0]
}

func (p SwapPlan) TokenOut() PathToken {
	if len(p.Paths) == 0 || len(p.Paths[0].Tokens) == 0 {
		return PathToken{}
	}
	tokens := p.Paths[0].Tokens
	return tokens[len(tokens)-1]
}

// TotalInput sums the raw input amounts of all paths
func (p SwapPlan) TotalInput() *big.Int {
	total := new(big.Int)
	for _, path := range p.Paths {
		if path.InputAmountRaw != nil {
			total.Add(total, path.InputAmountRaw)
		}
	}
	return total
}

// TotalOutput sums the raw output amounts of all paths
func (p SwapPlan) TotalOutput() *big.Int {
	total := new(big.Int)
	for _, path := range p.Paths {
		if path.OutputAmountRaw != nil {
			total.Add(total, path.OutputAmountRaw)
		}
	}
	return total
}

// OnchainQueryOutput is the authoritative result of the read-only swap query.
// ExpectedAmount is the amount out for GivenIn and the amount in for GivenOut.
type OnchainQueryOutput struct {
	Kind           SwapKind       `json:"swapKind"`
	ExpectedAmount *big.Int       `json:"expectedAmount"`
	ExpectedToken  PathToken      `json:"expectedToken"`
	PathAmounts    []*big.Int     `json:"pathAmounts"`
	To             common.Address `json:"to"`
}

// SimulationResult is implemented by WrapQuote, RateWrapQuote and AmmQuote
type SimulationResult interface {
	Quote() QuoteBase
	isSimulationResult()
}

// QuoteBase holds the fields every simulation result carries. ReturnAmount is a
// non-negative decimal string in human readable units.
type QuoteBase struct {
	SwapType               SwapType `json:"swapType"`
	EffectivePrice         string   `json:"effectivePrice"`
	EffectivePriceReversed string   `json:"effectivePriceReversed"`
	ReturnAmount           string   `json:"returnAmount"`
}

// WrapQuote is a 1:1 native wrap or unwrap
type WrapQuote struct {
	QuoteBase
}

// RateWrapQuote is a liquid staking wrap priced by an on-chain rate
type RateWrapQuote struct {
	QuoteBase
	Rate string `json:"rate"`
}

// AmmQuote is a routed AMM swap quote
type AmmQuote struct {
	QuoteBase
	Plan            SwapPlan           `json:"swapPlan"`
	QueryOutput     OnchainQueryOutput `json:"onchainQueryOutput"`
	ProtocolVersion ProtocolVersion    `json:"protocolVersion"`
	HopCount        int                `json:"hopCount"`
	Router          common.Address     `json:"router"`
}

func (q *WrapQuote) Quote() QuoteBase     { return q.QuoteBase }
func (q *RateWrapQuote) Quote() QuoteBase { return q.QuoteBase }
func (q *AmmQuote) Quote() QuoteBase      { return q.QuoteBase }

func (*WrapQuote) isSimulationResult()     {}
func (*RateWrapQuote) isSimulationResult() {}
func (*AmmQuote) isSimulationResult()      {}

// SwapTokenInput is one side of the swap form
type SwapTokenInput struct {
	Address      common.Address `json:"address"`
	Amount       string         `json:"amount"`
	ScaledAmount *big.Int       `json:"scaledAmount"`
}

// PermitDetails is one token entry of a permit2 batch
type PermitDetails struct {
	Token      common.Address `json:"token"`
	Amount     *big.Int       `json:"amount"`
	Expiration *big.Int       `json:"expiration"`
	Nonce      *big.Int       `json:"nonce"`
}

// Permit2 is a signed permit2 batch allowance
type Permit2 struct {
	Details     []PermitDetails `json:"details"`
	Spender     common.Address  `json:"spender"`
	SigDeadline *big.Int        `json:"sigDeadline"`
	Signature   hexutil.Bytes   `json:"signature"`
}

// BuildInput is everything a builder needs. It must come from the current quote.
type BuildInput struct {
	Chain           Chain
	Account         common.Address
	SwapType        SwapType
	TokenIn         SwapTokenInput
	TokenOut        SwapTokenInput
	SlippagePercent string
	Quote           SimulationResult
	WethIsEth       bool
	Permit2         *Permit2
}

// CacheKey identifies the build inputs: account:chain:slippage:quote
func (in BuildInput) CacheKey() string {
	var quote []byte
	if in.Quote != nil {
		quote, _ = json.Marshal(in.Quote)
	}
	return fmt.Sprintf("%s:%s:%s:%s", in.Account.Hex(), in.Chain, in.SlippagePercent, quote)
}

// TransactionPayload is a chain ready transaction
type TransactionPayload struct {
	Account common.Address `json:"account"`
	ChainID uint64         `json:"chainId"`
	To      common.Address `json:"to"`
	Data    hexutil.Bytes  `json:"data"`
	Value   *big.Int       `json:"value,omitempty"`
}
