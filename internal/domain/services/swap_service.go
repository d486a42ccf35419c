package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

// TokenLookup resolves token metadata
type TokenLookup interface {
	GetToken(ctx context.Context, address common.Address, chain entities.Chain) (entities.Token, error)
}

// SwapQuote is a simulation result together with the request and strategy it answers
type SwapQuote struct {
	Request  entities.SwapRequest       `json:"request"`
	Strategy entities.ExecutionStrategy `json:"strategy"`
	Result   entities.SimulationResult  `json:"result"`
}

// SwapService simulates requests and builds transactions through the
// handler of each request's strategy
type SwapService struct {
	resolver *StrategyResolver
	tokens   TokenLookup
}

func NewSwapService(resolver *StrategyResolver, tokens TokenLookup) *SwapService {
	return &SwapService{resolver: resolver, tokens: tokens}
}

// Simulate validates req and quotes it
func (s *SwapService) Simulate(ctx context.Context, req entities.SwapRequest) (SwapQuote, error) {
	if err := req.Validate(); err != nil {
		return SwapQuote{}, err
	}
	resolved, err := s.resolver.Resolve(req.Chain, req.TokenIn, req.TokenOut)
	if err != nil {
		return SwapQuote{}, err
	}

	slog.Debug("simulating swap", "key", req.CacheKey(), "strategy", resolved.Strategy.Kind)
	result, err := resolved.Handler.Simulate(ctx, resolved.Network, req)
	if err != nil {
		return SwapQuote{}, err
	}
	return SwapQuote{Request: req, Strategy: resolved.Strategy, Result: result}, nil
}

// BuildInputFor turns a quote into builder input for account. For EXACT_IN
// the request amount is the input and the return amount the output, EXACT_OUT
// is the reverse.
func (s *SwapService) BuildInputFor(ctx context.Context, quote SwapQuote, account common.Address, slippagePercent string, permit2 *entities.Permit2) (entities.BuildInput, error) {
	if quote.Result == nil {
		return entities.BuildInput{}, errors.New("no quote to build from")
	}
	req := quote.Request

	amountIn, amountOut := req.SwapAmount, quote.Result.Quote().ReturnAmount
	if req.SwapType == entities.SwapExactOut {
		amountIn, amountOut = amountOut, amountIn
	}

	tokenIn, err := s.swapTokenInput(ctx, quote, req.TokenIn, amountIn)
	if err != nil {
		return entities.BuildInput{}, err
	}
	tokenOut, err := s.swapTokenInput(ctx, quote, req.TokenOut, amountOut)
	if err != nil {
		return entities.BuildInput{}, err
	}

	return entities.BuildInput{
		Chain:           req.Chain,
		Account:         account,
		SwapType:        req.SwapType,
		TokenIn:         tokenIn,
		TokenOut:        tokenOut,
		SlippagePercent: slippagePercent,
		Quote:           quote.Result,
		Permit2:         permit2,
	}, nil
}

func (s *SwapService) swapTokenInput(ctx context.Context, quote SwapQuote, address common.Address, amount string) (entities.SwapTokenInput, error) {
	decimals, err := s.decimalsOf(ctx, quote, address)
	if err != nil {
		return entities.SwapTokenInput{}, err
	}
	scaled, err := entities.ScaleAmount(amount, decimals)
	if err != nil {
		return entities.SwapTokenInput{}, err
	}
	return entities.SwapTokenInput{Address: address, Amount: amount, ScaledAmount: scaled}, nil
}

func (s *SwapService) decimalsOf(ctx context.Context, quote SwapQuote, address common.Address) (uint8, error) {
	chain := quote.Request.Chain
	if cfg, err := s.resolver.registry.GetConfig(chain); err == nil {
		if cfg.IsNativeAsset(address) {
			return cfg.NativeAsset.Decimals, nil
		}
		if cfg.IsWrappedNativeAsset(address) {
			return 18, nil
		}
	}
	if amm, ok := quote.Result.(*entities.AmmQuote); ok {
		for _, p := range amm.Plan.Paths {
			for _, t := range p.Tokens {
				if t.Address == address {
					return t.Decimals, nil
				}
			}
		}
	}
	if s.tokens == nil {
		return 0, fmt.Errorf("unknown decimals for %s", address.Hex())
	}
	token, err := s.tokens.GetToken(ctx, address, chain)
	if err != nil {
		return 0, fmt.Errorf("resolve decimals of %s: %w", address.Hex(), err)
	}
	return token.Decimals, nil
}

// Build encodes the transaction for in. It never reuses a payload built for an older quote.
func (s *SwapService) Build(in entities.BuildInput) (entities.TransactionPayload, error) {
	resolved, err := s.resolver.Resolve(in.Chain, in.TokenIn.Address, in.TokenOut.Address)
	if err != nil {
		return entities.TransactionPayload{}, err
	}
	slog.Debug("building swap", "key", in.CacheKey(), "strategy", resolved.Strategy.Kind)
	return resolved.Handler.Build(resolved.Network, in)
}

// Spender returns the address tokenIn must be approved for. ok is false when
// the swap needs no approval.
func (s *SwapService) Spender(in entities.BuildInput) (spender common.Address, ok bool, err error) {
	resolved, err := s.resolver.Resolve(in.Chain, in.TokenIn.Address, in.TokenOut.Address)
	if err != nil {
		return common.Address{}, false, err
	}
	spender, ok = resolved.Handler.Spender(resolved.Network, in)
	return spender, ok, nil
}

// Network returns the network config of chain
func (s *SwapService) Network(chain entities.Chain) (entities.NetworkConfig, error) {
	return s.resolver.registry.GetConfig(chain)
}
