package services

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/networks"
)

type staticTokens map[common.Address]entities.Token

func (s staticTokens) GetToken(ctx context.Context, address common.Address, chain entities.Chain) (entities.Token, error) {
	t, ok := s[address]
	if !ok {
		return entities.Token{}, ErrTokenNotFound
	}
	return t, nil
}

func newTestSwapService(oracle *mockOracle, querier *mockQuerier, rates *mockRates, tokens TokenLookup) *SwapService {
	resolver := NewStrategyResolver(testRegistry,
		NewDefaultSwapHandler(oracle, querier),
		NewNativeWrapHandler(),
		map[entities.WrapHandler]SwapHandler{entities.WrapHandlerLido: NewLidoWrapHandler(rates)},
	)
	return NewSwapService(resolver, tokens)
}

func TestSwapServiceSimulateValidates(t *testing.T) {
	oracle := &mockOracle{}
	s := newTestSwapService(oracle, &mockQuerier{}, &mockRates{}, nil)

	tests := []struct {
		name string
		req  entities.SwapRequest
	}{
		{"zero amount", entities.SwapRequest{Chain: entities.ChainMainnet, TokenIn: weth, TokenOut: usdc, SwapAmount: "0", SwapType: entities.SwapExactIn}},
		{"same token", entities.SwapRequest{Chain: entities.ChainMainnet, TokenIn: weth, TokenOut: weth, SwapAmount: "1", SwapType: entities.SwapExactIn}},
		{"bad type", entities.SwapRequest{Chain: entities.ChainMainnet, TokenIn: weth, TokenOut: usdc, SwapAmount: "1", SwapType: "SIDEWAYS"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Simulate(context.Background(), tt.req); err == nil {
				t.Error("Simulate() expected a validation error")
			}
		})
	}
	if oracle.calls != 0 {
		t.Errorf("oracle was called %d times for invalid requests", oracle.calls)
	}
}

func TestSwapServiceNativeWrapDoesNoIO(t *testing.T) {
	oracle := &mockOracle{}
	rates := &mockRates{}
	s := newTestSwapService(oracle, &mockQuerier{}, rates, nil)

	quote, err := s.Simulate(context.Background(), entities.SwapRequest{
		Chain: entities.ChainMainnet, TokenIn: eth, TokenOut: weth, SwapAmount: "3", SwapType: entities.SwapExactIn,
	})
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if quote.Strategy.Kind != entities.StrategyNativeWrap {
		t.Errorf("strategy = %s, want NATIVE_WRAP", quote.Strategy.Kind)
	}
	if oracle.calls != 0 || rates.calls != 0 {
		t.Errorf("native wrap made network calls: oracle=%d rates=%d", oracle.calls, rates.calls)
	}
}

func TestSwapServiceBuildInputFor(t *testing.T) {
	querier := &mockQuerier{output: entities.OnchainQueryOutput{
		ExpectedAmount: big.NewInt(1990e6),
		ExpectedToken:  entities.PathToken{Address: usdc, Decimals: 6},
		To:             vaultV2,
	}}
	s := newTestSwapService(&mockOracle{result: v2Paths()}, querier, &mockRates{}, nil)

	quote, err := s.Simulate(context.Background(), entities.SwapRequest{
		Chain: entities.ChainMainnet, TokenIn: weth, TokenOut: usdc, SwapAmount: "1", SwapType: entities.SwapExactIn,
	})
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}

	in, err := s.BuildInputFor(context.Background(), quote, wallet, "0.5", nil)
	if err != nil {
		t.Fatalf("BuildInputFor() error: %v", err)
	}
	if in.TokenIn.ScaledAmount.Cmp(big.NewInt(1e18)) != 0 {
		t.Errorf("TokenIn.ScaledAmount = %s, want 1e18", in.TokenIn.ScaledAmount)
	}
	if in.TokenOut.Amount != "1990" || in.TokenOut.ScaledAmount.Cmp(big.NewInt(1990e6)) != 0 {
		t.Errorf("TokenOut = %+v", in.TokenOut)
	}

	payload, err := s.Build(in)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if payload.To != vaultV2 || payload.Account != wallet {
		t.Errorf("Build() to = %s account = %s", payload.To.Hex(), payload.Account.Hex())
	}

	spender, ok, err := s.Spender(in)
	if err != nil || !ok || spender != vaultV2 {
		t.Errorf("Spender() = %s, %v, %v, want vault v2", spender.Hex(), ok, err)
	}
}

func TestSwapServiceBuildInputForLidoUsesDirectory(t *testing.T) {
	rate, _ := new(big.Int).SetString("1100000000000000000", 10)
	tokens := staticTokens{
		networks.LidoStETH:  {Address: networks.LidoStETH, Decimals: 18},
		networks.LidoWstETH: {Address: networks.LidoWstETH, Decimals: 18},
	}
	s := newTestSwapService(&mockOracle{}, &mockQuerier{}, &mockRates{rate: rate}, tokens)

	quote, err := s.Simulate(context.Background(), entities.SwapRequest{
		Chain: entities.ChainMainnet, TokenIn: networks.LidoWstETH, TokenOut: networks.LidoStETH, SwapAmount: "2", SwapType: entities.SwapExactIn,
	})
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	in, err := s.BuildInputFor(context.Background(), quote, wallet, "0.5", nil)
	if err != nil {
		t.Fatalf("BuildInputFor() error: %v", err)
	}
	if in.TokenOut.Amount != "2.2" {
		t.Errorf("TokenOut.Amount = %s, want 2.2", in.TokenOut.Amount)
	}
	want, _ := new(big.Int).SetString("2200000000000000000", 10)
	if in.TokenOut.ScaledAmount.Cmp(want) != 0 {
		t.Errorf("TokenOut.ScaledAmount = %s, want %s", in.TokenOut.ScaledAmount, want)
	}

	_, err = NewSwapService(s.resolver, staticTokens{}).BuildInputFor(context.Background(), quote, wallet, "0.5", nil)
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("BuildInputFor() with unknown decimals error = %v, want ErrTokenNotFound", err)
	}
}

func TestSwapServiceBuildInputForNoQuote(t *testing.T) {
	s := newTestSwapService(&mockOracle{}, &mockQuerier{}, &mockRates{}, nil)
	if _, err := s.BuildInputFor(context.Background(), SwapQuote{}, wallet, "1", nil); err == nil {
		t.Error("BuildInputFor() without a result should fail")
	}
}
