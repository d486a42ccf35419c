package services

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/infrastructure/balancer"
)

var vaultV2 = common.HexToAddress("0xBA12222222228d8Ba445958a75a0704d566BF2C8")

func v2Paths() *entities.SwapPathsResult {
	return &entities.SwapPathsResult{
		Paths:           []entities.Path{wethUsdcPath(1e18, 2000e6, entities.ProtocolV2)},
		Routes:          []entities.Route{{Hops: []entities.Hop{{}}}},
		ProtocolVersion: entities.ProtocolV2,
	}
}

func TestDefaultSwapSimulateExactIn(t *testing.T) {
	oracle := &mockOracle{result: v2Paths()}
	querier := &mockQuerier{output: entities.OnchainQueryOutput{
		Kind:           entities.SwapKindGivenIn,
		ExpectedAmount: big.NewInt(1990e6),
		ExpectedToken:  entities.PathToken{Address: usdc, Decimals: 6},
		To:             vaultV2,
	}}
	h := NewDefaultSwapHandler(oracle, querier)

	res, err := h.Simulate(context.Background(), mainnetConfig(), entities.SwapRequest{
		Chain: entities.ChainMainnet, TokenIn: weth, TokenOut: usdc, SwapAmount: "1", SwapType: entities.SwapExactIn,
		PoolIDs: []string{poolWethUsdc},
	})
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	quote, ok := res.(*entities.AmmQuote)
	if !ok {
		t.Fatalf("Simulate() returned %T, want *AmmQuote", res)
	}
	if quote.ReturnAmount != "1990" {
		t.Errorf("ReturnAmount = %s, want 1990", quote.ReturnAmount)
	}
	if quote.EffectivePriceReversed != "1990" {
		t.Errorf("EffectivePriceReversed = %s, want 1990", quote.EffectivePriceReversed)
	}
	if quote.EffectivePrice != "0.000502512562814070" && quote.EffectivePrice != "0.00050251256281407" {
		t.Errorf("EffectivePrice = %s", quote.EffectivePrice)
	}
	if quote.Router != vaultV2 || quote.HopCount != 1 || quote.ProtocolVersion != entities.ProtocolV2 {
		t.Errorf("Simulate() router = %s hops = %d version = %d", quote.Router.Hex(), quote.HopCount, quote.ProtocolVersion)
	}
	if querier.plan.Kind != entities.SwapKindGivenIn || querier.plan.ChainID != 1 {
		t.Errorf("plan kind = %d chain = %d", querier.plan.Kind, querier.plan.ChainID)
	}
	if len(oracle.last.PoolIDs) != 1 {
		t.Errorf("pool ids were not forwarded to the oracle: %v", oracle.last.PoolIDs)
	}
}

func TestDefaultSwapSimulateExactOut(t *testing.T) {
	querier := &mockQuerier{output: entities.OnchainQueryOutput{
		Kind:           entities.SwapKindGivenOut,
		ExpectedAmount: big.NewInt(5e17),
		ExpectedToken:  entities.PathToken{Address: weth, Decimals: 18},
		To:             vaultV2,
	}}
	h := NewDefaultSwapHandler(&mockOracle{result: v2Paths()}, querier)

	res, err := h.Simulate(context.Background(), mainnetConfig(), entities.SwapRequest{
		Chain: entities.ChainMainnet, TokenIn: weth, TokenOut: usdc, SwapAmount: "1000", SwapType: entities.SwapExactOut,
	})
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	q := res.Quote()
	if q.ReturnAmount != "0.5" {
		t.Errorf("ReturnAmount = %s, want 0.5", q.ReturnAmount)
	}
	// effective price is amount in per amount out
	if q.EffectivePrice != "0.0005" || q.EffectivePriceReversed != "2000" {
		t.Errorf("EffectivePrice = %s, reversed = %s", q.EffectivePrice, q.EffectivePriceReversed)
	}
	if querier.plan.Kind != entities.SwapKindGivenOut {
		t.Errorf("plan kind = %d, want GivenOut", querier.plan.Kind)
	}
}

func TestDefaultSwapSimulateNativeTokenIsWrapped(t *testing.T) {
	paths := v2Paths()
	paths.Paths[0].Tokens[0].Address = eth
	querier := &mockQuerier{output: entities.OnchainQueryOutput{ExpectedAmount: big.NewInt(1), To: vaultV2}}
	h := NewDefaultSwapHandler(&mockOracle{result: paths}, querier)

	_, err := h.Simulate(context.Background(), mainnetConfig(), entities.SwapRequest{
		Chain: entities.ChainMainnet, TokenIn: eth, TokenOut: usdc, SwapAmount: "1", SwapType: entities.SwapExactIn,
	})
	if err != nil {
		t.Fatalf("Simulate() error: %v", err)
	}
	if got := querier.plan.TokenIn().Address; got != weth {
		t.Errorf("plan token in = %s, want WETH", got.Hex())
	}
	if paths.Paths[0].Tokens[0].Address != eth {
		t.Error("oracle result was mutated")
	}
}

func TestDefaultSwapSimulateErrors(t *testing.T) {
	okOutput := entities.OnchainQueryOutput{ExpectedAmount: big.NewInt(1), To: vaultV2}
	tests := []struct {
		name    string
		oracle  *mockOracle
		querier *mockQuerier
		want    error
	}{
		{"no paths", &mockOracle{result: &entities.SwapPathsResult{}}, &mockQuerier{output: okOutput}, entities.ErrNoRouteFound},
		{"typed oracle error", &mockOracle{err: entities.NewSwapError(entities.KindNoRouteFound, entities.NoPathMessage, nil)}, &mockQuerier{}, entities.ErrNoRouteFound},
		{"transport", &mockOracle{err: errors.New("connection reset")}, &mockQuerier{}, entities.ErrOracleTransport},
		{"query failure", &mockOracle{result: v2Paths()}, &mockQuerier{err: errors.New("execution reverted: BAL#304")}, entities.ErrOnchainSimulation},
		{"no router", &mockOracle{result: v2Paths()}, &mockQuerier{output: entities.OnchainQueryOutput{ExpectedAmount: big.NewInt(1)}}, entities.ErrOnchainSimulation},
	}

	req := entities.SwapRequest{Chain: entities.ChainMainnet, TokenIn: weth, TokenOut: usdc, SwapAmount: "1", SwapType: entities.SwapExactIn}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDefaultSwapHandler(tt.oracle, tt.querier).Simulate(context.Background(), mainnetConfig(), req)
			if !errors.Is(err, tt.want) {
				t.Errorf("Simulate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func ammQuote(version entities.ProtocolVersion, kind entities.SwapKind, expected int64) *entities.AmmQuote {
	path := wethUsdcPath(1e18, 2000e6, version)
	return &entities.AmmQuote{
		Plan: entities.SwapPlan{
			ChainID:         1,
			Chain:           entities.ChainMainnet,
			Kind:            kind,
			ProtocolVersion: version,
			Paths:           []entities.Path{path},
		},
		QueryOutput: entities.OnchainQueryOutput{
			Kind:           kind,
			ExpectedAmount: big.NewInt(expected),
		},
		ProtocolVersion: version,
		Router:          vaultV2,
	}
}

func TestDefaultSwapBuildV2ExactIn(t *testing.T) {
	cfg := mainnetConfig()
	quote := ammQuote(entities.ProtocolV2, entities.SwapKindGivenIn, 2000e6)
	in := entities.BuildInput{
		Chain:           entities.ChainMainnet,
		Account:         wallet,
		SwapType:        entities.SwapExactIn,
		TokenIn:         entities.SwapTokenInput{Address: weth, ScaledAmount: big.NewInt(1e18)},
		TokenOut:        entities.SwapTokenInput{Address: usdc},
		SlippagePercent: "1",
		Quote:           quote,
	}

	payload, err := NewDefaultSwapHandler(nil, nil).Build(cfg, in)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	want, err := balancer.EncodeVaultBatchSwap(balancer.SwapCall{
		Kind:          entities.SwapKindGivenIn,
		Paths:         quote.Plan.Paths,
		Account:       wallet,
		LimitIn:       big.NewInt(1e18),
		LimitOut:      big.NewInt(1980e6),
		WrappedNative: cfg.WrappedNativeAsset,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(payload.Data, want) {
		t.Error("Build() calldata does not match a batchSwap with a 1% minimum out")
	}
	if payload.To != vaultV2 || payload.Value.Sign() != 0 || payload.ChainID != 1 {
		t.Errorf("Build() to = %s value = %s chain = %d", payload.To.Hex(), payload.Value, payload.ChainID)
	}
}

func TestDefaultSwapBuildNativeInput(t *testing.T) {
	cfg := mainnetConfig()
	quote := ammQuote(entities.ProtocolV2, entities.SwapKindGivenOut, 1e18)
	in := entities.BuildInput{
		Chain:           entities.ChainMainnet,
		Account:         wallet,
		SwapType:        entities.SwapExactOut,
		TokenIn:         entities.SwapTokenInput{Address: eth},
		TokenOut:        entities.SwapTokenInput{Address: usdc},
		SlippagePercent: "0.5",
		Quote:           quote,
	}

	payload, err := NewDefaultSwapHandler(nil, nil).Build(cfg, in)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	maxIn := big.NewInt(1005e15)
	if payload.Value.Cmp(maxIn) != 0 {
		t.Errorf("Build() value = %s, want %s", payload.Value, maxIn)
	}

	want, _ := balancer.EncodeVaultBatchSwap(balancer.SwapCall{
		Kind:          entities.SwapKindGivenOut,
		Paths:         quote.Plan.Paths,
		Account:       wallet,
		LimitIn:       maxIn,
		LimitOut:      big.NewInt(2000e6),
		WethIsEth:     true,
		WrappedNative: cfg.WrappedNativeAsset,
	})
	if !bytes.Equal(payload.Data, want) {
		t.Error("Build() calldata does not match a wethIsEth batchSwap with a 0.5% maximum in")
	}

	if _, ok := NewDefaultSwapHandler(nil, nil).Spender(cfg, in); ok {
		t.Error("native input should not need an approval")
	}
}

func TestDefaultSwapBuildV3(t *testing.T) {
	cfg := mainnetConfig()
	quote := ammQuote(entities.ProtocolV3, entities.SwapKindGivenIn, 2000e6)
	quote.Router = router
	quote.QueryOutput.PathAmounts = []*big.Int{big.NewInt(1000e6)}
	permit := &entities.Permit2{
		Details:   []entities.PermitDetails{{Token: weth, Amount: big.NewInt(1e18)}},
		Spender:   router,
		Signature: []byte{0x01},
	}
	in := entities.BuildInput{
		Chain:           entities.ChainMainnet,
		Account:         wallet,
		SwapType:        entities.SwapExactIn,
		TokenIn:         entities.SwapTokenInput{Address: weth},
		TokenOut:        entities.SwapTokenInput{Address: usdc},
		SlippagePercent: "1",
		Quote:           quote,
		Permit2:         permit,
	}

	payload, err := NewDefaultSwapHandler(nil, nil).Build(cfg, in)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	want, err := balancer.EncodeBatchRouterSwap(balancer.SwapCall{
		Kind:       entities.SwapKindGivenIn,
		Paths:      quote.Plan.Paths,
		Account:    wallet,
		PathLimits: []*big.Int{big.NewInt(990e6)},
		Permit2:    permit,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(payload.Data, want) {
		t.Error("Build() calldata does not match permitBatchAndCall over swapExactIn")
	}
	if payload.To != router {
		t.Errorf("Build() to = %s, want batch router", payload.To.Hex())
	}

	spender, ok := NewDefaultSwapHandler(nil, nil).Spender(cfg, in)
	if !ok || spender != cfg.Contracts.Balancer.VaultV3 {
		t.Errorf("Spender(v3) = %s, %v, want vault v3", spender.Hex(), ok)
	}
}

func TestDefaultSwapBuildRequiresAmmQuote(t *testing.T) {
	_, err := NewDefaultSwapHandler(nil, nil).Build(mainnetConfig(), entities.BuildInput{
		SlippagePercent: "1",
		Quote:           &entities.WrapQuote{},
	})
	if err == nil {
		t.Error("Build() with a wrap quote should fail")
	}
}
