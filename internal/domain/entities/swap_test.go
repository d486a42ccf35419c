package entities

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	testTokenA = common.HexToAddress("0x0000000000000000000000000000000000000001")
	testTokenB = common.HexToAddress("0x0000000000000000000000000000000000000002")
)

func TestSwapRequestValidate(t *testing.T) {
	valid := SwapRequest{
		Chain:      ChainMainnet,
		TokenIn:    testTokenA,
		TokenOut:   testTokenB,
		SwapAmount: "1.5",
		SwapType:   SwapExactIn,
	}

	tests := []struct {
		name    string
		mutate  func(r *SwapRequest)
		wantErr bool
	}{
		{"valid", func(r *SwapRequest) {}, false},
		{"missing chain", func(r *SwapRequest) { r.Chain = "" }, true},
		{"bad swap type", func(r *SwapRequest) { r.SwapType = "SIDEWAYS" }, true},
		{"same token", func(r *SwapRequest) { r.TokenOut = testTokenA }, true},
		{"zero amount", func(r *SwapRequest) { r.SwapAmount = "0" }, true},
		{"empty amount", func(r *SwapRequest) { r.SwapAmount = "" }, true},
		{"missing token", func(r *SwapRequest) { r.TokenIn = common.Address{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSwapRequestValidateSameToken(t *testing.T) {
	req := SwapRequest{Chain: ChainMainnet, TokenIn: testTokenA, TokenOut: testTokenA, SwapAmount: "1", SwapType: SwapExactIn}
	if err := req.Validate(); !errors.Is(err, ErrSameToken) {
		t.Errorf("Validate() error = %v, want ErrSameToken", err)
	}
}

func TestSwapRequestCacheKey(t *testing.T) {
	req := SwapRequest{
		Chain:      ChainSonic,
		TokenIn:    testTokenA,
		TokenOut:   testTokenB,
		SwapAmount: "10",
		SwapType:   SwapExactOut,
	}
	want := "10:EXACT_OUT:" + testTokenA.Hex() + ":" + testTokenB.Hex() + ":SONIC:null"
	if got := req.CacheKey(); got != want {
		t.Errorf("CacheKey() = %q, want %q", got, want)
	}

	req.PoolIDs = []string{"0xabc"}
	if got := req.CacheKey(); !strings.HasSuffix(got, `:["0xabc"]`) {
		t.Errorf("CacheKey() with pools = %q", got)
	}
}

func TestSwapTypeKind(t *testing.T) {
	if SwapExactIn.Kind() != SwapKindGivenIn {
		t.Error("EXACT_IN should map to GivenIn")
	}
	if SwapExactOut.Kind() != SwapKindGivenOut {
		t.Error("EXACT_OUT should map to GivenOut")
	}
}

func TestSwapPlanTotals(t *testing.T) {
	plan := SwapPlan{
		Paths: []Path{
			{Tokens: []PathToken{{Address: testTokenA}, {Address: testTokenB}}, InputAmountRaw: big.NewInt(40), OutputAmountRaw: big.NewInt(39)},
			{Tokens: []PathToken{{Address: testTokenA}, {Address: testTokenB}}, InputAmountRaw: big.NewInt(60), OutputAmountRaw: big.NewInt(58)},
		},
	}
	if got := plan.TotalInput(); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("TotalInput() = %s, want 100", got)
	}
	if got := plan.TotalOutput(); got.Cmp(big.NewInt(97)) != 0 {
		t.Errorf("TotalOutput() = %s, want 97", got)
	}
	if plan.TokenIn().Address != testTokenA || plan.TokenOut().Address != testTokenB {
		t.Error("TokenIn()/TokenOut() returned the wrong tokens")
	}
	if (SwapPlan{}).TokenIn() != (PathToken{}) {
		t.Error("empty plan should have a zero TokenIn")
	}
}

func TestBuildInputCacheKey(t *testing.T) {
	in := BuildInput{
		Chain:           ChainMainnet,
		Account:         testTokenA,
		SlippagePercent: "0.5",
		Quote:           &WrapQuote{QuoteBase{SwapType: SwapExactIn, ReturnAmount: "1"}},
	}
	key := in.CacheKey()
	if !strings.HasPrefix(key, testTokenA.Hex()+":MAINNET:0.5:{") {
		t.Errorf("CacheKey() = %q", key)
	}

	in.SlippagePercent = "1"
	if in.CacheKey() == key {
		t.Error("CacheKey() should change with slippage")
	}
}
