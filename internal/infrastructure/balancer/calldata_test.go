package balancer

import (
	"bytes"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

var (
	weth    = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc    = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	dai     = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	account = common.HexToAddress("0x00000000000000000000000000000000000000a1")

	poolWethUsdc = "0x96646936b91d6b9d7d0c47c496afbf3d6ec7b6f8000200000000000000000019"
	poolUsdcDai  = "0x06df3b2bbb68adc8b0e302443692037ed9f91b42000000000000000000000063"
)

func twoHopPath(in, out int64) entities.Path {
	return entities.Path{
		Pools:    []string{poolWethUsdc, poolUsdcDai},
		IsBuffer: []bool{false, false},
		Tokens: []entities.PathToken{
			{Address: weth, Decimals: 18},
			{Address: usdc, Decimals: 6},
			{Address: dai, Decimals: 18},
		},
		InputAmountRaw:  big.NewInt(in),
		OutputAmountRaw: big.NewInt(out),
		ProtocolVersion: entities.ProtocolV2,
	}
}

func unpackCall(t *testing.T, parsed abi.ABI, name string, data []byte) []interface{} {
	t.Helper()
	method := parsed.Methods[name]
	if !bytes.Equal(data[:4], method.ID) {
		t.Fatalf("selector = %x, want %s %x", data[:4], name, method.ID)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack %s: %v", name, err)
	}
	return args
}

type decodedStep struct {
	AssetInIndex  *big.Int `json:"assetInIndex"`
	AssetOutIndex *big.Int `json:"assetOutIndex"`
	Amount        *big.Int `json:"amount"`
}

func decodeSteps(t *testing.T, v interface{}) []decodedStep {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	var steps []decodedStep
	if err := json.Unmarshal(raw, &steps); err != nil {
		t.Fatal(err)
	}
	return steps
}

func TestEncodeVaultBatchSwapExactIn(t *testing.T) {
	call := SwapCall{
		Kind:     entities.SwapKindGivenIn,
		Paths:    []entities.Path{twoHopPath(1000, 2000)},
		Account:  account,
		LimitIn:  big.NewInt(1000),
		LimitOut: big.NewInt(1980),
	}
	data, err := EncodeVaultBatchSwap(call)
	if err != nil {
		t.Fatalf("EncodeVaultBatchSwap() error: %v", err)
	}
	args := unpackCall(t, vaultV2ABI, "batchSwap", data)

	if kind := args[0].(uint8); kind != 0 {
		t.Errorf("kind = %d, want 0", kind)
	}
	steps := decodeSteps(t, args[1])
	if len(steps) != 2 {
		t.Fatalf("got %d swap steps, want 2", len(steps))
	}
	if steps[0].Amount.Int64() != 1000 || steps[1].Amount.Sign() != 0 {
		t.Errorf("step amounts = %s, %s, want 1000, 0", steps[0].Amount, steps[1].Amount)
	}
	if steps[0].AssetInIndex.Int64() != 0 || steps[0].AssetOutIndex.Int64() != 1 || steps[1].AssetOutIndex.Int64() != 2 {
		t.Errorf("unexpected asset indices: %+v", steps)
	}

	assets := args[2].([]common.Address)
	if len(assets) != 3 || assets[0] != weth || assets[2] != dai {
		t.Errorf("assets = %v", assets)
	}
	limits := args[4].([]*big.Int)
	if limits[0].Int64() != 1000 || limits[1].Sign() != 0 || limits[2].Int64() != -1980 {
		t.Errorf("limits = %v, want [1000 0 -1980]", limits)
	}
	if deadline := args[5].(*big.Int); deadline.Cmp(DefaultDeadline) != 0 {
		t.Errorf("deadline = %s, want %s", deadline, DefaultDeadline)
	}
}

func TestEncodeVaultBatchSwapExactOutWethIsEth(t *testing.T) {
	call := SwapCall{
		Kind:          entities.SwapKindGivenOut,
		Paths:         []entities.Path{twoHopPath(1000, 2000)},
		Account:       account,
		LimitIn:       big.NewInt(1010),
		LimitOut:      big.NewInt(2000),
		WethIsEth:     true,
		WrappedNative: weth,
	}
	data, err := EncodeVaultBatchSwap(call)
	if err != nil {
		t.Fatalf("EncodeVaultBatchSwap() error: %v", err)
	}
	args := unpackCall(t, vaultV2ABI, "batchSwap", data)

	if kind := args[0].(uint8); kind != 1 {
		t.Errorf("kind = %d, want 1", kind)
	}
	steps := decodeSteps(t, args[1])
	// walked backwards: the last hop comes first and carries the exact out amount
	if steps[0].AssetOutIndex.Int64() != 2 || steps[0].Amount.Int64() != 2000 {
		t.Errorf("first step = %+v, want last hop with amount 2000", steps[0])
	}
	if steps[1].Amount.Sign() != 0 {
		t.Errorf("second step amount = %s, want 0", steps[1].Amount)
	}

	assets := args[2].([]common.Address)
	if assets[0] != (common.Address{}) {
		t.Errorf("wrapped native should become the zero address, got %s", assets[0].Hex())
	}
	limits := args[4].([]*big.Int)
	if limits[0].Int64() != 1010 || limits[2].Int64() != -2000 {
		t.Errorf("limits = %v", limits)
	}
}

func TestEncodeBatchRouterSwap(t *testing.T) {
	path := twoHopPath(1000, 2000)
	path.Pools = []string{"0x85b2b559bc2d21104c4defdd6efca8a20343361d", "0x89bb794097234e5e930446c0cec0ea66b35d7570"}
	path.IsBuffer = []bool{true, false}

	tests := []struct {
		name   string
		kind   entities.SwapKind
		method string
	}{
		{"exact in", entities.SwapKindGivenIn, "swapExactIn"},
		{"exact out", entities.SwapKindGivenOut, "swapExactOut"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeBatchRouterSwap(SwapCall{
				Kind:       tt.kind,
				Paths:      []entities.Path{path},
				PathLimits: []*big.Int{big.NewInt(1990)},
				WethIsEth:  true,
			})
			if err != nil {
				t.Fatalf("EncodeBatchRouterSwap() error: %v", err)
			}
			args := unpackCall(t, batchRouterABI, tt.method, data)
			if args[1].(*big.Int).Cmp(DefaultDeadline) != 0 {
				t.Errorf("deadline = %s", args[1])
			}
			if !args[2].(bool) {
				t.Error("wethIsEth = false, want true")
			}
		})
	}
}

func TestEncodeBatchRouterSwapWithPermit2(t *testing.T) {
	permit := &entities.Permit2{
		Details: []entities.PermitDetails{{
			Token:      weth,
			Amount:     big.NewInt(1000),
			Expiration: big.NewInt(1735689600),
			Nonce:      big.NewInt(0),
		}},
		Spender:     common.HexToAddress("0x136f1EFcC3f8f88516B9E94110D56FDBfB1778d1"),
		SigDeadline: big.NewInt(1735689600),
		Signature:   hexutil.MustDecode("0x" + string(bytes.Repeat([]byte("ab"), 65))),
	}
	path := twoHopPath(1000, 2000)
	data, err := EncodeBatchRouterSwap(SwapCall{
		Kind:       entities.SwapKindGivenIn,
		Paths:      []entities.Path{path},
		PathLimits: []*big.Int{big.NewInt(1990)},
		Permit2:    permit,
	})
	if err != nil {
		t.Fatalf("EncodeBatchRouterSwap() error: %v", err)
	}
	args := unpackCall(t, batchRouterABI, "permitBatchAndCall", data)

	if sig := args[3].([]byte); len(sig) != 65 {
		t.Errorf("permit2 signature length = %d, want 65", len(sig))
	}
	multicall := args[4].([][]byte)
	if len(multicall) != 1 || !bytes.Equal(multicall[0][:4], batchRouterABI.Methods["swapExactIn"].ID) {
		t.Error("multicallData should hold the swapExactIn call")
	}
}

func TestEncodeErrors(t *testing.T) {
	if _, err := EncodeBatchRouterSwap(SwapCall{}); err == nil {
		t.Error("expected error for an empty plan")
	}
	if _, err := EncodeBatchRouterSwap(SwapCall{Paths: []entities.Path{twoHopPath(1, 1)}}); err == nil {
		t.Error("expected error for missing path limits")
	}
	if _, err := EncodeVaultBatchSwap(SwapCall{Paths: []entities.Path{twoHopPath(1, 1)}}); err == nil {
		t.Error("expected error for missing limits")
	}

	broken := twoHopPath(1, 1)
	broken.Tokens = broken.Tokens[:2]
	_, err := EncodeVaultBatchSwap(SwapCall{Paths: []entities.Path{broken}, LimitIn: big.NewInt(1), LimitOut: big.NewInt(1)})
	if err == nil {
		t.Error("expected error for a path with mismatched pools and tokens")
	}
}
