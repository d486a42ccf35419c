package contracts

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

type mockCaller struct {
	result []byte
	err    error
	lastTo common.Address
	data   []byte
}

func (m *mockCaller) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	if msg.To != nil {
		m.lastTo = *msg.To
	}
	m.data = msg.Data
	return m.result, m.err
}

type staticCallers struct {
	caller ContractCaller
}

func (s staticCallers) Caller(ctx context.Context, chainID uint64) (ContractCaller, error) {
	return s.caller, nil
}

func selector(data []byte) string {
	if len(data) < 4 {
		return ""
	}
	return hex.EncodeToString(data[:4])
}

func word(v *big.Int) []byte {
	return common.LeftPadBytes(v.Bytes(), 32)
}

func TestSelectors(t *testing.T) {
	amount := big.NewInt(1000)
	spender := common.HexToAddress("0x0000000000000000000000000000000000000abc")
	erc20 := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")

	tests := []struct {
		name string
		pack func() ([]byte, error)
		want string
	}{
		{"approve", func() ([]byte, error) { return EncodeApprove(erc20, spender, amount) }, "095ea7b3"},
		{"usdt approve", func() ([]byte, error) { return EncodeApprove(entities.USDTMainnet, spender, amount) }, "095ea7b3"},
		{"allowance", func() ([]byte, error) { return EncodeAllowance(spender, spender) }, "dd62ed3e"},
		{"deposit", EncodeDeposit, "d0e30db0"},
		{"withdraw", func() ([]byte, error) { return EncodeWithdraw(amount) }, "2e1a7d4d"},
		{"wrap", func() ([]byte, error) { return EncodeWstETHWrap(amount) }, "ea598cb0"},
		{"unwrap", func() ([]byte, error) { return EncodeWstETHUnwrap(amount) }, "de0e9a3e"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.pack()
			if err != nil {
				t.Fatalf("pack error: %v", err)
			}
			if got := selector(data); got != tt.want {
				t.Errorf("selector = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMaxUint256(t *testing.T) {
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	if MaxUint256.Cmp(want) != 0 {
		t.Errorf("MaxUint256 = %s, want %s", MaxUint256, want)
	}
}

func TestDecodeApproveResult(t *testing.T) {
	dai := common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")

	if err := DecodeApproveResult(dai, word(big.NewInt(1))); err != nil {
		t.Errorf("DecodeApproveResult(true) error: %v", err)
	}
	if err := DecodeApproveResult(dai, word(big.NewInt(0))); err == nil {
		t.Error("DecodeApproveResult(false) should fail")
	}
	if err := DecodeApproveResult(dai, nil); err == nil {
		t.Error("DecodeApproveResult(empty) should fail for a standard token")
	}
	if err := DecodeApproveResult(entities.USDTMainnet, nil); err != nil {
		t.Errorf("USDT approve with no return data should pass, got %v", err)
	}
}

func TestRateReaderGetRate(t *testing.T) {
	rate, _ := new(big.Int).SetString("1180000000000000000", 10)
	provider := common.HexToAddress("0x72d07d7dca67b8a406ad1ec34ce969c90bfee768")
	caller := &mockCaller{result: word(rate)}

	got, err := NewRateReader(staticCallers{caller}).GetRate(context.Background(), 1, provider)
	if err != nil {
		t.Fatalf("GetRate() error: %v", err)
	}
	if got.Cmp(rate) != 0 {
		t.Errorf("GetRate() = %s, want %s", got, rate)
	}
	if caller.lastTo != provider {
		t.Errorf("GetRate() called %s, want %s", caller.lastTo.Hex(), provider.Hex())
	}
	if selector(caller.data) != "679aefce" {
		t.Errorf("getRate selector = %s", selector(caller.data))
	}

	failing := &mockCaller{err: errors.New("execution reverted")}
	if _, err := NewRateReader(staticCallers{failing}).GetRate(context.Background(), 1, provider); err == nil {
		t.Error("GetRate() should propagate call errors")
	}
}

func TestAllowance(t *testing.T) {
	caller := &mockCaller{result: word(big.NewInt(42))}
	got, err := Allowance(context.Background(), caller, common.Address{1}, common.Address{2}, common.Address{3})
	if err != nil {
		t.Fatalf("Allowance() error: %v", err)
	}
	if got.Int64() != 42 {
		t.Errorf("Allowance() = %s, want 42", got)
	}
}
