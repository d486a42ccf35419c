package networks

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

func TestDefaultRegistrySupportedChainIDs(t *testing.T) {
	r := DefaultRegistry()
	want := []uint64{1, 10, 100, 137, 146, 250, 252, 1101, 8453, 34443, 42161, 43114, 11155111}

	configs := r.Configs()
	if len(configs) != len(want) {
		t.Fatalf("Configs() returned %d networks, want %d", len(configs), len(want))
	}
	for i, id := range want {
		if configs[i].ChainID != id {
			t.Errorf("Configs()[%d].ChainID = %d, want %d", i, configs[i].ChainID, id)
		}
		if configs[i].NativeAsset.Address != entities.NativeAssetAddress {
			t.Errorf("chain %d native asset = %s", id, configs[i].NativeAsset.Address.Hex())
		}
		if configs[i].WrappedNativeAsset == (common.Address{}) {
			t.Errorf("chain %d has no wrapped native asset", id)
		}
	}
}

func TestRegistryLookups(t *testing.T) {
	r := DefaultRegistry()

	sonic, err := r.GetConfig(entities.ChainSonic)
	if err != nil {
		t.Fatalf("GetConfig(SONIC) error: %v", err)
	}
	if sonic.ChainID != 146 {
		t.Errorf("SONIC chain id = %d, want 146", sonic.ChainID)
	}
	if sonic.WrappedNativeAsset != common.HexToAddress("0x039e2fb66102314ce7b64ce5ce3e5183bc94ad38") {
		t.Errorf("SONIC wrapped native = %s", sonic.WrappedNativeAsset.Hex())
	}

	fraxtal, err := r.GetConfigByChainID(252)
	if err != nil || fraxtal.Chain != entities.ChainFraxtal {
		t.Errorf("GetConfigByChainID(252) = %s, %v", fraxtal.Chain, err)
	}

	if _, err := r.GetConfig("NARNIA"); !errors.Is(err, ErrUnsupportedChain) {
		t.Errorf("GetConfig(unknown) error = %v, want ErrUnsupportedChain", err)
	}
	if _, err := r.GetConfigByChainID(999); !errors.Is(err, ErrUnsupportedChain) {
		t.Errorf("GetConfigByChainID(unknown) error = %v, want ErrUnsupportedChain", err)
	}

	if chain, ok := r.ChainForID(250); !ok || chain != entities.ChainFantom {
		t.Errorf("ChainForID(250) = %s, %v", chain, ok)
	}
}

func TestMinConfirmations(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		chainID uint64
		want    int
	}{
		{1, 1},
		{137, 13},
		{424242, 1},
	}

	for _, tt := range tests {
		if got := r.MinConfirmations(tt.chainID); got != tt.want {
			t.Errorf("MinConfirmations(%d) = %d, want %d", tt.chainID, got, tt.want)
		}
	}
}

func TestMainnetWrapClassification(t *testing.T) {
	cfg, _ := DefaultRegistry().GetConfig(entities.ChainMainnet)
	weth := cfg.WrappedNativeAsset
	eth := entities.NativeAssetAddress

	tests := []struct {
		name     string
		in, out  common.Address
		want     entities.WrapType
		wantWrap bool
	}{
		{"eth to weth", eth, weth, entities.WrapTypeWrap, true},
		{"weth to eth", weth, eth, entities.WrapTypeUnwrap, true},
		{"steth to wsteth", LidoStETH, LidoWstETH, entities.WrapTypeWrap, true},
		{"wsteth to steth", LidoWstETH, LidoStETH, entities.WrapTypeUnwrap, true},
		{"eth to eth", eth, eth, "", false},
		{"weth to steth", weth, LidoStETH, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := cfg.WrapTypeFor(tt.in, tt.out)
			if ok != tt.wantWrap || got != tt.want {
				t.Errorf("WrapTypeFor() = %q, %v, want %q, %v", got, ok, tt.want, tt.wantWrap)
			}
		})
	}

	w, ok := cfg.WrapperFor(LidoWstETH, LidoStETH)
	if !ok || w.Handler != entities.WrapHandlerLido || w.RateProvider != LidoRateProvider {
		t.Errorf("WrapperFor() = %+v, %v", w, ok)
	}
}

func TestVaultFor(t *testing.T) {
	cfg, _ := DefaultRegistry().GetConfig(entities.ChainSepolia)
	if got := cfg.VaultFor(entities.ProtocolV3); got != common.HexToAddress("0x89aa28a8D2B327cD9dB4aDc0f259D757F000AE66") {
		t.Errorf("VaultFor(v3) = %s", got.Hex())
	}
	if got := cfg.VaultFor(entities.ProtocolV2); got != balancerVaultV2 {
		t.Errorf("VaultFor(v2) = %s", got.Hex())
	}
}
