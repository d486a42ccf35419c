package entities

import "github.com/ethereum/go-ethereum/common"

// Chain is the chain name used by the Balancer API (GqlChain)
type Chain string

const (
	ChainMainnet   Chain = "MAINNET"
	ChainOptimism  Chain = "OPTIMISM"
	ChainGnosis    Chain = "GNOSIS"
	ChainPolygon   Chain = "POLYGON"
	ChainSonic     Chain = "SONIC"
	ChainFantom    Chain = "FANTOM"
	ChainFraxtal   Chain = "FRAXTAL"
	ChainZkevm     Chain = "ZKEVM"
	ChainBase      Chain = "BASE"
	ChainMode      Chain = "MODE"
	ChainArbitrum  Chain = "ARBITRUM"
	ChainAvalanche Chain = "AVALANCHE"
	ChainSepolia   Chain = "SEPOLIA"
)

// ProtocolVersion is the Balancer protocol version a route executes on
type ProtocolVersion int

const (
	ProtocolV1 ProtocolVersion = 1
	ProtocolV2 ProtocolVersion = 2
	ProtocolV3 ProtocolVersion = 3
)

// WrapHandler identifies the provider that executes a liquid staking wrap
type WrapHandler string

const (
	WrapHandlerLido WrapHandler = "LIDO"
)

// Wrapper is a base token / wrapped token pair executed by a provider contract
type Wrapper struct {
	BaseToken    common.Address `json:"baseToken"`
	WrappedToken common.Address `json:"wrappedToken"`
	Handler      WrapHandler    `json:"swapHandler"`
	RateProvider common.Address `json:"rateProvider"`
}

type NativeAsset struct {
	Name     string         `json:"name"`
	Address  common.Address `json:"address"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
}

type BalancerContracts struct {
	VaultV2     common.Address `json:"vaultV2"`
	VaultV3     common.Address `json:"vaultV3,omitempty"`
	Router      common.Address `json:"router,omitempty"`
	BatchRouter common.Address `json:"batchRouter,omitempty"`
}

type ContractsConfig struct {
	Multicall3 common.Address    `json:"multicall3"`
	Balancer   BalancerContracts `json:"balancer"`
	Permit2    common.Address    `json:"permit2,omitempty"`
}

// NetworkConfig is the static configuration of one supported chain
type NetworkConfig struct {
	ChainID            uint64          `json:"chainId"`
	Name               string          `json:"name"`
	ShortName          string          `json:"shortName"`
	Chain              Chain           `json:"chain"`
	NativeAsset        NativeAsset     `json:"nativeAsset"`
	WrappedNativeAsset common.Address  `json:"wNativeAsset"`
	SupportedWrappers  []Wrapper       `json:"supportedWrappers,omitempty"`
	MinConfirmations   int             `json:"minConfirmations,omitempty"`
	Contracts          ContractsConfig `json:"contracts"`
}

// Confirmations returns the number of confirmations to wait for, at least one
func (c NetworkConfig) Confirmations() int {
	if c.MinConfirmations <= 0 {
		return 1
	}
	return c.MinConfirmations
}

func (c NetworkConfig) IsNativeAsset(addr common.Address) bool {
	return addr == c.NativeAsset.Address
}

func (c NetworkConfig) IsWrappedNativeAsset(addr common.Address) bool {
	return addr == c.WrappedNativeAsset
}

// IsNativeOrWrapped reports whether addr is the native asset or its canonical wrapped form
func (c NetworkConfig) IsNativeOrWrapped(addr common.Address) bool {
	return c.IsNativeAsset(addr) || c.IsWrappedNativeAsset(addr)
}

// WrapperFor returns the registered wrapper matching the pair in either direction
func (c NetworkConfig) WrapperFor(tokenIn, tokenOut common.Address) (Wrapper, bool) {
	for _, w := range c.SupportedWrappers {
		if SameAddresses([]common.Address{w.BaseToken, w.WrappedToken}, []common.Address{tokenIn, tokenOut}) {
			return w, true
		}
	}
	return Wrapper{}, false
}

// WrapTypeFor classifies the pair as a wrap or unwrap. ok is false when the pair is neither.
func (c NetworkConfig) WrapTypeFor(tokenIn, tokenOut common.Address) (WrapType, bool) {
	switch {
	case c.IsNativeAsset(tokenIn) && c.IsWrappedNativeAsset(tokenOut):
		return WrapTypeWrap, true
	case c.IsWrappedNativeAsset(tokenIn) && c.IsNativeAsset(tokenOut):
		return WrapTypeUnwrap, true
	}
	if w, ok := c.WrapperFor(tokenIn, tokenOut); ok {
		if w.BaseToken == tokenIn {
			return WrapTypeWrap, true
		}
		return WrapTypeUnwrap, true
	}
	return "", false
}

// VaultFor returns the vault address for a protocol version
func (c NetworkConfig) VaultFor(version ProtocolVersion) common.Address {
	if version == ProtocolV3 {
		return c.Contracts.Balancer.VaultV3
	}
	return c.Contracts.Balancer.VaultV2
}
