package networks

import "github.com/bimakw/dex-swap/internal/domain/entities"

var (
	balancerVaultV2 = addr("0xBA12222222228d8Ba445958a75a0704d566BF2C8")
	balancerVaultV3 = addr("0xbA1333333333a1BA1108E8412f11850A5C319bA9")
	permit2         = addr("0x000000000022D473030F116dDEE9F6B43aC78BA3")
	multicall3      = addr("0xcA11bde05977b3631167028862bE2a173976CA11")
)

// Lido stETH / wstETH on Ethereum mainnet
var (
	LidoStETH        = addr("0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84")
	LidoWstETH       = addr("0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0")
	LidoRateProvider = addr("0x72d07d7dca67b8a406ad1ec34ce969c90bfee768")
)

func nativeAsset(name, symbol string) entities.NativeAsset {
	return entities.NativeAsset{
		Name:     name,
		Address:  entities.NativeAssetAddress,
		Symbol:   symbol,
		Decimals: 18,
	}
}

func defaultConfigs() []entities.NetworkConfig {
	return []entities.NetworkConfig{
		{
			ChainID:            1,
			Name:               "Ethereum Mainnet",
			ShortName:          "Ethereum",
			Chain:              entities.ChainMainnet,
			NativeAsset:        nativeAsset("Ether", "ETH"),
			WrappedNativeAsset: addr("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
			SupportedWrappers: []entities.Wrapper{
				{
					BaseToken:    LidoStETH,
					WrappedToken: LidoWstETH,
					Handler:      entities.WrapHandlerLido,
					RateProvider: LidoRateProvider,
				},
			},
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer: entities.BalancerContracts{
					VaultV2:     balancerVaultV2,
					VaultV3:     balancerVaultV3,
					Router:      addr("0x5C6fb490BDFD3246EB0bB062c168DeCAF4bD9FDd"),
					BatchRouter: addr("0x136f1EFcC3f8f88516B9E94110D56FDBfB1778d1"),
				},
				Permit2: permit2,
			},
		},
		{
			ChainID:            10,
			Name:               "Optimism Mainnet",
			ShortName:          "Optimism",
			Chain:              entities.ChainOptimism,
			NativeAsset:        nativeAsset("Ether", "ETH"),
			WrappedNativeAsset: addr("0x4200000000000000000000000000000000000006"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer:   entities.BalancerContracts{VaultV2: balancerVaultV2},
				Permit2:    permit2,
			},
		},
		{
			ChainID:            100,
			Name:               "Gnosis",
			ShortName:          "Gnosis",
			Chain:              entities.ChainGnosis,
			NativeAsset:        nativeAsset("xDAI", "xDAI"),
			WrappedNativeAsset: addr("0xe91D153E0b41518A2Ce8Dd3D7944Fa863463a97d"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer: entities.BalancerContracts{
					VaultV2:     balancerVaultV2,
					VaultV3:     balancerVaultV3,
					Router:      addr("0x84813aA3e079A665C0B80F944427eE83cBA63617"),
					BatchRouter: addr("0xe2fa4e1d17725e72dcdAfe943Ecf45dF4B9E285b"),
				},
				Permit2: permit2,
			},
		},
		{
			ChainID:            137,
			Name:               "Polygon Mainnet",
			ShortName:          "Polygon",
			Chain:              entities.ChainPolygon,
			NativeAsset:        nativeAsset("Matic", "MATIC"),
			WrappedNativeAsset: addr("0x0d500B1d8E8eF31E21C99d1Db9A6444d3ADf1270"),
			MinConfirmations:   13,
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer:   entities.BalancerContracts{VaultV2: balancerVaultV2},
				Permit2:    permit2,
			},
		},
		{
			ChainID:            146,
			Name:               "Sonic",
			ShortName:          "Sonic",
			Chain:              entities.ChainSonic,
			NativeAsset:        nativeAsset("Sonic", "S"),
			WrappedNativeAsset: addr("0x039e2fb66102314ce7b64ce5ce3e5183bc94ad38"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer: entities.BalancerContracts{
					VaultV2:     addr("0xba12222222228d8ba445958a75a0704d566bf2c8"),
					VaultV3:     balancerVaultV3,
					Router:      addr("0x6077b9801B5627a65A5eeE70697C793751D1a71c"),
					BatchRouter: addr("0x4232e5EEaA16Bcf483d93BEA469296B4EeF22503"),
				},
				Permit2: permit2,
			},
		},
		{
			ChainID:            250,
			Name:               "Fantom",
			ShortName:          "Fantom",
			Chain:              entities.ChainFantom,
			NativeAsset:        nativeAsset("Fantom", "FTM"),
			WrappedNativeAsset: addr("0x21be370d5312f44cb42ce377bc9b8a0cef1a4c83"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer:   entities.BalancerContracts{VaultV2: addr("0x20dd72Ed959b6147912C2e529F0a0C651c33c9ce")},
			},
		},
		{
			ChainID:            252,
			Name:               "Fraxtal",
			ShortName:          "Fraxtal",
			Chain:              entities.ChainFraxtal,
			NativeAsset:        nativeAsset("Frax Ether", "frxETH"),
			WrappedNativeAsset: addr("0xFC00000000000000000000000000000000000006"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer:   entities.BalancerContracts{VaultV2: balancerVaultV2},
			},
		},
		{
			ChainID:            1101,
			Name:               "Polygon zkEVM",
			ShortName:          "zkEVM",
			Chain:              entities.ChainZkevm,
			NativeAsset:        nativeAsset("Ether", "ETH"),
			WrappedNativeAsset: addr("0x4F9A0e7FD2Bf6067db6994CF12E4495Df938E6e9"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer:   entities.BalancerContracts{VaultV2: balancerVaultV2},
			},
		},
		{
			ChainID:            8453,
			Name:               "Base",
			ShortName:          "Base",
			Chain:              entities.ChainBase,
			NativeAsset:        nativeAsset("Ether", "ETH"),
			WrappedNativeAsset: addr("0x4200000000000000000000000000000000000006"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer: entities.BalancerContracts{
					VaultV2:     balancerVaultV2,
					VaultV3:     balancerVaultV3,
					Router:      addr("0x3f170631ed9821Ca51A59D996aB095162438DC10"),
					BatchRouter: addr("0x85a80afee867aDf27B50BdB7b76DA70f1E853062"),
				},
				Permit2: permit2,
			},
		},
		{
			ChainID:            34443,
			Name:               "Mode",
			ShortName:          "Mode",
			Chain:              entities.ChainMode,
			NativeAsset:        nativeAsset("Ether", "ETH"),
			WrappedNativeAsset: addr("0x4200000000000000000000000000000000000006"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer:   entities.BalancerContracts{VaultV2: balancerVaultV2},
			},
		},
		{
			ChainID:            42161,
			Name:               "Arbitrum One",
			ShortName:          "Arbitrum",
			Chain:              entities.ChainArbitrum,
			NativeAsset:        nativeAsset("Ether", "ETH"),
			WrappedNativeAsset: addr("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer: entities.BalancerContracts{
					VaultV2:     balancerVaultV2,
					VaultV3:     balancerVaultV3,
					Router:      addr("0xEAedc32a51c510d35ebC11088fD5fF2b47aACF2E"),
					BatchRouter: addr("0xaD89051bEd8d96f045E8912aE1672c6C0bF8a85E"),
				},
				Permit2: permit2,
			},
		},
		{
			ChainID:            43114,
			Name:               "Avalanche",
			ShortName:          "Avalanche",
			Chain:              entities.ChainAvalanche,
			NativeAsset:        nativeAsset("Avalanche", "AVAX"),
			WrappedNativeAsset: addr("0xB31f66AA3C1e785363F0875A1B74E27b85FD66c7"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer:   entities.BalancerContracts{VaultV2: balancerVaultV2},
				Permit2:    permit2,
			},
		},
		{
			ChainID:            11155111,
			Name:               "Sepolia",
			ShortName:          "Sepolia",
			Chain:              entities.ChainSepolia,
			NativeAsset:        nativeAsset("Ether", "ETH"),
			WrappedNativeAsset: addr("0x7b79995e5f793A07Bc00c21412e50Ecae098E7f9"),
			Contracts: entities.ContractsConfig{
				Multicall3: multicall3,
				Balancer: entities.BalancerContracts{
					VaultV2:     balancerVaultV2,
					VaultV3:     addr("0x89aa28a8D2B327cD9dB4aDc0f259D757F000AE66"),
					Router:      addr("0x0BF61f706105EA44694f2e92986bD01C39930280"),
					BatchRouter: addr("0xC85b652685567C1B074e8c0D4389f83a2E458b1C"),
				},
				Permit2: permit2,
			},
		},
	}
}
