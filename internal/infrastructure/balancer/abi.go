package balancer

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/infrastructure/contracts"
)

const batchSwapStepComponents = `[
	{"name":"poolId","type":"bytes32"},
	{"name":"assetInIndex","type":"uint256"},
	{"name":"assetOutIndex","type":"uint256"},
	{"name":"amount","type":"uint256"},
	{"name":"userData","type":"bytes"}
]`

const fundManagementComponents = `[
	{"name":"sender","type":"address"},
	{"name":"fromInternalBalance","type":"bool"},
	{"name":"recipient","type":"address"},
	{"name":"toInternalBalance","type":"bool"}
]`

const vaultV2ABIJSON = `[
	{"name":"batchSwap","type":"function","stateMutability":"payable",
	 "inputs":[
		{"name":"kind","type":"uint8"},
		{"name":"swaps","type":"tuple[]","components":` + batchSwapStepComponents + `},
		{"name":"assets","type":"address[]"},
		{"name":"funds","type":"tuple","components":` + fundManagementComponents + `},
		{"name":"limits","type":"int256[]"},
		{"name":"deadline","type":"uint256"}],
	 "outputs":[{"name":"assetDeltas","type":"int256[]"}]},
	{"name":"queryBatchSwap","type":"function","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"kind","type":"uint8"},
		{"name":"swaps","type":"tuple[]","components":` + batchSwapStepComponents + `},
		{"name":"assets","type":"address[]"},
		{"name":"funds","type":"tuple","components":` + fundManagementComponents + `}],
	 "outputs":[{"name":"","type":"int256[]"}]}
]`

const swapPathStepComponents = `[
	{"name":"pool","type":"address"},
	{"name":"tokenOut","type":"address"},
	{"name":"isBuffer","type":"bool"}
]`

const exactInPathComponents = `[
	{"name":"tokenIn","type":"address"},
	{"name":"steps","type":"tuple[]","components":` + swapPathStepComponents + `},
	{"name":"exactAmountIn","type":"uint256"},
	{"name":"minAmountOut","type":"uint256"}
]`

const exactOutPathComponents = `[
	{"name":"tokenIn","type":"address"},
	{"name":"steps","type":"tuple[]","components":` + swapPathStepComponents + `},
	{"name":"maxAmountIn","type":"uint256"},
	{"name":"exactAmountOut","type":"uint256"}
]`

const permitApprovalComponents = `[
	{"name":"token","type":"address"},
	{"name":"owner","type":"address"},
	{"name":"spender","type":"address"},
	{"name":"amount","type":"uint256"},
	{"name":"nonce","type":"uint256"},
	{"name":"deadline","type":"uint256"}
]`

const permitBatchComponents = `[
	{"name":"details","type":"tuple[]","components":[
		{"name":"token","type":"address"},
		{"name":"amount","type":"uint160"},
		{"name":"expiration","type":"uint48"},
		{"name":"nonce","type":"uint48"}]},
	{"name":"spender","type":"address"},
	{"name":"sigDeadline","type":"uint256"}
]`

const batchRouterABIJSON = `[
	{"name":"swapExactIn","type":"function","stateMutability":"payable",
	 "inputs":[
		{"name":"paths","type":"tuple[]","components":` + exactInPathComponents + `},
		{"name":"deadline","type":"uint256"},
		{"name":"wethIsEth","type":"bool"},
		{"name":"userData","type":"bytes"}],
	 "outputs":[
		{"name":"pathAmountsOut","type":"uint256[]"},
		{"name":"tokensOut","type":"address[]"},
		{"name":"amountsOut","type":"uint256[]"}]},
	{"name":"swapExactOut","type":"function","stateMutability":"payable",
	 "inputs":[
		{"name":"paths","type":"tuple[]","components":` + exactOutPathComponents + `},
		{"name":"deadline","type":"uint256"},
		{"name":"wethIsEth","type":"bool"},
		{"name":"userData","type":"bytes"}],
	 "outputs":[
		{"name":"pathAmountsIn","type":"uint256[]"},
		{"name":"tokensIn","type":"address[]"},
		{"name":"amountsIn","type":"uint256[]"}]},
	{"name":"querySwapExactIn","type":"function","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"paths","type":"tuple[]","components":` + exactInPathComponents + `},
		{"name":"sender","type":"address"},
		{"name":"userData","type":"bytes"}],
	 "outputs":[
		{"name":"pathAmountsOut","type":"uint256[]"},
		{"name":"tokensOut","type":"address[]"},
		{"name":"amountsOut","type":"uint256[]"}]},
	{"name":"querySwapExactOut","type":"function","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"paths","type":"tuple[]","components":` + exactOutPathComponents + `},
		{"name":"sender","type":"address"},
		{"name":"userData","type":"bytes"}],
	 "outputs":[
		{"name":"pathAmountsIn","type":"uint256[]"},
		{"name":"tokensIn","type":"address[]"},
		{"name":"amountsIn","type":"uint256[]"}]},
	{"name":"permitBatchAndCall","type":"function","stateMutability":"payable",
	 "inputs":[
		{"name":"permitBatch","type":"tuple[]","components":` + permitApprovalComponents + `},
		{"name":"permitSignatures","type":"bytes[]"},
		{"name":"permit2Batch","type":"tuple","components":` + permitBatchComponents + `},
		{"name":"permit2Signature","type":"bytes"},
		{"name":"multicallData","type":"bytes[]"}],
	 "outputs":[{"name":"results","type":"bytes[]"}]}
]`

var (
	vaultV2ABI     = contracts.MustParseABI(vaultV2ABIJSON)
	batchRouterABI = contracts.MustParseABI(batchRouterABIJSON)
)

// BatchSwapStep mirrors IVault.BatchSwapStep
type BatchSwapStep struct {
	PoolId        [32]byte
	AssetInIndex  *big.Int
	AssetOutIndex *big.Int
	Amount        *big.Int
	UserData      []byte
}

// FundManagement mirrors IVault.FundManagement
type FundManagement struct {
	Sender              common.Address
	FromInternalBalance bool
	Recipient           common.Address
	ToInternalBalance   bool
}

type SwapPathStep struct {
	Pool     common.Address
	TokenOut common.Address
	IsBuffer bool
}

type SwapPathExactAmountIn struct {
	TokenIn       common.Address
	Steps         []SwapPathStep
	ExactAmountIn *big.Int
	MinAmountOut  *big.Int
}

type SwapPathExactAmountOut struct {
	TokenIn        common.Address
	Steps          []SwapPathStep
	MaxAmountIn    *big.Int
	ExactAmountOut *big.Int
}

// PermitApproval mirrors IRouterCommon.PermitApproval
type PermitApproval struct {
	Token    common.Address
	Owner    common.Address
	Spender  common.Address
	Amount   *big.Int
	Nonce    *big.Int
	Deadline *big.Int
}

type PermitDetails struct {
	Token      common.Address
	Amount     *big.Int
	Expiration *big.Int
	Nonce      *big.Int
}

// PermitBatch mirrors IAllowanceTransfer.PermitBatch
type PermitBatch struct {
	Details     []PermitDetails
	Spender     common.Address
	SigDeadline *big.Int
}
