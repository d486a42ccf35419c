package entities

import "github.com/ethereum/go-ethereum/common"

// Hop represents a single pool step in a route reported by the path oracle
type Hop struct {
	Pool           common.Address `json:"pool"`
	PoolSymbol     string         `json:"poolSymbol,omitempty"`
	TokenIn        common.Address `json:"tokenIn"`
	TokenOut       common.Address `json:"tokenOut"`
	TokenInAmount  string         `json:"tokenInAmount"`
	TokenOutAmount string         `json:"tokenOutAmount"`
}

// Route represents one share of the swap from tokenIn to tokenOut
type Route struct {
	Share          string `json:"share"`
	TokenInAmount  string `json:"tokenInAmount"`
	TokenOutAmount string `json:"tokenOutAmount"`
	Hops           []Hop  `json:"hops"`
}

// SwapPathsQuery is the path oracle request
type SwapPathsQuery struct {
	Chain      Chain
	TokenIn    common.Address
	TokenOut   common.Address
	SwapAmount string
	SwapType   SwapType
	PoolIDs    []string
}

// SwapPathsResult is the path oracle response with raw amounts decoded
type SwapPathsResult struct {
	Paths                  []Path          `json:"paths"`
	Routes                 []Route         `json:"routes"`
	ProtocolVersion        ProtocolVersion `json:"protocolVersion"`
	ReturnAmount           string          `json:"returnAmount"`
	EffectivePrice         string          `json:"effectivePrice"`
	EffectivePriceReversed string          `json:"effectivePriceReversed"`
}

// HopCount returns the number of hops on the first route
func (r *SwapPathsResult) HopCount() int {
	if r == nil || len(r.Routes) == 0 {
		return 0
	}
	return len(r.Routes[0].Hops)
}
