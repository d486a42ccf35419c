package balancer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

const DefaultAPIURL = "https://api-v3.balancer.fi/"

const sorGetSwapPathsQuery = `query GetSORSwaps($chain: GqlChain!, $swapType: GqlSorSwapType!, $swapAmount: AmountHumanReadable!, $tokenIn: String!, $tokenOut: String!, $poolIds: [String!]) {
  swaps: sorGetSwapPaths(chain: $chain, swapAmount: $swapAmount, swapType: $swapType, tokenIn: $tokenIn, tokenOut: $tokenOut, poolIds: $poolIds) {
    effectivePrice
    effectivePriceReversed
    returnAmount
    protocolVersion
    paths {
      inputAmountRaw
      outputAmountRaw
      pools
      isBuffer
      protocolVersion
      tokens { address decimals }
    }
    routes {
      share
      tokenInAmount
      tokenOutAmount
      hops {
        pool { symbol address }
        tokenIn
        tokenOut
        tokenInAmount
        tokenOutAmount
      }
    }
  }
}`

const tokensQuery = `query GetTokens($chains: [GqlChain!]!) {
  tokens: tokenGetTokens(chains: $chains) {
    address
    name
    symbol
    decimals
    chainId
    chain
    logoURI
  }
}`

const tokenPricesQuery = `query GetTokenPrices($chains: [GqlChain!]!) {
  tokenGetCurrentPrices(chains: $chains) {
    address
    chain
    price
  }
}`

// APIClient talks to the Balancer GraphQL API: the swap path oracle and the
// token list and price source.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewAPIClient(baseURL string, timeout time.Duration) *APIClient {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &APIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// errGraphQL carries the messages of a GraphQL errors array
type errGraphQL struct {
	messages []string
}

func (e *errGraphQL) Error() string {
	return "graphql: " + strings.Join(e.messages, "; ")
}

func (c *APIClient) do(ctx context.Context, query string, variables map[string]any, dest any) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encoding graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, c.baseURL, string(body))
	}

	var gql graphqlResponse
	if err := json.Unmarshal(body, &gql); err != nil {
		return fmt.Errorf("parsing graphql response: %w", err)
	}
	if len(gql.Errors) > 0 {
		msgs := make([]string, len(gql.Errors))
		for i, e := range gql.Errors {
			msgs[i] = e.Message
		}
		return &errGraphQL{messages: msgs}
	}
	if err := json.Unmarshal(gql.Data, dest); err != nil {
		return fmt.Errorf("parsing graphql data: %w", err)
	}
	return nil
}

type apiPathToken struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
}

type apiPath struct {
	InputAmountRaw  string         `json:"inputAmountRaw"`
	OutputAmountRaw string         `json:"outputAmountRaw"`
	Pools           []string       `json:"pools"`
	IsBuffer        []bool         `json:"isBuffer"`
	ProtocolVersion int            `json:"protocolVersion"`
	Tokens          []apiPathToken `json:"tokens"`
}

type apiHop struct {
	Pool struct {
		Symbol  string `json:"symbol"`
		Address string `json:"address"`
	} `json:"pool"`
	TokenIn        string `json:"tokenIn"`
	TokenOut       string `json:"tokenOut"`
	TokenInAmount  string `json:"tokenInAmount"`
	TokenOutAmount string `json:"tokenOutAmount"`
}

type apiRoute struct {
	Share          json.Number `json:"share"`
	TokenInAmount  string      `json:"tokenInAmount"`
	TokenOutAmount string      `json:"tokenOutAmount"`
	Hops           []apiHop    `json:"hops"`
}

type apiSwapPaths struct {
	EffectivePrice         string     `json:"effectivePrice"`
	EffectivePriceReversed string     `json:"effectivePriceReversed"`
	ReturnAmount           string     `json:"returnAmount"`
	ProtocolVersion        int        `json:"protocolVersion"`
	Paths                  []apiPath  `json:"paths"`
	Routes                 []apiRoute `json:"routes"`
}

// SorGetSwapPaths asks the smart order router for the best paths of a swap.
// A request with no viable path fails with ErrNoRouteFound, any transport or
// API failure with ErrOracleTransport.
func (c *APIClient) SorGetSwapPaths(ctx context.Context, q entities.SwapPathsQuery) (*entities.SwapPathsResult, error) {
	variables := map[string]any{
		"chain":      q.Chain,
		"swapType":   q.SwapType,
		"swapAmount": q.SwapAmount,
		"tokenIn":    strings.ToLower(q.TokenIn.Hex()),
		"tokenOut":   strings.ToLower(q.TokenOut.Hex()),
	}
	if len(q.PoolIDs) > 0 {
		variables["poolIds"] = q.PoolIDs
	}

	var data struct {
		Swaps *apiSwapPaths `json:"swaps"`
	}
	if err := c.do(ctx, sorGetSwapPathsQuery, variables, &data); err != nil {
		if strings.Contains(err.Error(), entities.NoPathMessage) {
			return nil, entities.NewSwapError(entities.KindNoRouteFound, entities.NoPathMessage, err)
		}
		return nil, entities.NewSwapError(entities.KindOracleTransport, "path oracle request failed", err)
	}
	if data.Swaps == nil || len(data.Swaps.Paths) == 0 {
		return nil, entities.NewSwapError(entities.KindNoRouteFound, entities.NoPathMessage, nil)
	}
	return decodeSwapPaths(data.Swaps)
}

func decodeSwapPaths(raw *apiSwapPaths) (*entities.SwapPathsResult, error) {
	result := &entities.SwapPathsResult{
		ProtocolVersion:        entities.ProtocolVersion(raw.ProtocolVersion),
		ReturnAmount:           raw.ReturnAmount,
		EffectivePrice:         raw.EffectivePrice,
		EffectivePriceReversed: raw.EffectivePriceReversed,
	}

	for _, p := range raw.Paths {
		in, ok := new(big.Int).SetString(p.InputAmountRaw, 10)
		if !ok {
			return nil, entities.NewSwapError(entities.KindOracleTransport, fmt.Sprintf("invalid inputAmountRaw %q", p.InputAmountRaw), nil)
		}
		out, ok := new(big.Int).SetString(p.OutputAmountRaw, 10)
		if !ok {
			return nil, entities.NewSwapError(entities.KindOracleTransport, fmt.Sprintf("invalid outputAmountRaw %q", p.OutputAmountRaw), nil)
		}
		tokens := make([]entities.PathToken, len(p.Tokens))
		for i, t := range p.Tokens {
			tokens[i] = entities.PathToken{Address: common.HexToAddress(t.Address), Decimals: t.Decimals}
		}
		version := entities.ProtocolVersion(p.ProtocolVersion)
		if version == 0 {
			version = result.ProtocolVersion
		}
		result.Paths = append(result.Paths, entities.Path{
			Pools:           p.Pools,
			IsBuffer:        p.IsBuffer,
			Tokens:          tokens,
			InputAmountRaw:  in,
			OutputAmountRaw: out,
			ProtocolVersion: version,
		})
	}

	for _, r := range raw.Routes {
		route := entities.Route{
			Share:          r.Share.String(),
			TokenInAmount:  r.TokenInAmount,
			TokenOutAmount: r.TokenOutAmount,
		}
		for _, h := range r.Hops {
			route.Hops = append(route.Hops, entities.Hop{
				Pool:           common.HexToAddress(h.Pool.Address),
				PoolSymbol:     h.Pool.Symbol,
				TokenIn:        common.HexToAddress(h.TokenIn),
				TokenOut:       common.HexToAddress(h.TokenOut),
				TokenInAmount:  h.TokenInAmount,
				TokenOutAmount: h.TokenOutAmount,
			})
		}
		result.Routes = append(result.Routes, route)
	}
	return result, nil
}

type apiToken struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	ChainID  uint64 `json:"chainId"`
	Chain    string `json:"chain"`
	LogoURI  string `json:"logoURI"`
}

// Tokens returns the token list of a chain
func (c *APIClient) Tokens(ctx context.Context, chain entities.Chain) ([]entities.Token, error) {
	var data struct {
		Tokens []apiToken `json:"tokens"`
	}
	if err := c.do(ctx, tokensQuery, map[string]any{"chains": []entities.Chain{chain}}, &data); err != nil {
		return nil, fmt.Errorf("fetching tokens for %s: %w", chain, err)
	}

	tokens := make([]entities.Token, 0, len(data.Tokens))
	for _, t := range data.Tokens {
		if !common.IsHexAddress(t.Address) {
			continue
		}
		tokens = append(tokens, entities.Token{
			Address:  common.HexToAddress(t.Address),
			Chain:    entities.Chain(t.Chain),
			ChainID:  t.ChainID,
			Symbol:   t.Symbol,
			Name:     t.Name,
			Decimals: t.Decimals,
			LogoURI:  t.LogoURI,
		})
	}
	return tokens, nil
}

type apiTokenPrice struct {
	Address string      `json:"address"`
	Chain   string      `json:"chain"`
	Price   json.Number `json:"price"`
}

// TokenPrices returns the current USD prices of a chain's tokens
func (c *APIClient) TokenPrices(ctx context.Context, chain entities.Chain) ([]entities.TokenPrice, error) {
	var data struct {
		Prices []apiTokenPrice `json:"tokenGetCurrentPrices"`
	}
	if err := c.do(ctx, tokenPricesQuery, map[string]any{"chains": []entities.Chain{chain}}, &data); err != nil {
		return nil, fmt.Errorf("fetching token prices for %s: %w", chain, err)
	}

	prices := make([]entities.TokenPrice, 0, len(data.Prices))
	for _, p := range data.Prices {
		price, err := decimal.NewFromString(p.Price.String())
		if err != nil || !common.IsHexAddress(p.Address) {
			continue
		}
		prices = append(prices, entities.TokenPrice{
			Address: common.HexToAddress(p.Address),
			Chain:   entities.Chain(p.Chain),
			Price:   price,
		})
	}
	return prices, nil
}
