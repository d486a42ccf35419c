package services

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/networks"
	"github.com/bimakw/dex-swap/internal/infrastructure/cache"
)

var (
	testRegistry = networks.DefaultRegistry()

	eth    = entities.NativeAssetAddress
	weth   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	usdc   = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	dai    = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	router = common.HexToAddress("0x136f1EFcC3f8f88516B9E94110D56FDBfB1778d1")
	wallet = common.HexToAddress("0x00000000000000000000000000000000000000a1")

	poolWethUsdc = "0x96646936b91d6b9d7d0c47c496afbf3d6ec7b6f8000200000000000000000019"
)

func mainnetConfig() entities.NetworkConfig {
	cfg, err := testRegistry.GetConfig(entities.ChainMainnet)
	if err != nil {
		panic(err)
	}
	return cfg
}

func wethUsdcPath(in, out int64, version entities.ProtocolVersion) entities.Path {
	return entities.Path{
		Pools:    []string{poolWethUsdc},
		IsBuffer: []bool{false},
		Tokens: []entities.PathToken{
			{Address: weth, Decimals: 18},
			{Address: usdc, Decimals: 6},
		},
		InputAmountRaw:  big.NewInt(in),
		OutputAmountRaw: big.NewInt(out),
		ProtocolVersion: version,
	}
}

// mockOracle implements PathOracle
type mockOracle struct {
	result *entities.SwapPathsResult
	err    error
	calls  int
	last   entities.SwapPathsQuery
}

func (m *mockOracle) SorGetSwapPaths(ctx context.Context, q entities.SwapPathsQuery) (*entities.SwapPathsResult, error) {
	m.calls++
	m.last = q
	return m.result, m.err
}

// mockQuerier implements OnchainQuerier
type mockQuerier struct {
	output entities.OnchainQueryOutput
	err    error
	plan   entities.SwapPlan
}

func (m *mockQuerier) Query(ctx context.Context, cfg entities.NetworkConfig, plan entities.SwapPlan) (entities.OnchainQueryOutput, error) {
	m.plan = plan
	return m.output, m.err
}

// mockRates implements RateSource
type mockRates struct {
	rate  *big.Int
	err   error
	calls int
}

func (m *mockRates) GetRate(ctx context.Context, chainID uint64, provider common.Address) (*big.Int, error) {
	m.calls++
	return m.rate, m.err
}

// mockSimulator implements QuoteSimulator. Each call blocks on the channel
// registered for its amount, when there is one.
type mockSimulator struct {
	mu      sync.Mutex
	gates   map[string]chan struct{}
	started chan string
	err     error
}

func newMockSimulator() *mockSimulator {
	return &mockSimulator{gates: make(map[string]chan struct{}), started: make(chan string, 8)}
}

func (m *mockSimulator) gate(amount string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.gates[amount] = ch
	return ch
}

func (m *mockSimulator) Simulate(ctx context.Context, req entities.SwapRequest) (SwapQuote, error) {
	m.mu.Lock()
	ch := m.gates[req.SwapAmount]
	m.mu.Unlock()
	m.started <- req.SwapAmount
	if ch != nil {
		select {
		case <-ch:
		case <-ctx.Done():
			return SwapQuote{}, ctx.Err()
		}
	}
	if m.err != nil {
		return SwapQuote{}, m.err
	}
	return SwapQuote{
		Request: req,
		Result:  &entities.WrapQuote{QuoteBase: wrapQuoteBase(req.SwapType, req.SwapAmount)},
	}, nil
}

// fetchGate holds fetches until release is closed. Every fetch that starts
// signals started while its buffer has room.
type fetchGate struct {
	release chan struct{}
	started chan struct{}
}

func newFetchGate(buffer int) *fetchGate {
	return &fetchGate{release: make(chan struct{}), started: make(chan struct{}, buffer)}
}

// wait blocks until the gate opens. A nil gate is always open.
func (g *fetchGate) wait(ctx context.Context) error {
	if g == nil {
		return ctx.Err()
	}
	select {
	case g.started <- struct{}{}:
	default:
	}
	select {
	case <-g.release:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mockTokenSource implements TokenSource. Fetches fail with the context's
// error once it has ended.
type mockTokenSource struct {
	mu         sync.Mutex
	tokens     []entities.Token
	prices     []entities.TokenPrice
	err        error
	gate       *fetchGate
	tokenCalls int
	priceCalls int
}

func (m *mockTokenSource) Tokens(ctx context.Context, chain entities.Chain) ([]entities.Token, error) {
	m.mu.Lock()
	m.tokenCalls++
	gate := m.gate
	m.mu.Unlock()
	if err := gate.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.tokens, nil
}

func (m *mockTokenSource) TokenPrices(ctx context.Context, chain entities.Chain) ([]entities.TokenPrice, error) {
	m.mu.Lock()
	m.priceCalls++
	gate := m.gate
	m.mu.Unlock()
	if err := gate.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.prices, nil
}

func (m *mockTokenSource) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockTokenSource) calls() (tokens, prices int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenCalls, m.priceCalls
}

// mockFxSource implements FxRatesSource
type mockFxSource struct {
	mu    sync.Mutex
	rates entities.FxRates
	err   error
	gate  *fetchGate
	calls int
}

func (m *mockFxSource) Latest(ctx context.Context) (entities.FxRates, error) {
	m.mu.Lock()
	m.calls++
	gate := m.gate
	m.mu.Unlock()
	if err := gate.wait(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rates, m.err
}

func (m *mockFxSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// missCounter wraps a Cache and signals every read that misses
type missCounter struct {
	cache.Cache
	misses chan struct{}
}

func (c *missCounter) Get(ctx context.Context, key string, dest any) (bool, error) {
	found, err := c.Cache.Get(ctx, key, dest)
	if err == nil && !found {
		c.misses <- struct{}{}
	}
	return found, err
}

// mockBackend implements ChainBackend and records what was sent
type mockBackend struct {
	account   common.Address
	allowance *big.Int
	callErr   error
	gas       uint64
	gasErr    error
	sendErr   error
	waitErr   error

	calls    []ethereum.CallMsg
	sent     []entities.TransactionPayload
	gasLimit []uint64
	waited   []int
}

func (m *mockBackend) Account() common.Address {
	return m.account
}

var allowanceSelector = []byte{0xdd, 0x62, 0xed, 0x3e}

func (m *mockBackend) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	m.calls = append(m.calls, msg)
	if m.callErr != nil {
		return nil, m.callErr
	}
	if len(msg.Data) >= 4 && string(msg.Data[:4]) == string(allowanceSelector) {
		if m.allowance == nil {
			return nil, errors.New("allowance unavailable")
		}
		return common.LeftPadBytes(m.allowance.Bytes(), 32), nil
	}
	// approve returns true
	return common.LeftPadBytes([]byte{1}, 32), nil
}

func (m *mockBackend) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return m.gas, m.gasErr
}

func (m *mockBackend) Send(ctx context.Context, payload entities.TransactionPayload, gasLimit uint64) (common.Hash, error) {
	if m.sendErr != nil {
		return common.Hash{}, m.sendErr
	}
	m.sent = append(m.sent, payload)
	m.gasLimit = append(m.gasLimit, gasLimit)
	return common.BigToHash(big.NewInt(int64(len(m.sent)))), nil
}

func (m *mockBackend) WaitForConfirmations(ctx context.Context, hash common.Hash, confirmations int) (*types.Receipt, error) {
	m.waited = append(m.waited, confirmations)
	if m.waitErr != nil {
		return nil, m.waitErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}, nil
}
