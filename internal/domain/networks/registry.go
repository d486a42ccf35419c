package networks

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

var ErrUnsupportedChain = errors.New("unsupported chain")

// Registry is a read-only lookup of network configurations
type Registry struct {
	byChain   map[entities.Chain]entities.NetworkConfig
	byChainID map[uint64]entities.NetworkConfig
}

// NewRegistry indexes configs by chain name and chain id
func NewRegistry(configs ...entities.NetworkConfig) *Registry {
	return &Registry{
		byChain: lo.KeyBy(configs, func(c entities.NetworkConfig) entities.Chain {
			return c.Chain
		}),
		byChainID: lo.KeyBy(configs, func(c entities.NetworkConfig) uint64 {
			return c.ChainID
		}),
	}
}

// DefaultRegistry returns the registry of every supported network
func DefaultRegistry() *Registry {
	return NewRegistry(defaultConfigs()...)
}

func (r *Registry) GetConfig(chain entities.Chain) (entities.NetworkConfig, error) {
	cfg, ok := r.byChain[chain]
	if !ok {
		return entities.NetworkConfig{}, fmt.Errorf("%w: %s", ErrUnsupportedChain, chain)
	}
	return cfg, nil
}

func (r *Registry) GetConfigByChainID(chainID uint64) (entities.NetworkConfig, error) {
	cfg, ok := r.byChainID[chainID]
	if !ok {
		return entities.NetworkConfig{}, fmt.Errorf("%w: chain id %d", ErrUnsupportedChain, chainID)
	}
	return cfg, nil
}

// ChainForID maps a chain id to its chain name
func (r *Registry) ChainForID(chainID uint64) (entities.Chain, bool) {
	cfg, ok := r.byChainID[chainID]
	return cfg.Chain, ok
}

// Configs returns every config ordered by chain id
func (r *Registry) Configs() []entities.NetworkConfig {
	configs := lo.Values(r.byChainID)
	sort.Slice(configs, func(i, j int) bool { return configs[i].ChainID < configs[j].ChainID })
	return configs
}

func (r *Registry) SupportedChains() []entities.Chain {
	return lo.Map(r.Configs(), func(c entities.NetworkConfig, _ int) entities.Chain {
		return c.Chain
	})
}

// MinConfirmations returns the confirmation count of a chain id, 1 when unknown
func (r *Registry) MinConfirmations(chainID uint64) int {
	cfg, ok := r.byChainID[chainID]
	if !ok {
		return 1
	}
	return cfg.Confirmations()
}

func addr(hex string) common.Address {
	return common.HexToAddress(hex)
}
