package ethereum

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bimakw/dex-swap/internal/infrastructure/contracts"
)

var ErrNoRPC = errors.New("no rpc url configured for chain")

// DefaultDialTimeout bounds one dial and chain id check
const DefaultDialTimeout = 15 * time.Second

// ClientSet lazily dials one Client per chain id. Dials run outside the set's
// lock and concurrent first uses of a chain share one dial.
type ClientSet struct {
	urls        map[uint64]string
	dialTimeout time.Duration
	dial        func(ctx context.Context, url string, chainID uint64) (*Client, error)
	dials       singleflight.Group

	mu      sync.Mutex
	clients map[uint64]*Client
}

func NewClientSet(urls map[uint64]string) *ClientSet {
	return &ClientSet{
		urls:        urls,
		dialTimeout: DefaultDialTimeout,
		dial:        NewClient,
		clients:     make(map[uint64]*Client),
	}
}

// Client returns the connected client of a chain, dialing it on first use.
// The dial is bounded by the dial timeout and not by ctx, so a caller
// giving up does not fail the dial for others waiting on the same chain.
func (s *ClientSet) Client(ctx context.Context, chainID uint64) (*Client, error) {
	if c, ok := s.cached(chainID); ok {
		return c, nil
	}
	url, ok := s.urls[chainID]
	if !ok || url == "" {
		return nil, fmt.Errorf("%w %d", ErrNoRPC, chainID)
	}

	ch := s.dials.DoChan(strconv.FormatUint(chainID, 10), func() (any, error) {
		if c, ok := s.cached(chainID); ok {
			return c, nil
		}
		dialCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.dialTimeout)
		defer cancel()
		c, err := s.dial(dialCtx, url, chainID)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.clients[chainID] = c
		s.mu.Unlock()
		return c, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Client), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *ClientSet) cached(chainID uint64) (*Client, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.clients[chainID]
	return c, ok
}

// Caller returns the read-only caller of a chain
func (s *ClientSet) Caller(ctx context.Context, chainID uint64) (contracts.ContractCaller, error) {
	c, err := s.Client(ctx, chainID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ChainIDs returns the chains with a configured rpc url
func (s *ClientSet) ChainIDs() []uint64 {
	ids := make([]uint64, 0, len(s.urls))
	for id, url := range s.urls {
		if url != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *ClientSet) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.clients {
		c.Close()
		delete(s.clients, id)
	}
}
