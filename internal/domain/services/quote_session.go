package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

var (
	// ErrStaleResult is returned for a simulation finished after a newer request replaced it
	ErrStaleResult     = errors.New("simulation result superseded by a newer request")
	ErrNoCurrentQuote  = errors.New("no current quote")
	ErrSessionNotFound = errors.New("session not found")
)

// QuoteSimulator quotes one request
type QuoteSimulator interface {
	Simulate(ctx context.Context, req entities.SwapRequest) (SwapQuote, error)
}

// QuoteSession holds the latest request of one user and its quote. Each
// Submit bumps the version; only the result of the latest version is kept.
type QuoteSession struct {
	ID string

	simulator QuoteSimulator

	mu        sync.Mutex
	version   uint64
	status    entities.SimulationStatus
	request   *entities.SwapRequest
	quote     *SwapQuote
	err       error
	updatedAt time.Time
}

func NewQuoteSession(id string, simulator QuoteSimulator) *QuoteSession {
	return &QuoteSession{
		ID:        id,
		simulator: simulator,
		status:    entities.SimulationIdle,
		updatedAt: time.Now(),
	}
}

// Submit replaces the session request and simulates it. A result that
// arrives after a newer Submit is discarded and ErrStaleResult returned.
func (s *QuoteSession) Submit(ctx context.Context, req entities.SwapRequest) (SwapQuote, error) {
	s.mu.Lock()
	s.version++
	version := s.version
	s.status = entities.SimulationInFlight
	s.request = &req
	s.quote = nil
	s.err = nil
	s.updatedAt = time.Now()
	s.mu.Unlock()

	quote, err := s.simulator.Simulate(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if version != s.version {
		return SwapQuote{}, ErrStaleResult
	}
	s.updatedAt = time.Now()
	if err != nil {
		s.status = entities.SimulationError
		s.err = err
		return SwapQuote{}, err
	}
	s.status = entities.SimulationSuccess
	s.quote = &quote
	return quote, nil
}

// CurrentQuote returns the quote of the latest request, if it succeeded
func (s *QuoteSession) CurrentQuote() (SwapQuote, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.quote == nil {
		return SwapQuote{}, false
	}
	return *s.quote, true
}

// SessionSnapshot is a point in time view of a session
type SessionSnapshot struct {
	ID        string                    `json:"id"`
	Version   uint64                    `json:"version"`
	Status    entities.SimulationStatus `json:"status"`
	Request   *entities.SwapRequest     `json:"request,omitempty"`
	Quote     *SwapQuote                `json:"quote,omitempty"`
	Error     string                    `json:"error,omitempty"`
	UpdatedAt time.Time                 `json:"updatedAt"`
}

func (s *QuoteSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := SessionSnapshot{
		ID:        s.ID,
		Version:   s.version,
		Status:    s.status,
		Request:   s.request,
		Quote:     s.quote,
		UpdatedAt: s.updatedAt,
	}
	if s.err != nil {
		snap.Error = entities.UserMessage(s.err)
	}
	return snap
}

// SessionStore keeps quote sessions by id
type SessionStore struct {
	simulator QuoteSimulator

	mu       sync.RWMutex
	sessions map[string]*QuoteSession
}

func NewSessionStore(simulator QuoteSimulator) *SessionStore {
	return &SessionStore{
		simulator: simulator,
		sessions:  make(map[string]*QuoteSession),
	}
}

func (s *SessionStore) Create() *QuoteSession {
	session := NewQuoteSession(uuid.NewString(), s.simulator)
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
	return session
}

func (s *SessionStore) Get(id string) (*QuoteSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
