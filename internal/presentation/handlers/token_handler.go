package handlers

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/networks"
)

// TokenDirectory is the token and price lookup used by TokenHandler
type TokenDirectory interface {
	Tokens(ctx context.Context, chain entities.Chain) ([]entities.Token, error)
	GetToken(ctx context.Context, address common.Address, chain entities.Chain) (entities.Token, error)
	PriceOf(ctx context.Context, chain entities.Chain, address common.Address) (decimal.Decimal, error)
}

// TokenHandler handles token list and price requests
type TokenHandler struct {
	registry  *networks.Registry
	directory TokenDirectory
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(registry *networks.Registry, directory TokenDirectory) *TokenHandler {
	return &TokenHandler{registry: registry, directory: directory}
}

// TokensResponse represents the token list of one chain
type TokensResponse struct {
	Chain  entities.Chain   `json:"chain"`
	Count  int              `json:"count"`
	Tokens []entities.Token `json:"tokens"`
}

// PriceResponse represents a token price response
type PriceResponse struct {
	Token    entities.Token  `json:"token"`
	PriceUSD decimal.Decimal `json:"priceUsd"`
}

// Tokens handles GET /api/v1/tokens/{chain}
func (h *TokenHandler) Tokens(w http.ResponseWriter, r *http.Request) {
	chain, err := parseChain(h.registry, chi.URLParam(r, "chain"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported_chain", err.Error())
		return
	}

	tokens, err := h.directory.Tokens(r.Context(), chain)
	if err != nil {
		writeError(w, http.StatusBadGateway, "token_list_unavailable", "Failed to load token list")
		return
	}

	writeJSON(w, http.StatusOK, TokensResponse{
		Chain:  chain,
		Count:  len(tokens),
		Tokens: tokens,
	})
}

// Price handles GET /api/v1/price/{chain}/{tokenAddress}
func (h *TokenHandler) Price(w http.ResponseWriter, r *http.Request) {
	chain, err := parseChain(h.registry, chi.URLParam(r, "chain"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "unsupported_chain", err.Error())
		return
	}
	address, ok := parseAddress(chi.URLParam(r, "tokenAddress"))
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_token", "Invalid token address")
		return
	}

	token, err := h.directory.GetToken(r.Context(), address, chain)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	price, err := h.directory.PriceOf(r.Context(), chain, address)
	if err != nil {
		writeError(w, http.StatusBadGateway, "price_unavailable", "Failed to fetch token price")
		return
	}

	writeJSON(w, http.StatusOK, PriceResponse{
		Token:    token,
		PriceUSD: price,
	})
}
