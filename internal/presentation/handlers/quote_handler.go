package handlers

import (
	"context"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/networks"
	"github.com/bimakw/dex-swap/internal/domain/services"
)

// SwapPipeline quotes requests and builds their transactions
type SwapPipeline interface {
	Simulate(ctx context.Context, req entities.SwapRequest) (services.SwapQuote, error)
	BuildInputFor(ctx context.Context, quote services.SwapQuote, account common.Address, slippagePercent string, permit2 *entities.Permit2) (entities.BuildInput, error)
	Build(in entities.BuildInput) (entities.TransactionPayload, error)
	Spender(in entities.BuildInput) (common.Address, bool, error)
}

type PriceImpactCalculator interface {
	ForQuote(ctx context.Context, quote *services.SwapQuote) services.PriceImpactReport
}

// QuoteHandler handles stateless quote and build requests
type QuoteHandler struct {
	registry        *networks.Registry
	swaps           SwapPipeline
	impact          PriceImpactCalculator
	defaultSlippage string
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(registry *networks.Registry, swaps SwapPipeline, impact PriceImpactCalculator, defaultSlippage string) *QuoteHandler {
	return &QuoteHandler{
		registry:        registry,
		swaps:           swaps,
		impact:          impact,
		defaultSlippage: defaultSlippage,
	}
}

// QuoteResponse represents a quote with its price impact
type QuoteResponse struct {
	Quote       services.SwapQuote         `json:"quote"`
	PriceImpact services.PriceImpactReport `json:"priceImpact"`
}

// BuildRequestBody is a swap request plus the building account
type BuildRequestBody struct {
	SwapRequestBody
	Account   string            `json:"account"`
	Slippage  string            `json:"slippage,omitempty"`
	WethIsEth bool              `json:"wethIsEth,omitempty"`
	Permit2   *entities.Permit2 `json:"permit2,omitempty"`
}

// BuildResponse is a ready to sign transaction. ApprovalSpender is set when
// the input token must first be approved to it.
type BuildResponse struct {
	Transaction     entities.TransactionPayload `json:"transaction"`
	ApprovalSpender *common.Address             `json:"approvalSpender,omitempty"`
	Quote           services.SwapQuote          `json:"quote"`
}

// Simulate handles POST /api/v1/swap/simulate
func (h *QuoteHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	var body SwapRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	req, bad := body.toRequest(h.registry)
	if bad != nil {
		writeError(w, http.StatusBadRequest, bad.Error, bad.Message)
		return
	}

	quote, err := h.swaps.Simulate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QuoteResponse{
		Quote:       quote,
		PriceImpact: h.impact.ForQuote(r.Context(), &quote),
	})
}

// Build handles POST /api/v1/swap/build. The request is simulated again so
// the transaction always reflects a fresh quote.
func (h *QuoteHandler) Build(w http.ResponseWriter, r *http.Request) {
	var body BuildRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	req, bad := body.toRequest(h.registry)
	if bad != nil {
		writeError(w, http.StatusBadRequest, bad.Error, bad.Message)
		return
	}
	account, ok := parseAddress(body.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_account", "account is not a valid address")
		return
	}

	quote, err := h.swaps.Simulate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp, err := buildTransaction(r.Context(), h.swaps, quote, account, h.slippage(body.Slippage), body.WethIsEth, body.Permit2)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *QuoteHandler) slippage(value string) string {
	if value == "" {
		return h.defaultSlippage
	}
	return value
}

func buildTransaction(ctx context.Context, swaps SwapPipeline, quote services.SwapQuote, account common.Address, slippage string, wethIsEth bool, permit2 *entities.Permit2) (BuildResponse, error) {
	if _, err := entities.SlippageFromPercentage(slippage); err != nil {
		return BuildResponse{}, err
	}
	in, err := swaps.BuildInputFor(ctx, quote, account, slippage, permit2)
	if err != nil {
		return BuildResponse{}, err
	}
	in.WethIsEth = wethIsEth

	payload, err := swaps.Build(in)
	if err != nil {
		return BuildResponse{}, err
	}

	resp := BuildResponse{Transaction: payload, Quote: quote}
	spender, needsApproval, err := swaps.Spender(in)
	if err != nil {
		return BuildResponse{}, err
	}
	if needsApproval {
		resp.ApprovalSpender = &spender
	}
	return resp, nil
}
