package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bimakw/dex-swap/internal/domain/networks"
	"github.com/bimakw/dex-swap/internal/domain/services"
)

// SessionHandler exposes quote sessions. A session keeps only the quote of
// its latest request.
type SessionHandler struct {
	registry        *networks.Registry
	sessions        *services.SessionStore
	swaps           SwapPipeline
	impact          PriceImpactCalculator
	defaultSlippage string
}

func NewSessionHandler(registry *networks.Registry, sessions *services.SessionStore, swaps SwapPipeline, impact PriceImpactCalculator, defaultSlippage string) *SessionHandler {
	return &SessionHandler{
		registry:        registry,
		sessions:        sessions,
		swaps:           swaps,
		impact:          impact,
		defaultSlippage: defaultSlippage,
	}
}

type SessionBuildBody struct {
	Account   string `json:"account"`
	Slippage  string `json:"slippage,omitempty"`
	WethIsEth bool   `json:"wethIsEth,omitempty"`
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session := h.sessions.Create()
	writeJSON(w, http.StatusCreated, session.Snapshot())
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !h.sessions.Delete(chi.URLParam(r, "id")) {
		writeServiceError(w, services.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Quote handles POST /api/v1/sessions/{id}/quote. A superseded result is
// answered with 409 and the caller should read the session again.
func (h *SessionHandler) Quote(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var body SwapRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	req, bad := body.toRequest(h.registry)
	if bad != nil {
		writeError(w, http.StatusBadRequest, bad.Error, bad.Message)
		return
	}

	quote, err := session.Submit(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, QuoteResponse{
		Quote:       quote,
		PriceImpact: h.impact.ForQuote(r.Context(), &quote),
	})
}

// Build handles POST /api/v1/sessions/{id}/build from the current quote
func (h *SessionHandler) Build(w http.ResponseWriter, r *http.Request) {
	session, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	var body SessionBuildBody
	if !decodeBody(w, r, &body) {
		return
	}
	account, ok := parseAddress(body.Account)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_account", "account is not a valid address")
		return
	}

	quote, ok := session.CurrentQuote()
	if !ok {
		writeServiceError(w, services.ErrNoCurrentQuote)
		return
	}

	slippage := body.Slippage
	if slippage == "" {
		slippage = h.defaultSlippage
	}
	resp, err := buildTransaction(r.Context(), h.swaps, quote, account, slippage, body.WethIsEth, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
