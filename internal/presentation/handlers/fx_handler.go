package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

type FxRates interface {
	Rates(ctx context.Context) (entities.FxRates, error)
}

type FxHandler struct {
	rates FxRates
}

func NewFxHandler(rates FxRates) *FxHandler {
	return &FxHandler{rates: rates}
}

type FxRateResponse struct {
	Currency entities.SupportedCurrency `json:"currency"`
	Symbol   string                     `json:"symbol"`
	Rate     decimal.Decimal            `json:"rate"`
}

// List handles GET /api/v1/fx-rates
func (h *FxHandler) List(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.Rates(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "fx_rates_unavailable", "Failed to fetch currency rates")
		return
	}

	out := make([]FxRateResponse, 0, len(entities.SupportedCurrencies))
	for _, c := range entities.SupportedCurrencies {
		out = append(out, FxRateResponse{Currency: c, Symbol: c.Symbol(), Rate: rateFor(rates, c)})
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/v1/fx-rates/{currency}
func (h *FxHandler) Get(w http.ResponseWriter, r *http.Request) {
	currency, ok := entities.ParseCurrency(chi.URLParam(r, "currency"))
	if !ok {
		writeError(w, http.StatusNotFound, "unsupported_currency", "Currency is not supported")
		return
	}

	rates, err := h.rates.Rates(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "fx_rates_unavailable", "Failed to fetch currency rates")
		return
	}

	writeJSON(w, http.StatusOK, FxRateResponse{
		Currency: currency,
		Symbol:   currency.Symbol(),
		Rate:     rateFor(rates, currency),
	})
}

func rateFor(rates entities.FxRates, c entities.SupportedCurrency) decimal.Decimal {
	if c == entities.CurrencyUSD {
		return decimal.NewFromInt(1)
	}
	return rates.Rate(c)
}
