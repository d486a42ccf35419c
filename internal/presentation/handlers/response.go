package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/networks"
	"github.com/bimakw/dex-swap/internal/domain/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

// writeServiceError maps a pipeline error to its status and code. The
// message is the one shown to users.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "code", code, "error", err)
	}
	writeError(w, status, code, entities.UserMessage(err))
}

func classifyError(err error) (int, string) {
	if kind, ok := entities.KindOf(err); ok {
		switch kind {
		case entities.KindNoRouteFound:
			return http.StatusNotFound, string(kind)
		case entities.KindOracleTransport:
			return http.StatusBadGateway, string(kind)
		case entities.KindOnchainSimulation:
			return http.StatusUnprocessableEntity, string(kind)
		case entities.KindUnsupportedWrapConfig:
			return http.StatusBadRequest, string(kind)
		default:
			return http.StatusBadGateway, string(kind)
		}
	}
	switch {
	case errors.Is(err, networks.ErrUnsupportedChain):
		return http.StatusBadRequest, "unsupported_chain"
	case errors.Is(err, entities.ErrInvalidAmount),
		errors.Is(err, entities.ErrNegativeAmount),
		errors.Is(err, entities.ErrTooManyDecimals),
		errors.Is(err, entities.ErrInvalidSlippage),
		errors.Is(err, entities.ErrInvalidSwapType),
		errors.Is(err, entities.ErrSameToken):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, services.ErrTokenNotFound):
		return http.StatusNotFound, "token_not_found"
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, services.ErrStaleResult), errors.Is(err, services.ErrNoCurrentQuote):
		return http.StatusConflict, "no_current_quote"
	}
	return http.StatusInternalServerError, "internal_error"
}

// parseChain accepts a chain name (case insensitive) or a numeric chain id
func parseChain(registry *networks.Registry, value string) (entities.Chain, error) {
	value = strings.TrimSpace(value)
	if id, err := strconv.ParseUint(value, 10, 64); err == nil {
		chain, ok := registry.ChainForID(id)
		if !ok {
			return "", networks.ErrUnsupportedChain
		}
		return chain, nil
	}
	chain := entities.Chain(strings.ToUpper(value))
	if _, err := registry.GetConfig(chain); err != nil {
		return "", err
	}
	return chain, nil
}

func parseAddress(value string) (common.Address, bool) {
	if !common.IsHexAddress(value) {
		return common.Address{}, false
	}
	return common.HexToAddress(value), true
}

// SwapRequestBody is the JSON form of a swap request
type SwapRequestBody struct {
	Chain      string   `json:"chain"`
	TokenIn    string   `json:"tokenIn"`
	TokenOut   string   `json:"tokenOut"`
	SwapAmount string   `json:"swapAmount"`
	SwapType   string   `json:"swapType"`
	PoolIDs    []string `json:"poolIds,omitempty"`
}

// toRequest validates the body shape; amount rules are checked by the service
func (b SwapRequestBody) toRequest(registry *networks.Registry) (entities.SwapRequest, *ErrorResponse) {
	chain, err := parseChain(registry, b.Chain)
	if err != nil {
		return entities.SwapRequest{}, &ErrorResponse{Error: "unsupported_chain", Message: "chain " + b.Chain + " is not supported"}
	}
	tokenIn, ok := parseAddress(b.TokenIn)
	if !ok {
		return entities.SwapRequest{}, &ErrorResponse{Error: "invalid_token_in", Message: "tokenIn is not a valid address"}
	}
	tokenOut, ok := parseAddress(b.TokenOut)
	if !ok {
		return entities.SwapRequest{}, &ErrorResponse{Error: "invalid_token_out", Message: "tokenOut is not a valid address"}
	}
	swapType := entities.SwapType(strings.ToUpper(b.SwapType))
	if b.SwapType == "" {
		swapType = entities.SwapExactIn
	}
	return entities.SwapRequest{
		Chain:      chain,
		TokenIn:    tokenIn,
		TokenOut:   tokenOut,
		SwapAmount: b.SwapAmount,
		SwapType:   swapType,
		PoolIDs:    b.PoolIDs,
	}, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "request body is not valid JSON")
		return false
	}
	return true
}
