package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/networks"
)

type NetworkHandler struct {
	registry *networks.Registry
}

func NewNetworkHandler(registry *networks.Registry) *NetworkHandler {
	return &NetworkHandler{registry: registry}
}

type NetworksResponse struct {
	Networks []entities.NetworkConfig `json:"networks"`
}

// List handles GET /api/v1/networks
func (h *NetworkHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, NetworksResponse{Networks: h.registry.Configs()})
}

// Get handles GET /api/v1/networks/{chain}
func (h *NetworkHandler) Get(w http.ResponseWriter, r *http.Request) {
	chain, err := parseChain(h.registry, chi.URLParam(r, "chain"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unsupported_chain", err.Error())
		return
	}
	cfg, _ := h.registry.GetConfig(chain)
	writeJSON(w, http.StatusOK, cfg)
}
