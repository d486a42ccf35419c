package handlers

import (
	"net/http"

	"github.com/bimakw/dex-swap/internal/domain/networks"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Networks int    `json:"networks"`
}

// HealthHandler handles health check requests
type HealthHandler struct {
	version  string
	registry *networks.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, registry *networks.Registry) *HealthHandler {
	return &HealthHandler{version: version, registry: registry}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Networks: len(h.registry.Configs()),
	})
}
