// Package handlers contains the HTTP handlers of the prediction API. Each
// handler declares the narrow interface it needs from its collaborators and
// registers its own routes under /v1.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"parkingpass/internal/core"
	"parkingpass/internal/types"
)

// LotRegistry is the read side of the parking lot registry.
type LotRegistry interface {
	Located() []types.ParkingLot
	Get(id string) (types.ParkingLot, bool)
}

// ParkingHandler serves the facility registry.
type ParkingHandler struct {
	lots   LotRegistry
	logger *slog.Logger
}

// NewParkingHandler creates a ParkingHandler.
func NewParkingHandler(lots LotRegistry, logger *slog.Logger) *ParkingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParkingHandler{lots: lots, logger: logger}
}

// RegisterRoutes mounts the facility endpoints.
func (h *ParkingHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)
}

// HandleList handles GET /v1/parking-lots. Facilities without coordinates
// cannot be placed on the map and are omitted.
func (h *ParkingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	located := h.lots.Located()
	core.JSON(w, r, http.StatusOK, core.APIResponse{
		Data: located,
		Meta: map[string]any{"count": len(located)},
	})
}

// HandleGet handles GET /v1/parking-lots/{id}.
func (h *ParkingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	lot, ok := h.lots.Get(id)
	if !ok {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeNotFoundParkingLot,
			"parking lot not found",
			nil,
			map[string]any{"parking_id": id},
		))
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: lot})
}
