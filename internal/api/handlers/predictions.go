package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"parkingpass/internal/core"
	"parkingpass/internal/types"
)

// Predictor produces hourly occupancy predictions.
type Predictor interface {
	GeneratePredictions(ctx context.Context, facilityID string, hoursAhead int) []types.PredictionResult
}

// HorizonLimits bounds the hours_ahead request field.
type HorizonLimits struct {
	Default int
	Max     int
}

// PredictionRequest is the body of POST /v1/predictions. A missing
// hours_ahead takes the configured default.
type PredictionRequest struct {
	ParkingID  string `json:"parking_id" validate:"required"`
	HoursAhead *int   `json:"hours_ahead,omitempty"`
}

// PredictionHandler serves occupancy predictions.
type PredictionHandler struct {
	predictor Predictor
	validator *core.Validator
	limits    HorizonLimits
	logger    *slog.Logger
}

// NewPredictionHandler creates a PredictionHandler.
func NewPredictionHandler(p Predictor, val *core.Validator, limits HorizonLimits, logger *slog.Logger) *PredictionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if limits.Max < types.MinHorizonHours {
		limits.Max = types.MinHorizonHours
	}
	if limits.Default < types.MinHorizonHours || limits.Default > limits.Max {
		limits.Default = limits.Max
	}
	return &PredictionHandler{
		predictor: p,
		validator: val,
		limits:    limits,
		logger:    logger,
	}
}

// RegisterRoutes mounts the prediction endpoint.
func (h *PredictionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleCreate)
}

// HandleCreate handles POST /v1/predictions. Unknown facility IDs are not an
// error; they score as a neutral 50% at confidence 60.
func (h *PredictionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req PredictionRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	hours := h.limits.Default
	if req.HoursAhead != nil {
		hours = *req.HoursAhead
	}
	if hours < types.MinHorizonHours || hours > h.limits.Max {
		core.Error(w, r, types.NewAppErrorWithDetails(
			types.ErrCodeValidationHorizon,
			"hours_ahead is out of range",
			nil,
			map[string]any{"min": types.MinHorizonHours, "max": h.limits.Max, "got": hours},
		))
		return
	}

	results := h.predictor.GeneratePredictions(r.Context(), req.ParkingID, hours)
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: results})
}
