package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"parkingpass/internal/core"
)

// PatternStats is the read side of the enforcement pattern store.
type PatternStats interface {
	Loaded() bool
	TotalCount() int
}

// PatternSummary is the body of GET /v1/patterns/summary.
type PatternSummary struct {
	TotalViolations int                `json:"total_violations"`
	WeightsUsed     map[string]float64 `json:"weights_used"`
	Loaded          bool               `json:"loaded"`
}

// PatternHandler reports what the engine was primed with.
type PatternHandler struct {
	patterns PatternStats
	weights  map[string]float64
	logger   *slog.Logger
}

// NewPatternHandler creates a PatternHandler. weights is the factor weight
// table reported alongside the totals.
func NewPatternHandler(patterns PatternStats, weights map[string]float64, logger *slog.Logger) *PatternHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PatternHandler{patterns: patterns, weights: weights, logger: logger}
}

// RegisterRoutes mounts the summary endpoint.
func (h *PatternHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.HandleSummary)
}

// HandleSummary handles GET /v1/patterns/summary. Without pattern data the
// engine runs on neutral weights, which is reported as loaded=false.
func (h *PatternHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: PatternSummary{
		TotalViolations: h.patterns.TotalCount(),
		WeightsUsed:     h.weights,
		Loaded:          h.patterns.Loaded(),
	}})
}
