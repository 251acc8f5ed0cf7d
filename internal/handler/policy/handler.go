// Package policy exposes the administrative endpoints for inspecting and
// reloading the active password policy.
package policy

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/passwordguard/internal/handler"
	"github.com/jwalitptl/passwordguard/internal/model"
	"github.com/jwalitptl/passwordguard/internal/policy"
	"github.com/jwalitptl/passwordguard/pkg/metrics"
)

// Reloader re-reads the policy section from the configuration source.
// Satisfied by config.Loader.
type Reloader interface {
	ReloadPolicy() (model.PolicySnapshot, error)
}

type Handler struct {
	provider *policy.Provider
	reloader Reloader
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

func NewHandler(provider *policy.Provider, reloader Reloader, m *metrics.Metrics, logger zerolog.Logger) *Handler {
	return &Handler{provider: provider, reloader: reloader, metrics: m, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/policy", h.GetPolicy)
	r.POST("/policy/reload", h.ReloadPolicy)
}

type policyResponse struct {
	MinLength      int   `json:"min_length"`
	RequireUpper   bool  `json:"require_upper"`
	RequireLower   bool  `json:"require_lower"`
	RequireDigit   bool  `json:"require_digit"`
	RequireSpecial bool  `json:"require_special"`
	RejectUsername bool  `json:"reject_username"`
	AdvisoryMode   bool  `json:"advisory_mode"`
	Generation     int64 `json:"generation"`
}

func toPolicyResponse(snap model.PolicySnapshot) policyResponse {
	return policyResponse{
		MinLength:      snap.MinLength,
		RequireUpper:   snap.RequireUpper,
		RequireLower:   snap.RequireLower,
		RequireDigit:   snap.RequireDigit,
		RequireSpecial: snap.RequireSpecial,
		RejectUsername: snap.RejectUsername,
		AdvisoryMode:   snap.AdvisoryMode,
		Generation:     snap.Generation,
	}
}

// GetPolicy returns the snapshot currently used for evaluation.
func (h *Handler) GetPolicy(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(toPolicyResponse(h.provider.Snapshot())))
}

// ReloadPolicy re-reads the configuration source and installs the result as
// the new active snapshot. In-flight checks keep the snapshot they started
// with; only subsequent checks see the new rules.
func (h *Handler) ReloadPolicy(c *gin.Context) {
	snap, err := h.reloader.ReloadPolicy()
	if err != nil {
		h.logger.Error().Err(err).Msg("policy reload failed")
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("policy reload failed"))
		return
	}
	if snap.MinLength < 0 {
		c.JSON(http.StatusUnprocessableEntity, handler.NewErrorResponse("min_length must not be negative"))
		return
	}

	generation := h.provider.Replace(snap)
	h.metrics.PolicyReloads.Inc()
	h.metrics.PolicyGeneration.Set(float64(generation))

	h.logger.Info().
		Int64("generation", generation).
		Int("min_length", snap.MinLength).
		Bool("advisory_mode", snap.AdvisoryMode).
		Str("admin", c.GetString("admin_subject")).
		Msg("policy reloaded")

	c.JSON(http.StatusOK, handler.NewSuccessResponse(toPolicyResponse(h.provider.Snapshot())))
}
