// Package admin exposes the operator endpoints: exchanging the static API
// key for a short-lived bearer token, and browsing the decision audit trail.
package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/passwordguard/internal/handler"
	"github.com/jwalitptl/passwordguard/internal/service/audit"
	"github.com/jwalitptl/passwordguard/pkg/auth"
	apperrors "github.com/jwalitptl/passwordguard/pkg/errors"
)

type Handler struct {
	jwtSvc  auth.JWTService
	auditor *audit.Service
	logger  zerolog.Logger
}

func NewHandler(jwtSvc auth.JWTService, auditor *audit.Service, logger zerolog.Logger) *Handler {
	return &Handler{jwtSvc: jwtSvc, auditor: auditor, logger: logger}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/admin/tokens", h.IssueToken)
	r.GET("/decisions", h.ListDecisions)
}

type tokenRequest struct {
	Subject string `json:"subject" binding:"required"`
}

// IssueToken mints a bearer token for an already-authenticated caller,
// typically an API-key holder setting up tooling that prefers JWTs.
func (h *Handler) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest("subject is required", err)) //nolint:errcheck
		return
	}

	token, err := h.jwtSvc.GenerateToken(req.Subject)
	if err != nil {
		c.Error(apperrors.Internal(err)) //nolint:errcheck
		return
	}

	h.logger.Info().
		Str("subject", req.Subject).
		Str("issued_by", c.GetString("admin_subject")).
		Msg("admin token issued")

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"token": token}))
}

// ListDecisions returns the recent check decisions for one account.
func (h *Handler) ListDecisions(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.Error(apperrors.BadRequest("username is required", nil)) //nolint:errcheck
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.Error(apperrors.BadRequest("limit must be a non-negative integer", err)) //nolint:errcheck
		return
	}

	records, err := h.auditor.History(c.Request.Context(), username, limit)
	if err != nil {
		c.Error(apperrors.Internal(err)) //nolint:errcheck
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"decisions": records}))
}
