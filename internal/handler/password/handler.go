package password

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/passwordguard/internal/handler"
	"github.com/jwalitptl/passwordguard/internal/model"
	"github.com/jwalitptl/passwordguard/internal/service/password"
	apperrors "github.com/jwalitptl/passwordguard/pkg/errors"
)

type Handler struct {
	svc *password.Service
}

func NewHandler(svc *password.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/password-checks", h.Check)
}

// checkRequest is the wire shape of one check. Password is a pointer so a
// JSON null (password removal) is distinguishable from an empty string.
type checkRequest struct {
	Username     string  `json:"username"`
	Password     *string `json:"password"`
	PasswordType string  `json:"password_type" binding:"omitempty,oneof=plaintext md5 scram-sha-256"`
}

type violationResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Actual  int    `json:"actual,omitempty"`
	Minimum int    `json:"minimum,omitempty"`
}

type checkResponse struct {
	Acceptable       bool                `json:"acceptable"`
	Decision         string              `json:"decision"`
	Advisory         bool                `json:"advisory"`
	Message          string              `json:"message,omitempty"`
	Violations       []violationResponse `json:"violations,omitempty"`
	PolicyGeneration int64               `json:"policy_generation"`
}

// Check evaluates one candidate password. A policy rejection is a normal
// verdict, returned with 200; only malformed requests produce an HTTP
// error. The password itself never appears in the response or the logs.
func (h *Handler) Check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.BadRequest("invalid request body", err)) //nolint:errcheck
		return
	}

	passwordType := model.PasswordType(req.PasswordType)
	if passwordType == "" {
		passwordType = model.PasswordTypePlaintext
	}

	resp, err := h.svc.Check(c.Request.Context(), password.CheckRequest{
		Username:     req.Username,
		Password:     req.Password,
		PasswordType: passwordType,
		SourceIP:     c.ClientIP(),
	})
	if err != nil {
		c.Error(apperrors.Internal(err)) //nolint:errcheck
		return
	}

	out := checkResponse{
		Acceptable:       resp.Decision != model.DecisionRejected,
		Decision:         string(resp.Decision),
		Advisory:         resp.Result.Advisory,
		Message:          resp.Message,
		PolicyGeneration: resp.Generation,
	}
	for _, v := range resp.Result.Violations {
		out.Violations = append(out.Violations, violationResponse{
			Code:    string(v.Code),
			Message: v.Detail(),
			Actual:  v.Actual,
			Minimum: v.Minimum,
		})
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(out))
}
