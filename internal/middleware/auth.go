package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/passwordguard/pkg/auth"
	"github.com/jwalitptl/passwordguard/pkg/security"
)

// AdminAuthMiddleware protects the policy administration endpoints. Either
// credential form is accepted: a bearer JWT issued by the admin token
// service, or the static admin key via X-API-Key (verified against its
// bcrypt hash from config).
type AdminAuthMiddleware struct {
	jwtSvc   auth.JWTService
	verifier security.APIKeyVerifier
}

func NewAdminAuthMiddleware(jwtSvc auth.JWTService, verifier security.APIKeyVerifier) *AdminAuthMiddleware {
	return &AdminAuthMiddleware{jwtSvc: jwtSvc, verifier: verifier}
}

func (m *AdminAuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if key := c.GetHeader("X-API-Key"); key != "" && m.verifier != nil {
			if err := m.verifier.Verify(key); err == nil {
				c.Set("admin_subject", "api-key")
				c.Next()
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid api key"})
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credentials"})
			return
		}

		subject, err := m.jwtSvc.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("admin_subject", subject)
		c.Next()
	}
}
