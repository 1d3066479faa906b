package http_api

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rahulbansal29/Landchain/internal/auth"
	"github.com/rahulbansal29/Landchain/internal/models"
)

const (
	ctxWallet = "session_wallet"
	ctxRole   = "session_role"
)

func (s *HTTPServer) sessionClaims(c *gin.Context) (*auth.SessionClaims, error) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, fmt.Errorf("missing bearer token: %w", models.ErrUnauthorized)
	}
	return s.sessions.Validate(strings.TrimPrefix(header, "Bearer "))
}

// RequireSession accepts requests carrying a valid Bearer session token
// and stores the wallet and role on the request context.
func (s *HTTPServer) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.sessionClaims(c)
		if err != nil {
			s.abortError(c, err)
			return
		}
		c.Set(ctxWallet, claims.Wallet)
		c.Set(ctxRole, claims.Role)
	}
}

// RequireAdmin is RequireSession plus an admin role check.
func (s *HTTPServer) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := s.sessionClaims(c)
		if err != nil {
			s.abortError(c, err)
			return
		}
		if claims.Role != models.RoleAdmin {
			s.abortError(c, fmt.Errorf("admin role required: %w", models.ErrForbidden))
			return
		}
		c.Set(ctxWallet, claims.Wallet)
		c.Set(ctxRole, claims.Role)
	}
}

func sessionWallet(c *gin.Context) string {
	return c.GetString(ctxWallet)
}

func isAdmin(c *gin.Context) bool {
	return c.GetString(ctxRole) == models.RoleAdmin
}
