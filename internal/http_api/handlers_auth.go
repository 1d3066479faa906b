package http_api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rahulbansal29/Landchain/internal/models"
)

// NonceRequest asks for a login challenge for a wallet.
type NonceRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

// NonceResponse carries the challenge and the exact message to sign.
type NonceResponse struct {
	Wallet   string `json:"wallet"`
	Nonce    string `json:"nonce"`
	IssuedAt string `json:"issuedAt"`
	Message  string `json:"message"`
}

// VerifyRequest exchanges a signed challenge for a session token.
type VerifyRequest struct {
	Wallet    string `json:"wallet" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// issueNonce is a handler for the /api/auth/nonce endpoint.
func (s *HTTPServer) issueNonce(c *gin.Context) {
	var req NonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %v: %w", err, models.ErrValidation))
		return
	}

	challenge, message, err := s.auth.IssueNonce(c.Request.Context(), req.Wallet)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NonceResponse{
		Wallet:   challenge.Wallet,
		Nonce:    challenge.Nonce,
		IssuedAt: challenge.IssuedAt.UTC().Format(time.RFC3339),
		Message:  message,
	})
}

// verifySignature is a handler for the /api/auth/verify endpoint.
func (s *HTTPServer) verifySignature(c *gin.Context) {
	var req VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %v: %w", err, models.ErrValidation))
		return
	}

	credential, err := s.auth.VerifySignature(c.Request.Context(), req.Wallet, req.Signature)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, credential)
}
