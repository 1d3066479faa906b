package http_api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahulbansal29/Landchain/internal/metrics"
	"github.com/rahulbansal29/Landchain/internal/models"
)

// SubmitKYCRequest carries the applicant's metadata. The wallet comes
// from the session, never from the body.
type SubmitKYCRequest struct {
	Metadata map[string]string `json:"metadata"`
}

// KYCDecisionRequest names the wallet an admin approves or revokes.
type KYCDecisionRequest struct {
	Wallet string `json:"wallet" binding:"required"`
}

// submitKYC is a handler for the /api/kyc/submit endpoint.
func (s *HTTPServer) submitKYC(c *gin.Context) {
	var req SubmitKYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %v: %w", err, models.ErrValidation))
		return
	}

	record, err := s.kyc.Submit(c.Request.Context(), sessionWallet(c), req.Metadata)
	if err != nil {
		s.respondError(c, err)
		return
	}
	metrics.KYCSubmissions.Inc()
	c.JSON(http.StatusCreated, record)
}

// kycStatus is a handler for the /api/kyc/status/:wallet endpoint.
func (s *HTTPServer) kycStatus(c *gin.Context) {
	view, err := s.kyc.Status(c.Request.Context(), c.Param("wallet"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// approveKYC is a handler for the /api/kyc/approve endpoint.
func (s *HTTPServer) approveKYC(c *gin.Context) {
	s.decideKYC(c, s.kyc.Approve)
}

// revokeKYC is a handler for the /api/kyc/revoke endpoint.
func (s *HTTPServer) revokeKYC(c *gin.Context) {
	s.decideKYC(c, s.kyc.Revoke)
}

func (s *HTTPServer) decideKYC(c *gin.Context, decide func(ctx context.Context, wallet string) (string, error)) {
	var req KYCDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %v: %w", err, models.ErrValidation))
		return
	}

	txHash, err := decide(c.Request.Context(), req.Wallet)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": req.Wallet, "txHash": txHash})
}

// pendingKYC is a handler for the /api/kyc/pending endpoint.
func (s *HTTPServer) pendingKYC(c *gin.Context) {
	records, err := s.kyc.ListPending(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": records})
}
