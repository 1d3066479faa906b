package http_api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// health is a handler for the root endpoint.
func (s *HTTPServer) health(c *gin.Context) {
	c.String(http.StatusOK, "Landchain API is running")
}

// analytics is a handler for the GET /api/admin/analytics endpoint. It
// aggregates sale progress, purchase counts and KYC workflow counts.
func (s *HTTPServer) analytics(c *gin.Context) {
	ctx := c.Request.Context()

	properties, err := s.inventory.List(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	var totalTokens, tokensSold, valueLocked int64
	for _, property := range properties {
		totalTokens += property.TotalTokens
		tokensSold += property.TokensSold()
		valueLocked += property.TokensSold() * property.TokenPrice
	}

	purchaseStats, err := s.ledger.Stats(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}

	kycCounts, kycTotal, err := s.kyc.Stats(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"properties": gin.H{
			"count":       len(properties),
			"totalTokens": totalTokens,
			"tokensSold":  tokensSold,
			"valueLocked": valueLocked,
		},
		"purchases": purchaseStats,
		"kyc": gin.H{
			"total":  kycTotal,
			"counts": kycCounts,
		},
	})
}

// reconciliation is a handler for the GET /api/admin/reconciliation
// endpoint. It compares local MINTED records against on-chain mint events.
func (s *HTTPServer) reconciliation(c *gin.Context) {
	report, err := s.ledger.Reconcile(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
