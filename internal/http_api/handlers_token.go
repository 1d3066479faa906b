package http_api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/validation"
)

// PurchaseBody names the property and amount for a purchase request or a
// direct buy. The buying wallet is the session wallet.
type PurchaseBody struct {
	PropertyID int64 `json:"propertyId" binding:"required"`
	Tokens     int64 `json:"tokens" binding:"required"`
}

// MintBody names the PENDING purchase an admin settles.
type MintBody struct {
	PurchaseID int64 `json:"purchaseId" binding:"required"`
}

// BuyBody is an admin-initiated direct sale: request and settlement in
// one step, on behalf of the named wallet.
type BuyBody struct {
	Wallet     string `json:"wallet" binding:"required"`
	PropertyID int64  `json:"propertyId" binding:"required"`
	Tokens     int64  `json:"tokens" binding:"required"`
}

// requestPurchase is a handler for the POST /api/token/request endpoint.
func (s *HTTPServer) requestPurchase(c *gin.Context) {
	var req PurchaseBody
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %v: %w", err, models.ErrValidation))
		return
	}

	purchase, err := s.ledger.RequestPurchase(c.Request.Context(), sessionWallet(c), req.PropertyID, req.Tokens)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

// buyTokens is a handler for the POST /api/token/buy endpoint.
func (s *HTTPServer) buyTokens(c *gin.Context) {
	var req BuyBody
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %v: %w", err, models.ErrValidation))
		return
	}

	purchase, err := s.ledger.BuyDirect(c.Request.Context(), req.Wallet, req.PropertyID, req.Tokens)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

// pendingPurchases is a handler for the GET /api/token/purchases/pending
// endpoint.
func (s *HTTPServer) pendingPurchases(c *gin.Context) {
	pending, err := s.ledger.ListPending(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": pending})
}

// mintPurchase is a handler for the POST /api/token/mint endpoint.
func (s *HTTPServer) mintPurchase(c *gin.Context) {
	var req MintBody
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, fmt.Errorf("invalid request body: %v: %w", err, models.ErrValidation))
		return
	}

	purchase, err := s.ledger.MintPurchase(c.Request.Context(), req.PurchaseID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchase)
}

// investments is a handler for the GET /api/token/investments/:wallet
// endpoint. Users may read their own holdings; admins may read anyone's.
func (s *HTTPServer) investments(c *gin.Context) {
	wallet := c.Param("wallet")
	if !isAdmin(c) && !validation.SameAddress(wallet, sessionWallet(c)) {
		s.respondError(c, fmt.Errorf("cannot read another wallet's holdings: %w", models.ErrForbidden))
		return
	}

	holdings, err := s.ledger.HoldingsFor(c.Request.Context(), wallet)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet, "holdings": holdings})
}

// investors is a handler for the GET /api/token/investors endpoint.
func (s *HTTPServer) investors(c *gin.Context) {
	summaries, err := s.ledger.InvestorsSummary(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"investors": summaries})
}

// tokenBalance is a handler for the GET /api/token/balance/:wallet
// endpoint. It reads the live on-chain balance.
func (s *HTTPServer) tokenBalance(c *gin.Context) {
	wallet := c.Param("wallet")
	if err := validation.ValidateAddress(wallet); err != nil {
		s.respondError(c, fmt.Errorf("%v: %w", err, models.ErrValidation))
		return
	}

	balance, err := s.chain.BalanceOf(c.Request.Context(), wallet)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": wallet, "balance": balance})
}

// tokenInfo is a handler for the GET /api/token/info endpoint.
func (s *HTTPServer) tokenInfo(c *gin.Context) {
	info, err := s.chain.TokenInfo(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
