package http_api

import (
	"github.com/gin-gonic/gin"

	"github.com/rahulbansal29/Landchain/internal/metrics"
)

// routes sets up the routes for the HTTP server.
func (s *HTTPServer) routes() {
	s.router.GET("/", s.health)

	api := s.router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/nonce", s.issueNonce)
		authGroup.POST("/verify", s.verifySignature)
	}

	kycGroup := api.Group("/kyc")
	{
		kycGroup.POST("/submit", s.RequireSession(), s.submitKYC)
		kycGroup.GET("/status/:wallet", s.kycStatus)
		kycGroup.POST("/approve", s.RequireAdmin(), s.approveKYC)
		kycGroup.POST("/revoke", s.RequireAdmin(), s.revokeKYC)
		kycGroup.GET("/pending", s.RequireAdmin(), s.pendingKYC)
	}

	properties := api.Group("/properties")
	{
		properties.GET("", s.listProperties)
		properties.GET("/:id", s.getProperty)
		properties.POST("", s.RequireAdmin(), s.createProperty)
		properties.PUT("/:id", s.RequireAdmin(), s.updateProperty)
		properties.DELETE("/:id", s.RequireAdmin(), s.deleteProperty)
	}

	token := api.Group("/token")
	{
		token.POST("/request", s.RequireSession(), s.requestPurchase)
		token.POST("/buy", s.RequireAdmin(), s.buyTokens)
		token.GET("/purchases/pending", s.RequireAdmin(), s.pendingPurchases)
		token.POST("/mint", s.RequireAdmin(), s.mintPurchase)
		token.GET("/investments/:wallet", s.RequireSession(), s.investments)
		token.GET("/investors", s.RequireAdmin(), s.investors)
		token.GET("/balance/:wallet", s.tokenBalance)
		token.GET("/info", s.tokenInfo)
	}

	admin := api.Group("/admin", s.RequireAdmin())
	{
		admin.GET("/analytics", s.analytics)
		admin.GET("/reconciliation", s.reconciliation)
	}

	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}
