package http_api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rahulbansal29/Landchain/internal/auth"
	"github.com/rahulbansal29/Landchain/internal/inventory"
	"github.com/rahulbansal29/Landchain/internal/kyc"
	"github.com/rahulbansal29/Landchain/internal/ledger"
	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/pkg/logger"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second
)

// HTTPServer serves the Landchain API.
type HTTPServer struct {
	logger *logger.Logger

	router *gin.Engine
	port   int
	server *http.Server

	auth      *auth.Service
	sessions  *auth.JWTService
	inventory *inventory.Service
	ledger    *ledger.Service
	kyc       *kyc.Gate
	chain     models.MintLedger
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(
	authService *auth.Service,
	sessions *auth.JWTService,
	inventoryService *inventory.Service,
	ledgerService *ledger.Service,
	kycGate *kyc.Gate,
	chain models.MintLedger,
	port int,
	logger *logger.Logger,
) *HTTPServer {
	router := gin.Default()
	router.Use(corsMiddleware())

	server := &HTTPServer{
		logger:    logger,
		router:    router,
		port:      port,
		auth:      authService,
		sessions:  sessions,
		inventory: inventoryService,
		ledger:    ledgerService,
		kyc:       kycGate,
		chain:     chain,
	}

	server.routes()

	return server
}

// Start starts the HTTP server
func (s *HTTPServer) Start() {
	addr := fmt.Sprintf("0.0.0.0:%v", s.port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	s.logger.Info("Starting HTTP server", "address", addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.logger.Fatal("Failed to start the HTTP server: ", err)
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *HTTPServer) Shutdown() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server shut down successfully")
	return nil
}
