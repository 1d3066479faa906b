package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/rahulbansal29/Landchain/internal/auth"
	"github.com/rahulbansal29/Landchain/internal/blockchain"
	"github.com/rahulbansal29/Landchain/internal/config"
	"github.com/rahulbansal29/Landchain/internal/http_api"
	"github.com/rahulbansal29/Landchain/internal/inventory"
	"github.com/rahulbansal29/Landchain/internal/kyc"
	"github.com/rahulbansal29/Landchain/internal/ledger"
	"github.com/rahulbansal29/Landchain/internal/models"
	"github.com/rahulbansal29/Landchain/internal/notificator"
	"github.com/rahulbansal29/Landchain/internal/repository"
	"github.com/rahulbansal29/Landchain/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "landchain",
		Usage: "Landchain is a property tokenization backend",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "API port"},
			&cli.StringFlag{Name: "storage-backend", Aliases: []string{"s"}, Usage: "Storage backend (memory or postgres)"},
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.StringFlag{Name: "rpc-url", Aliases: []string{"r"}, Usage: "Ledger RPC URL"},
			&cli.StringFlag{Name: "spv-token-address", Usage: "SPV token contract address"},
			&cli.StringFlag{Name: "kyc-registry-address", Usage: "KYC registry contract address"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("storage-backend") {
		cfg.StorageBackend = c.String("storage-backend")
	}
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("rpc-url") {
		cfg.RPCURL = c.String("rpc-url")
	}
	if c.IsSet("spv-token-address") {
		cfg.SPVTokenAddress = c.String("spv-token-address")
	}
	if c.IsSet("kyc-registry-address") {
		cfg.KYCRegistryAddress = c.String("kyc-registry-address")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize storage
	var (
		propertyStore  models.PropertyRepository
		purchaseStore  models.PurchaseRepository
		kycStore       models.KYCRepository
		challengeStore models.ChallengeRepository
	)
	challengeStore = repository.NewMemoryChallengeStore()
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		stores, err := repository.NewPostgresStores(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, appLogger)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %v", err)
		}
		defer stores.Close()
		propertyStore = stores.Properties
		purchaseStore = stores.Purchases
		kycStore = stores.KYC
	default:
		propertyStore = repository.NewMemoryPropertyStore()
		purchaseStore = repository.NewMemoryPurchaseStore()
		kycStore = repository.NewMemoryKYCStore()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the ledger client
	chain := blockchain.New(cfg.RPCURL, appLogger, cfg)
	if err := chain.Run(ctx); err != nil {
		return fmt.Errorf("failed to start the ledger client: %v", err)
	}
	defer chain.Close()

	// Initialize operator notifications
	var telegramNotif *notificator.TelegramNotificator
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		telegramNotif, err = notificator.NewTelegramNotificator(appLogger, cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram notificator: %v", err)
		}
	}
	var emailNotif *notificator.EmailNotificator
	if cfg.SMTPHost != "" {
		emailNotif = notificator.NewEmailNotificator(appLogger, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender, cfg.OperatorEmails)
	}
	notifier := notificator.NewNotificator(appLogger, telegramNotif, emailNotif)

	// Initialize services
	inventoryService := inventory.NewService(propertyStore, appLogger)
	kycGate := kyc.NewGate(kycStore, chain, notifier, appLogger)
	ledgerService := ledger.NewService(purchaseStore, inventoryService, chain, kycGate, notifier, cfg.ReconcileFromBlock, appLogger)
	sessions := auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)
	authService := auth.NewService(challengeStore, sessions, cfg.AdminWallets, cfg.NonceTTL, appLogger)

	// Schedule background maintenance
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 5m", func() {
		if purged, err := authService.PurgeExpired(ctx); err != nil {
			appLogger.Error("Failed to purge expired challenges: ", err)
		} else if purged > 0 {
			appLogger.Debug("Purged expired challenges ", "count ", purged)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule challenge purge: %v", err)
	}
	if _, err := scheduler.AddFunc("@every 10m", func() {
		if _, err := ledgerService.Reconcile(ctx); err != nil {
			appLogger.Error("Scheduled reconciliation failed: ", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule reconciliation: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Initialize API server
	apiServer := http_api.NewHTTPServer(authService, sessions, inventoryService, ledgerService, kycGate, chain, cfg.APIPort, appLogger)
	go apiServer.Start()

	<-ctx.Done()
	return apiServer.Shutdown()
}
