package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"

	"github.com/rahulbansal29/Landchain/pkg/validation"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Development bool
	// API configuration
	APIPort int

	// Storage configuration. The in-memory backend is the default; the
	// postgres backend implements the same store interfaces.
	StorageBackend   string
	PostgresUser     string
	PostgresPassword string
	PostgresHost     string
	PostgresPort     int
	PostgresDB       string

	// Blockchain configuration
	RPCURL             string
	SPVTokenAddress    string
	KYCRegistryAddress string
	// OperatorPrivateKey signs mint/approve/revoke transactions.
	OperatorPrivateKey string
	// ChainID of the target network; 0 means query the node.
	ChainID int64
	// ReconcileFromBlock is the first block the reconciliation pass scans
	// for mint events.
	ReconcileFromBlock uint64

	// Auth configuration
	JWTSecret    string
	AdminWallets []string
	NonceTTL     time.Duration
	SessionTTL   time.Duration

	// Operator notification configuration
	TelegramBotToken string
	TelegramChatID   string
	SMTPHost         string
	SMTPPort         int
	SMTPUser         string
	SMTPPassword     string
	SMTPSender       string
	OperatorEmails   []string
}

// LoadConfig loads the configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Development: getEnvAsBool("DEVELOPMENT", false),
		APIPort:     getEnvAsInt("API_PORT", 8080),

		StorageBackend:   getEnv("STORAGE_BACKEND", StorageMemory),
		PostgresUser:     getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "password"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnvAsInt("POSTGRES_PORT", 5432),
		PostgresDB:       getEnv("POSTGRES_DB", "landchain"),

		RPCURL:             getEnv("RPC_URL", "http://localhost:8545"),
		SPVTokenAddress:    getEnv("SPV_TOKEN_ADDRESS", ""),
		KYCRegistryAddress: getEnv("KYC_REGISTRY_ADDRESS", ""),
		OperatorPrivateKey: getEnv("OPERATOR_PRIVATE_KEY", ""),
		ChainID:            int64(getEnvAsInt("CHAIN_ID", 0)),
		ReconcileFromBlock: uint64(getEnvAsInt("RECONCILE_FROM_BLOCK", 0)),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		AdminWallets: getEnvAsList("ADMIN_WALLETS"),
		NonceTTL:     time.Duration(getEnvAsInt("NONCE_TTL_MINUTES", 10)) * time.Minute,
		SessionTTL:   time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 8)) * time.Hour,

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvAsInt("SMTP_PORT", 587),
		SMTPUser:         getEnv("SMTP_USER", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		SMTPSender:       getEnv("SMTP_SENDER", ""),
		OperatorEmails:   getEnvAsList("OPERATOR_EMAILS"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are properly set
func (c *Config) Validate() error {
	if c.StorageBackend != StorageMemory && c.StorageBackend != StoragePostgres {
		return fmt.Errorf("STORAGE_BACKEND must be %q or %q", StorageMemory, StoragePostgres)
	}
	if c.StorageBackend == StoragePostgres {
		if c.PostgresDB == "" {
			return fmt.Errorf("POSTGRES_DB is required")
		}
		if c.PostgresHost == "" {
			return fmt.Errorf("POSTGRES_HOST is required")
		}
	}

	if c.RPCURL == "" {
		return fmt.Errorf("RPC_URL is required")
	}
	if c.SPVTokenAddress == "" {
		return fmt.Errorf("SPV_TOKEN_ADDRESS is required")
	}
	if !common.IsHexAddress(c.SPVTokenAddress) {
		return fmt.Errorf("invalid SPV_TOKEN_ADDRESS format: %q", c.SPVTokenAddress)
	}
	if c.KYCRegistryAddress == "" {
		return fmt.Errorf("KYC_REGISTRY_ADDRESS is required")
	}
	if !common.IsHexAddress(c.KYCRegistryAddress) {
		return fmt.Errorf("invalid KYC_REGISTRY_ADDRESS format: %q", c.KYCRegistryAddress)
	}
	if c.OperatorPrivateKey == "" {
		return fmt.Errorf("OPERATOR_PRIVATE_KEY is required")
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	for _, wallet := range c.AdminWallets {
		if err := validation.ValidateAddress(wallet); err != nil {
			return fmt.Errorf("invalid ADMIN_WALLETS entry: %w", err)
		}
	}

	return nil
}

// Helper functions to read environment variables
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.ParseBool(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

func getEnvAsList(name string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
