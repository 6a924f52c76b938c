package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreMongo = "mongo"
	StoreJSON  = "json"
)

// DNS providers
const (
	ProviderRoute53    = "route53"
	ProviderCloudflare = "cloudflare"
)

// Config holds all application configuration
type Config struct {
	// HTTP
	Port     string
	GinMode  string
	LogLevel int

	// Storage
	StoreBackend  string
	AtlasURI      string
	MongoDatabase string
	DataDir       string

	// DNS provider
	DNSProvider        string
	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string

	// Cloudflare
	CloudflareAPIToken  string
	CloudflareAPIKey    string
	CloudflareEmail     string
	CloudflareAccountID string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// Records and import
	DefaultTTL        int
	ImportConcurrency int
	UploadDir         string

	// Telegram drift alerts and operator bot
	TelegramBotToken     string
	TelegramAlertChatIDs []int64
	TelegramAllowedUsers []int64

	// MCP
	MCPOwner string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "5000"),
		GinMode:             getEnv("GIN_MODE", "release"),
		StoreBackend:        getEnv("STORE_BACKEND", StoreMongo),
		AtlasURI:            getEnv("ATLAS_URI", ""),
		MongoDatabase:       getEnv("MONGO_DATABASE", "dns-manager"),
		DataDir:             getEnv("DATA_DIR", "./data"),
		DNSProvider:         getEnv("DNS_PROVIDER", ProviderRoute53),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CloudflareAPIToken:  getEnv("CLOUDFLARE_API_TOKEN", ""),
		CloudflareAPIKey:    getEnv("CLOUDFLARE_API_KEY", ""),
		CloudflareEmail:     getEnv("CLOUDFLARE_EMAIL", ""),
		CloudflareAccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		JWTSecret:           getEnv("JWTSECRET", ""),
		UploadDir:           getEnv("UPLOAD_DIR", os.TempDir()),
		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		MCPOwner:            getEnv("MCP_OWNER", "mcp"),
	}

	var err error
	if cfg.LogLevel, err = getEnvInt("LOG_LEVEL", 0); err != nil {
		return nil, err
	}
	if cfg.DefaultTTL, err = getEnvInt("DEFAULT_TTL", 3600); err != nil {
		return nil, err
	}
	if cfg.ImportConcurrency, err = getEnvInt("IMPORT_CONCURRENCY", 8); err != nil {
		return nil, err
	}
	if cfg.JWTTTL, err = time.ParseDuration(getEnv("JWT_TTL", "1h")); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}

	if cfg.TelegramAlertChatIDs, err = parseIDList("TELEGRAM_ALERT_CHAT_IDS"); err != nil {
		return nil, err
	}
	if cfg.TelegramAllowedUsers, err = parseIDList("TELEGRAM_ALLOWED_USERS"); err != nil {
		return nil, err
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMongo:
		if c.AtlasURI == "" {
			return fmt.Errorf("ATLAS_URI is required when STORE_BACKEND=%s", StoreMongo)
		}
	case StoreJSON:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q", StoreMongo, StoreJSON)
	}

	switch c.DNSProvider {
	case ProviderRoute53:
		if c.AWSRegion == "" {
			return fmt.Errorf("AWS_REGION is required")
		}
	case ProviderCloudflare:
		if c.CloudflareAPIToken == "" {
			if c.CloudflareAPIKey == "" || c.CloudflareEmail == "" {
				return fmt.Errorf("either CLOUDFLARE_API_TOKEN or both CLOUDFLARE_API_KEY and CLOUDFLARE_EMAIL are required")
			}
		}
	default:
		return fmt.Errorf("DNS_PROVIDER must be %q or %q", ProviderRoute53, ProviderCloudflare)
	}

	if c.JWTSecret == "" {
		return fmt.Errorf("JWTSECRET is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.DefaultTTL <= 0 {
		return fmt.Errorf("DEFAULT_TTL must be positive")
	}
	if c.ImportConcurrency < 1 {
		return fmt.Errorf("IMPORT_CONCURRENCY must be at least 1")
	}

	return nil
}

// AlertsEnabled returns true if drift alerts should go to Telegram
func (c *Config) AlertsEnabled() bool {
	return c.TelegramBotToken != "" && len(c.TelegramAlertChatIDs) > 0
}

// BotEnabled returns true if the operator bot can run
func (c *Config) BotEnabled() bool {
	return c.TelegramBotToken != "" && len(c.TelegramAllowedUsers) > 0
}

// IsUserAllowed checks if a Telegram user may operate the bot
func (c *Config) IsUserAllowed(userID int64) bool {
	return slices.Contains(c.TelegramAllowedUsers, userID)
}

func parseIDList(key string) ([]int64, error) {
	var ids []int64
	for _, idStr := range strings.Split(getEnv(key, ""), ",") {
		idStr = strings.TrimSpace(idStr)
		if idStr == "" {
			continue
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ID in %s: %s", key, idStr)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
