package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config aggregates every setting the service reads from the environment.
type Config struct {
	Server  ServerConfig
	Meta    MetaConfig
	Sheets  SheetsConfig
	Session SessionConfig
}

// Load reads and validates configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	meta, err := loadMetaConfig()
	if err != nil {
		return nil, err
	}

	sheets, err := loadSheetsConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Meta: meta, Sheets: sheets, Session: session}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "5000"
	}

	if strings.Contains(port, ":") {
		// Allow passing ":5000" or "127.0.0.1:5000" directly.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// MetaConfig holds the Graph API credentials for webhook verification and
// outbound sends.
type MetaConfig struct {
	VerifyToken string
	AccessToken string
	AccountID   string
	GraphAPIURL string
	SendTimeout time.Duration
}

func loadMetaConfig() (MetaConfig, error) {
	verifyToken := strings.TrimSpace(os.Getenv("VERIFY_TOKEN"))
	if verifyToken == "" {
		return MetaConfig{}, fmt.Errorf("VERIFY_TOKEN is required")
	}

	accessToken := strings.TrimSpace(os.Getenv("PAGE_ACCESS_TOKEN"))
	if accessToken == "" {
		return MetaConfig{}, fmt.Errorf("PAGE_ACCESS_TOKEN is required")
	}

	accountID := strings.TrimSpace(os.Getenv("IG_ACCOUNT_ID"))
	if accountID == "" {
		return MetaConfig{}, fmt.Errorf("IG_ACCOUNT_ID is required")
	}

	timeout, err := parseDurationEnv("SEND_TIMEOUT", 8*time.Second)
	if err != nil {
		return MetaConfig{}, err
	}

	return MetaConfig{
		VerifyToken: verifyToken,
		AccessToken: accessToken,
		AccountID:   accountID,
		GraphAPIURL: getEnvOrDefault("GRAPH_API_BASE_URL", "https://graph.facebook.com/v17.0"),
		SendTimeout: timeout,
	}, nil
}

// SheetsConfig points at the spreadsheet webhook that stores leads.
type SheetsConfig struct {
	WebhookURL  string
	SendTimeout time.Duration
}

func loadSheetsConfig() (SheetsConfig, error) {
	url := strings.TrimSpace(os.Getenv("GSHEET_WEBHOOK_URL"))
	if url == "" {
		return SheetsConfig{}, fmt.Errorf("GSHEET_WEBHOOK_URL is required")
	}

	timeout, err := parseDurationEnv("SEND_TIMEOUT", 8*time.Second)
	if err != nil {
		return SheetsConfig{}, err
	}

	return SheetsConfig{WebhookURL: url, SendTimeout: timeout}, nil
}

// SessionConfig controls session expiry.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	ttl, err := parseDurationEnv("SESSION_TTL", 10*time.Minute)
	if err != nil {
		return SessionConfig{}, err
	}

	interval, err := parseDurationEnv("SESSION_SWEEP_INTERVAL", 60*time.Second)
	if err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{TTL: ttl, SweepInterval: interval}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val <= 0 {
		return 0, fmt.Errorf("invalid %s value %q: must be positive", key, raw)
	}
	return val, nil
}
