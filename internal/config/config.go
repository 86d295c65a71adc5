package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	Mail    MailConfig
	GLPI    GLPIConfig
	LLM     LLMConfig
	Dataset DatasetConfig
	Ops     OpsConfig
	Logger  LoggerConfig
}

// MailConfig holds the support mailbox credentials and poll cadence.
type MailConfig struct {
	Account      string
	Password     string
	IMAPAddr     string
	SMTPHost     string
	SMTPPort     int
	PollInterval time.Duration
}

// GLPIConfig holds the helpdesk API endpoint and service-account tokens.
type GLPIConfig struct {
	BaseURL   string
	AppToken  string
	UserToken string
}

// LLMConfig points at an OpenAI-compatible chat completions endpoint.
type LLMConfig struct {
	APIKey   string
	Model    string
	Endpoint string
}

// DatasetConfig locates the loan datasets in S3.
type DatasetConfig struct {
	Region       string
	Bucket       string
	CustomersKey string
	FeesKey      string
	LoansKey     string
}

// OpsConfig controls the health/status HTTP listener and local state.
type OpsConfig struct {
	Port    string
	DataDir string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// Load reads configuration from environment variables, applying defaults
// where possible. A .env file is optional — env vars may already be set.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Mail: MailConfig{
			Account:      os.Getenv("EMAIL_ACCOUNT"),
			Password:     os.Getenv("APP_PASSWORD"),
			IMAPAddr:     getEnv("IMAP_ADDR", "imap.gmail.com:993"),
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
			PollInterval: time.Duration(getEnvAsInt("POLL_INTERVAL_SECONDS", 10)) * time.Second,
		},
		GLPI: GLPIConfig{
			BaseURL:   os.Getenv("GLPI_BASE_URL"),
			AppToken:  os.Getenv("GLPI_APP_TOKEN"),
			UserToken: os.Getenv("GLPI_USER_TOKEN"),
		},
		LLM: LLMConfig{
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    getEnv("LLM_MODEL", "gpt-4.1-mini"),
			Endpoint: getEnv("LLM_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
		},
		Dataset: DatasetConfig{
			Region:       getEnv("AWS_REGION", "us-east-1"),
			Bucket:       getEnv("DATASET_BUCKET", "banking-ai-datasets"),
			CustomersKey: getEnv("DATASET_CUSTOMERS_KEY", "datasets/customers.xlsx"),
			FeesKey:      getEnv("DATASET_FEES_KEY", "datasets/fees.xlsx"),
			LoansKey:     getEnv("DATASET_LOANS_KEY", "datasets/loans.xlsx"),
		},
		Ops: OpsConfig{
			Port:    getEnv("PORT", "8080"),
			DataDir: getEnv("DATA_DIR", "."),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	for _, req := range []struct {
		name, val string
	}{
		{"EMAIL_ACCOUNT", cfg.Mail.Account},
		{"APP_PASSWORD", cfg.Mail.Password},
		{"GLPI_BASE_URL", cfg.GLPI.BaseURL},
		{"GLPI_APP_TOKEN", cfg.GLPI.AppToken},
		{"GLPI_USER_TOKEN", cfg.GLPI.UserToken},
		{"LLM_API_KEY", cfg.LLM.APIKey},
	} {
		if req.val == "" {
			return nil, fmt.Errorf("required env var %s is not set", req.name)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
