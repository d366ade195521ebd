package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"alphatron/models"
)

type SlackConfig struct {
	SigningSecret   string `env:"SLACK_SIGNING_SECRET"`
	AlertWebhookURL string `env:"SLACK_ALERT_WEBHOOK_URL"`
}

// VerifiesSignatures returns true if request signatures should be checked
func (c SlackConfig) VerifiesSignatures() bool {
	return c.SigningSecret != ""
}

// AlertsEnabled returns true if error alerts should be posted to Slack
func (c SlackConfig) AlertsEnabled() bool {
	return c.AlertWebhookURL != ""
}

type AppConfig struct {
	DatabaseURL     string        `env:"DB_URL,required,notEmpty"`
	DatabaseSchema  string        `env:"DB_SCHEMA,required,notEmpty"`
	Port            string        `env:"PORT"                      envDefault:"8080"`
	Environment     string        `env:"ENVIRONMENT"               envDefault:"dev"`
	ServerLogsURL   string        `env:"SERVER_LOGS_URL"`
	SettingsDocID   string        `env:"SETTINGS_DOCUMENT_ID"`
	SettingsRefresh time.Duration `env:"SETTINGS_REFRESH_INTERVAL" envDefault:"5m"`
	FlushTimeout    time.Duration `env:"ACTION_FLUSH_TIMEOUT"      envDefault:"2500ms"`
	FeatureWorkers  int           `env:"FEATURE_WORKERS"           envDefault:"8"`

	SlackConfig SlackConfig
}

func LoadConfig() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ Could not load .env file, continuing with system env vars")
	}

	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (*AppConfig, error) {
	config, err := env.ParseAs[AppConfig]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if config.SettingsDocID == "" {
		config.SettingsDocID = models.DefaultSettingsDocumentID
	}
	if config.FlushTimeout <= 0 {
		return nil, fmt.Errorf("ACTION_FLUSH_TIMEOUT must be positive, got %s", config.FlushTimeout)
	}
	if config.FeatureWorkers < 1 {
		return nil, fmt.Errorf("FEATURE_WORKERS must be at least 1, got %d", config.FeatureWorkers)
	}

	if config.SlackConfig.VerifiesSignatures() {
		log.Printf("✅ Slack request signature verification enabled")
	} else {
		log.Printf("⚠️ SLACK_SIGNING_SECRET not set - relying on verification token only")
	}

	if config.SlackConfig.AlertsEnabled() {
		log.Printf("✅ Slack error alerts enabled")
	} else {
		log.Printf("⚠️ SLACK_ALERT_WEBHOOK_URL not set - error alerts will only be logged")
	}

	return &config, nil
}
