package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alphatron/models"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost:5432/alphatron?sslmode=disable")
	t.Setenv("DB_SCHEMA", "alphatron_test")
}

func TestParse(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		setRequiredEnv(t)

		cfg, err := Parse()
		require.NoError(t, err)

		assert.Equal(t, "alphatron_test", cfg.DatabaseSchema)
		assert.Equal(t, "8080", cfg.Port)
		assert.Equal(t, "dev", cfg.Environment)
		assert.Equal(t, models.DefaultSettingsDocumentID, cfg.SettingsDocID)
		assert.Equal(t, 5*time.Minute, cfg.SettingsRefresh)
		assert.Equal(t, 2500*time.Millisecond, cfg.FlushTimeout)
		assert.Equal(t, 8, cfg.FeatureWorkers)
		assert.False(t, cfg.SlackConfig.VerifiesSignatures())
		assert.False(t, cfg.SlackConfig.AlertsEnabled())
	})

	t.Run("reads overrides", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("PORT", "3000")
		t.Setenv("ENVIRONMENT", "prod")
		t.Setenv("SETTINGS_DOCUMENT_ID", "custom_doc")
		t.Setenv("SETTINGS_REFRESH_INTERVAL", "30s")
		t.Setenv("ACTION_FLUSH_TIMEOUT", "1s")
		t.Setenv("FEATURE_WORKERS", "2")
		t.Setenv("SLACK_SIGNING_SECRET", "shh")
		t.Setenv("SLACK_ALERT_WEBHOOK_URL", "https://hooks.slack.com/services/T/B/X")

		cfg, err := Parse()
		require.NoError(t, err)

		assert.Equal(t, "3000", cfg.Port)
		assert.Equal(t, "prod", cfg.Environment)
		assert.Equal(t, "custom_doc", cfg.SettingsDocID)
		assert.Equal(t, 30*time.Second, cfg.SettingsRefresh)
		assert.Equal(t, time.Second, cfg.FlushTimeout)
		assert.Equal(t, 2, cfg.FeatureWorkers)
		assert.True(t, cfg.SlackConfig.VerifiesSignatures())
		assert.True(t, cfg.SlackConfig.AlertsEnabled())
	})

	t.Run("fails without database url", func(t *testing.T) {
		t.Setenv("DB_URL", "")
		t.Setenv("DB_SCHEMA", "alphatron_test")

		_, err := Parse()
		assert.Error(t, err)
	})

	t.Run("rejects non-positive flush timeout", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("ACTION_FLUSH_TIMEOUT", "0s")

		_, err := Parse()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ACTION_FLUSH_TIMEOUT")
	})

	t.Run("rejects zero workers", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("FEATURE_WORKERS", "0")

		_, err := Parse()
		assert.Error(t, err)
	})

	t.Run("rejects malformed duration", func(t *testing.T) {
		setRequiredEnv(t)
		t.Setenv("SETTINGS_REFRESH_INTERVAL", "soon")

		_, err := Parse()
		assert.Error(t, err)
	})
}
