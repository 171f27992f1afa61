package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnvHelpers(t *testing.T) {
	t.Setenv("CFG_INT", "42")
	t.Setenv("CFG_BAD_INT", "forty")
	t.Setenv("CFG_BOOL", "true")
	t.Setenv("CFG_DURATION", "90s")
	t.Setenv("CFG_BAD_DURATION", "soon")

	assert.Equal(t, 42, envInt("CFG_INT", 1))
	assert.Equal(t, 1, envInt("CFG_BAD_INT", 1))
	assert.Equal(t, 7, envInt("CFG_UNSET_INT", 7))
	assert.True(t, envBool("CFG_BOOL", false))
	assert.Equal(t, 90*time.Second, envDuration("CFG_DURATION", time.Second))
	assert.Equal(t, time.Second, envDuration("CFG_BAD_DURATION", time.Second))
	assert.Equal(t, "fallback", envString("CFG_UNSET_STRING", "fallback"))
}

func TestSanitizedDropsSecrets(t *testing.T) {
	cfg := &Config{
		AppName:           "Cloudly",
		AppEnv:            "production",
		JWTSecret:         "secret",
		TelegramBotToken:  "123:abc",
		MistralAPIKey:     "mistral",
		AdminPasswordHash: "$2a$10$hash",
		S3SecretKey:       "s3",
	}

	got := cfg.Sanitized()

	assert.Equal(t, "Cloudly", got.AppName)
	assert.Empty(t, got.JWTSecret)
	assert.Empty(t, got.TelegramBotToken)
	assert.Empty(t, got.MistralAPIKey)
	assert.Empty(t, got.AdminPasswordHash)
	assert.Empty(t, got.S3SecretKey)
}
