package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("VIEW_DEBOUNCE_WINDOW", "")
	t.Setenv("RENDER_CACHE_SIZE", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.ViewDebounceWindow)
	assert.Equal(t, 512, cfg.RenderCacheSize)
	assert.Equal(t, 15*time.Minute, cfg.JWTAccessExpiry)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("VIEW_DEBOUNCE_WINDOW", "5m")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("RENDER_CACHE_SIZE", "64")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5*time.Minute, cfg.ViewDebounceWindow)
	assert.True(t, cfg.MinIOUseSSL)
	assert.Equal(t, 64, cfg.RenderCacheSize)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("VIEW_DEBOUNCE_WINDOW", "soon")
	t.Setenv("MINIO_USE_SSL", "maybe")
	t.Setenv("RENDER_CACHE_SIZE", "lots")

	cfg := Load()

	assert.Equal(t, 30*time.Minute, cfg.ViewDebounceWindow)
	assert.False(t, cfg.MinIOUseSSL)
	assert.Equal(t, 512, cfg.RenderCacheSize)
}
