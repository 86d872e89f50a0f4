package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// empty values are treated as unset
	t.Setenv("PORT", "")
	t.Setenv("SERVER_PORT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.Server.UploadMaxBytes)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, 10, cfg.Database.ConnectAttempts)
	assert.Equal(t, 5*time.Second, cfg.Database.RetryDelay)
	assert.Equal(t, 5*time.Second, cfg.Database.ConnectTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 3, cfg.Database.LockRetryAttempts)
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "productos", cfg.Cloudinary.Folder)
	assert.False(t, cfg.Cloudinary.Enabled())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.CORS.AllowAnyOrigin)
	assert.Equal(t, 4, cfg.Product.PriceUpdateConcurrency)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_CONNECT_ATTEMPTS", "3")
	t.Setenv("DB_CONNECT_RETRY_DELAY", "250ms")
	t.Setenv("DB_CONNECT_TIMEOUT", "2s")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "demo")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("CORS_ALLOW_ANY_ORIGIN", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Database.ConnectAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.RetryDelay)
	assert.Equal(t, 2*time.Second, cfg.Database.ConnectTimeout)
	assert.True(t, cfg.Cloudinary.Enabled())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.CORS.AllowAnyOrigin)
}

func TestLoad_PortFallback(t *testing.T) {
	t.Setenv("PORT", "7000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "bad lifetime", key: "DB_CONN_MAX_LIFETIME", val: "forever"},
		{name: "bad retry delay", key: "DB_CONNECT_RETRY_DELAY", val: "soon"},
		{name: "zero attempts", key: "DB_CONNECT_ATTEMPTS", val: "0"},
		{name: "bad connect timeout", key: "DB_CONNECT_TIMEOUT", val: "quick"},
		{name: "zero connect timeout", key: "DB_CONNECT_TIMEOUT", val: "0s"},
		{name: "zero lock retries", key: "DB_LOCK_RETRY_ATTEMPTS", val: "0"},
		{name: "zero concurrency", key: "PRICE_UPDATE_CONCURRENCY", val: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			cfg, err := Load()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
