package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Cloudinary CloudinaryConfig
	CORS       CORSConfig
	Product    ProductConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port           int
	UploadMaxBytes int64
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	ConnectAttempts   int
	RetryDelay        time.Duration
	ConnectTimeout    time.Duration
	LockRetryAttempts int
	AutoMigrate       bool
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// Enabled reports whether all three credentials are present.
func (c CloudinaryConfig) Enabled() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type CORSConfig struct {
	AllowedOrigins []string
	// AllowAnyOrigin reflects every Origin back. Debug only.
	AllowAnyOrigin bool
}

type ProductConfig struct {
	PriceUpdateConcurrency int
}

type LogConfig struct {
	Level string
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "inventario")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "inventario")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("DB_CONNECT_ATTEMPTS", 10)
	v.SetDefault("DB_CONNECT_RETRY_DELAY", "5s")
	v.SetDefault("DB_CONNECT_TIMEOUT", "5s")
	v.SetDefault("DB_LOCK_RETRY_ATTEMPTS", 3)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("CLOUDINARY_CLOUD_NAME", "")
	v.SetDefault("CLOUDINARY_API_KEY", "")
	v.SetDefault("CLOUDINARY_API_SECRET", "")
	v.SetDefault("CLOUDINARY_FOLDER", "productos")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOW_ANY_ORIGIN", false)
	v.SetDefault("PRICE_UPDATE_CONCURRENCY", 4)
	v.SetDefault("LOG_LEVEL", "info")

	// Hosting platforms inject PORT; SERVER_PORT wins when both are set.
	if err := v.BindEnv("SERVER_PORT", "SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("binding SERVER_PORT: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(v.GetString("DB_CONN_MAX_LIFETIME"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONN_MAX_LIFETIME: %w", err)
	}

	retryDelay, err := time.ParseDuration(v.GetString("DB_CONNECT_RETRY_DELAY"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONNECT_RETRY_DELAY: %w", err)
	}

	connectTimeout, err := time.ParseDuration(v.GetString("DB_CONNECT_TIMEOUT"))
	if err != nil {
		return nil, fmt.Errorf("parsing DB_CONNECT_TIMEOUT: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetInt("SERVER_PORT"),
			UploadMaxBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		},
		Database: DatabaseConfig{
			URL:               v.GetString("DATABASE_URL"),
			Host:              v.GetString("DB_HOST"),
			Port:              v.GetInt("DB_PORT"),
			User:              v.GetString("DB_USER"),
			Password:          v.GetString("DB_PASSWORD"),
			Name:              v.GetString("DB_NAME"),
			MaxOpenConns:      v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:      v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:   connMaxLifetime,
			ConnectAttempts:   v.GetInt("DB_CONNECT_ATTEMPTS"),
			RetryDelay:        retryDelay,
			ConnectTimeout:    connectTimeout,
			LockRetryAttempts: v.GetInt("DB_LOCK_RETRY_ATTEMPTS"),
			AutoMigrate:       v.GetBool("DB_AUTO_MIGRATE"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
			Folder:    v.GetString("CLOUDINARY_FOLDER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowAnyOrigin: v.GetBool("CORS_ALLOW_ANY_ORIGIN"),
		},
		Product: ProductConfig{
			PriceUpdateConcurrency: v.GetInt("PRICE_UPDATE_CONCURRENCY"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("SERVER_PORT must be positive, got %d", c.Server.Port)
	}
	if c.Database.ConnectAttempts <= 0 {
		return fmt.Errorf("DB_CONNECT_ATTEMPTS must be positive, got %d", c.Database.ConnectAttempts)
	}
	if c.Database.RetryDelay < 0 {
		return fmt.Errorf("DB_CONNECT_RETRY_DELAY must not be negative")
	}
	if c.Database.ConnectTimeout <= 0 {
		return fmt.Errorf("DB_CONNECT_TIMEOUT must be positive, got %s", c.Database.ConnectTimeout)
	}
	if c.Database.LockRetryAttempts <= 0 {
		return fmt.Errorf("DB_LOCK_RETRY_ATTEMPTS must be positive, got %d", c.Database.LockRetryAttempts)
	}
	if c.Product.PriceUpdateConcurrency <= 0 {
		return fmt.Errorf("PRICE_UPDATE_CONCURRENCY must be positive, got %d", c.Product.PriceUpdateConcurrency)
	}
	if c.Server.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive, got %d", c.Server.UploadMaxBytes)
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
