// Package container provides dependency injection and lifecycle management
// for the Billed record-store backend.
package container

import (
	"fmt"
	"time"
)

// Config holds all configuration for the Container.
// It aggregates configurations for all subsystems.
type Config struct {
	// Database configuration
	Database DatabaseConfig

	// Receipt storage configuration
	Storage StorageConfig

	// Session token configuration
	Auth AuthConfig

	// Server configuration
	Server ServerConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime
	ConnMaxLifetime time.Duration
}

// StorageConfig holds receipt storage settings.
type StorageConfig struct {
	// ReceiptDir is the base directory for stored receipts
	ReceiptDir string

	// PublicBaseURL prefixes receipt URLs written into fileUrl
	PublicBaseURL string
}

// AuthConfig holds session token settings.
type AuthConfig struct {
	// JWTSecret signs session tokens; empty disables authentication
	JWTSecret string

	// TokenTTL is the lifetime of an issued token
	TokenTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
	MaxUploadBytes int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:         "data/billed.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Storage: StorageConfig{
			ReceiptDir: "data/receipts",
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			AllowedOrigins: []string{"http://localhost:8080"},
			MaxUploadBytes: 10 << 20,
		},
	}
}

// Validate checks that required configuration values are present.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.ReceiptDir == "" {
		return fmt.Errorf("storage.receipt_dir is required")
	}
	if c.Auth.JWTSecret != "" && c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive when auth is enabled")
	}
	return nil
}
