package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Record store variants selectable by the client
const (
	StoreRemote = "remote"
	StoreLocal  = "local"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Client   ClientConfig   `mapstructure:"client"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	PublicBaseURL  string        `mapstructure:"public_base_url"` // prefix of receipt URLs
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// StorageConfig holds receipt storage configuration
type StorageConfig struct {
	ReceiptDir string `mapstructure:"receipt_dir"`
}

// AuthConfig holds session token configuration.
// An empty secret disables authentication.
type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

// ClientConfig holds CLI client configuration
type ClientConfig struct {
	Store       string        `mapstructure:"store"`
	APIURL      string        `mapstructure:"api_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	SessionFile string        `mapstructure:"session_file"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables.
// An empty configPath, or a path that does not exist, leaves defaults and
// environment in effect.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BILLED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	if err := bindEnvVars(v); err != nil {
		return nil, fmt.Errorf("failed to bind environment: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:8080"})
	v.SetDefault("server.max_upload_bytes", 10<<20)
	v.SetDefault("server.public_base_url", "")

	// Database defaults
	v.SetDefault("database.path", "data/billed.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	// Storage defaults
	v.SetDefault("storage.receipt_dir", "data/receipts")

	// Auth defaults
	v.SetDefault("auth.token_ttl", 24*time.Hour)

	// Client defaults
	v.SetDefault("client.store", StoreRemote)
	v.SetDefault("client.api_url", "http://localhost:8080")
	v.SetDefault("client.timeout", 30*time.Second)
	v.SetDefault("client.session_file", defaultSessionFile())

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars(v *viper.Viper) error {
	// Sensitive credentials from environment
	if err := v.BindEnv("auth.jwt_secret", "BILLED_JWT_SECRET"); err != nil {
		return err
	}
	return v.BindEnv("client.api_url", "BILLED_API_URL")
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".billed-session.json"
	}
	return dir + string(os.PathSeparator) + "billed" + string(os.PathSeparator) + "session.json"
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.max_upload_bytes must not be negative")
	}

	// Validate storage locations
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Storage.ReceiptDir == "" {
		return fmt.Errorf("storage.receipt_dir is required")
	}

	// Validate client
	switch c.Client.Store {
	case StoreRemote:
		if c.Client.APIURL == "" {
			return fmt.Errorf("client.api_url is required for the remote store")
		}
	case StoreLocal:
	default:
		return fmt.Errorf("client.store must be %q or %q, got %q", StoreRemote, StoreLocal, c.Client.Store)
	}

	// Validate logger
	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format must be json or console, got %q", c.Logger.Format)
	}

	return nil
}
