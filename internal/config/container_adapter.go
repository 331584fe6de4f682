package config

import (
	"github.com/garyjia/billed/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// The container only needs the backend sections; client settings stay with the CLI.
func (c *Config) ToContainerConfig() *container.Config {
	return &container.Config{
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Storage: container.StorageConfig{
			ReceiptDir:    c.Storage.ReceiptDir,
			PublicBaseURL: c.Server.PublicBaseURL,
		},
		Auth: container.AuthConfig{
			JWTSecret: c.Auth.JWTSecret,
			TokenTTL:  c.Auth.TokenTTL,
		},
		Server: container.ServerConfig{
			Host:           c.Server.Host,
			Port:           c.Server.Port,
			ReadTimeout:    c.Server.ReadTimeout,
			WriteTimeout:   c.Server.WriteTimeout,
			AllowedOrigins: c.Server.AllowedOrigins,
			MaxUploadBytes: c.Server.MaxUploadBytes,
		},
	}
}
