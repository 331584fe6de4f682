package container

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/recordstore"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	httpapi "github.com/garyjia/billed/internal/interfaces/http"
	"github.com/garyjia/billed/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// ProvideDatabase opens the database and creates the transaction manager.
// Pending embedded migrations are applied before it returns.
func ProvideDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(ctx, database.EmbeddedMigrations()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRecordStore creates the bill repository, receipt storage and the
// record store on top of them.
func ProvideRecordStore(dbBundle *DatabaseBundle, cfg *StorageConfig, logger *zap.Logger) (*recordstore.Local, error) {
	if dbBundle == nil || dbBundle.DB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if cfg == nil || cfg.ReceiptDir == "" {
		return nil, fmt.Errorf("receipt directory is required")
	}

	var (
		repo     port.BillRepository  = repository.NewBillRepository(dbBundle.DB.DB, logger)
		receipts port.ReceiptStorage = storage.NewReceiptStore(cfg.ReceiptDir, logger)
	)

	return recordstore.NewLocal(repo, receipts, dbBundle.TransactionMgr, cfg.PublicBaseURL, logger), nil
}

// ProvideHTTPServer creates the HTTP server exposing the record store.
func ProvideHTTPServer(
	cfg *ServerConfig,
	authCfg *AuthConfig,
	store httpapi.RecordStore,
	health httpapi.HealthChecker,
	logger *zap.Logger,
) (*httpapi.Server, error) {
	if cfg == nil || authCfg == nil {
		return nil, fmt.Errorf("server and auth config are required")
	}
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}

	tokens := httpapi.NewTokenIssuer(authCfg.JWTSecret, authCfg.TokenTTL)
	if !tokens.Enabled() {
		logger.Warn("Authentication disabled: every request runs as admin")
	}

	return httpapi.NewServer(httpapi.ServerConfig{
		Host:           cfg.Host,
		Port:           cfg.Port,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}, store, tokens, health, NewServiceLogger(logger)), nil
}
