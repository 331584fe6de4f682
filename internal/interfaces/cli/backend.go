package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/repository"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/billed/internal/infrastructure/recordstore"
	"github.com/garyjia/billed/internal/infrastructure/storage"
	"github.com/garyjia/billed/pkg/database"
	"github.com/garyjia/billed/pkg/utils"
)

// Backend is where the CLI signs in and reads or writes bills
type Backend interface {
	Login(ctx context.Context, email, userType string) (entity.Session, error)
	Open(ctx context.Context, session entity.Session) (port.BillStore, error)
	Close() error
}

// NewBackend selects the backend named by client.store
func NewBackend(cfg *config.Config, logger *zap.Logger) (Backend, error) {
	switch cfg.Client.Store {
	case config.StoreRemote:
		return &remoteBackend{cfg: cfg.Client, logger: logger}, nil
	case config.StoreLocal:
		return &localBackend{cfg: cfg, logger: logger}, nil
	}
	return nil, fmt.Errorf("unknown record store %q", cfg.Client.Store)
}

// remoteBackend talks to a billed server over HTTP
type remoteBackend struct {
	cfg    config.ClientConfig
	logger *zap.Logger
}

func (b *remoteBackend) Login(ctx context.Context, email, userType string) (entity.Session, error) {
	return recordstore.NewRemote(b.cfg.APIURL, entity.Session{}, b.cfg.Timeout, b.logger).Login(ctx, email, userType)
}

func (b *remoteBackend) Open(ctx context.Context, session entity.Session) (port.BillStore, error) {
	return recordstore.NewRemote(b.cfg.APIURL, session, b.cfg.Timeout, b.logger), nil
}

func (b *remoteBackend) Close() error {
	return nil
}

// localBackend opens the database and receipt directory directly
type localBackend struct {
	cfg    *config.Config
	logger *zap.Logger

	mu    sync.Mutex
	db    *database.DB
	store *recordstore.Local
}

func (b *localBackend) Login(ctx context.Context, email, userType string) (entity.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := utils.ValidateEmail(email); err != nil {
		return entity.Session{}, err
	}
	if err := utils.ValidateUserType(userType, entity.UserTypeEmployee, entity.UserTypeAdmin); err != nil {
		return entity.Session{}, err
	}
	return entity.Session{Email: email, Type: userType}, nil
}

func (b *localBackend) Open(ctx context.Context, session entity.Session) (port.BillStore, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.store == nil {
		db, err := database.New(database.Config{
			Path:            b.cfg.Database.Path,
			MaxOpenConns:    b.cfg.Database.MaxOpenConns,
			MaxIdleConns:    b.cfg.Database.MaxIdleConns,
			ConnMaxLifetime: b.cfg.Database.ConnMaxLifetime,
		}, b.logger)
		if err != nil {
			return nil, err
		}
		if err := database.NewMigrator(db, b.logger).RunMigrations(ctx, database.EmbeddedMigrations()); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		b.db = db
		b.store = recordstore.NewLocal(
			repository.NewBillRepository(db.DB, b.logger),
			storage.NewReceiptStore(b.cfg.Storage.ReceiptDir, b.logger),
			sqlite.NewDB(db.DB, b.logger),
			b.publicBaseURL(),
			b.logger,
		)
	}

	return b.store.ForSession(session), nil
}

// publicBaseURL points receipt links at a server sharing this database
func (b *localBackend) publicBaseURL() string {
	if b.cfg.Server.PublicBaseURL != "" {
		return b.cfg.Server.PublicBaseURL
	}
	return fmt.Sprintf("http://localhost:%d", b.cfg.Server.Port)
}

func (b *localBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db, b.store = nil, nil
	return err
}
