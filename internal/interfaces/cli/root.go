// Package cli is the billed command-line client. It drives the listing and
// submission workflows against a remote server or a local database.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/config"
	"github.com/garyjia/billed/internal/container"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/export"
	"github.com/garyjia/billed/pkg/utils"
)

var version = "1.0.0"

// App carries what the commands share. Fields left nil are built from the
// configuration when the first command runs.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Backend Backend
	Session *SessionFile
}

// Close releases the backend
func (a *App) Close() error {
	if a.Backend == nil {
		return nil
	}
	return a.Backend.Close()
}

func (a *App) setup(configPath string) error {
	if a.Config == nil {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		a.Config = cfg
	}

	if a.Logger == nil {
		logCfg := utils.LoggerConfig{
			Level:      a.Config.Logger.Level,
			OutputPath: a.Config.Logger.OutputPath,
			Format:     a.Config.Logger.Format,
			Component:  "cli",
		}
		// stdout belongs to command output
		if logCfg.OutputPath == "" || logCfg.OutputPath == utils.OutputStdout {
			logCfg.OutputPath = utils.OutputStderr
		}
		logger, err := utils.NewLogger(logCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		a.Logger = logger
	}

	if a.Backend == nil {
		backend, err := NewBackend(a.Config, a.Logger)
		if err != nil {
			return err
		}
		a.Backend = backend
	}

	if a.Session == nil {
		a.Session = &SessionFile{Path: a.Config.Client.SessionFile}
	}
	return nil
}

func (a *App) serviceLogger() service.Logger {
	return container.NewServiceLogger(a.Logger)
}

// openStore returns the bill store for the saved session
func (a *App) openStore(ctx context.Context) (port.BillStore, entity.Session, error) {
	session, err := a.Session.Load()
	if err != nil {
		return nil, entity.Session{}, err
	}
	store, err := a.Backend.Open(ctx, session)
	if err != nil {
		return nil, entity.Session{}, err
	}
	return store, session, nil
}

// listing wires a ListingService whose navigator renders back to cmd
func (a *App) listing(ctx context.Context, cmd *cobra.Command, store port.BillStore) (*service.ListingService, *TextRenderer) {
	renderer := NewTextRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr())
	var listing *service.ListingService
	navigator := NewNavigator(cmd.OutOrStdout(), func() {
		_ = listing.Load(ctx)
	})
	listing = service.NewListingService(store, navigator, renderer, a.serviceLogger())
	return listing, renderer
}

func (a *App) exporter() *export.XLSXExporter {
	return export.NewXLSXExporter(a.Logger)
}

// NewRootCommand builds the billed command tree
func NewRootCommand(app *App) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "billed",
		Short: "Billed - submit and track expense reports",
		Long: `Billed lets employees submit expense reports with a receipt and
follow their review status. Bills are stored by a billed server
(client.store: remote) or directly in a local database (client.store: local).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(configPath)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "Configuration file path")

	root.AddCommand(
		newLoginCommand(app),
		newLogoutCommand(app),
		newBillsCommand(app),
	)
	return root
}

// Execute runs the command tree and reports a failure on errOut
func Execute(ctx context.Context, app *App, args []string, out, errOut io.Writer) error {
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if err != nil {
		if app.Logger != nil {
			app.Logger.Debug("Command failed", zap.Error(err))
		}
		fmt.Fprintf(errOut, "Erreur : %s\n", port.UserMessage(err))
	}
	return err
}
