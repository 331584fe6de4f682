package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/domain/entity"
)

func newLoginCommand(app *App) *cobra.Command {
	var email, userType string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		Example: `  billed login --email employee@test.tld
  billed login --email admin@test.tld --type Admin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := app.Backend.Login(cmd.Context(), email, userType)
			if err != nil {
				return err
			}
			if err := app.Session.Save(session); err != nil {
				return err
			}

			app.Logger.Info("Signed in",
				zap.String("email", session.Email),
				zap.String("type", session.Type))
			fmt.Fprintf(cmd.OutOrStdout(), "Connecté en tant que %s (%s)\n", session.Email, session.Type)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&userType, "type", entity.UserTypeEmployee, "Account type (Employee or Admin)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Session.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Déconnecté")
			return nil
		},
	}
}
