package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/service"
	"github.com/garyjia/billed/internal/domain/entity"
)

func newBillsCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "List your expense reports, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, err := app.openStore(ctx)
			if err != nil {
				return err
			}
			listing, _ := app.listing(ctx, cmd, store)
			return listing.Load(ctx)
		},
	}

	cmd.AddCommand(
		newBillsNewCommand(app),
		newBillsPreviewCommand(app),
		newBillsExportCommand(app),
		newBillsReviewCommand(app),
	)
	return cmd
}

func newBillsNewCommand(app *App) *cobra.Command {
	var (
		fields   entity.FormFields
		filePath string
	)

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Submit a new expense report with its receipt",
		Long: `Submit a new expense report. The receipt must be a JPEG or PNG image;
its kind is detected from the file content. The VAT percentage defaults to 20.`,
		Example: `  billed bills new --type "Hôtel et logement" --name encore --amount 400 \
    --date 2004-04-04 --vat 80 --file receipt.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, session, err := app.openStore(ctx)
			if err != nil {
				return err
			}

			file, err := readReceiptFile(filePath)
			if err != nil {
				return err
			}

			listing, renderer := app.listing(ctx, cmd, store)
			navigator := NewNavigator(cmd.OutOrStdout(), func() { _ = listing.Load(ctx) })
			submission := service.NewSubmissionService(store, navigator, renderer, session, app.serviceLogger())

			if err := submission.HandleFileChange(ctx, file); err != nil {
				return err
			}
			bill, err := submission.HandleSubmit(ctx, fields)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Note de frais créée : %s\n", bill.ID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&fields.Type, "type", "", "Expense type")
	flags.StringVar(&fields.Name, "name", "", "Expense name")
	flags.StringVar(&fields.Amount, "amount", "", "Amount including VAT, in euros")
	flags.StringVar(&fields.Date, "date", "", "Expense date (YYYY-MM-DD)")
	flags.StringVar(&fields.VAT, "vat", "", "VAT amount")
	flags.StringVar(&fields.Pct, "pct", "", "VAT percentage (default 20)")
	flags.StringVar(&fields.Commentary, "commentary", "", "Free-text comment")
	flags.StringVar(&filePath, "file", "", "Receipt image (JPEG or PNG)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readReceiptFile loads a receipt and declares the kind sniffed from its content
func readReceiptFile(path string) (*entity.ReceiptFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	kind := mimetype.Detect(content).String()
	return entity.NewReceiptFile(filepath.Base(path), kind, content), nil
}

func newBillsPreviewCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <bill-id>",
		Short: "Show the receipt link of a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, err := app.openStore(ctx)
			if err != nil {
				return err
			}

			listing, _ := app.listing(ctx, cmd, store)
			rows, err := listing.GetBills(ctx)
			if err != nil {
				return err
			}
			for _, row := range rows {
				if row.ID == args[0] {
					listing.HandleClickPreview(row)
					return nil
				}
			}
			return port.NewStoreError(port.ErrNotFound, "preview", fmt.Sprintf("bill %s not found", args[0]), nil)
		},
	}
}

func newBillsExportCommand(app *App) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the bills list to a spreadsheet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, _, err := app.openStore(ctx)
			if err != nil {
				return err
			}

			listing, _ := app.listing(ctx, cmd, store)
			rows, err := listing.GetBills(ctx)
			if err != nil {
				return err
			}

			path, err := app.exporter().Export(ctx, rows, outputPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d notes de frais exportées dans %s\n", len(rows), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "out", "o", "bills.xlsx", "Output spreadsheet path")
	return cmd
}

func newBillsReviewCommand(app *App) *cobra.Command {
	var status, comment string

	cmd := &cobra.Command{
		Use:   "review <bill-id>",
		Short: "Accept or refuse a bill (administrators)",
		Example: `  billed bills review 47qAXb6fIm2zOKkLzMro --status accepted
  billed bills review 47qAXb6fIm2zOKkLzMro --status refused --comment "receipt unreadable"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			billStatus := entity.BillStatus(status)
			if !billStatus.IsValid() {
				return fmt.Errorf("status must be pending, accepted or refused, got %q", status)
			}

			ctx := cmd.Context()
			store, _, err := app.openStore(ctx)
			if err != nil {
				return err
			}

			updated, err := store.Update(ctx, args[0], entity.Bill{Status: billStatus, CommentAdmin: comment})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Note de frais %s : %s\n", updated.ID, updated.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "New status (pending, accepted or refused)")
	cmd.Flags().StringVar(&comment, "comment", "", "Comment for the employee")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}
