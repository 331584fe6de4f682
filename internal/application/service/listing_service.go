package service

import (
	"context"
	"net/url"
	"slices"
	"time"

	"github.com/garyjia/billed/internal/application/formatter"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ListingService backs the bills page: it fetches, formats and orders the
// bills and handles the row actions.
type ListingService struct {
	store     port.BillStore
	formatter *formatter.Formatter
	navigator port.Navigator
	renderer  port.Renderer
	logger    Logger
}

// NewListingService creates a new ListingService. A nil renderer skips rendering.
func NewListingService(
	store port.BillStore,
	navigator port.Navigator,
	renderer port.Renderer,
	logger Logger,
) *ListingService {
	return &ListingService{
		store:     store,
		formatter: formatter.New(logger),
		navigator: navigator,
		renderer:  renderer,
		logger:    logger,
	}
}

// GetBills returns every bill as a display row, most recent first.
// A store failure is returned as is; no partial list is produced.
func (s *ListingService) GetBills(ctx context.Context) ([]entity.DisplayRow, error) {
	bills, err := s.store.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list bills", "error", err)
		return nil, err
	}

	rows := make([]entity.DisplayRow, 0, len(bills))
	for _, bill := range bills {
		rows = append(rows, s.formatter.ToDisplayRow(bill))
	}

	return SortByDateDesc(rows), nil
}

// Load renders the loading state, then either the rows or the error page
func (s *ListingService) Load(ctx context.Context) error {
	if s.renderer == nil {
		_, err := s.GetBills(ctx)
		return err
	}

	s.renderer.RenderLoading()

	rows, err := s.GetBills(ctx)
	if err != nil {
		s.renderer.RenderError(port.UserMessage(err))
		return err
	}

	s.renderer.RenderBills(rows)
	return nil
}

// HandleClickNewBill navigates to the new-bill form
func (s *ListingService) HandleClickNewBill() {
	s.navigator.Navigate(port.PathNewBill)
}

// HandleClickPreview opens the receipt preview of a row. A missing or
// malformed receipt URL leaves the preview blank.
func (s *ListingService) HandleClickPreview(row entity.DisplayRow) entity.Preview {
	preview := entity.Preview{
		URL:      row.FileURL,
		FileName: row.FileName,
	}
	if !isPreviewable(row.FileURL) {
		s.logger.Info("Receipt preview left blank", "bill_id", row.ID, "file_url", row.FileURL)
		preview = entity.Preview{FileName: row.FileName, Blank: true}
	}

	if s.renderer != nil {
		s.renderer.ShowPreview(preview)
	}
	return preview
}

// SortByDateDesc orders rows by their stored date, most recent first.
// The sort is stable; rows whose date cannot be parsed go last.
func SortByDateDesc(rows []entity.DisplayRow) []entity.DisplayRow {
	type keyedRow struct {
		row   entity.DisplayRow
		at    time.Time
		valid bool
	}

	keyed := make([]keyedRow, len(rows))
	for i, row := range rows {
		at, err := entity.ParseBillDate(row.RawDate)
		keyed[i] = keyedRow{row: row, at: at, valid: err == nil}
	}

	slices.SortStableFunc(keyed, func(a, b keyedRow) int {
		switch {
		case a.valid && b.valid:
			return b.at.Compare(a.at)
		case a.valid:
			return -1
		case b.valid:
			return 1
		}
		return 0
	})

	sorted := make([]entity.DisplayRow, len(keyed))
	for i, k := range keyed {
		sorted[i] = k.row
	}
	return sorted
}

func isPreviewable(fileURL string) bool {
	if fileURL == "" {
		return false
	}
	u, err := url.Parse(fileURL)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "file":
		return u.Path != ""
	}
	return false
}
