package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

const billColumns = `id, type, name, amount, date, vat, pct, commentary,
	file_url, file_name, status, comment_admin, email`

// BillRepository implements port.BillRepository
type BillRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewBillRepository creates a new bill repository
func NewBillRepository(db *sql.DB, logger *zap.Logger) port.BillRepository {
	return &BillRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a bill. The id must already be assigned.
func (r *BillRepository) Create(ctx context.Context, bill *entity.Bill) error {
	if bill.ID == "" {
		return fmt.Errorf("bill id is required")
	}

	query := `INSERT INTO bills (` + billColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		bill.ID,
		bill.Type,
		bill.Name,
		bill.Amount,
		bill.Date,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		bill.FileURL,
		bill.FileName,
		bill.Status,
		bill.CommentAdmin,
		bill.Email,
	)
	if err != nil {
		r.logger.Error("Failed to create bill", zap.String("id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to create bill: %w", err)
	}

	return nil
}

// GetByID retrieves a bill by ID. Returns nil, nil when it does not exist.
func (r *BillRepository) GetByID(ctx context.Context, id string) (*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE id = ?`

	bill, err := scanBill(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get bill by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}

	return bill, nil
}

// List returns every bill in insertion order
func (r *BillRepository) List(ctx context.Context) ([]*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills ORDER BY created_at, rowid`
	return r.query(ctx, query)
}

// ListByEmail returns the bills submitted by one user in insertion order
func (r *BillRepository) ListByEmail(ctx context.Context, email string) ([]*entity.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE email = ? ORDER BY created_at, rowid`
	return r.query(ctx, query, email)
}

// Update overwrites the mutable fields of a bill
func (r *BillRepository) Update(ctx context.Context, bill *entity.Bill) error {
	query := `
		UPDATE bills SET
			type = ?, name = ?, amount = ?, date = ?, vat = ?, pct = ?,
			commentary = ?, status = ?, comment_admin = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		bill.Type,
		bill.Name,
		bill.Amount,
		bill.Date,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		bill.Status,
		bill.CommentAdmin,
		bill.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update bill", zap.String("id", bill.ID), zap.Error(err))
		return fmt.Errorf("failed to update bill: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return port.ErrNotFound
	}

	return nil
}

func (r *BillRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.Bill, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list bills", zap.Error(err))
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	bills := []*entity.Bill{}
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		bills = append(bills, bill)
	}

	return bills, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBill(row rowScanner) (*entity.Bill, error) {
	var bill entity.Bill
	err := row.Scan(
		&bill.ID,
		&bill.Type,
		&bill.Name,
		&bill.Amount,
		&bill.Date,
		&bill.VAT,
		&bill.Pct,
		&bill.Commentary,
		&bill.FileURL,
		&bill.FileName,
		&bill.Status,
		&bill.CommentAdmin,
		&bill.Email,
	)
	if err != nil {
		return nil, err
	}
	return &bill, nil
}
