package recordstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/receipt"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/infrastructure/storage"
)

// FilesRoute is the URL prefix receipts are served from
const FilesRoute = "/files/"

// Local is the record store itself: bills in the repository, receipts in
// receipt storage. Each operation runs on behalf of a session, see ForSession.
type Local struct {
	repo          port.BillRepository
	receipts      port.ReceiptStorage
	txManager     port.TransactionManager
	publicBaseURL string
	logger        *zap.Logger
}

// NewLocal creates a Local store. publicBaseURL prefixes receipt URLs.
func NewLocal(
	repo port.BillRepository,
	receipts port.ReceiptStorage,
	txManager port.TransactionManager,
	publicBaseURL string,
	logger *zap.Logger,
) *Local {
	return &Local{
		repo:          repo,
		receipts:      receipts,
		txManager:     txManager,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

// ForSession returns a BillStore acting as the given user. Employees see
// and edit their own bills only; admins see every bill and may review them.
func (s *Local) ForSession(session entity.Session) port.BillStore {
	return &sessionStore{local: s, session: session}
}

// ReceiptReference pairs a receipt key with the public URL it is served from
func (s *Local) ReceiptReference(key string) entity.StoredFileReference {
	return entity.StoredFileReference{Key: key, URL: s.publicBaseURL + FilesRoute + key}
}

// Receipt returns the stored content and detected kind of a receipt
func (s *Local) Receipt(ctx context.Context, key string) ([]byte, string, error) {
	content, err := s.receipts.Read(ctx, key)
	if err != nil {
		if errors.Is(err, port.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, "", port.NewStoreError(port.ErrNotFound, "receipt", "receipt not found", err)
		}
		return nil, "", port.NewStoreError(port.ErrStoreError, "receipt", "", err)
	}
	return content, mimetype.Detect(content).String(), nil
}

func (s *Local) list(ctx context.Context, session entity.Session) ([]entity.Bill, error) {
	var (
		bills []*entity.Bill
		err   error
	)
	if session.IsAdmin() {
		bills, err = s.repo.List(ctx)
	} else {
		bills, err = s.repo.ListByEmail(ctx, session.Email)
	}
	if err != nil {
		return nil, port.NewStoreError(port.ErrStoreError, "list", "", err)
	}

	result := make([]entity.Bill, 0, len(bills))
	for _, b := range bills {
		result = append(result, *b)
	}
	return result, nil
}

func (s *Local) create(ctx context.Context, session entity.Session, partial entity.Bill, file *entity.ReceiptFile) (*entity.Bill, error) {
	const op = "create"

	if file == nil || len(file.Content) == 0 {
		return nil, port.NewStoreError(port.ErrValidationRejected, op, "receipt file is required", nil)
	}
	detected := mimetype.Detect(file.Content)
	if !receipt.IsAcceptable(file) || !receipt.IsAcceptableKind(detected.String()) {
		s.logger.Info("Rejected receipt content",
			zap.String("file_name", file.FileName),
			zap.String("declared", file.MimeType),
			zap.String("detected", detected.String()))
		return nil, port.NewStoreError(port.ErrValidationRejected, op, "receipt must be a jpg, jpeg or png image", nil)
	}

	bill := partial
	bill.ID = uuid.NewString()
	if !session.IsAdmin() || bill.Email == "" {
		bill.Email = session.Email
	}
	if bill.Status == "" {
		bill.Status = entity.BillStatusPending
	}
	if bill.FileName == "" {
		bill.FileName = file.FileName
	}
	if !session.IsAdmin() {
		bill.Status = entity.BillStatusPending
		bill.CommentAdmin = ""
	}

	ref := s.ReceiptReference(storage.NewReceiptKey(bill.Email, file.FileName))
	bill.FileURL = ref.URL

	if msg, ok := validateBill(&bill); !ok {
		return nil, port.NewStoreError(port.ErrValidationRejected, op, msg, nil)
	}

	saved := false
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, &bill); err != nil {
			return port.NewStoreError(port.ErrStoreError, op, "", err)
		}
		if err := s.receipts.Save(txCtx, ref.Key, file.Content); err != nil {
			return port.NewStoreError(port.ErrUploadFailed, op, "receipt could not be stored", err)
		}
		saved = true
		return nil
	})
	if err != nil {
		if saved {
			// commit failed after the receipt was written
			if delErr := s.receipts.Delete(ctx, ref.Key); delErr != nil {
				s.logger.Error("Failed to remove orphaned receipt", zap.String("key", ref.Key), zap.Error(delErr))
			}
		}
		s.logger.Error("Failed to create bill", zap.String("email", bill.Email), zap.Error(err))
		var storeErr *port.StoreError
		if !errors.As(err, &storeErr) {
			err = port.NewStoreError(port.ErrStoreError, op, "", err)
		}
		return nil, err
	}

	s.logger.Info("Bill created",
		zap.String("bill_id", bill.ID),
		zap.String("email", bill.Email),
		zap.String("receipt_key", ref.Key))
	return &bill, nil
}

func (s *Local) update(ctx context.Context, session entity.Session, billID string, partial entity.Bill) (*entity.Bill, error) {
	const op = "update"

	if !session.IsAdmin() && (partial.Status != "" || partial.CommentAdmin != "") {
		return nil, port.NewStoreError(port.ErrForbidden, op, "only administrators can review bills", nil)
	}

	var updated *entity.Bill
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.GetByID(txCtx, billID)
		if err != nil {
			return port.NewStoreError(port.ErrStoreError, op, "", err)
		}
		if existing == nil || (!session.IsAdmin() && existing.Email != session.Email) {
			return port.NewStoreError(port.ErrNotFound, op, fmt.Sprintf("bill %s not found", billID), nil)
		}

		existing.Merge(partial)
		if msg, ok := validateBill(existing); !ok {
			return port.NewStoreError(port.ErrValidationRejected, op, msg, nil)
		}

		if err := s.repo.Update(txCtx, existing); err != nil {
			if errors.Is(err, port.ErrNotFound) {
				return port.NewStoreError(port.ErrNotFound, op, fmt.Sprintf("bill %s not found", billID), err)
			}
			return port.NewStoreError(port.ErrStoreError, op, "", err)
		}
		updated = existing
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update bill", zap.String("bill_id", billID), zap.Error(err))
		var storeErr *port.StoreError
		if !errors.As(err, &storeErr) {
			err = port.NewStoreError(port.ErrStoreError, op, "", err)
		}
		return nil, err
	}

	s.logger.Info("Bill updated",
		zap.String("bill_id", updated.ID),
		zap.String("status", updated.Status.String()))
	return updated, nil
}

type sessionStore struct {
	local   *Local
	session entity.Session
}

func (s *sessionStore) List(ctx context.Context) ([]entity.Bill, error) {
	return s.local.list(ctx, s.session)
}

func (s *sessionStore) Create(ctx context.Context, partial entity.Bill, file *entity.ReceiptFile) (*entity.Bill, error) {
	return s.local.create(ctx, s.session, partial, file)
}

func (s *sessionStore) Update(ctx context.Context, billID string, partial entity.Bill) (*entity.Bill, error) {
	return s.local.update(ctx, s.session, billID, partial)
}

// Verify interface compliance
var _ port.BillStore = (*sessionStore)(nil)
