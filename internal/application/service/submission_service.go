package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/garyjia/billed/internal/application/formatter"
	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/application/receipt"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
)

// SubmissionService drives one new-bill draft from file selection to a
// persisted bill. A service instance handles a single draft.
type SubmissionService struct {
	store     port.BillStore
	formatter *formatter.Formatter
	navigator port.Navigator
	renderer  port.Renderer
	session   entity.Session
	logger    Logger

	mu      sync.Mutex
	machine workflow.StateMachine
	staged  *entity.ReceiptFile
	fields  entity.FormFields
	bill    *entity.Bill
	lastErr error
}

// NewSubmissionService creates a SubmissionService for the session's user
func NewSubmissionService(
	store port.BillStore,
	navigator port.Navigator,
	renderer port.Renderer,
	session entity.Session,
	logger Logger,
) *SubmissionService {
	s := &SubmissionService{
		store:     store,
		formatter: formatter.New(logger),
		navigator: navigator,
		renderer:  renderer,
		session:   session,
		logger:    logger,
	}
	// the guard runs under s.mu, inside Fire
	s.machine = workflow.NewDraftMachine(func(ctx context.Context) bool {
		return s.staged != nil
	})
	return s
}

// HandleFileChange stages the selected receipt. A nil file leaves the draft
// untouched.
//
// A file that is not a JPEG or PNG image is rejected with ErrReceiptRejected.
// The rejection also drops any previously staged receipt and moves the draft
// from FILE_STAGED back to IDLE, so a bad reselection must be followed by a
// new valid selection before the draft can be submitted.
func (s *SubmissionService) HandleFileChange(ctx context.Context, file *entity.ReceiptFile) error {
	if file == nil {
		return nil
	}

	s.mu.Lock()
	if err := s.checkEditableLocked(); err != nil {
		s.mu.Unlock()
		return err
	}

	if !receipt.IsAcceptable(file) {
		if s.machine.CanFire(workflow.TriggerClearFile) {
			if err := s.machine.Fire(ctx, workflow.TriggerClearFile); err != nil {
				s.mu.Unlock()
				return err
			}
		}
		s.staged = nil
		s.lastErr = ErrReceiptRejected
		snapshot := s.snapshotLocked()
		s.mu.Unlock()

		s.logger.Info("Receipt rejected",
			"file_name", file.FileName,
			"mime_type", file.MimeType)
		s.render(snapshot)
		return ErrReceiptRejected
	}

	if err := s.machine.Fire(ctx, workflow.TriggerSelectFile); err != nil {
		s.mu.Unlock()
		return err
	}
	s.staged = file
	s.lastErr = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("Receipt staged",
		"file_name", file.FileName,
		"mime_type", file.MimeType,
		"size", file.Size)
	s.render(snapshot)
	return nil
}

// HandleSubmit builds the bill from the form fields and creates it together
// with the staged receipt. On success the user is sent back to the bills
// list. On failure the fields are kept, the receipt must be selected again
// and the draft can be resubmitted.
func (s *SubmissionService) HandleSubmit(ctx context.Context, fields entity.FormFields) (*entity.Bill, error) {
	s.mu.Lock()
	if err := s.checkEditableLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	s.fields = fields
	// refused from IDLE, and by the staged-file guard
	if err := s.machine.Fire(ctx, workflow.TriggerSubmit); err != nil {
		s.lastErr = ErrNoReceiptStaged
		snapshot := s.snapshotLocked()
		s.mu.Unlock()

		s.logger.Info("Submit ignored, no receipt staged", "email", s.session.Email, "reason", err)
		s.render(snapshot)
		return nil, ErrNoReceiptStaged
	}

	file := s.staged
	partial := s.buildBill(fields, file)
	s.lastErr = nil
	s.mu.Unlock()

	s.logger.Info("Submitting bill",
		"email", partial.Email,
		"type", partial.Type,
		"file_name", partial.FileName)

	created, err := s.store.Create(ctx, partial, file)

	s.mu.Lock()
	if err != nil {
		if fireErr := s.machine.Fire(ctx, workflow.TriggerFail); fireErr != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w (after create failure: %v)", fireErr, err)
		}
		s.staged = nil
		s.lastErr = err
		snapshot := s.snapshotLocked()
		s.mu.Unlock()

		s.logger.Error("Failed to create bill", "email", partial.Email, "error", err)
		s.render(snapshot)
		return nil, err
	}

	if fireErr := s.machine.Fire(ctx, workflow.TriggerSucceed); fireErr != nil {
		s.mu.Unlock()
		return nil, fireErr
	}
	s.staged = nil
	s.bill = created
	s.mu.Unlock()

	s.logger.Info("Bill submitted", "bill_id", created.ID, "file_url", created.FileURL)
	s.navigator.Navigate(port.PathBills)
	return created, nil
}

// State returns the current draft state
func (s *SubmissionService) State() workflow.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.machine.State()
}

// Bill returns the persisted bill once the draft has been submitted
func (s *SubmissionService) Bill() *entity.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bill
}

// Snapshot returns the form state for rendering
func (s *SubmissionService) Snapshot() port.FormSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *SubmissionService) checkEditableLocked() error {
	switch s.machine.State() {
	case workflow.StateSubmitting:
		return ErrSubmissionInFlight
	case workflow.StateSubmitted:
		return ErrAlreadySubmitted
	}
	return nil
}

func (s *SubmissionService) snapshotLocked() port.FormSnapshot {
	snapshot := port.FormSnapshot{
		State:  s.machine.State().String(),
		Fields: s.fields,
		Err:    s.lastErr,
	}
	if s.staged != nil {
		snapshot.StagedFileName = s.staged.FileName
	}
	return snapshot
}

func (s *SubmissionService) buildBill(fields entity.FormFields, file *entity.ReceiptFile) entity.Bill {
	bill := s.formatter.FromFormFields(fields)
	if !bill.Pct.IsSet() {
		bill.Pct = entity.NewNumber(entity.DefaultPct)
	}
	bill.Status = entity.BillStatusPending
	bill.Email = s.session.Email
	bill.FileName = file.FileName
	return bill
}

func (s *SubmissionService) render(snapshot port.FormSnapshot) {
	if s.renderer != nil {
		s.renderer.RenderForm(snapshot)
	}
}
