package service

import (
	"context"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

type mockBillStore struct {
	listFunc   func(ctx context.Context) ([]entity.Bill, error)
	createFunc func(ctx context.Context, partial entity.Bill, file *entity.ReceiptFile) (*entity.Bill, error)
	updateFunc func(ctx context.Context, billID string, partial entity.Bill) (*entity.Bill, error)

	mu          sync.Mutex
	createCalls []entity.Bill
}

func (m *mockBillStore) List(ctx context.Context) ([]entity.Bill, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []entity.Bill{}, nil
}

func (m *mockBillStore) Create(ctx context.Context, partial entity.Bill, file *entity.ReceiptFile) (*entity.Bill, error) {
	m.mu.Lock()
	m.createCalls = append(m.createCalls, partial)
	m.mu.Unlock()

	if m.createFunc != nil {
		return m.createFunc(ctx, partial, file)
	}
	created := partial
	created.ID = "generated"
	return &created, nil
}

func (m *mockBillStore) Update(ctx context.Context, billID string, partial entity.Bill) (*entity.Bill, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, billID, partial)
	}
	updated := partial
	updated.ID = billID
	return &updated, nil
}

func (m *mockBillStore) creates() []entity.Bill {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.Bill{}, m.createCalls...)
}

type mockNavigator struct {
	mu    sync.Mutex
	paths []port.Path
}

func (m *mockNavigator) Navigate(path port.Path) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paths = append(m.paths, path)
}

func (m *mockNavigator) visited() []port.Path {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]port.Path{}, m.paths...)
}

type mockRenderer struct {
	loading   int
	errors    []string
	bills     [][]entity.DisplayRow
	previews  []entity.Preview
	snapshots []port.FormSnapshot
}

func (m *mockRenderer) RenderLoading() { m.loading++ }

func (m *mockRenderer) RenderError(message string) { m.errors = append(m.errors, message) }

func (m *mockRenderer) RenderBills(rows []entity.DisplayRow) { m.bills = append(m.bills, rows) }

func (m *mockRenderer) ShowPreview(preview entity.Preview) {
	m.previews = append(m.previews, preview)
}

func (m *mockRenderer) RenderForm(snapshot port.FormSnapshot) {
	m.snapshots = append(m.snapshots, snapshot)
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}
