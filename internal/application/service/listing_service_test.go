package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
)

func fixtureBills() []entity.Bill {
	return []entity.Bill{
		{ID: "a", Type: entity.ExpenseTypeTransport, Name: "train", Date: "2003-03-03", Status: entity.BillStatusAccepted, Amount: entity.NewNumber(100)},
		{ID: "b", Type: entity.ExpenseTypeHotel, Name: "encore", Date: "2004-04-04", Status: entity.BillStatusPending, Amount: entity.NewNumber(400)},
		{ID: "c", Type: entity.ExpenseTypeRestaurant, Name: "dîner", Date: "2002-02-02", Status: entity.BillStatusRefused, Amount: entity.NewNumber(50)},
	}
}

func TestListingService_GetBills(t *testing.T) {
	t.Run("orders bills by date descending", func(t *testing.T) {
		store := &mockBillStore{
			listFunc: func(ctx context.Context) ([]entity.Bill, error) {
				return fixtureBills(), nil
			},
		}
		svc := NewListingService(store, &mockNavigator{}, &mockRenderer{}, &mockLogger{})

		rows, err := svc.GetBills(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, "2004-04-04", rows[0].RawDate)
		assert.Equal(t, "2003-03-03", rows[1].RawDate)
		assert.Equal(t, "2002-02-02", rows[2].RawDate)

		assert.Equal(t, "4 Avr. 04", rows[0].Date)
		assert.Equal(t, "En attente", rows[0].Status)
		assert.Equal(t, "Accepté", rows[1].Status)
		assert.Equal(t, "Refusé", rows[2].Status)
	})

	t.Run("keeps a bill with a malformed date", func(t *testing.T) {
		bills := append(fixtureBills(), entity.Bill{ID: "d", Date: "hier", Status: entity.BillStatusPending})
		store := &mockBillStore{
			listFunc: func(ctx context.Context) ([]entity.Bill, error) { return bills, nil },
		}
		svc := NewListingService(store, &mockNavigator{}, &mockRenderer{}, &mockLogger{})

		rows, err := svc.GetBills(context.Background())
		require.NoError(t, err)
		require.Len(t, rows, 4)

		assert.Equal(t, "d", rows[3].ID)
		assert.Equal(t, "hier", rows[3].Date)
		assert.False(t, rows[3].DateIsValid)
	})

	t.Run("empty store gives an empty list", func(t *testing.T) {
		svc := NewListingService(&mockBillStore{}, &mockNavigator{}, &mockRenderer{}, &mockLogger{})

		rows, err := svc.GetBills(context.Background())
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		store := &mockBillStore{
			listFunc: func(ctx context.Context) ([]entity.Bill, error) {
				return nil, port.NewStoreError(port.ErrStoreError, "list", "Erreur 404", nil)
			},
		}
		svc := NewListingService(store, &mockNavigator{}, &mockRenderer{}, &mockLogger{})

		rows, err := svc.GetBills(context.Background())
		assert.Nil(t, rows)
		assert.ErrorIs(t, err, port.ErrStoreError)
	})
}

func TestSortByDateDesc_Stable(t *testing.T) {
	rows := []entity.DisplayRow{
		{ID: "bad1", RawDate: "x"},
		{ID: "first", RawDate: "2001-01-01"},
		{ID: "bad2", RawDate: ""},
		{ID: "second", RawDate: "2001-01-01"},
		{ID: "newest", RawDate: "2010-10-10"},
	}

	sorted := SortByDateDesc(rows)

	ids := make([]string, len(sorted))
	for i, r := range sorted {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"newest", "first", "second", "bad1", "bad2"}, ids)
	assert.Equal(t, "bad1", rows[0].ID, "input is not modified")
}

func TestListingService_Load(t *testing.T) {
	t.Run("renders rows", func(t *testing.T) {
		store := &mockBillStore{
			listFunc: func(ctx context.Context) ([]entity.Bill, error) { return fixtureBills(), nil },
		}
		renderer := &mockRenderer{}
		svc := NewListingService(store, &mockNavigator{}, renderer, &mockLogger{})

		require.NoError(t, svc.Load(context.Background()))
		assert.Equal(t, 1, renderer.loading)
		require.Len(t, renderer.bills, 1)
		assert.Len(t, renderer.bills[0], 3)
		assert.Empty(t, renderer.errors)
	})

	t.Run("renders the server message on failure", func(t *testing.T) {
		store := &mockBillStore{
			listFunc: func(ctx context.Context) ([]entity.Bill, error) {
				return nil, port.NewStoreError(port.ErrStoreError, "list", "Erreur 500", nil)
			},
		}
		renderer := &mockRenderer{}
		svc := NewListingService(store, &mockNavigator{}, renderer, &mockLogger{})

		err := svc.Load(context.Background())
		assert.Error(t, err)
		assert.Equal(t, []string{"Erreur 500"}, renderer.errors)
		assert.Empty(t, renderer.bills)
	})
}

func TestListingService_HandleClickNewBill(t *testing.T) {
	nav := &mockNavigator{}
	svc := NewListingService(&mockBillStore{}, nav, &mockRenderer{}, &mockLogger{})

	svc.HandleClickNewBill()

	assert.Equal(t, []port.Path{port.PathNewBill}, nav.visited())
}

func TestListingService_HandleClickPreview(t *testing.T) {
	tests := []struct {
		name    string
		fileURL string
		blank   bool
	}{
		{"https url", "https://test.storage.tld/v0/b/billable.png", false},
		{"file url", "file:///tmp/receipts/bill.png", false},
		{"empty", "", true},
		{"null literal", "null", true},
		{"no host", "https://", true},
		{"malformed", "http://[::1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer := &mockRenderer{}
			svc := NewListingService(&mockBillStore{}, &mockNavigator{}, renderer, &mockLogger{})

			preview := svc.HandleClickPreview(entity.DisplayRow{ID: "a", FileURL: tt.fileURL, FileName: "bill.png"})

			assert.Equal(t, tt.blank, preview.Blank)
			if !tt.blank {
				assert.Equal(t, tt.fileURL, preview.URL)
			} else {
				assert.Empty(t, preview.URL)
			}
			require.Len(t, renderer.previews, 1)
		})
	}
}

func TestListingService_WithoutRenderer(t *testing.T) {
	store := &mockBillStore{
		listFunc: func(ctx context.Context) ([]entity.Bill, error) {
			return nil, port.NewStoreError(port.ErrStoreUnavailable, "list", "", nil)
		},
	}
	svc := NewListingService(store, &mockNavigator{}, nil, &mockLogger{})

	assert.ErrorIs(t, svc.Load(context.Background()), port.ErrStoreUnavailable)

	preview := svc.HandleClickPreview(entity.DisplayRow{ID: "a", FileURL: "https://x.tld/a.png", FileName: "a.png"})
	assert.Equal(t, "https://x.tld/a.png", preview.URL)
}
