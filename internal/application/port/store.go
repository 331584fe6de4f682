package port

import (
	"context"

	"github.com/garyjia/billed/internal/domain/entity"
)

// BillStore is the gateway to the remote collection of bills.
//
// Calls block until the store settles and fail with the kinds in errors.go.
// The store is the only writer of persisted bill state.
type BillStore interface {
	// List returns every visible bill, in no particular order
	List(ctx context.Context) ([]entity.Bill, error)

	// Create stores the receipt and the record as one logical operation and
	// returns the bill with its assigned id and fileUrl
	Create(ctx context.Context, partial entity.Bill, file *entity.ReceiptFile) (*entity.Bill, error)

	// Update applies the present fields of partial to an existing bill
	Update(ctx context.Context, billID string, partial entity.Bill) (*entity.Bill, error)
}
