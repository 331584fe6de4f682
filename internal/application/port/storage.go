package port

import "context"

// ReceiptStorage defines where uploaded receipt files are kept
type ReceiptStorage interface {
	Save(ctx context.Context, key string, content []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
