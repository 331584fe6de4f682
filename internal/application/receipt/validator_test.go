package receipt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/garyjia/billed/internal/domain/entity"
)

func TestIsAcceptable(t *testing.T) {
	tests := []struct {
		name     string
		file     *entity.ReceiptFile
		expected bool
	}{
		{"png", entity.NewReceiptFile("test.png", "image/png", []byte("foo")), true},
		{"jpeg", entity.NewReceiptFile("test.jpg", "image/jpeg", []byte("foo")), true},
		{"jpg alias", entity.NewReceiptFile("test.jpg", "image/jpg", []byte("foo")), true},
		{"upper case", entity.NewReceiptFile("TEST.PNG", "IMAGE/PNG", []byte("foo")), true},
		{"with parameters", entity.NewReceiptFile("test.png", "image/png; name=test.png", []byte("foo")), true},
		{"plain text", entity.NewReceiptFile("test.png", "text/plain", []byte("foo")), false},
		{"pdf", entity.NewReceiptFile("facture.pdf", "application/pdf", []byte("%PDF")), false},
		{"gif", entity.NewReceiptFile("anim.gif", "image/gif", []byte("GIF89a")), false},
		{"absent kind", entity.NewReceiptFile("test.png", "", []byte("foo")), false},
		{"malformed kind", entity.NewReceiptFile("test.png", "image/", []byte("foo")), false},
		{"no file", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsAcceptable(tt.file))
		})
	}
}
