// Package storage keeps uploaded receipt files on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/garyjia/billed/internal/application/port"
	"go.uber.org/zap"
)

// ErrInvalidKey is returned for keys that would resolve outside the receipts directory
var ErrInvalidKey = errors.New("invalid receipt key")

// ReceiptStore implements port.ReceiptStorage on a local directory.
// Keys are relative slash-separated paths below baseDir.
type ReceiptStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewReceiptStore creates a ReceiptStore rooted at baseDir
func NewReceiptStore(baseDir string, logger *zap.Logger) *ReceiptStore {
	return &ReceiptStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes the receipt content under key, creating parent directories
func (s *ReceiptStore) Save(ctx context.Context, key string, content []byte) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create receipt directory",
			zap.String("path", filepath.Dir(fullPath)),
			zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write receipt",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to write receipt: %w", err)
	}

	s.logger.Debug("Receipt saved",
		zap.String("key", key),
		zap.Int("size", len(content)))

	return nil
}

// Read returns the receipt content stored under key.
// A missing receipt yields an error matching port.ErrNotFound.
func (s *ReceiptStore) Read(ctx context.Context, key string) ([]byte, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("receipt %s: %w", key, port.ErrNotFound)
	}
	if err != nil {
		s.logger.Error("Failed to read receipt",
			zap.String("key", key),
			zap.Error(err))
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}

	return content, nil
}

// Delete removes the receipt stored under key. Deleting a missing receipt succeeds.
func (s *ReceiptStore) Delete(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Error("Failed to delete receipt",
			zap.String("key", key),
			zap.Error(err))
		return fmt.Errorf("failed to delete receipt: %w", err)
	}

	s.logger.Debug("Receipt deleted", zap.String("key", key))
	return nil
}

// resolve maps a key to a path inside baseDir
func (s *ReceiptStore) resolve(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") || !fs.ValidPath(key) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}
	absPath := filepath.Join(absBase, filepath.FromSlash(key))

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes receipts directory", ErrInvalidKey, key)
	}

	return absPath, nil
}

// Verify interface compliance
var _ port.ReceiptStorage = (*ReceiptStore)(nil)
