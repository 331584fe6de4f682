package container

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(t *testing.T) *Config {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Database.Path = filepath.Join(dir, "billed.db")
	cfg.Storage.ReceiptDir = filepath.Join(dir, "receipts")
	return cfg
}

func TestNewContainer_Validation(t *testing.T) {
	_, err := NewContainer(nil, zap.NewNop())
	assert.Error(t, err)

	_, err = NewContainer(DefaultConfig(), nil)
	assert.Error(t, err)

	cfg := DefaultConfig()
	cfg.Storage.ReceiptDir = ""
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.Auth = AuthConfig{JWTSecret: "secret"}
	_, err = NewContainer(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestContainer_Lifecycle(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, c.Start(context.Background()))
	assert.True(t, c.Ready())
	assert.NotNil(t, c.RecordStore())
	assert.NotNil(t, c.DB())
	require.NotNil(t, c.Server())

	assert.Error(t, c.Start(context.Background()), "second start must fail")

	health := c.Health(context.Background())
	assert.True(t, health.Overall)
	assert.True(t, health.Components["database"].Healthy)
	assert.True(t, health.Components["record_store"].Healthy)

	rec := httptest.NewRecorder()
	c.Server().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	c.Server().Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bills", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "auth disabled without a secret")

	require.NoError(t, c.Close())
	assert.False(t, c.Ready())
	assert.Error(t, c.Close())
	assert.Error(t, c.Start(context.Background()))
}

func TestContainer_HealthBeforeStart(t *testing.T) {
	c, err := NewContainer(testConfig(t), zap.NewNop())
	require.NoError(t, err)

	health := c.Health(context.Background())
	assert.False(t, health.Overall)
	assert.Equal(t, "not initialized", health.Components["database"].Message)
}

func TestServiceLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := NewServiceLogger(zap.New(core))

	logger.Info("Bill created", "bill_id", "b1", "amount", 400, 42, "ignored")
	logger.Error("Create failed", "error", errors.New("boom"))

	entries := logs.All()
	require.Len(t, entries, 2)

	info := entries[0].ContextMap()
	assert.Equal(t, "b1", info["bill_id"])
	assert.EqualValues(t, 400, info["amount"])
	assert.Len(t, info, 2, "non-string keys are dropped")

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
