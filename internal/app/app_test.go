package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/seller-analytics/internal/cache"
	"github.com/dvloznov/seller-analytics/internal/config"
	"github.com/dvloznov/seller-analytics/internal/reports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `{
  "sellers": [{"id": 1, "name": "Alice"}],
  "transactions": [
    {"seller_id": 1, "amount": "10.50", "payment_kind": "CASH", "timestamp": "2024-01-01T10:00:00Z"}
  ]
}`

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.StoreBackend = config.BackendMemory
	cfg.ReportDir = t.TempDir()
	return &cfg
}

func TestNew_MemoryBackend(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(cfg.SeedFile, []byte(seed), 0o644))

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &cache.MemoryCache{}, a.Cache)
	assert.IsType(t, &reports.DirWriter{}, a.Writer)

	n, err := a.Store.CountTransactions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	best, err := a.Service.BestPeriod(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), best.TransactionCount)
}

func TestNew_MissingSeedFile(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.SeedFile = filepath.Join(t.TempDir(), "missing.json")

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestNew_UnreachableRedis(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.RedisAddr = "127.0.0.1:1"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
