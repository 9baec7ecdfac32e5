package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chanport/channels-bot/internal/domain"
)

func TestFileAmountRepository_DefaultsWhenUnset(t *testing.T) {
	ctx := context.Background()
	repo := NewFileAmountRepository(t.TempDir(), testLogger())

	amount, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPaymentAmount, amount)
}

func TestFileAmountRepository_SetAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewFileAmountRepository(t.TempDir(), testLogger())

	require.NoError(t, repo.Set(ctx, 25))

	amount, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, amount)
}

func TestFileAmountRepository_RejectsNonPositive(t *testing.T) {
	ctx := context.Background()
	repo := NewFileAmountRepository(t.TempDir(), testLogger())

	require.NoError(t, repo.Set(ctx, 15))

	assert.Error(t, repo.Set(ctx, 0))
	assert.Error(t, repo.Set(ctx, -5))

	amount, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 15, amount)
}

func TestFileAmountRepository_CorruptDocumentFallsBack(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "payment_config.json"), []byte("oops"), 0o644))

	repo := NewFileAmountRepository(dir, testLogger())

	amount, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPaymentAmount, amount)
}
