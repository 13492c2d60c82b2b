package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksmarthub/backend/internal/domain"
)

func TestReconciler_HealsMissingImages(t *testing.T) {
	ds := &memoryDataset{rows: []datasetRow{
		{code: "A", name: "Valve", image: "https://img.example.com/a.png"},
		{code: "B", name: "Coil", image: "https://img.example.com/b.png"},
		{code: "C", name: "Fan"},
	}}
	products := newMemoryProducts("A", "C")
	products.images["B"] = "https://img.example.com/existing.png"

	report, err := NewReconciler(ds, products, testLogger).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Checked)
	assert.Equal(t, int64(1), report.Healed)
	assert.Equal(t, "https://img.example.com/a.png", products.images["A"])
	assert.Equal(t, "https://img.example.com/existing.png", products.images["B"])
	assert.Zero(t, ds.saves)
	assert.Zero(t, ds.setCalls)
}

func TestReconciler_CountsErrors(t *testing.T) {
	ds := &memoryDataset{rows: []datasetRow{{code: "A", name: "Valve", image: "https://img.example.com/a.png"}}}
	products := newMemoryProducts("A")
	products.updateErr = errors.New("connection reset")

	report, err := NewReconciler(ds, products, testLogger).Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)
	assert.Zero(t, report.Healed)
}

func TestReconciler_LoadFailure(t *testing.T) {
	ds := &memoryDataset{loadErr: domain.ErrDatasetLoad}

	_, err := NewReconciler(ds, newMemoryProducts(), testLogger).Reconcile(context.Background())
	assert.ErrorIs(t, err, domain.ErrDatasetLoad)
}
