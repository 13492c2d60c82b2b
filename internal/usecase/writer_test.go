package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDualTargetWriter_AppliesBothTargets(t *testing.T) {
	ds := &memoryDataset{rows: []datasetRow{{code: "CP-1", name: "Valve"}}}
	products := newMemoryProducts("CP-1")
	w := NewDualTargetWriter(ds, products, testLogger, nil)

	ok, err := w.Apply(context.Background(), 0, "CP-1", "https://img.example.com/valve.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://img.example.com/valve.png", ds.rows[0].image)
	assert.Equal(t, "https://img.example.com/valve.png", products.images["CP-1"])
}

func TestDualTargetWriter_UnknownProductCodeStillApplied(t *testing.T) {
	ds := &memoryDataset{rows: []datasetRow{{code: "CP-404", name: "Valve"}}}
	products := newMemoryProducts()
	w := NewDualTargetWriter(ds, products, testLogger, nil)

	ok, err := w.Apply(context.Background(), 0, "CP-404", "https://img.example.com/valve.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, products.updates)
	assert.Equal(t, "https://img.example.com/valve.png", ds.rows[0].image)
}

func TestDualTargetWriter_DatabaseFailureKeepsDatasetChange(t *testing.T) {
	ds := &memoryDataset{rows: []datasetRow{{code: "CP-1", name: "Valve"}}}
	products := newMemoryProducts("CP-1")
	products.updateErr = errors.New("connection reset")
	w := NewDualTargetWriter(ds, products, testLogger, nil)

	ok, err := w.Apply(context.Background(), 0, "CP-1", "https://img.example.com/valve.png")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "https://img.example.com/valve.png", ds.rows[0].image)
}

func TestDualTargetWriter_DatasetFailureSkipsDatabase(t *testing.T) {
	ds := &memoryDataset{rows: []datasetRow{{code: "CP-1", name: "Valve"}}}
	products := newMemoryProducts("CP-1")
	w := NewDualTargetWriter(ds, products, testLogger, nil)

	ok, err := w.Apply(context.Background(), 5, "CP-1", "https://img.example.com/valve.png")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, products.updates)
}

func TestDualTargetWriter_Flush(t *testing.T) {
	ds := &memoryDataset{}
	w := NewDualTargetWriter(ds, newMemoryProducts(), testLogger, nil)

	require.NoError(t, w.Flush(context.Background()))
	assert.Equal(t, 1, ds.saves)

	ds.saveErr = errors.New("disk full")
	assert.Error(t, w.Flush(context.Background()))
}
