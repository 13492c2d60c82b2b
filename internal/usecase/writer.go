package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stocksmarthub/backend/internal/domain"
	"github.com/stocksmarthub/backend/internal/telemetry"
)

// DualTargetWriter attaches image references to the dataset and the products table.
// The two targets are not updated atomically; a failed database update is
// logged and left for Reconciler to repair.
type DualTargetWriter struct {
	dataset  domain.ProductDataset
	products domain.ProductRepository
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// NewDualTargetWriter creates a writer over both targets
func NewDualTargetWriter(
	dataset domain.ProductDataset,
	products domain.ProductRepository,
	logger *slog.Logger,
	metrics *telemetry.Metrics,
) *DualTargetWriter {
	return &DualTargetWriter{
		dataset:  dataset,
		products: products,
		logger:   logger,
		metrics:  metrics,
	}
}

// Apply sets the image of a dataset row, then of the matching product row.
// It reports whether the dataset mutation happened; database problems never
// turn an applied row into a failure.
func (w *DualTargetWriter) Apply(ctx context.Context, rowIndex int, productCode, imageURL string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if err := w.dataset.SetImageURL(rowIndex, imageURL); err != nil {
		w.metrics.Write("dataset", "error")
		w.logger.Error("failed to update dataset row", "row", rowIndex, "product_code", productCode, "error", err)
		return false, nil
	}
	w.metrics.Write("dataset", "ok")

	affected, err := w.products.UpdateImageURL(ctx, productCode, imageURL)
	switch {
	case err != nil:
		w.metrics.Write("database", "error")
		w.logger.Warn("dataset and database diverged: database update failed",
			"product_code", productCode, "error", err)
	case affected == 0:
		w.metrics.Write("database", "no_row")
		w.logger.Warn("no database row for product", "product_code", productCode)
	default:
		w.metrics.Write("database", "ok")
	}
	return true, nil
}

// Flush persists the dataset once for the whole batch
func (w *DualTargetWriter) Flush(ctx context.Context) error {
	if err := w.dataset.Save(ctx); err != nil {
		return fmt.Errorf("failed to flush dataset: %w", err)
	}
	return nil
}
