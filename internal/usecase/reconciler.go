package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stocksmarthub/backend/internal/domain"
)

// ReconcileReport counts what a reconcile pass did
type ReconcileReport struct {
	Checked int   `json:"checked"`
	Healed  int64 `json:"healed"`
	Errors  int   `json:"errors"`
}

// Reconciler copies image references from the dataset into product rows that
// still lack one. The dataset is never modified.
type Reconciler struct {
	dataset  domain.ProductDataset
	products domain.ProductRepository
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler
func NewReconciler(dataset domain.ProductDataset, products domain.ProductRepository, logger *slog.Logger) *Reconciler {
	return &Reconciler{dataset: dataset, products: products, logger: logger}
}

// Reconcile heals database rows left behind by failed dual writes
func (r *Reconciler) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	ctx, span := tracer.Start(ctx, "Reconciler.Reconcile")
	defer span.End()

	if err := r.dataset.Load(ctx); err != nil {
		return nil, err
	}

	assigned, err := r.dataset.ProductsWithImages()
	if err != nil {
		return nil, fmt.Errorf("failed to list products with images: %w", err)
	}

	report := &ReconcileReport{}
	for _, a := range assigned {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++

		n, err := r.products.FillMissingImageURL(ctx, a.ProductCode, a.ImageURL)
		if err != nil {
			report.Errors++
			r.logger.Warn("failed to reconcile product", "product_code", a.ProductCode, "error", err)
			continue
		}
		if n > 0 {
			report.Healed += n
			r.logger.Info("reconciled product image", "product_code", a.ProductCode)
		}
	}

	r.logger.Info("reconcile finished", "checked", report.Checked, "healed", report.Healed, "errors", report.Errors)
	return report, nil
}
