package sqlstore

import (
	"context"
	"fmt"

	"github.com/stocksmarthub/backend/internal/domain"
)

// SummaryRepository computes catalog statistics
type SummaryRepository struct {
	db *DB
}

// NewSummaryRepository creates a new summary repository
func NewSummaryRepository(db *DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Summary counts vendors, products and image coverage per vendor group
func (r *SummaryRepository) Summary(ctx context.Context) (*domain.CatalogSummary, error) {
	summary := &domain.CatalogSummary{Groups: []domain.GroupSummary{}}

	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vendors`).Scan(&summary.TotalVendors); err != nil {
		return nil, fmt.Errorf("failed to count vendors: %w", err)
	}

	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*),
  COALESCE(SUM(CASE WHEN image_url IS NOT NULL AND image_url <> '' THEN 1 ELSE 0 END), 0)
FROM products`).Scan(&summary.TotalProducts, &summary.WithImages)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	summary.WithoutImages = summary.TotalProducts - summary.WithImages

	rows, err := r.db.QueryContext(ctx, `
SELECT COALESCE(group_name, ''), COUNT(*),
  COALESCE(SUM(CASE WHEN image_url IS NOT NULL AND image_url <> '' THEN 1 ELSE 0 END), 0)
FROM products
GROUP BY COALESCE(group_name, '')
ORDER BY COUNT(*) DESC, COALESCE(group_name, '') ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to group products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g domain.GroupSummary
		if err := rows.Scan(&g.GroupName, &g.Products, &g.WithImages); err != nil {
			return nil, fmt.Errorf("failed to scan group summary: %w", err)
		}
		summary.Groups = append(summary.Groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read group summaries: %w", err)
	}

	return summary, nil
}
