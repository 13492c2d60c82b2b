package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/stocksmarthub/backend/internal/domain"
)

const selectProductQuery = `
SELECT crystal_part_code, product_name, COALESCE(group_code, ''), COALESCE(group_name, ''),
  COALESCE(mfg_part_code, ''), COALESCE(importance, ''), COALESCE(high_value, ''),
  COALESCE(max_usage_per_month, 0), COALESCE(six_months_usage, 0), COALESCE(average_per_day, 0),
  COALESCE(lead_time_days, 0), COALESCE(critical_factor, 0), COALESCE(units, ''),
  COALESCE(min_inventory_per_day, 0), COALESCE(max_inventory_per_day, 0),
  COALESCE(current_stock_available, 0), image_url
FROM products WHERE crystal_part_code = ?`

// ProductRepository stores product rows in the relational database
type ProductRepository struct {
	db *DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByCode loads a single product by its code
func (r *ProductRepository) GetByCode(ctx context.Context, productCode string) (*domain.ProductRecord, error) {
	var (
		p        domain.ProductRecord
		imageURL sql.NullString
	)

	err := r.db.QueryRowContext(ctx, r.db.rebind(selectProductQuery), productCode).Scan(
		&p.ProductCode, &p.ProductName, &p.GroupCode, &p.GroupName,
		&p.MfgPartCode, &p.Importance, &p.HighValue,
		&p.MaxUsagePerMonth, &p.SixMonthsUsage, &p.AveragePerDay,
		&p.LeadTimeDays, &p.CriticalFactor, &p.Units,
		&p.MinInventoryPerDay, &p.MaxInventoryPerDay,
		&p.CurrentStockAvailable, &imageURL,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, productCode)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productCode, err)
	}

	if imageURL.Valid {
		p.ImageURL = domain.Ref(imageURL.String)
	}
	return &p, nil
}

// UpdateImageURL sets the image reference of a product row
func (r *ProductRepository) UpdateImageURL(ctx context.Context, productCode, imageURL string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.rebind(`UPDATE products SET image_url = ? WHERE crystal_part_code = ?`),
		imageURL, productCode)
	if err != nil {
		return 0, fmt.Errorf("failed to update image for %s: %w", productCode, err)
	}
	return res.RowsAffected()
}

// FillMissingImageURL sets the image reference only when the row has none
func (r *ProductRepository) FillMissingImageURL(ctx context.Context, productCode, imageURL string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.rebind(`UPDATE products SET image_url = ? WHERE crystal_part_code = ? AND (image_url IS NULL OR image_url = '')`),
		imageURL, productCode)
	if err != nil {
		return 0, fmt.Errorf("failed to fill image for %s: %w", productCode, err)
	}
	return res.RowsAffected()
}
