package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stocksmarthub/backend/internal/domain"
)

// SetupTestDB opens a migrated in-memory SQLite store that is closed with the test
func SetupTestDB(t testing.TB) *DB {
	t.Helper()

	db, err := Open(context.Background(), DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

const seedProductQuery = `
INSERT INTO products (
  crystal_part_code, product_name, group_code, group_name, mfg_part_code,
  importance, high_value, max_usage_per_month, six_months_usage, average_per_day,
  lead_time_days, critical_factor, units, min_inventory_per_day, max_inventory_per_day,
  current_stock_available, image_url
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (crystal_part_code) DO UPDATE SET
  product_name = excluded.product_name,
  group_code = excluded.group_code,
  group_name = excluded.group_name,
  mfg_part_code = excluded.mfg_part_code,
  importance = excluded.importance,
  high_value = excluded.high_value,
  max_usage_per_month = excluded.max_usage_per_month,
  six_months_usage = excluded.six_months_usage,
  average_per_day = excluded.average_per_day,
  lead_time_days = excluded.lead_time_days,
  critical_factor = excluded.critical_factor,
  units = excluded.units,
  min_inventory_per_day = excluded.min_inventory_per_day,
  max_inventory_per_day = excluded.max_inventory_per_day,
  current_stock_available = excluded.current_stock_available,
  image_url = COALESCE(excluded.image_url, products.image_url)`

// SeedProduct inserts a product fixture or refreshes the row with the same code.
// The vendor group is registered on first sight. An existing image is kept
// when the incoming record has none.
func SeedProduct(ctx context.Context, db *DB, p *domain.ProductRecord) error {
	if p == nil || p.ProductCode == "" {
		return fmt.Errorf("%w: product code is required", domain.ErrInvalidRequest)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if p.GroupName != "" {
		_, err = tx.ExecContext(ctx,
			db.rebind(`INSERT INTO vendors (group_code, group_name) VALUES (?, ?) ON CONFLICT (group_name) DO NOTHING`),
			p.GroupCode, p.GroupName)
		if err != nil {
			return fmt.Errorf("failed to upsert vendor %q: %w", p.GroupName, err)
		}
	}

	_, err = tx.ExecContext(ctx, db.rebind(seedProductQuery),
		p.ProductCode, p.ProductName, nullString(p.GroupCode), nullString(p.GroupName), nullString(p.MfgPartCode),
		nullString(p.Importance), nullString(p.HighValue), p.MaxUsagePerMonth, p.SixMonthsUsage, p.AveragePerDay,
		p.LeadTimeDays, p.CriticalFactor, nullString(p.Units), p.MinInventoryPerDay, p.MaxInventoryPerDay,
		p.CurrentStockAvailable, p.ImageURL)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s: %w", p.ProductCode, err)
	}

	return tx.Commit()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
