package domain

import "context"

// ImageCache maps image keys to resolved references.
// A hit with a nil reference is a recorded failure and must not be retried.
type ImageCache interface {
	Lookup(ctx context.Context, key string) (ref *string, hit bool, err error)
	Store(ctx context.Context, key string, ref *string) error
	Len() int
}

// ImageSource produces an image reference for a product name.
// A source returns (nil, nil) when it has nothing; errors mean the source itself failed.
type ImageSource interface {
	Name() string
	Attempt(ctx context.Context, productName string) (*string, error)
}

// ProductRepository persists image references on product rows
type ProductRepository interface {
	// UpdateImageURL sets image_url for an existing row and returns the affected row count
	UpdateImageURL(ctx context.Context, productCode, imageURL string) (int64, error)

	// FillMissingImageURL sets image_url only where it is still empty
	FillMissingImageURL(ctx context.Context, productCode, imageURL string) (int64, error)
}

// ProductReader loads product rows
type ProductReader interface {
	GetByCode(ctx context.Context, productCode string) (*ProductRecord, error)
}

// SummaryRepository provides read-only catalog statistics
type SummaryRepository interface {
	Summary(ctx context.Context) (*CatalogSummary, error)
}

// ProductDataset is the row-oriented product sheet kept alongside the database
type ProductDataset interface {
	Load(ctx context.Context) error
	Len() int

	// Dropped counts malformed rows skipped by the last Load
	Dropped() int
	ProductsWithoutImages() ([]PendingProduct, error)
	ProductsWithImages() ([]AssignedImage, error)
	SetImageURL(rowIndex int, imageURL string) error
	Save(ctx context.Context) error
}
