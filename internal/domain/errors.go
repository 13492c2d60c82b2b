package domain

import "errors"

var (
	// ErrCacheMiss is returned when no entry exists for an image key
	ErrCacheMiss = errors.New("cache miss")

	// ErrSourceUnavailable is returned when an image source cannot be reached
	ErrSourceUnavailable = errors.New("image source unavailable")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrProductNotFound is returned when a product code has no relational row
	ErrProductNotFound = errors.New("product not found")

	// ErrRowOutOfRange is returned when a dataset row index does not exist
	ErrRowOutOfRange = errors.New("dataset row index out of range")

	// ErrColumnNotFound is returned when a required dataset column is missing from the header
	ErrColumnNotFound = errors.New("required dataset column not found")

	// ErrDatasetLoad is returned when the product dataset cannot be read
	ErrDatasetLoad = errors.New("failed to load product dataset")

	// ErrRunInProgress is returned when an image run is triggered while another is active
	ErrRunInProgress = errors.New("image run already in progress")
)
