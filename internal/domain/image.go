package domain

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// ImageKey returns the cache key for a product display name.
// Names that differ only in case or in surrounding/repeated whitespace share a key.
// Legacy caches keyed on the trimmed lowercase name stay valid for every name
// whose inner whitespace is single spaces.
func ImageKey(productName string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(productName)), " ")
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Ref returns a pointer to an image reference, for cache and source results
func Ref(s string) *string {
	return &s
}
