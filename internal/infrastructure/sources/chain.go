package sources

import (
	"fmt"
	"log/slog"

	"github.com/stocksmarthub/backend/internal/domain"
)

// DefaultOrder is the source priority used when none is configured
var DefaultOrder = []string{"keyword", "pixabay", "google", "placeholder"}

// Options carries the settings of every known source
type Options struct {
	Keyword       KeywordOptions
	Placeholder   PlaceholderOptions
	PixabayAPIKey string
	GoogleAPIKey  string
	GoogleCX      string
}

// BuildChain instantiates the sources named in order, in that order
func BuildChain(order []string, opts Options, logger *slog.Logger) ([]domain.ImageSource, error) {
	if len(order) == 0 {
		order = DefaultOrder
	}

	chain := make([]domain.ImageSource, 0, len(order))
	seen := make(map[string]bool, len(order))

	for _, name := range order {
		if seen[name] {
			return nil, fmt.Errorf("image source %q listed twice", name)
		}
		seen[name] = true

		switch name {
		case "keyword":
			chain = append(chain, NewKeywordSource(opts.Keyword, logger))
		case "pixabay":
			chain = append(chain, NewPixabaySource(opts.PixabayAPIKey, logger))
		case "google":
			chain = append(chain, NewGoogleSource(opts.GoogleAPIKey, opts.GoogleCX, logger))
		case "placeholder":
			chain = append(chain, NewPlaceholderSource(opts.Placeholder))
		default:
			return nil, fmt.Errorf("unknown image source %q", name)
		}
	}

	return chain, nil
}
