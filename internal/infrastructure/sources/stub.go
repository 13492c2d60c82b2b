package sources

import (
	"context"
	"log/slog"
	"sync"
)

// CredentialSource is a provider slot that needs API credentials which are
// not wired yet. It always answers "no image" and says so once in the log.
type CredentialSource struct {
	name       string
	configured bool
	logger     *slog.Logger
	once       sync.Once
}

// NewPixabaySource returns the Pixabay slot of the chain
func NewPixabaySource(apiKey string, logger *slog.Logger) *CredentialSource {
	return &CredentialSource{name: "pixabay", configured: apiKey != "", logger: logger}
}

// NewGoogleSource returns the Google Custom Search slot of the chain
func NewGoogleSource(apiKey, searchEngineID string, logger *slog.Logger) *CredentialSource {
	return &CredentialSource{name: "google", configured: apiKey != "" && searchEngineID != "", logger: logger}
}

func (s *CredentialSource) Name() string {
	return s.name
}

// Attempt always returns no image
func (s *CredentialSource) Attempt(ctx context.Context, productName string) (*string, error) {
	s.once.Do(func() {
		if s.configured {
			s.logger.InfoContext(ctx, "image source has credentials but no client yet", "source", s.name)
		} else {
			s.logger.InfoContext(ctx, "image source disabled, credentials not configured", "source", s.name)
		}
	})
	return nil, nil
}
