package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultKeywordBaseURL = "https://source.unsplash.com"
	defaultUserAgent      = "Mozilla/5.0 (compatible; StockSmartHub/1.0)"
)

// KeywordOptions configures the keyword search source
type KeywordOptions struct {
	BaseURL       string
	Width         int
	Height        int
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	UserAgent     string
}

// KeywordSource probes a templated keyword search endpoint with a HEAD request.
// A 2xx answer means the templated URL itself serves an image; no body is fetched.
type KeywordSource struct {
	httpClient  *http.Client
	baseURL     string
	width       int
	height      int
	userAgent   string
	rateLimiter *rate.Limiter
	logger      *slog.Logger
}

// NewKeywordSource creates a keyword search source, filling unset options with defaults
func NewKeywordSource(opts KeywordOptions, logger *slog.Logger) *KeywordSource {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultKeywordBaseURL
	}
	if opts.Width <= 0 {
		opts.Width = 800
	}
	if opts.Height <= 0 {
		opts.Height = 600
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RatePerSecond <= 0 {
		opts.RatePerSecond = 2
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	return &KeywordSource{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		width:       opts.Width,
		height:      opts.Height,
		userAgent:   opts.UserAgent,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RatePerSecond), opts.Burst),
		logger:      logger,
	}
}

// Name identifies the source in logs and metrics
func (s *KeywordSource) Name() string {
	return "keyword"
}

// SearchURL builds the templated reference for a product name
func (s *KeywordSource) SearchURL(productName string) string {
	term := CleanSearchTerm(productName)
	return fmt.Sprintf("%s/%dx%d/?%s", s.baseURL, s.width, s.height, quote(term))
}

// Attempt probes the search endpoint for productName
func (s *KeywordSource) Attempt(ctx context.Context, productName string) (*string, error) {
	if CleanSearchTerm(productName) == "" {
		s.logger.DebugContext(ctx, "keyword source skipped, empty search term", "product", productName)
		return nil, nil
	}

	reqURL := s.SearchURL(productName)

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		// An unreachable endpoint is a miss so the chain falls through
		s.logger.WarnContext(ctx, "keyword source unreachable",
			"product", productName, "error", err)
		return nil, nil
	}
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.DebugContext(ctx, "keyword source found nothing",
			"product", productName, "status", resp.StatusCode)
		return nil, nil
	}

	s.logger.DebugContext(ctx, "keyword source found image", "product", productName, "url", reqURL)
	return &reqURL, nil
}

// quote escapes s for a URL, writing spaces as %20 and leaving slashes intact
func quote(s string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
	return strings.ReplaceAll(escaped, "%2F", "/")
}
