package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/stocksmarthub/backend/internal/domain"
	"github.com/stocksmarthub/backend/internal/telemetry"
)

var tracer = otel.Tracer("github.com/stocksmarthub/backend/internal/usecase")

// ResolverConfig holds the retry policy of the resolver
type ResolverConfig struct {
	MaxRetries  int
	BackoffUnit time.Duration
	RoundDelay  time.Duration
}

// Resolution is the outcome of resolving one product name
type Resolution struct {
	Key       string  `json:"key"`
	Reference *string `json:"reference"`
	FromCache bool    `json:"fromCache"`
	Source    string  `json:"source,omitempty"`
	Rounds    int     `json:"rounds"`
}

// Resolved reports whether an image reference was found
func (r *Resolution) Resolved() bool {
	return r != nil && r.Reference != nil
}

// Sleeper pauses between attempts. Implementations must return early with
// ctx.Err() when the context is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type realSleeper struct{}

func (realSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Backoff returns the wait after a failed attempt: 2^attempt units
func Backoff(attempt int, unit time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	return unit * time.Duration(1<<uint(attempt))
}

// Resolver turns a product name into an image reference using the cache
// first and the source chain on a miss
type Resolver struct {
	cache   domain.ImageCache
	sources []domain.ImageSource
	config  ResolverConfig
	sleeper Sleeper
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// ResolverOption customizes a Resolver
type ResolverOption func(*Resolver)

// WithSleeper replaces the wall-clock sleeper
func WithSleeper(s Sleeper) ResolverOption {
	return func(r *Resolver) { r.sleeper = s }
}

// WithResolverMetrics records cache and source counters
func WithResolverMetrics(m *telemetry.Metrics) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver creates a resolver over an ordered source chain
func NewResolver(
	cache domain.ImageCache,
	sources []domain.ImageSource,
	config ResolverConfig,
	logger *slog.Logger,
	opts ...ResolverOption,
) *Resolver {
	if config.MaxRetries <= 0 {
		config.MaxRetries = 3
	}
	if config.BackoffUnit < 0 {
		config.BackoffUnit = 0
	}
	if config.RoundDelay < 0 {
		config.RoundDelay = 0
	}

	r := &Resolver{
		cache:   cache,
		sources: sources,
		config:  config,
		sleeper: realSleeper{},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the image reference for a product name.
// Every terminal outcome, including failure, is written to the cache, so a
// name is sent to the sources at most once across runs sharing the cache.
func (r *Resolver) Resolve(ctx context.Context, productName string) (*Resolution, error) {
	if productName == "" {
		return nil, fmt.Errorf("%w: product name is required", domain.ErrInvalidRequest)
	}

	ctx, span := tracer.Start(ctx, "Resolver.Resolve")
	defer span.End()

	key := domain.ImageKey(productName)
	span.SetAttributes(attribute.String("image.key", key))
	res := &Resolution{Key: key}

	ref, hit, err := r.cache.Lookup(ctx, key)
	if err != nil {
		r.logger.Warn("cache lookup failed, treating as miss", "key", key, "error", err)
		hit = false
	}
	if hit {
		res.Reference = ref
		res.FromCache = true
		if ref != nil {
			r.metrics.CacheLookup("hit")
			r.logger.Info("cache hit", "product", productName, "key", key)
		} else {
			r.metrics.CacheLookup("negative_hit")
			r.logger.Info("cache hit without image", "product", productName, "key", key)
		}
		span.SetAttributes(attribute.Bool("image.cache_hit", true))
		return res, nil
	}
	r.metrics.CacheLookup("miss")
	r.logger.Info("cache miss", "product", productName, "key", key)

	for attempt := 0; attempt < r.config.MaxRetries; attempt++ {
		res.Rounds = attempt + 1

		source, found, err := r.round(ctx, productName)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				span.SetStatus(codes.Error, ctxErr.Error())
				return nil, ctxErr
			}
			r.logger.Warn("resolution attempt failed",
				"product", productName, "attempt", attempt+1, "source", source, "error", err)
		} else if found != nil {
			res.Reference = found
			res.Source = source
			break
		}

		if attempt == r.config.MaxRetries-1 {
			break
		}
		wait := Backoff(attempt, r.config.BackoffUnit)
		r.logger.Info("retrying image resolution",
			"product", productName, "attempt", attempt+1, "backoff", wait, "delay", r.config.RoundDelay)
		if err := r.sleeper.Sleep(ctx, wait); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if err := r.sleeper.Sleep(ctx, r.config.RoundDelay); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	if err := r.cache.Store(ctx, key, res.Reference); err != nil {
		r.logger.Warn("failed to persist cache entry", "key", key, "error", err)
	}

	span.SetAttributes(attribute.Int("image.rounds", res.Rounds), attribute.Bool("image.resolved", res.Resolved()))
	if res.Resolved() {
		r.metrics.Resolution("resolved")
		r.logger.Info("image resolved", "product", productName, "source", res.Source, "rounds", res.Rounds)
	} else {
		r.metrics.Resolution("unresolved")
		r.logger.Warn("no image found", "product", productName, "rounds", res.Rounds)
	}
	return res, nil
}

// round tries every source once. A source error abandons the round.
func (r *Resolver) round(ctx context.Context, productName string) (string, *string, error) {
	for _, src := range r.sources {
		ref, err := src.Attempt(ctx, productName)
		if err != nil {
			r.metrics.SourceAttempt(src.Name(), "error")
			return src.Name(), nil, err
		}
		if ref != nil {
			r.metrics.SourceAttempt(src.Name(), "found")
			return src.Name(), ref, nil
		}
		r.metrics.SourceAttempt(src.Name(), "none")
	}
	return "", nil, nil
}

// isCancellation reports whether err came from a cancelled or expired context
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
