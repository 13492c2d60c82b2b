package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/stocksmarthub/backend/internal/domain"
	"github.com/stocksmarthub/backend/internal/telemetry"
)

// OrchestratorConfig holds pacing for a run
type OrchestratorConfig struct {
	ProductDelay time.Duration
}

// RunOptions limits a single run
type RunOptions struct {
	// MaxProducts caps the candidates taken from the dataset; zero or less means all
	MaxProducts int
}

// RunReport summarizes a run
type RunReport struct {
	RunID       string        `json:"runId"`
	Candidates  int           `json:"candidates"`
	DroppedRows int           `json:"droppedRows"`
	Processed   int           `json:"processed"`
	Succeeded   int           `json:"succeeded"`
	NoImage     int           `json:"noImage"`
	Failed      int           `json:"failed"`
	CacheHits   int           `json:"cacheHits"`
	Flushed     bool          `json:"flushed"`
	Duration    time.Duration `json:"duration"`
}

// Success reports whether the run attached at least one image, or had nothing to do
func (r *RunReport) Success() bool {
	return r.Succeeded > 0 || r.Candidates == 0
}

// Orchestrator runs the batch: pending dataset rows through the resolver and writer
type Orchestrator struct {
	dataset  domain.ProductDataset
	resolver *Resolver
	writer   *DualTargetWriter
	config   OrchestratorConfig
	sleeper  Sleeper
	logger   *slog.Logger
	metrics  *telemetry.Metrics
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(
	dataset domain.ProductDataset,
	resolver *Resolver,
	writer *DualTargetWriter,
	config OrchestratorConfig,
	logger *slog.Logger,
	metrics *telemetry.Metrics,
) *Orchestrator {
	return &Orchestrator{
		dataset:  dataset,
		resolver: resolver,
		writer:   writer,
		config:   config,
		sleeper:  realSleeper{},
		logger:   logger,
		metrics:  metrics,
	}
}

// WithSleeper replaces the pacing sleeper and returns the orchestrator
func (o *Orchestrator) WithSleeper(s Sleeper) *Orchestrator {
	o.sleeper = s
	return o
}

// Run processes every dataset row without an image, up to opts.MaxProducts.
// Per-product problems are counted in the report; only failures that make the
// batch meaningless are returned.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	started := time.Now()
	report := &RunReport{RunID: uuid.NewString()}
	logger := o.logger.With("run_id", report.RunID)

	ctx, span := tracer.Start(ctx, "Orchestrator.Run")
	defer span.End()
	span.SetAttributes(attribute.String("run.id", report.RunID))

	fail := func(err error) (*RunReport, error) {
		report.Duration = time.Since(started)
		o.metrics.Run("error")
		span.SetStatus(codes.Error, err.Error())
		logger.Error("image run failed", "error", err)
		return report, err
	}

	if err := o.dataset.Load(ctx); err != nil {
		return fail(err)
	}
	report.DroppedRows = o.dataset.Dropped()

	pending, err := o.dataset.ProductsWithoutImages()
	if err != nil {
		return fail(fmt.Errorf("failed to list products without images: %w", err))
	}
	if opts.MaxProducts > 0 && len(pending) > opts.MaxProducts {
		pending = pending[:opts.MaxProducts]
	}
	report.Candidates = len(pending)
	logger.Info("image run started",
		"rows", o.dataset.Len(), "dropped_rows", report.DroppedRows, "candidates", report.Candidates)

	for i, product := range pending {
		if i > 0 {
			if err := o.sleeper.Sleep(ctx, o.config.ProductDelay); err != nil {
				return fail(err)
			}
		}

		res, err := o.resolver.Resolve(ctx, product.ProductName)
		if err != nil {
			if isCancellation(err) {
				return fail(err)
			}
			report.Processed++
			report.Failed++
			logger.Warn("failed to resolve product", "product_code", product.ProductCode, "error", err)
			continue
		}
		report.Processed++
		if res.FromCache {
			report.CacheHits++
		}

		if !res.Resolved() {
			report.NoImage++
			logger.Warn("product left without image", "product_code", product.ProductCode, "product", product.ProductName)
			continue
		}

		applied, err := o.writer.Apply(ctx, product.RowIndex, product.ProductCode, *res.Reference)
		if err != nil {
			return fail(err)
		}
		if !applied {
			report.Failed++
			continue
		}
		report.Succeeded++
		logger.Info("image attached",
			"product_code", product.ProductCode, "source", res.Source, "from_cache", res.FromCache)
	}

	if report.Succeeded > 0 {
		if err := o.writer.Flush(ctx); err != nil {
			return fail(err)
		}
		report.Flushed = true
	}

	report.Duration = time.Since(started)
	span.SetAttributes(
		attribute.Int("run.candidates", report.Candidates),
		attribute.Int("run.succeeded", report.Succeeded),
	)
	if report.Success() {
		o.metrics.Run("success")
	} else {
		o.metrics.Run("no_progress")
	}
	logger.Info("image run finished",
		"candidates", report.Candidates,
		"succeeded", report.Succeeded,
		"no_image", report.NoImage,
		"failed", report.Failed,
		"cache_hits", report.CacheHits,
		"flushed", report.Flushed,
		"duration", report.Duration,
	)
	return report, nil
}
