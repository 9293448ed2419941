package planner

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/mvk0633/libplanner/analytics"
	"github.com/mvk0633/libplanner/conflict"
	"github.com/mvk0633/libplanner/recurrence"
	"github.com/mvk0633/libplanner/storage"
)

// Config carries the collaborators and tuning knobs of a Planner. Only the
// event store is mandatory; everything else has a sensible default.
type Config struct {
	// Labels resolves label references for analytics denormalization.
	Labels storage.LabelStore
	// Buckets persists analytics rows. Nil disables time-bucket analytics.
	Buckets analytics.BucketStore
	// Clock determines "today" for skip-day validity. Nil means system time.
	Clock storage.Clock
	// Logger receives warnings and debug output. Nil means discard.
	Logger *slog.Logger
	// Generator used for recurrence expansion. Nil means a fresh default one.
	Generator *recurrence.Generator
	// Horizon caps conflict expansion for open-ended series. Zero means
	// conflict.DefaultHorizon.
	Horizon time.Duration
}

// Planner is the event-planning core: it validates recurrence rules, expands
// occurrences, detects and resolves conflicts, and keeps per-label time
// totals in sync with completion changes. It performs no I/O of its own
// beyond the injected stores and spawns no goroutines.
type Planner struct {
	store      storage.EventStore
	labels     storage.LabelStore
	generator  *recurrence.Generator
	detector   *conflict.Detector
	resolver   *conflict.Resolver
	aggregator *analytics.Aggregator
	clock      storage.Clock
	logger     *slog.Logger
	horizon    time.Duration
}

// New creates a planner over the given event store.
func New(store storage.EventStore, config Config) (*Planner, error) {
	if store == nil {
		return nil, fmt.Errorf("event store is required")
	}
	if config.Clock == nil {
		config.Clock = storage.SystemClock{}
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if config.Generator == nil {
		config.Generator = recurrence.NewGenerator()
	}
	if config.Horizon <= 0 {
		config.Horizon = conflict.DefaultHorizon
	}

	p := &Planner{
		store:     store,
		labels:    config.Labels,
		generator: config.Generator,
		detector: conflict.NewDetector(conflict.DetectorConfig{
			Generator: config.Generator,
			Horizon:   config.Horizon,
			Logger:    config.Logger,
		}),
		resolver: conflict.NewResolver(store, config.Clock),
		clock:    config.Clock,
		logger:   config.Logger,
		horizon:  config.Horizon,
	}
	if config.Buckets != nil {
		p.aggregator = analytics.NewAggregator(config.Buckets, config.Labels, config.Logger)
	}
	return p, nil
}

// Analytics exposes the planner's aggregator for direct total queries.
// Returns nil when no bucket store was configured.
func (p *Planner) Analytics() *analytics.Aggregator { return p.aggregator }
