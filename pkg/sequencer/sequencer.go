// Package sequencer executes ordered fetch-and-export work items with a
// mandatory pacing delay between requests, so a batch run never exceeds
// the provider's rate limit.
package sequencer

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vinckbooms/20231212-monnit-api/pkg/timerange"
)

// Prometheus metrics for sequencer operations.
var (
	sequencerItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sequencer_work_items_total",
		Help: "Total work items processed by outcome",
	}, []string{"outcome"})

	sequencerWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sequencer_pacing_wait_seconds",
		Help:    "Pacing wait duration between requests in seconds",
		Buckets: []float64{1, 10, 60, 300, 600, 1800},
	})
)

// WorkItem is one (time-sub-range, sensor) pair: a single remote
// fetch-and-export operation.
type WorkItem struct {
	Range    timerange.TimeRange
	SensorID int64
}

// Build materializes the (range, sensor) Cartesian product in the fixed
// order the run must follow: cover ranges outermost, chronologically, with
// the sensors cycled inside each range. Output file naming encodes
// (range, sensor), so callers rely on this exact order.
func Build(ranges []timerange.TimeRange, sensors []int64) []WorkItem {
	items := make([]WorkItem, 0, len(ranges)*len(sensors))
	for _, r := range ranges {
		for _, sensorID := range sensors {
			items = append(items, WorkItem{Range: r, SensorID: sensorID})
		}
	}
	return items
}

// Outcome reports what an action did with its work item.
type Outcome struct {
	// Fetched reports whether the action issued a network request.
	// Pacing applies only to items that hit the provider.
	Fetched bool

	// Err is the item's failure, if any. A failed item is logged and
	// skipped; it never aborts the run.
	Err error
}

// Action performs the fetch-and-persist work for a single item.
type Action func(ctx context.Context, item WorkItem) Outcome

// ProgressFunc observes the pacing wait. It is called after each elapsed
// increment with the waited and total durations. Purely observational:
// the pacing contract does not depend on it.
type ProgressFunc func(waited, total time.Duration)

// Config holds sequencer configuration.
type Config struct {
	// Delay is the pacing delay enforced after each fetching action.
	Delay time.Duration

	// WaitIncrement is the granularity of the pacing wait. The wait
	// elapses in increments so progress can be reported and cancellation
	// observed between sub-waits.
	WaitIncrement time.Duration

	// WaitAfterLast also applies the delay after the final item,
	// matching the reference behavior.
	WaitAfterLast bool

	// Progress, when set, observes each elapsed wait increment.
	Progress ProgressFunc
}

// DefaultConfig returns the reference configuration for a pacing delay.
func DefaultConfig(delay time.Duration) Config {
	return Config{
		Delay:         delay,
		WaitIncrement: 10 * time.Second,
		WaitAfterLast: true,
	}
}

// Sequencer runs work items strictly in input order, one at a time.
type Sequencer struct {
	config Config
	logger zerolog.Logger
}

// New creates a sequencer.
func New(cfg Config) *Sequencer {
	if cfg.WaitIncrement <= 0 {
		cfg.WaitIncrement = 10 * time.Second
	}

	return &Sequencer{
		config: cfg,
		logger: log.With().Str("component", "sequencer").Logger(),
	}
}

// RunResult summarizes a completed run.
type RunResult struct {
	Processed int
	Failed    int
	Waits     int
}

// Run invokes action for every item in input order. A failing item is
// logged and the run proceeds to the next one; only context cancellation
// stops the sequence early. After every action that performed a fetch the
// configured delay elapses before the next action.
func (s *Sequencer) Run(ctx context.Context, items []WorkItem, action Action) (RunResult, error) {
	var result RunResult

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		s.logger.Info().
			Int("item", i+1).
			Int("total", len(items)).
			Int64("sensor_id", item.SensorID).
			Str("range", item.Range.String()).
			Msg("Processing work item")

		outcome := action(ctx, item)
		result.Processed++

		if outcome.Err != nil {
			result.Failed++
			sequencerItemsTotal.WithLabelValues("failed").Inc()
			s.logger.Error().
				Err(outcome.Err).
				Int64("sensor_id", item.SensorID).
				Str("range", item.Range.String()).
				Msg("Work item failed, continuing with next item")
		} else {
			sequencerItemsTotal.WithLabelValues("ok").Inc()
		}

		if outcome.Fetched && (s.config.WaitAfterLast || i < len(items)-1) {
			result.Waits++
			if err := s.wait(ctx); err != nil {
				return result, err
			}
		}
	}

	return result, nil
}

// wait blocks for the configured delay, elapsing it in increments. The
// total uninterrupted wait equals Delay exactly: the last increment is
// clamped. Cancellation is checked between increments.
func (s *Sequencer) wait(ctx context.Context) error {
	total := s.config.Delay
	if total <= 0 {
		return nil
	}

	s.logger.Info().Dur("delay", total).Msg("Pacing wait before next request")
	sequencerWaitSeconds.Observe(total.Seconds())

	var waited time.Duration
	for waited < total {
		step := s.config.WaitIncrement
		if waited+step > total {
			step = total - waited
		}

		select {
		case <-ctx.Done():
			s.logger.Warn().
				Dur("waited", waited).
				Dur("total", total).
				Msg("Pacing wait interrupted by cancellation")
			return ctx.Err()
		case <-time.After(step):
		}

		waited += step
		if s.config.Progress != nil {
			s.config.Progress(waited, total)
		}
	}

	return nil
}
