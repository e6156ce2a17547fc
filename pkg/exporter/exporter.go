// Package exporter orchestrates a full export run: window planning,
// sensor resolution, and the paced fetch-and-export sequence.
package exporter

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/vinckbooms/20231212-monnit-api/pkg/config"
	"github.com/vinckbooms/20231212-monnit-api/pkg/monnit"
	"github.com/vinckbooms/20231212-monnit-api/pkg/sequencer"
	"github.com/vinckbooms/20231212-monnit-api/pkg/timerange"
)

// DataClient fetches measurement rows for one sensor and window.
type DataClient interface {
	SensorDataMessages(ctx context.Context, sensorID int64, from, to time.Time) ([]monnit.DataMessage, error)
}

// Sink persists the rows of one work item.
type Sink interface {
	WriteRows(r timerange.TimeRange, sensorID int64, rows []monnit.DataMessage) (string, error)
}

// SensorResolver resolves a network name to its live sensor list.
type SensorResolver interface {
	SensorIDsForNetwork(ctx context.Context, name string) ([]int64, error)
}

// Config holds the exporter's collaborators and knobs.
type Config struct {
	Settings *config.Settings
	Client   DataClient
	Sink     Sink

	// Resolver is optional. When present and a network name is
	// configured, the sensor list is resolved live; any resolution
	// failure falls back to the static sensor_list from the settings.
	Resolver SensorResolver

	// MaxSpan caps the window of a single request. Zero selects the
	// provider default of 7 days.
	MaxSpan time.Duration

	// Sequencer overrides the pacing configuration. A zero Delay
	// selects the settings' interval.
	Sequencer *sequencer.Config
}

// Exporter runs one export batch.
type Exporter struct {
	settings *config.Settings
	client   DataClient
	sink     Sink
	resolver SensorResolver
	maxSpan  time.Duration
	seq      *sequencer.Sequencer
	logger   zerolog.Logger
}

// New creates an exporter.
func New(cfg Config) (*Exporter, error) {
	if cfg.Settings == nil {
		return nil, fmt.Errorf("settings are required")
	}
	if cfg.Client == nil {
		return nil, fmt.Errorf("data client is required")
	}
	if cfg.Sink == nil {
		return nil, fmt.Errorf("sink is required")
	}

	maxSpan := cfg.MaxSpan
	if maxSpan <= 0 {
		maxSpan = timerange.DefaultMaxSpan
	}

	seqConfig := sequencer.DefaultConfig(cfg.Settings.Delay())
	if cfg.Sequencer != nil {
		seqConfig = *cfg.Sequencer
		if seqConfig.Delay <= 0 {
			seqConfig.Delay = cfg.Settings.Delay()
		}
	}

	return &Exporter{
		settings: cfg.Settings,
		client:   cfg.Client,
		sink:     cfg.Sink,
		resolver: cfg.Resolver,
		maxSpan:  maxSpan,
		seq:      sequencer.New(seqConfig),
		logger:   log.With().Str("component", "exporter").Logger(),
	}, nil
}

// Run executes the batch: plan the window, resolve sensors, then fetch and
// export every (sub-range, sensor) pair in order. Per-item failures are
// absorbed by the sequencer; only an invalid window, an empty sensor list,
// or cancellation abort the run.
func (e *Exporter) Run(ctx context.Context) (sequencer.RunResult, error) {
	window, err := e.settings.Window()
	if err != nil {
		return sequencer.RunResult{}, err
	}

	plan := timerange.Plan(window, e.maxSpan)
	if plan.Split {
		e.logger.Warn().
			Int("ranges", len(plan.Ranges)).
			Dur("max_span", e.maxSpan).
			Msg("Window exceeds maximum span, split into cover ranges")
	} else {
		e.logger.Info().
			Dur("duration", window.Duration()).
			Msg("Window fits within maximum span")
	}

	sensors := e.sensorIDs(ctx)
	if len(sensors) == 0 {
		return sequencer.RunResult{}, fmt.Errorf("no sensors to export")
	}

	items := sequencer.Build(plan.Ranges, sensors)
	e.logger.Info().
		Int("ranges", len(plan.Ranges)).
		Int("sensors", len(sensors)).
		Int("work_items", len(items)).
		Msg("Starting export run")

	result, err := e.seq.Run(ctx, items, e.exportItem)

	e.logger.Info().
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Msg("Export run finished")

	return result, err
}

// sensorIDs returns the sensor list for this run. Live resolution is
// attempted first when configured; the static list is the explicit
// fallback and both paths are logged.
func (e *Exporter) sensorIDs(ctx context.Context) []int64 {
	if e.resolver != nil && e.settings.NetworkName != "" {
		ids, err := e.resolver.SensorIDsForNetwork(ctx, e.settings.NetworkName)
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("network", e.settings.NetworkName).
				Msg("Live sensor resolution failed, falling back to configured sensor_list")
		} else if len(ids) > 0 {
			e.logger.Info().
				Str("network", e.settings.NetworkName).
				Int("sensors", len(ids)).
				Msg("Using live-resolved sensor list")
			return ids
		}
	}

	return e.settings.SensorList
}

// exportItem is the sequencer action: fetch one (range, sensor) pair and
// persist it. Every call issues a network fetch, so pacing always applies.
func (e *Exporter) exportItem(ctx context.Context, item sequencer.WorkItem) sequencer.Outcome {
	rows, err := e.client.SensorDataMessages(ctx, item.SensorID, item.Range.Start, item.Range.End)
	if err != nil {
		return sequencer.Outcome{
			Fetched: true,
			Err:     fmt.Errorf("fetch sensor %d over %s: %w", item.SensorID, item.Range, err),
		}
	}

	if len(rows) == 0 {
		e.logger.Warn().
			Int64("sensor_id", item.SensorID).
			Str("range", item.Range.String()).
			Msg("Empty result, no file written")
		return sequencer.Outcome{Fetched: true}
	}

	path, err := e.sink.WriteRows(item.Range, item.SensorID, rows)
	if err != nil {
		return sequencer.Outcome{
			Fetched: true,
			Err:     fmt.Errorf("write sensor %d over %s: %w", item.SensorID, item.Range, err),
		}
	}

	e.logger.Info().
		Str("file", path).
		Int("rows", len(rows)).
		Msg("Work item exported")

	return sequencer.Outcome{Fetched: true}
}
