package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	uuid "github.com/satori/go.uuid"

	"github.com/vinckbooms/20231212-monnit-api/pkg/catalog"
	"github.com/vinckbooms/20231212-monnit-api/pkg/config"
	"github.com/vinckbooms/20231212-monnit-api/pkg/export"
	"github.com/vinckbooms/20231212-monnit-api/pkg/exporter"
	"github.com/vinckbooms/20231212-monnit-api/pkg/logging"
	"github.com/vinckbooms/20231212-monnit-api/pkg/monnit"
)

// LogFilePath is where logs are appended when log_to_file is enabled.
const LogFilePath = "log.txt"

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the settings file (.json or .yaml)")
	startOverride := flag.String("start", "", "override window start (YYYY-MM-DD HH:MM:SS)")
	endOverride := flag.String("end", "", "override window end (YYYY-MM-DD HH:MM:SS)")
	networkOverride := flag.String("network", "", "override the network name for live sensor resolution")
	sensorOverride := flag.Int64("sensor", 0, "export a single sensor id instead of the configured list")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fatalf("configuration error: %v", err)
	}

	// Operator overrides apply before anything else runs.
	if *startOverride != "" {
		settings.Start = *startOverride
	}
	if *endOverride != "" {
		settings.End = *endOverride
	}
	if *networkOverride != "" {
		settings.NetworkName = *networkOverride
	}
	if *sensorOverride != 0 {
		// Single-sensor mode bypasses both the configured list and live
		// resolution.
		settings.SensorList = []int64{*sensorOverride}
		settings.NetworkName = ""
	}
	if err := settings.Validate(); err != nil {
		fatalf("configuration error: %v", err)
	}

	level := logging.LevelInfo
	if settings.Verbose {
		level = logging.LevelDebug
	}
	logCfg := logging.Config{Level: level}
	if settings.LogToFile {
		logCfg.FilePath = LogFilePath
	}

	logger, logCloser, err := logging.Setup(logCfg)
	if err != nil {
		fatalf("configuration error: %v", err)
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	logger = logger.With().Str("run_id", uuid.NewV4().String()).Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	clientCfg := monnit.DefaultConfig(settings.AuthorizationToken)
	if settings.BaseURL != "" {
		clientCfg.BaseURL = settings.BaseURL
	}
	if settings.RetryMaxAttempts > 0 {
		clientCfg.Retry.MaxAttempts = settings.RetryMaxAttempts
	}

	client, err := monnit.New(clientCfg)
	if err != nil {
		fatalf("configuration error: %v", err)
	}

	sink, err := export.NewCSVSink(settings.OutputDir, settings.Timezone)
	if err != nil {
		fatalf("configuration error: %v", err)
	}

	var resolver exporter.SensorResolver
	if settings.NetworkName != "" {
		resolver = catalog.NewResolver(client)
	}

	exp, err := exporter.New(exporter.Config{
		Settings: settings,
		Client:   client,
		Sink:     sink,
		Resolver: resolver,
	})
	if err != nil {
		fatalf("configuration error: %v", err)
	}

	logger.Info().
		Str("settings", *configPath).
		Str("window", settings.Start+" -> "+settings.End).
		Int("interval_minutes", settings.IntervalMinutes).
		Msg("Starting Monnit export")

	result, err := exp.Run(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Export run aborted")
		os.Exit(1)
	}

	logger.Info().
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Msg("Monnit export complete")
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
