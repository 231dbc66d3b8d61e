package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/board"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/config"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/logger"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/pid"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/plugins"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/publish"
	"github.com/DesignSparkRS/DesignSpark.ESDK/internal/telemetry"
)

var (
	cfg       *config.Config
	mainboard *board.Board
	collector telemetry.Collector
	publisher publish.Publisher
)

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")

	mainboard, err = board.New(cfg, logger.Default())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open sensor bus")
	}
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()
	defer mainboard.Close()

	if serial, err := mainboard.SerialNumber(); err == nil {
		logger.Info().Str("serial", serial).Str("friendlyname", mainboard.FriendlyName()).Msg("Board identity")
	}

	mainboard.CreateModules()

	pluginRegistry := plugins.Load(cfg.ESDK.PluginDir, logger.Default())
	mainboard.AttachPlugins(pluginRegistry.Sensors())

	var err error
	collector, err = telemetry.NewService(telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		DBPath:       cfg.Telemetry.DBPath,
		BatchSize:    cfg.Telemetry.BatchSize,
		BatchTimeout: cfg.Telemetry.BatchTimeout,
	}, logger.Default())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer collector.Close()

	publisher = publish.NewMQTT(cfg.MQTT, mainboard.FriendlyName(), logger.Default())
	defer publisher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := loop(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}
	logger.Info().Msg("Exiting...")
}

func loop(ctx context.Context) error {
	interval := time.Duration(cfg.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			readings := mainboard.ReadAll()

			geohash, err := mainboard.Location()
			if err != nil {
				logger.Debug().Err(err).Msg("No location available")
			}

			snapshot := &telemetry.Snapshot{
				Timestamp: time.Now(),
				Geohash:   geohash,
				Readings:  readings,
			}

			if err := collector.Record(ctx, snapshot); err != nil {
				logger.Error().Err(err).Msg("failed to record snapshot")
			}

			if err := publisher.Publish(ctx, snapshot); err != nil {
				logger.Error().Err(err).Msg("failed to publish snapshot")
			}

			logSnapshot(snapshot)
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func logSnapshot(snapshot *telemetry.Snapshot) {
	if cfg.Debug {
		logger.Debug().
			Str("geohash", snapshot.Geohash).
			Int("categories", len(snapshot.Readings)).
			Interface("readings", snapshot.Readings).
			Msg("")
	} else if cfg.Verbose {
		logger.Info().
			Str("geohash", snapshot.Geohash).
			Int("categories", len(snapshot.Readings)).
			Msg("")
	}
}
