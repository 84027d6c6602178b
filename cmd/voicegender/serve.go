package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/region23/voicegender/internal/classify"
	"github.com/region23/voicegender/internal/features"
	"github.com/region23/voicegender/internal/metrics"
	"github.com/region23/voicegender/internal/preprocess"
	"github.com/region23/voicegender/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the classification HTTP service",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := initLogger(cfg.Logging)

	logger.Info("Service starting",
		slog.String("service", serviceName),
		slog.String("version", serviceVersion),
	)

	logger.Info("Configuration loaded",
		slog.String("bind_address", cfg.HTTP.Address),
		slog.Int("port", cfg.HTTP.Port),
		slog.Int("sample_rate", cfg.Audio.SampleRate),
		slog.Float64("window_seconds", cfg.Audio.WindowSeconds),
		slog.Float64("hop_seconds", cfg.Audio.HopSeconds),
		slog.String("demucs_model", cfg.Preprocess.DemucsModel),
		slog.String("log_level", cfg.Logging.Level),
	)

	appMetrics := metrics.NewMetrics()
	logger.Info("Prometheus metrics initialized")

	pipeline := classify.NewPipeline(
		cfg.PipelineConfig(),
		preprocess.NewToolPreprocessor(cfg.PreprocessorConfig(), logger),
		features.NewSTFTExtractor(features.DefaultSTFTConfig()),
		logger,
		appMetrics,
	)

	httpServer := server.NewHTTPServer(cfg.HTTP, logger, cfg, pipeline, appMetrics)
	if err := httpServer.Start(); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("Service started successfully, waiting for signals...")

	sig := <-sigChan
	logger.Info("Received shutdown signal", slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("Error stopping HTTP server", slog.String("error", err.Error()))
	}

	logger.Info("Service stopped")
	return nil
}
