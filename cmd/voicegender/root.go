package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/region23/voicegender/internal/classify"
	"github.com/region23/voicegender/internal/config"
	"github.com/region23/voicegender/internal/features"
	"github.com/region23/voicegender/internal/preprocess"
)

const (
	serviceName    = "voicegender"
	serviceVersion = "1.0.0"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "voicegender <audio-file>",
	Short: "Classify the speaker gender of an audio file",
	Long: `voicegender analyzes the dominant speaker of an audio file and prints
"male" or "female" to stdout. The audio is normalized with ffmpeg (and, when
available, the vocals are isolated with demucs) before pitch and spectral
analysis.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("Audio file path required")
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runClassify,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

// loadConfig returns the configuration from --config, or the defaults when
// no file is given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// In one-shot mode the label is the only thing on stdout.
	cfg.Logging.Output = "stderr"
	logger := initLogger(cfg.Logging)

	pipeline := classify.NewPipeline(
		cfg.PipelineConfig(),
		preprocess.NewToolPreprocessor(cfg.PreprocessorConfig(), logger),
		features.NewSTFTExtractor(features.DefaultSTFTConfig()),
		logger,
		nil,
	)

	result, err := pipeline.Run(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.LabelName)
	return nil
}

// initLogger creates and configures the structured logger based on configuration
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	var output *os.File
	switch cfg.Output {
	case "stderr", "":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v, falling back to stderr\n", cfg.Output, err)
			output = os.Stderr
		} else {
			output = file
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler)
}
