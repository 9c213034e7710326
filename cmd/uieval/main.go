package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-uieval/internal/config"
)

// Set at build time through -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func versionString() string {
	v := version
	if v == "" {
		v = "dev"
	}
	if commit != "" {
		v += "+" + commit
	}
	if date != "" {
		v += " (" + date + ")"
	}
	return v
}

var (
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:     "uieval",
	Short:   "Evaluate UI element detections against ground truth",
	Version: versionString(),
	Long: `uieval scores predicted UI element boxes (button, input, radio, dropdown)
against ground truth annotations and reports per-category precision,
recall and F1.

Examples:
  uieval evaluate --gt ground_truth --pred predictions
  uieval sweep --gt ground_truth --pred predictions --min 0.3 --max 0.9
  uieval predict --images screenshots --out predictions
  uieval serve --addr :8000`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./uieval.yaml or ~/.uieval/uieval.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(serveCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	cfg = c
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
