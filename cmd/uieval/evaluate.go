package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	uieval "github.com/jamesainslie/go-uieval"
	"github.com/jamesainslie/go-uieval/internal/corpus"
	"github.com/jamesainslie/go-uieval/internal/report"
)

var (
	evalGT        string
	evalPred      string
	evalThreshold float64
	evalWorkers   int
	evalPattern   string
	evalPolicy    string
	evalFormat    string
	evalOut       string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a prediction directory against ground truth",
	Long: `Pair every annotation file in the ground truth directory with the file of
the same name in the prediction directory and report per-category metrics.
Files without a prediction are skipped.

Examples:
  uieval evaluate --gt ground_truth --pred predictions
  uieval evaluate --gt gt --pred pred --threshold 0.7 --format json --out report.json`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&evalGT, "gt", "", "ground truth directory (required)")
	evaluateCmd.Flags().StringVar(&evalPred, "pred", "", "prediction directory (required)")
	evaluateCmd.Flags().Float64Var(&evalThreshold, "threshold", 0, "IoU threshold (default from config, 0.5)")
	evaluateCmd.Flags().IntVar(&evalWorkers, "workers", 0, "files evaluated concurrently (default from config)")
	evaluateCmd.Flags().StringVar(&evalPattern, "pattern", "", "annotation file glob (default *.json)")
	evaluateCmd.Flags().StringVar(&evalPolicy, "policy", "", "matching policy: first-fit or best-fit")
	evaluateCmd.Flags().StringVar(&evalFormat, "format", "text", "report format: text, json or proto")
	evaluateCmd.Flags().StringVarP(&evalOut, "out", "o", "", "write the report to a file instead of stdout")
	_ = evaluateCmd.MarkFlagRequired("gt")
	_ = evaluateCmd.MarkFlagRequired("pred")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	applyEvalFlags(cmd)

	format, err := report.ParseFormat(evalFormat)
	if err != nil {
		return err
	}

	truth, predicted, err := openDirs(evalGT, evalPred)
	if err != nil {
		return err
	}

	ev, err := newEvaluator()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	files, err := truth.Files(ctx)
	if err != nil {
		return fmt.Errorf("list ground truth: %w", err)
	}
	fmt.Fprintf(out, "Found %d files to evaluate\n", len(files))
	fmt.Fprintln(out, "Processing files...")
	logger.Debug("evaluating corpus", "gt", truth.Root(), "pred", predicted.Root(), "files", len(files))

	r, err := ev.Evaluate(ctx, listedSource{Source: truth, names: files}, predicted)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	for _, name := range r.Skipped {
		fmt.Fprintf(out, "Warning: No prediction file for %s\n", name)
	}

	return writeReport(out, r, format)
}

// listedSource serves a file listing taken up front so the reported count
// and the evaluated set agree.
type listedSource struct {
	uieval.Source
	names []string
}

func (s listedSource) Files(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.names, nil
}

// applyEvalFlags copies config values into flags the user left unset.
func applyEvalFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if !flags.Changed("threshold") {
		evalThreshold = cfg.Eval.Threshold
	}
	if !flags.Changed("workers") {
		evalWorkers = cfg.Eval.Workers
	}
	if !flags.Changed("pattern") {
		evalPattern = cfg.Eval.Pattern
	}
	if !flags.Changed("policy") {
		evalPolicy = cfg.Eval.Policy
	}
}

func openDirs(gt, pred string) (*corpus.Dir, *corpus.Dir, error) {
	truth, err := corpus.NewDir(gt, corpus.WithPattern(evalPattern))
	if err != nil {
		return nil, nil, fmt.Errorf("ground truth: %w", err)
	}
	predicted, err := corpus.NewDir(pred, corpus.WithPattern(evalPattern))
	if err != nil {
		return nil, nil, fmt.Errorf("predictions: %w", err)
	}
	return truth, predicted, nil
}

func evalOptions() ([]uieval.Option, error) {
	policy, err := uieval.ParsePolicy(evalPolicy)
	if err != nil {
		return nil, err
	}
	return []uieval.Option{
		uieval.WithPolicy(policy),
		uieval.WithWorkers(evalWorkers),
		uieval.WithLogger(logger),
	}, nil
}

func newEvaluator() (*uieval.Evaluator, error) {
	opts, err := evalOptions()
	if err != nil {
		return nil, err
	}
	return uieval.New(append(opts, uieval.WithThreshold(evalThreshold))...)
}

func writeReport(stdout io.Writer, r *uieval.Report, format report.Format) error {
	if evalOut == "" {
		return report.Write(stdout, r, format)
	}

	f, err := os.Create(evalOut)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Write(f, r, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	fmt.Fprintf(stdout, "Report written to %s\n", evalOut)
	return nil
}
