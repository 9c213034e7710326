package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	uieval "github.com/jamesainslie/go-uieval"
	"github.com/jamesainslie/go-uieval/internal/bench"
)

var (
	sweepMin  float64
	sweepMax  float64
	sweepStep float64
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Score the corpus across a range of IoU thresholds",
	Long: `Load the corpus once and score it at every threshold from --min to --max.
Rows are printed in threshold order and the threshold with the best macro F1
is reported last.

Examples:
  uieval sweep --gt ground_truth --pred predictions
  uieval sweep --gt gt --pred pred --min 0.5 --max 0.95 --step 0.05`,
	RunE: runSweep,
}

func init() {
	sweepCmd.Flags().StringVar(&evalGT, "gt", "", "ground truth directory (required)")
	sweepCmd.Flags().StringVar(&evalPred, "pred", "", "prediction directory (required)")
	sweepCmd.Flags().StringVar(&evalPattern, "pattern", "", "annotation file glob (default *.json)")
	sweepCmd.Flags().StringVar(&evalPolicy, "policy", "", "matching policy: first-fit or best-fit")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "minimum threshold")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.9, "maximum threshold")
	sweepCmd.Flags().Float64Var(&sweepStep, "step", 0.1, "threshold step")
	_ = sweepCmd.MarkFlagRequired("gt")
	_ = sweepCmd.MarkFlagRequired("pred")
}

func runSweep(cmd *cobra.Command, args []string) error {
	applyEvalFlags(cmd)

	thresholds := bench.SweepThresholds(sweepMin, sweepMax, sweepStep)
	if len(thresholds) == 0 {
		return fmt.Errorf("empty threshold range: min=%v max=%v step=%v", sweepMin, sweepMax, sweepStep)
	}

	truth, predicted, err := openDirs(evalGT, evalPred)
	if err != nil {
		return err
	}

	pairs, skipped, err := uieval.LoadPairs(cmd.Context(), truth, predicted)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, name := range skipped {
		fmt.Fprintf(out, "Warning: No prediction file for %s\n", name)
	}
	fmt.Fprintf(out, "Loaded %d file pairs from %s\n\n", len(pairs), truth.Root())

	opts, err := evalOptions()
	if err != nil {
		return err
	}
	results, err := bench.Sweep(pairs, thresholds, opts...)
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	fmt.Fprintln(out, "Threshold Sweep Results")
	fmt.Fprintln(out, strings.Repeat("-", 50))
	fmt.Fprintf(out, "%-8s %-8s %-8s %-8s %-8s\n", "Thresh", "Prec", "Rec", "F1", "MacroF1")

	byThreshold := make(map[float64]bench.SweepResult, len(results))
	for _, r := range results {
		byThreshold[r.Threshold] = r
	}
	for _, t := range thresholds {
		r := byThreshold[t]
		o := r.Report.Overall
		fmt.Fprintf(out, "%-8.3f %-8.2f %-8.2f %-8.2f %-8.2f\n", t, o.Precision, o.Recall, o.F1, r.Report.MacroF1())
	}

	fmt.Fprintln(out, strings.Repeat("-", 50))
	best := results[0]
	fmt.Fprintf(out, "Optimal: %.3f (MacroF1: %.2f)\n", best.Threshold, best.Report.MacroF1())
	return nil
}
