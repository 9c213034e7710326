// Package bench sweeps the overlap threshold over a loaded corpus.
package bench

import (
	"fmt"
	"sort"

	uieval "github.com/jamesainslie/go-uieval"
)

// SweepResult holds the report for one threshold value.
type SweepResult struct {
	Threshold float64
	Report    *uieval.Report
}

// SweepThresholds generates threshold values from min up to and including
// max with the given step. Values are rounded to avoid float drift.
func SweepThresholds(min, max, step float64) []float64 {
	if step <= 0 || max < min {
		return nil
	}
	var thresholds []float64
	n := int((max-min)/step + 1e-9)
	for i := 0; i <= n; i++ {
		t := min + float64(i)*step
		thresholds = append(thresholds, roundTo(t, 1e-6))
	}
	return thresholds
}

func roundTo(v, unit float64) float64 {
	return float64(int64(v/unit+0.5)) * unit
}

// Sweep scores pairs at every threshold and returns results sorted by
// macro F1, best first. Ties keep threshold order.
func Sweep(pairs []uieval.Pair, thresholds []float64, opts ...uieval.Option) ([]SweepResult, error) {
	results := make([]SweepResult, 0, len(thresholds))

	for _, threshold := range thresholds {
		ev, err := uieval.New(append(opts, uieval.WithThreshold(threshold))...)
		if err != nil {
			return nil, fmt.Errorf("threshold %v: %w", threshold, err)
		}
		results = append(results, SweepResult{
			Threshold: threshold,
			Report:    ev.Score(pairs),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Report.MacroF1() > results[j].Report.MacroF1()
	})

	return results, nil
}
