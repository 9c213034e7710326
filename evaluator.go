package uieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Source provides annotation sets by file name.
type Source interface {
	// Files lists the annotation file names available in the source.
	Files(ctx context.Context) ([]string, error)

	// Load returns the boxes stored under name. A missing file must
	// produce an error wrapping ErrNotFound.
	Load(ctx context.Context, name string) ([]Box, error)
}

// Report is the outcome of evaluating a corpus.
type Report struct {
	Threshold  float64
	Policy     Policy
	Files      int       // ground truth files found
	Evaluated  int       // files with a matching prediction
	Skipped    []string  // ground truth files without a prediction
	Categories []Metrics // reporting order
	Overall    Metrics   // micro average over every category
}

// MacroF1 returns the mean F1 over the recognized categories.
func (r *Report) MacroF1() float64 {
	if len(r.Categories) == 0 {
		return 0
	}
	var sum float64
	for _, m := range r.Categories {
		sum += m.F1
	}
	return sum / float64(len(r.Categories))
}

// Evaluator scores prediction sources against ground truth sources.
// It is safe for concurrent use.
type Evaluator struct {
	threshold float64
	policy    Policy
	workers   int
	logger    *slog.Logger
}

// New creates an Evaluator.
func New(opts ...Option) (*Evaluator, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if !(cfg.threshold > 0 && cfg.threshold <= 1) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, cfg.threshold)
	}
	if cfg.policy != FirstFit && cfg.policy != BestFit {
		return nil, fmt.Errorf("unknown matching policy %v", cfg.policy)
	}

	return &Evaluator{
		threshold: cfg.threshold,
		policy:    cfg.policy,
		workers:   cfg.workers,
		logger:    cfg.logger,
	}, nil
}

// Threshold returns the configured overlap threshold.
func (e *Evaluator) Threshold() float64 { return e.threshold }

// Evaluate matches every ground truth file against its prediction and
// returns per-category metrics. Ground truth files without a prediction are
// skipped and listed in Report.Skipped.
func (e *Evaluator) Evaluate(ctx context.Context, truth, predicted Source) (*Report, error) {
	if truth == nil || predicted == nil {
		return nil, ErrNoSource
	}

	names, err := truth.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing ground truth: %w", err)
	}
	e.logger.Debug("evaluating corpus", "files", len(names), "threshold", e.threshold, "policy", e.policy)

	var (
		mu      sync.Mutex
		tally   Tally
		skipped = make([]bool, len(names))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, name := range names {
		g.Go(func() error {
			pair, ok, err := loadPair(gctx, truth, predicted, name)
			if err != nil {
				return err
			}
			if !ok {
				e.logger.Warn("no prediction file", "file", name)
				skipped[i] = true
				return nil
			}

			var local Tally
			local.addPair(pair, e.threshold, e.policy)

			mu.Lock()
			tally.Merge(local)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := e.report(tally)
	report.Files = len(names)
	for i, s := range skipped {
		if s {
			report.Skipped = append(report.Skipped, names[i])
		}
	}
	return report, nil
}

// LoadPairs reads every ground truth file and its prediction into memory.
// Names without a prediction are returned in skipped.
func LoadPairs(ctx context.Context, truth, predicted Source) (pairs []Pair, skipped []string, err error) {
	if truth == nil || predicted == nil {
		return nil, nil, ErrNoSource
	}

	names, err := truth.Files(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("listing ground truth: %w", err)
	}

	for _, name := range names {
		pair, ok, err := loadPair(ctx, truth, predicted, name)
		if err != nil {
			return nil, nil, err
		}
		if !ok {
			skipped = append(skipped, name)
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs, skipped, nil
}

// Score evaluates pairs that are already in memory.
func (e *Evaluator) Score(pairs []Pair) *Report {
	report := e.report(AggregatePolicy(pairs, e.threshold, e.policy))
	report.Files = len(pairs)
	return report
}

func (e *Evaluator) report(t Tally) *Report {
	return &Report{
		Threshold:  e.threshold,
		Policy:     e.policy,
		Evaluated:  t.Files(),
		Categories: t.Metrics(),
		Overall:    score(overall, t.Overall()),
	}
}

// loadPair reads one file pair. ok is false when the prediction is missing.
func loadPair(ctx context.Context, truth, predicted Source, name string) (pair Pair, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return Pair{}, false, err
	}

	pred, err := predicted.Load(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return Pair{}, false, nil
	}
	if err != nil {
		return Pair{}, false, fmt.Errorf("loading prediction %s: %w", name, err)
	}

	gt, err := truth.Load(ctx, name)
	if err != nil {
		return Pair{}, false, fmt.Errorf("loading ground truth %s: %w", name, err)
	}

	return Pair{Name: name, Truth: gt, Predicted: pred}, true, nil
}
