// Package uieval scores predicted UI element bounding boxes against ground truth.
//
// # Quick Start
//
//	ev, err := uieval.New(uieval.WithThreshold(0.5))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	report, err := ev.Evaluate(ctx, truthSource, predictionSource)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, m := range report.Categories {
//	    fmt.Printf("%s: P=%.2f R=%.2f F1=%.2f\n", m.Category, m.Precision, m.Recall, m.F1)
//	}
//
// # Matching
//
// Boxes are compared per category (button, input, radio, dropdown) using
// Intersection-over-Union. Predictions are matched greedily in file order:
// each prediction takes the first unconsumed ground truth box whose overlap
// reaches the threshold. Counts are summed over every file before precision,
// recall and F1 are derived, so ratios are never averaged.
//
// # Thread Safety
//
// Evaluator is immutable after New and safe for concurrent use. Files are
// evaluated by up to WithWorkers goroutines; per-file counts are merged with
// integer addition, so file order never changes the result.
package uieval
