package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jamesainslie/go-uieval/internal/corpus"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// newFixture writes two ground truth files, one with a prediction whose
// button overlaps its ground truth at IoU 0.8.
func newFixture(t *testing.T) (gt, pred string) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	gt = filepath.Join(dir, "gt")
	pred = filepath.Join(dir, "pred")
	writeFile(t, filepath.Join(gt, "a.json"), `[{"tag":"Button","x1":0,"y1":0,"x2":10,"y2":10}]`)
	writeFile(t, filepath.Join(gt, "b.json"), `[{"tag":"input","x1":0,"y1":0,"x2":10,"y2":10}]`)
	writeFile(t, filepath.Join(pred, "a.json"), `{"boxes":[{"tag":"button","x1":0,"y1":0,"x2":10,"y2":8}]}`)
	return gt, pred
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("Execute(%v) error = %v", args, err)
	}
	return out.String()
}

func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, got)
		}
	}
}

func TestEvaluateCommand(t *testing.T) {
	gt, pred := newFixture(t)

	got := execute(t, "evaluate", "--gt", gt, "--pred", pred, "--log-level", "error")

	assertContains(t, got,
		"Found 2 files to evaluate\n",
		"Processing files...\n",
		"Warning: No prediction file for b.json\n",
		"Evaluation Results:\n",
		"BUTTON:\n  Ground Truth: 1\n  Predicted: 1\n  Correct: 1\n  Precision: 1.00\n  Recall: 1.00\n  F1-score: 1.00\n",
		"INPUT:\n  Ground Truth: 0\n",
	)
}

func TestSweepCommand(t *testing.T) {
	gt, pred := newFixture(t)

	got := execute(t, "sweep", "--gt", gt, "--pred", pred, "--min", "0.5", "--max", "0.9", "--step", "0.2", "--log-level", "error")

	assertContains(t, got,
		"Warning: No prediction file for b.json\n",
		"Loaded 1 file pairs from "+gt+"\n",
		"Thresh   Prec     Rec      F1       MacroF1 \n",
		"0.500    1.00     1.00     1.00     0.25    \n",
		"0.700    1.00     1.00     1.00     0.25    \n",
		"0.900    0.00     0.00     0.00     0.00    \n",
		"Optimal: 0.500 (MacroF1: 0.25)\n",
	)

	// Rows stay in threshold order even though results are ranked by F1.
	if strings.Index(got, "0.500 ") > strings.Index(got, "0.900 ") {
		t.Errorf("rows out of threshold order:\n%s", got)
	}
}

func TestListedSource(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.json"), `[]`)

	dir, err := corpus.NewDir(root)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	names, err := dir.Files(ctx)
	if err != nil {
		t.Fatal(err)
	}

	src := listedSource{Source: dir, names: names}
	writeFile(t, filepath.Join(root, "late.json"), `[]`)

	got, err := src.Files(ctx)
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	if len(got) != 1 || got[0] != "a.json" {
		t.Errorf("Files() = %v, want listing taken before late.json was written", got)
	}
	if _, err := src.Load(ctx, "late.json"); err != nil {
		t.Errorf("Load() error = %v, want delegation to the directory", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := src.Files(cancelled); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestVersionString(t *testing.T) {
	defer func(v, c, d string) { version, commit, date = v, c, d }(version, commit, date)

	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"dev", "", "", "dev"},
		{"", "", "", "dev"},
		{"v1.2.0", "abc1234", "", "v1.2.0+abc1234"},
		{"v1.2.0", "abc1234", "2026-10-17T09:00:00Z", "v1.2.0+abc1234 (2026-10-17T09:00:00Z)"},
	}
	for _, tt := range tests {
		version, commit, date = tt.version, tt.commit, tt.date
		if got := versionString(); got != tt.want {
			t.Errorf("versionString() with %q/%q/%q = %q, want %q", tt.version, tt.commit, tt.date, got, tt.want)
		}
	}
}
