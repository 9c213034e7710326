// Package report renders evaluation reports.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	uieval "github.com/jamesainslie/go-uieval"
)

// Format selects an output encoding.
type Format string

// Supported formats.
const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatProto Format = "proto"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatProto:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown report format %q", s)
	}
}

// Write renders r to w in the given format.
func Write(w io.Writer, r *uieval.Report, f Format) error {
	switch f {
	case FormatText, "":
		return WriteText(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatProto:
		return WriteProto(w, r)
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// WriteText prints the per-category console report.
func WriteText(w io.Writer, r *uieval.Report) error {
	var b strings.Builder

	b.WriteString("\nEvaluation Results:\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n")

	for _, m := range r.Categories {
		fmt.Fprintf(&b, "%s:\n", strings.ToUpper(m.Category.String()))
		fmt.Fprintf(&b, "  Ground Truth: %d\n", m.GroundTruth)
		fmt.Fprintf(&b, "  Predicted: %d\n", m.Predicted)
		fmt.Fprintf(&b, "  Correct: %d\n", m.Correct)
		fmt.Fprintf(&b, "  Precision: %.2f\n", m.Precision)
		fmt.Fprintf(&b, "  Recall: %.2f\n", m.Recall)
		fmt.Fprintf(&b, "  F1-score: %.2f\n", m.F1)
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// CategorySummary is the serialized form of one category's metrics.
type CategorySummary struct {
	Category    string  `json:"category"`
	GroundTruth int     `json:"ground_truth_total"`
	Predicted   int     `json:"predicted_total"`
	Correct     int     `json:"correct_total"`
	Precision   float64 `json:"precision"`
	Recall      float64 `json:"recall"`
	F1          float64 `json:"f1"`
}

// Summary is the serialized form of a report.
type Summary struct {
	Threshold  float64           `json:"threshold"`
	Policy     string            `json:"policy"`
	Files      int               `json:"files"`
	Evaluated  int               `json:"evaluated"`
	Skipped    []string          `json:"skipped"`
	Categories []CategorySummary `json:"categories"`
	Overall    CategorySummary   `json:"overall"`
	MacroF1    float64           `json:"macro_f1"`
}

// Summarize converts a report to its serialized form.
func Summarize(r *uieval.Report) Summary {
	s := Summary{
		Threshold:  r.Threshold,
		Policy:     r.Policy.String(),
		Files:      r.Files,
		Evaluated:  r.Evaluated,
		Skipped:    r.Skipped,
		Categories: make([]CategorySummary, 0, len(r.Categories)),
		Overall:    summarizeMetrics(r.Overall),
		MacroF1:    r.MacroF1(),
	}
	if s.Skipped == nil {
		s.Skipped = []string{}
	}
	for _, m := range r.Categories {
		s.Categories = append(s.Categories, summarizeMetrics(m))
	}
	return s
}

func summarizeMetrics(m uieval.Metrics) CategorySummary {
	return CategorySummary{
		Category:    m.Category.String(),
		GroundTruth: m.GroundTruth,
		Predicted:   m.Predicted,
		Correct:     m.Correct,
		Precision:   m.Precision,
		Recall:      m.Recall,
		F1:          m.F1,
	}
}

// WriteJSON writes the summary as indented JSON.
func WriteJSON(w io.Writer, r *uieval.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Summarize(r))
}

// ToStruct converts the summary to a google.protobuf.Struct.
func ToStruct(r *uieval.Report) (*structpb.Struct, error) {
	data, err := json.Marshal(Summarize(r))
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return st, nil
}

// WriteProto writes the summary as a binary google.protobuf.Struct message.
func WriteProto(w io.Writer, r *uieval.Report) error {
	st, err := ToStruct(r)
	if err != nil {
		return err
	}
	data, err := proto.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal protobuf: %w", err)
	}
	_, err = w.Write(data)
	return err
}
