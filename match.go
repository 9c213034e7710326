package uieval

import "fmt"

// Policy selects how a prediction picks among qualifying ground truth boxes.
type Policy int

const (
	// FirstFit accepts the first unconsumed ground truth box, in file order,
	// whose overlap reaches the threshold. This is the reference behavior.
	FirstFit Policy = iota

	// BestFit accepts the unconsumed ground truth box with the highest
	// overlap at or above the threshold; ties go to the earlier box.
	BestFit
)

// ParsePolicy parses "first-fit" or "best-fit".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "first-fit", "firstfit", "":
		return FirstFit, nil
	case "best-fit", "bestfit":
		return BestFit, nil
	default:
		return 0, fmt.Errorf("unknown matching policy %q", s)
	}
}

func (p Policy) String() string {
	switch p {
	case FirstFit:
		return "first-fit"
	case BestFit:
		return "best-fit"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// MatchResult holds the counts for one category in one file.
type MatchResult struct {
	GroundTruth int
	Predicted   int
	Correct     int
}

// Match counts the predictions of category c that match a ground truth box
// of the same category with overlap >= threshold. Each ground truth box is
// consumed by at most one prediction. Boxes of other categories are ignored.
func Match(truth, predicted []Box, c Category, threshold float64) MatchResult {
	return match(truth, predicted, c, threshold, FirstFit)
}

// MatchBestFit is Match with the BestFit policy.
func MatchBestFit(truth, predicted []Box, c Category, threshold float64) MatchResult {
	return match(truth, predicted, c, threshold, BestFit)
}

func match(truth, predicted []Box, c Category, threshold float64, policy Policy) MatchResult {
	gt := filter(truth, c)
	pred := filter(predicted, c)

	consumed := make([]bool, len(gt))
	correct := 0

	for _, p := range pred {
		best := -1
		bestOverlap := 0.0
		for i, g := range gt {
			if consumed[i] {
				continue
			}
			o := Overlap(g, p)
			if o < threshold {
				continue
			}
			if policy == FirstFit {
				best = i
				break
			}
			if best == -1 || o > bestOverlap {
				best = i
				bestOverlap = o
			}
		}
		if best >= 0 {
			consumed[best] = true
			correct++
		}
	}

	return MatchResult{
		GroundTruth: len(gt),
		Predicted:   len(pred),
		Correct:     correct,
	}
}
