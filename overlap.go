package uieval

import "math"

// DefaultThreshold is the overlap a prediction needs to count as correct.
const DefaultThreshold = 0.5

// Overlap returns the Intersection-over-Union of two boxes in [0, 1].
// Disjoint, touching, degenerate and inverted boxes overlap by exactly 0.
func Overlap(a, b Box) float64 {
	left := math.Max(a.X1, b.X1)
	top := math.Max(a.Y1, b.Y1)
	right := math.Min(a.X2, b.X2)
	bottom := math.Min(a.Y2, b.Y2)

	// Written as !(x > y) so NaN coordinates fall into the empty case.
	if !(right > left) || !(bottom > top) {
		return 0.0
	}

	inter := (right - left) * (bottom - top)
	union := a.Area() + b.Area() - inter

	if !(union > 0) {
		return 0.0
	}
	iou := inter / union
	if math.IsNaN(iou) || math.IsInf(iou, 0) {
		return 0.0
	}
	return iou
}
