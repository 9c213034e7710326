package uieval

// Totals are running counts for one category.
type Totals struct {
	GroundTruth int `json:"ground_truth_total"`
	Predicted   int `json:"predicted_total"`
	Correct     int `json:"correct_total"`
}

// Add folds a single match result into t.
func (t *Totals) Add(r MatchResult) {
	t.GroundTruth += r.GroundTruth
	t.Predicted += r.Predicted
	t.Correct += r.Correct
}

// Metrics are the derived scores for one category.
type Metrics struct {
	Category Category `json:"-"`
	Totals
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Score derives precision, recall and F1 from final totals.
// Zero denominators yield 0 rather than NaN.
func (t Totals) Score() (precision, recall, f1 float64) {
	if t.Predicted > 0 {
		precision = float64(t.Correct) / float64(t.Predicted)
	}
	if t.GroundTruth > 0 {
		recall = float64(t.Correct) / float64(t.GroundTruth)
	}
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return precision, recall, f1
}

// Pair is one file's ground truth and prediction annotations.
type Pair struct {
	Name      string
	Truth     []Box
	Predicted []Box
}

// Tally accumulates per-category totals across files. The zero value is
// ready to use. Tally is not safe for concurrent mutation.
type Tally struct {
	totals [numCategories]Totals
	files  int
}

// AddPair matches one file's boxes for every category and folds the counts in.
func (t *Tally) AddPair(p Pair, threshold float64) {
	t.addPair(p, threshold, FirstFit)
}

func (t *Tally) addPair(p Pair, threshold float64, policy Policy) {
	for _, c := range Categories() {
		t.totals[c].Add(match(p.Truth, p.Predicted, c, threshold, policy))
	}
	t.files++
}

// Merge adds every count of other into t.
func (t *Tally) Merge(other Tally) {
	for c := range t.totals {
		t.totals[c].GroundTruth += other.totals[c].GroundTruth
		t.totals[c].Predicted += other.totals[c].Predicted
		t.totals[c].Correct += other.totals[c].Correct
	}
	t.files += other.files
}

// Totals returns the running totals for c.
func (t Tally) Totals(c Category) Totals {
	return t.totals[c]
}

// Files returns how many file pairs were folded in.
func (t Tally) Files() int {
	return t.files
}

// Metrics derives per-category scores in reporting order.
func (t Tally) Metrics() []Metrics {
	out := make([]Metrics, 0, numCategories)
	for _, c := range Categories() {
		out = append(out, score(c, t.totals[c]))
	}
	return out
}

// Overall scores the totals summed over every category (micro average).
func (t Tally) Overall() Totals {
	var all Totals
	for _, tot := range t.totals {
		all.GroundTruth += tot.GroundTruth
		all.Predicted += tot.Predicted
		all.Correct += tot.Correct
	}
	return all
}

func score(c Category, t Totals) Metrics {
	p, r, f1 := t.Score()
	return Metrics{
		Category:  c,
		Totals:    t,
		Precision: p,
		Recall:    r,
		F1:        f1,
	}
}

// Aggregate folds every pair into a fresh Tally using first-fit matching.
func Aggregate(pairs []Pair, threshold float64) Tally {
	return AggregatePolicy(pairs, threshold, FirstFit)
}

// AggregatePolicy is Aggregate with an explicit matching policy.
func AggregatePolicy(pairs []Pair, threshold float64, policy Policy) Tally {
	var t Tally
	for _, p := range pairs {
		t.addPair(p, threshold, policy)
	}
	return t
}
