// Package metrics accumulates Character Error Rate (CER) and Word
// Error Rate (WER) across decoded samples against their ground truth.
package metrics

import "github.com/kwbeam/wordbeamsearch/label"

// Metrics accumulates CER/WER over a sequence of AddResult calls. A
// Metrics returned by New is ready to use; Metrics is not safe for
// concurrent use.
type Metrics struct {
	isWordLabel func(label.Label) bool

	numChars, edChars int
	numWords, edWords int
}

// New returns an empty Metrics accumulator. isWordLabel classifies a
// label as word-forming, used to split ground-truth/recognized label
// sequences into words for WER.
func New(isWordLabel func(label.Label) bool) *Metrics {
	return &Metrics{isWordLabel: isWordLabel}
}

// AddResult folds one sample's ground truth and recognized label
// sequences into the running CER/WER totals.
func (m *Metrics) AddResult(gt, rec []label.Label) {
	m.numChars += len(gt)
	m.edChars += editDistance(gt, rec)

	gtWords, recWords := m.wordIDStrings(gt, rec)
	m.numWords += len(gtWords)
	m.edWords += editDistance(gtWords, recWords)
}

// CER returns the accumulated character error rate, 0 if no characters
// have been added yet.
func (m *Metrics) CER() float64 {
	if m.numChars == 0 {
		return 0
	}
	return float64(m.edChars) / float64(m.numChars)
}

// WER returns the accumulated word error rate, 0 if no words have been
// added yet.
func (m *Metrics) WER() float64 {
	if m.numWords == 0 {
		return 0
	}
	return float64(m.edWords) / float64(m.numWords)
}

// wordIDStrings splits t1 and t2 into words on non-word-labels and
// remaps each distinct word (shared between both texts) to a dense
// integer ID, so that WER can run a generic edit distance over word
// IDs instead of over label sequences directly.
func (m *Metrics) wordIDStrings(t1, t2 []label.Label) ([]int, []int) {
	wordIDs := make(map[string]int)
	nextID := 0

	id := func(word []label.Label) int {
		k := label.Key(word)
		v, ok := wordIDs[k]
		if !ok {
			v = nextID
			wordIDs[k] = v
			nextID++
		}
		return v
	}

	return m.toWordIDs(t1, id), m.toWordIDs(t2, id)
}

func (m *Metrics) toWordIDs(text []label.Label, id func([]label.Label) int) []int {
	var res []int
	var current []label.Label
	for i, c := range text {
		if m.isWordLabel(c) {
			current = append(current, c)
		}
		last := i == len(text)-1
		if (!m.isWordLabel(c) || last) && len(current) > 0 {
			res = append(res, id(current))
			current = nil
		}
	}
	return res
}

func editDistance[T comparable](t1, t2 []T) int {
	prev := make([]int, len(t2)+1)
	for j := range prev {
		prev[j] = j
	}

	curr := make([]int, len(t2)+1)
	for i := 0; i < len(t1); i++ {
		curr[0] = i + 1
		for j := 0; j < len(t2); j++ {
			cost := 1
			if t1[i] == t2[j] {
				cost = 0
			}
			curr[j+1] = min3(prev[j+1]+1, curr[j]+1, prev[j]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(t2)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
