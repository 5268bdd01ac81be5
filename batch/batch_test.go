package batch

import (
	"testing"

	"github.com/kwbeam/wordbeamsearch/decoder"
	"github.com/kwbeam/wordbeamsearch/langmodel"
)

type denseMatrix struct {
	rows, cols int
	data       []float64
}

func newDenseMatrix(rows, cols int) *denseMatrix {
	return &denseMatrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}
func (m *denseMatrix) Rows() int              { return m.rows }
func (m *denseMatrix) Cols() int              { return m.cols }
func (m *denseMatrix) At(t, c int) float64    { return m.data[t*m.cols+c] }
func (m *denseMatrix) set(t, c int, v float64) { m.data[t*m.cols+c] = v }

// wordMatrix returns a matrix whose argmax path spells w, one
// character per time step.
func wordMatrix(lm *langmodel.LanguageModel, w string) *denseMatrix {
	labels, _ := lm.Alphabet().ToLabels(w)
	blank := int(lm.Alphabet().Blank())

	mat := newDenseMatrix(len(labels), lm.Alphabet().NumClasses())
	for t, l := range labels {
		mat.set(t, int(l), 0.9)
		mat.set(t, blank, 0.1)
	}
	return mat
}

func TestSplitWorkCoversEveryIndexExactlyOnce(t *testing.T) {
	groups := splitWork(3, 10)

	seen := make(map[int]bool)
	for _, g := range groups {
		for _, idx := range g {
			if seen[idx] {
				t.Fatalf("index %d assigned to more than one worker", idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != 10 {
		t.Errorf("splitWork covered %d indices; want 10", len(seen))
	}
}

func TestDecodeBatchReturnsResultsInOrder(t *testing.T) {
	lm, err := langmodel.New(langmodel.Config{Corpus: "ba ab", Chars: "ab ", WordChars: "ab", LMType: langmodel.Words})
	if err != nil {
		t.Fatalf("langmodel.New() error = %v", err)
	}

	want := []string{"ba", "ab", "ab", "ba", "ab"}
	mats := make([]decoder.Matrix, len(want))
	for i := range mats {
		mats[i] = wordMatrix(lm, want[i])
	}

	results := Decode(lm, decoder.Config{BeamWidth: 10}, mats, 3)
	if len(results) != 5 {
		t.Fatalf("Decode() returned %d results; want 5", len(results))
	}

	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d: unexpected error %v", i, r.Err)
		}
		text, err := lm.Alphabet().ToString(r.Labels)
		if err != nil {
			t.Fatalf("result %d: ToString() error = %v", i, err)
		}
		if text != want[i] {
			t.Errorf("result %d = %q; want %q", i, text, want[i])
		}
	}
}
