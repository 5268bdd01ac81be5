package decoder

import (
	"testing"

	"github.com/kwbeam/wordbeamsearch/langmodel"
)

type denseMatrix struct {
	rows, cols int
	data       []float64
}

func newDenseMatrix(rows, cols int) *denseMatrix {
	return &denseMatrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

func (m *denseMatrix) Rows() int { return m.rows }
func (m *denseMatrix) Cols() int { return m.cols }
func (m *denseMatrix) At(t, c int) float64 {
	return m.data[t*m.cols+c]
}
func (m *denseMatrix) set(t, c int, v float64) {
	m.data[t*m.cols+c] = v
}

func mustLM(t *testing.T, corpus string, mode langmodel.Type) *langmodel.LanguageModel {
	t.Helper()
	lm, err := langmodel.New(langmodel.Config{
		Corpus:    corpus,
		Chars:     "ab ",
		WordChars: "ab",
		LMType:    mode,
	})
	if err != nil {
		t.Fatalf("langmodel.New() error = %v", err)
	}
	return lm
}

// TestDecodeEndToEndGreedyPath engineers a matrix whose argmax path
// spells "ba" unambiguously and checks beam search with beam width 10
// in Words mode recovers it.
func TestDecodeEndToEndGreedyPath(t *testing.T) {
	lm := mustLM(t, "ba", langmodel.Words)

	aLabel, err := lm.Alphabet().ToLabels("a")
	if err != nil {
		t.Fatal(err)
	}
	bLabel, err := lm.Alphabet().ToLabels("b")
	if err != nil {
		t.Fatal(err)
	}
	blank := int(lm.Alphabet().Blank())

	mat := newDenseMatrix(2, lm.Alphabet().NumClasses())
	mat.set(0, int(bLabel[0]), 0.9)
	mat.set(0, blank, 0.1)
	mat.set(1, int(aLabel[0]), 0.9)
	mat.set(1, blank, 0.1)

	d, err := New(lm, Config{BeamWidth: 10})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := d.Decode(mat)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	text, err := lm.Alphabet().ToString(got)
	if err != nil {
		t.Fatalf("ToString() error = %v", err)
	}
	if text != "ba" {
		t.Errorf("Decode() = %q; want %q", text, "ba")
	}
}

func TestDecodeBeamWidthOneIsGreedyBaseline(t *testing.T) {
	lm := mustLM(t, "ba", langmodel.Words)
	mat := newDenseMatrix(2, lm.Alphabet().NumClasses())

	bLabel, _ := lm.Alphabet().ToLabels("b")
	aLabel, _ := lm.Alphabet().ToLabels("a")
	blank := int(lm.Alphabet().Blank())
	mat.set(0, int(bLabel[0]), 0.9)
	mat.set(0, blank, 0.1)
	mat.set(1, int(aLabel[0]), 0.9)
	mat.set(1, blank, 0.1)

	d, err := New(lm, Config{BeamWidth: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got, err := d.Decode(mat)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	text, err := lm.Alphabet().ToString(got)
	if err != nil {
		t.Fatalf("ToString() error = %v", err)
	}
	if text != "ba" {
		t.Errorf("Decode() with beamWidth=1 = %q; want %q", text, "ba")
	}
}

func TestDecodeIsDeterministicAcrossRuns(t *testing.T) {
	lm := mustLM(t, "ba ab", langmodel.NGrams)
	mat := newDenseMatrix(3, lm.Alphabet().NumClasses())
	for t2 := 0; t2 < 3; t2++ {
		for c := 0; c < lm.Alphabet().NumClasses(); c++ {
			mat.set(t2, c, 1.0/float64(lm.Alphabet().NumClasses()))
		}
	}

	d1, err := New(lm, Config{BeamWidth: 5, Seed: 42})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	d2, err := New(lm, Config{BeamWidth: 5, Seed: 42})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got1, err := d1.Decode(mat)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got2, err := d2.Decode(mat)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if len(got1) != len(got2) {
		t.Fatalf("two decode runs with identical inputs diverged in length: %v vs %v", got1, got2)
	}
	for i := range got1 {
		if got1[i] != got2[i] {
			t.Errorf("two decode runs with identical inputs diverged at %d: %v vs %v", i, got1, got2)
		}
	}
}

func TestDecodeRejectsShapeMismatch(t *testing.T) {
	lm := mustLM(t, "ba", langmodel.Words)
	mat := newDenseMatrix(2, lm.Alphabet().NumClasses()+1)

	d, err := New(lm, Config{BeamWidth: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := d.Decode(mat); err == nil {
		t.Error("Decode() with mismatched column count: want error, got nil")
	}
}

func TestNewRejectsNonPositiveBeamWidth(t *testing.T) {
	lm := mustLM(t, "ba", langmodel.Words)
	if _, err := New(lm, Config{BeamWidth: 0}); err == nil {
		t.Error("New() with beamWidth=0: want error, got nil")
	}
}
