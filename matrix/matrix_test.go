package matrix

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestDenseAtSet(t *testing.T) {
	m := NewDense(2, 3)
	m.Set(1, 2, 0.5)
	if got := m.At(1, 2); got != 0.5 {
		t.Errorf("At(1,2) = %v; want 0.5", got)
	}
	if m.Rows() != 2 || m.Cols() != 3 {
		t.Errorf("shape = (%d,%d); want (2,3)", m.Rows(), m.Cols())
	}
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mat.csv")
	if err := os.WriteFile(path, []byte("0.1;0.2;0.7\n0.3;0.3;0.4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV() error = %v", err)
	}
	if m.Rows() != 2 || m.Cols() != 3 {
		t.Fatalf("shape = (%d,%d); want (2,3)", m.Rows(), m.Cols())
	}
	if got := m.At(0, 2); got != 0.7 {
		t.Errorf("At(0,2) = %v; want 0.7", got)
	}
}

func TestLoadCSVRejectsRaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mat.csv")
	if err := os.WriteFile(path, []byte("0.1;0.2;0.7\n0.3;0.4\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadCSV(path); err == nil {
		t.Error("LoadCSV() with ragged rows: want error, got nil")
	}
}

func TestSoftmaxNormalizesRows(t *testing.T) {
	m := NewDense(1, 3)
	m.Set(0, 0, 1)
	m.Set(0, 1, 2)
	m.Set(0, 2, 3)

	Softmax(m)

	var sum float64
	for c := 0; c < 3; c++ {
		sum += m.At(0, c)
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("row sum after Softmax = %v; want 1", sum)
	}
	if !(m.At(0, 2) > m.At(0, 1) && m.At(0, 1) > m.At(0, 0)) {
		t.Error("Softmax should preserve relative ordering")
	}
}
