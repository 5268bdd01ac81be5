package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kwbeam/wordbeamsearch/langmodel"
)

func writeSampleDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"corpus.txt":    "ba ab",
		"chars.txt":     "ab ",
		"wordChars.txt": "ab",
		"mat_0.csv":     "0.1;0.1;0.8\n0.8;0.1;0.1\n",
		"gt_0.txt":      "ba",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestOpenAndIterate(t *testing.T) {
	dir := writeSampleDir(t)

	ds, err := Open(dir, langmodel.Words, 0, false)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if !ds.HasNext() {
		t.Fatal("HasNext() = false; want true for sample 0")
	}

	sample, err := ds.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if sample.Matrix.Rows() != 2 || sample.Matrix.Cols() != 3 {
		t.Errorf("sample matrix shape = (%d,%d); want (2,3)", sample.Matrix.Rows(), sample.Matrix.Cols())
	}

	gt, err := ds.LanguageModel().Alphabet().ToString(sample.GroundTruth)
	if err != nil {
		t.Fatalf("ToString() error = %v", err)
	}
	if gt != "ba" {
		t.Errorf("ground truth = %q; want %q", gt, "ba")
	}

	if ds.HasNext() {
		t.Error("HasNext() = true after the only sample was consumed")
	}
}

func TestOpenMissingCorpusErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(dir, langmodel.Words, 0, false); err == nil {
		t.Error("Open() with missing corpus.txt: want error, got nil")
	}
}
