// Package dataset reads the sample-directory layout used by the
// command-line drivers: a corpus/chars/wordChars triple to build a
// language model, plus a numbered sequence of matrix/ground-truth
// pairs to decode and score against it.
package dataset

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kwbeam/wordbeamsearch/label"
	"github.com/kwbeam/wordbeamsearch/langmodel"
	"github.com/kwbeam/wordbeamsearch/matrix"
)

// Sample is one matrix/ground-truth pair.
type Sample struct {
	// Index is the sample's position in the numbered sequence.
	Index int
	// Matrix is the (optionally softmax-normalized) probability
	// matrix loaded from mat_<Index>.csv.
	Matrix *matrix.Dense
	// GroundTruth is the label sequence loaded from gt_<Index>.txt.
	GroundTruth []label.Label
}

// Dataset iterates the numbered sample files under a directory,
// sharing a single LanguageModel built from that directory's
// corpus.txt / chars.txt / wordChars.txt.
type Dataset struct {
	dir          string
	lm           *langmodel.LanguageModel
	applySoftmax bool
	nextIdx      int
}

// Open reads corpus.txt, chars.txt and wordChars.txt from dir and
// builds the Dataset's LanguageModel. applySoftmax controls whether
// matrices are treated as pre-softmax logits and normalized on load.
func Open(dir string, lmType langmodel.Type, smoothing float64, applySoftmax bool) (*Dataset, error) {
	corpus, err := readFile(filepath.Join(dir, "corpus.txt"))
	if err != nil {
		return nil, err
	}
	chars, err := readFile(filepath.Join(dir, "chars.txt"))
	if err != nil {
		return nil, err
	}
	wordChars, err := readFile(filepath.Join(dir, "wordChars.txt"))
	if err != nil {
		return nil, err
	}

	lm, err := langmodel.New(langmodel.Config{
		Corpus:    corpus,
		Chars:     chars,
		WordChars: wordChars,
		LMType:    lmType,
		Smoothing: smoothing,
	})
	if err != nil {
		return nil, err
	}

	return &Dataset{dir: dir, lm: lm, applySoftmax: applySoftmax}, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("dataset: %w", err)
	}
	return string(data), nil
}

// LanguageModel returns the Dataset's shared, read-only LanguageModel.
func (d *Dataset) LanguageModel() *langmodel.LanguageModel {
	return d.lm
}

// HasNext reports whether both the matrix and ground-truth file for
// the next sample index exist.
func (d *Dataset) HasNext() bool {
	return fileExists(d.matFilename(d.nextIdx)) && fileExists(d.gtFilename(d.nextIdx))
}

// Next loads and returns the next sample, advancing the iterator.
func (d *Dataset) Next() (Sample, error) {
	idx := d.nextIdx
	d.nextIdx++

	mat, err := matrix.LoadCSV(d.matFilename(idx))
	if err != nil {
		return Sample{}, err
	}
	if d.applySoftmax {
		matrix.Softmax(mat)
	}

	gtText, err := readFile(d.gtFilename(idx))
	if err != nil {
		return Sample{}, err
	}
	gt, err := d.lm.Alphabet().ToLabels(gtText)
	if err != nil {
		return Sample{}, fmt.Errorf("dataset: ground truth %d: %w", idx, err)
	}

	return Sample{Index: idx, Matrix: mat, GroundTruth: gt}, nil
}

func (d *Dataset) matFilename(idx int) string {
	return filepath.Join(d.dir, fmt.Sprintf("mat_%d.csv", idx))
}

func (d *Dataset) gtFilename(idx int) string {
	return filepath.Join(d.dir, fmt.Sprintf("gt_%d.txt", idx))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// All drains every remaining sample into a slice, for callers that
// prefer to dispatch the whole batch at once (e.g. the batch package).
func (d *Dataset) All() ([]Sample, error) {
	var samples []Sample
	for d.HasNext() {
		s, err := d.Next()
		if err != nil {
			return nil, err
		}
		samples = append(samples, s)
	}
	return samples, nil
}
