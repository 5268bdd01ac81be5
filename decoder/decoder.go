// Package decoder drives the word beam search loop: at every time step
// it advances the surviving beams by a "stay" child and by extension
// over every legal next character, then prunes back to the configured
// beam width.
package decoder

import (
	"fmt"
	"math/rand"

	"github.com/kwbeam/wordbeamsearch/beam"
	"github.com/kwbeam/wordbeamsearch/label"
	"github.com/kwbeam/wordbeamsearch/langmodel"
)

// Matrix is the row-stochastic classifier output the decoder consumes:
// Rows() time steps by Cols() label classes, with the CTC blank at
// column Cols()-1.
type Matrix interface {
	Rows() int
	Cols() int
	At(t, c int) float64
}

// Config configures a Decoder.
type Config struct {
	// BeamWidth is the number of beams carried from one time step to
	// the next. It must be positive.
	BeamWidth int
	// Seed seeds the random source NGramsForecastAndSample draws its
	// completion sample from. Ignored by every other scoring mode.
	Seed int64
}

// Decoder runs the word beam search loop against a fixed
// LanguageModel. A Decoder is reusable across matrices but must not be
// used concurrently by multiple goroutines (its random source is not
// synchronized); build one Decoder per worker.
type Decoder struct {
	lm        *langmodel.LanguageModel
	beamWidth int
	rng       *rand.Rand
}

// New returns a Decoder bound to lm. It returns an error if cfg is
// invalid.
func New(lm *langmodel.LanguageModel, cfg Config) (*Decoder, error) {
	if cfg.BeamWidth <= 0 {
		return nil, fmt.Errorf("decoder: beamWidth must be positive, got %d", cfg.BeamWidth)
	}

	return &Decoder{
		lm:        lm,
		beamWidth: cfg.BeamWidth,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Decode runs the beam search over mat and returns the best label
// sequence found, with its trailing in-progress word completed per
// Beam.CompleteText if a unique completion exists.
//
// Decode returns an error if mat's column count does not match the
// language model's alphabet.
func (d *Decoder) Decode(mat Matrix) ([]label.Label, error) {
	if want := d.lm.Alphabet().NumClasses(); mat.Cols() != want {
		return nil, fmt.Errorf("decoder: matrix has %d columns, language model alphabet has %d classes", mat.Cols(), want)
	}

	blank := d.lm.Alphabet().Blank()

	beams := beam.NewList()
	beams.AddBeam(beam.NewGenesis(d.lm, d.rng))

	for t := 0; t < mat.Rows(); t++ {
		survivors := beams.GetBestBeams(d.beamWidth)
		next := beam.NewList()

		for _, b := range survivors {
			d.stay(b, mat, t, blank, next)
			d.extend(b, mat, t, next)
		}

		beams = next
	}

	best := beams.GetBestBeams(1)
	if len(best) == 0 {
		return nil, nil
	}

	winner := best[0]
	winner.CompleteText()
	return winner.Text(), nil
}

func (d *Decoder) stay(b *beam.Beam, mat Matrix, t int, blank label.Label, next *beam.List) {
	prBlank := (b.PrBlank() + b.PrNonBlank()) * mat.At(t, int(blank))

	var prNonBlank float64
	if text := b.Text(); len(text) > 0 {
		last := text[len(text)-1]
		prNonBlank = b.PrNonBlank() * mat.At(t, int(last))
	}

	next.AddBeam(b.CreateChild(prBlank, prNonBlank, 0, false))
}

func (d *Decoder) extend(b *beam.Beam, mat Matrix, t int, next *beam.List) {
	for _, c := range b.NextChars() {
		var prNonBlank float64
		if text := b.Text(); len(text) > 0 && text[len(text)-1] == c {
			prNonBlank = mat.At(t, int(c)) * b.PrBlank()
		} else {
			prNonBlank = mat.At(t, int(c)) * (b.PrBlank() + b.PrNonBlank())
		}

		next.AddBeam(b.CreateChild(0, prNonBlank, c, true))
	}
}

// GreedyPath is exposed for benchmarking a beam-width-1 decode against
// a plain per-time-step argmax baseline; it is not used by Decode.
func GreedyPath(mat Matrix) []label.Label {
	path := make([]label.Label, mat.Rows())
	for t := 0; t < mat.Rows(); t++ {
		best, bestP := 0, -1.0
		for c := 0; c < mat.Cols(); c++ {
			if p := mat.At(t, c); p > bestP {
				best, bestP = c, p
			}
		}
		path[t] = label.Label(best)
	}
	return path
}
