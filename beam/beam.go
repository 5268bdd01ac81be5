// Package beam implements the Beam hypothesis and the BeamList
// aggregator the word beam search decoder loop drives forward one
// time step at a time.
package beam

import (
	"math"
	"math/rand"

	"github.com/kwbeam/wordbeamsearch/label"
	"github.com/kwbeam/wordbeamsearch/langmodel"
)

// Beam is one partial decoding hypothesis: an emitted label sequence
// plus the CTC optical probabilities and textual score that summarize
// every path collapsing to it.
//
// A Beam is immutable once published to a BeamList, except that
// MergeBeam combines the optical mass of two beams sharing the same
// Text. CreateChild always returns a new Beam.
type Beam struct {
	lm   *langmodel.LanguageModel
	mode langmodel.Type
	rng  *rand.Rand

	text     []label.Label
	wordDev  []label.Label
	wordHist [][]label.Label

	prBlank            float64
	prNonBlank         float64
	prTextTotal        float64
	prTextUnnormalized float64
}

// NewGenesis returns the empty beam every decode starts from: no
// emitted labels, all optical mass on the blank path, and a neutral
// (1.0) textual score. rng drives NGramsForecastAndSample's sampling
// and should be seeded by the caller for reproducibility.
func NewGenesis(lm *langmodel.LanguageModel, rng *rand.Rand) *Beam {
	return &Beam{
		lm:                 lm,
		mode:               lm.Type(),
		rng:                rng,
		prBlank:            1,
		prNonBlank:         0,
		prTextTotal:        1,
		prTextUnnormalized: 1,
	}
}

// Text returns the beam's emitted label sequence, the key under which
// beams are deduplicated in a BeamList.
func (b *Beam) Text() []label.Label { return b.text }

// PrBlank returns the optical probability mass of paths ending in
// blank at the beam's current time step.
func (b *Beam) PrBlank() float64 { return b.prBlank }

// PrNonBlank returns the optical probability mass of paths ending in a
// non-blank character.
func (b *Beam) PrNonBlank() float64 { return b.prNonBlank }

// Score returns the ranking score used to select survivors:
// (prBlank+prNonBlank)*prTextTotal. Higher is better.
func (b *Beam) Score() float64 {
	return (b.prBlank + b.prNonBlank) * b.prTextTotal
}

// NextChars returns the union of legal extensions of the beam: the
// dictionary-constrained word-label continuations of the in-progress
// word, plus the non-word-labels when a word boundary is legal there.
func (b *Beam) NextChars() []label.Label {
	return b.lm.NextChars(b.wordDev)
}

func (b *Beam) clone() *Beam {
	c := *b
	c.text = append([]label.Label(nil), b.text...)
	c.wordDev = append([]label.Label(nil), b.wordDev...)
	c.wordHist = append([][]label.Label(nil), b.wordHist...)
	return &c
}

// CreateChild returns a copy of the beam with the given optical
// probabilities. If hasChar is true, newChar is appended to the
// beam's text and the word/textual-score bookkeeping described in the
// child construction rules runs first.
func (b *Beam) CreateChild(prBlank, prNonBlank float64, newChar label.Label, hasChar bool) *Beam {
	child := b.clone()

	if hasChar {
		if b.mode == langmodel.Words {
			child.extendWordsOnly(newChar)
		} else {
			child.extendWithNGrams(newChar)
		}
		child.text = append(child.text, newChar)
	}

	child.prBlank = prBlank
	child.prNonBlank = prNonBlank
	return child
}

func (b *Beam) extendWordsOnly(c label.Label) {
	if b.lm.IsWordLabel(c) {
		b.wordDev = append(b.wordDev, c)
	} else {
		b.wordDev = nil
	}
}

func (b *Beam) extendWithNGrams(c label.Label) {
	if b.lm.IsWordLabel(c) {
		b.wordDev = append(b.wordDev, c)
		if b.mode == langmodel.NGramsForecast || b.mode == langmodel.NGramsForecastAndSample {
			b.forecast()
		}
		return
	}

	if len(b.wordDev) == 0 {
		return
	}

	b.wordHist = append(b.wordHist, b.wordDev)
	b.wordDev = nil

	numWords := len(b.wordHist)
	if numWords == 1 {
		b.prTextUnnormalized *= b.lm.UnigramProb(b.wordHist[0])
		b.prTextTotal = b.prTextUnnormalized
		return
	}

	b.prTextUnnormalized *= b.lm.BigramProb(b.wordHist[numWords-2], b.wordHist[numWords-1])
	b.prTextTotal = math.Pow(b.prTextUnnormalized, 1.0/float64(numWords))
}

func (b *Beam) forecast() {
	nextWords, sampleFactor := b.sampledNextWords(b.wordDev)

	numWords := len(b.wordHist)
	var sum float64
	if numWords == 0 {
		for _, w := range nextWords {
			sum += b.lm.UnigramProb(w)
		}
	} else {
		last := b.wordHist[numWords-1]
		for _, w := range nextWords {
			sum += b.lm.BigramProb(last, w)
		}
	}

	sum = math.Min(sum*sampleFactor, 1.0)

	b.prTextTotal = b.prTextUnnormalized * sum
	if numWords >= 1 {
		b.prTextTotal = math.Pow(b.prTextTotal, 1.0/float64(numWords+1))
	}
}

func (b *Beam) sampledNextWords(prefix []label.Label) ([][]label.Label, float64) {
	nextWords := b.lm.NextWords(prefix)

	k := langmodel.MaxForecastSample()
	if b.mode != langmodel.NGramsForecastAndSample || len(nextWords) <= k {
		return nextWords, 1.0
	}

	factor := float64(len(nextWords)) / float64(k)
	sample := append([][]label.Label(nil), nextWords...)
	b.rng.Shuffle(len(sample), func(i, j int) { sample[i], sample[j] = sample[j], sample[i] })
	return sample[:k], factor
}

// MergeBeam combines another beam's optical mass into this one. Both
// beams must have identical Text; the textual score is unaffected
// since it depends only on Text.
func (b *Beam) MergeBeam(other *Beam) {
	b.prBlank += other.prBlank
	b.prNonBlank += other.prNonBlank
}

// CompleteText replaces a trailing in-progress word with its unique
// dictionary completion, if exactly one completion exists. It is a
// no-op if the beam has no in-progress word, or if more than one
// completion is possible.
func (b *Beam) CompleteText() {
	if len(b.wordDev) == 0 {
		return
	}

	completions := b.lm.NextWords(b.wordDev)
	if len(completions) != 1 {
		return
	}

	prefix := b.text[:len(b.text)-len(b.wordDev)]
	b.text = append(append([]label.Label(nil), prefix...), completions[0]...)
}
