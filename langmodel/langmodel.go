// Package langmodel provides the word-level language model that
// scores beams: vocabulary membership, unigram/bigram probabilities
// with add-k smoothing, and the prefix-tree-backed character and word
// lookahead the decoder needs to constrain beam extensions.
package langmodel

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"strings"

	"github.com/kwbeam/wordbeamsearch/dictionary"
	"github.com/kwbeam/wordbeamsearch/label"
)

// Type selects how heavily the language model influences beam
// ranking.
type Type int

const (
	// Words constrains output to dictionary words; no LM scoring.
	Words Type = iota
	// NGrams scores a beam with unigram/bigram probability whenever a
	// word completes.
	NGrams
	// NGramsForecast additionally looks ahead, at every in-word
	// character, over every legal completion of the in-progress word.
	NGramsForecast
	// NGramsForecastAndSample is NGramsForecast but samples at most
	// maxForecastSample completions instead of enumerating all of them.
	NGramsForecastAndSample
)

// maxForecastSample bounds the number of candidate completions
// NGramsForecastAndSample sums over; beyond this, a uniform random
// subset is taken and the sum is scaled to compensate.
const maxForecastSample = 20

func (t Type) String() string {
	switch t {
	case Words:
		return "Words"
	case NGrams:
		return "NGrams"
	case NGramsForecast:
		return "NGramsForecast"
	case NGramsForecastAndSample:
		return "NGramsForecastAndSample"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType parses a scoring mode name, case-insensitively.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "words":
		return Words, nil
	case "ngrams":
		return NGrams, nil
	case "ngramsforecast":
		return NGramsForecast, nil
	case "ngramsforecastandsample":
		return NGramsForecastAndSample, nil
	default:
		return 0, fmt.Errorf("langmodel: unknown language model type %q", s)
	}
}

// Config describes how to build a LanguageModel.
type Config struct {
	// Corpus is the UTF-8 training text, tokenized into words by
	// splitting on any non-word codepoint.
	Corpus string
	// Chars is the UTF-8 concatenation of every recognized non-blank
	// character, in the exact order they appear as matrix columns.
	Chars string
	// WordChars is the UTF-8 subset of Chars that may occur inside a
	// word.
	WordChars string
	// LMType selects the scoring mode.
	LMType Type
	// Smoothing is the add-k constant used for bigram back-off.
	Smoothing float64
}

type bigramRow struct {
	// counts holds smoothed-and-normalized probabilities once New
	// returns; sum is the raw occurrence count of the row's word in
	// the corpus, needed for the unseen-successor back-off
	// probability.
	counts map[uint32]float64
	sum    float64
}

// LanguageModel is a unigram/bigram language model with add-k
// smoothing over a dictionary trie, immutable once constructed.
//
// LanguageModel is safe for concurrent use by multiple decoder
// workers: all fields are either read-only after New or, in the case
// of the prefix tree's lookahead cache, internally synchronized.
type LanguageModel struct {
	alphabet *label.Alphabet
	tree     *dictionary.PrefixTree
	lmType   Type
	addK     float64

	wordIDs      map[string]uint32 // label.Key(word) -> id
	words        [][]label.Label  // id -> word, in first-occurrence order
	unigramProbs []float64        // id -> P(word)
	bigramRows   map[uint32]*bigramRow
}

// New builds a LanguageModel per Config. It returns an error for a
// configuration mistake (unknown LMType, invalid wordChars, negative
// smoothing) or if the corpus contains a codepoint absent from Chars.
func New(cfg Config) (*LanguageModel, error) {
	if cfg.Smoothing < 0 {
		return nil, fmt.Errorf("langmodel: smoothing must be >= 0, got %g", cfg.Smoothing)
	}
	if cfg.LMType < Words || cfg.LMType > NGramsForecastAndSample {
		return nil, fmt.Errorf("langmodel: unknown language model type %v", cfg.LMType)
	}

	alphabet, err := label.New(cfg.Chars, cfg.WordChars)
	if err != nil {
		return nil, err
	}

	words, err := tokenize(cfg.Corpus, alphabet)
	if err != nil {
		return nil, err
	}

	tree := dictionary.New()
	wordIDs := make(map[string]uint32)
	var uniqueWords [][]label.Label
	for _, w := range words {
		k := label.Key(w)
		if _, ok := wordIDs[k]; ok {
			continue
		}
		wordIDs[k] = uint32(len(uniqueWords))
		uniqueWords = append(uniqueWords, w)
		tree.AddWord(w)
	}
	tree.Finalize()

	lm := &LanguageModel{
		alphabet: alphabet,
		tree:     tree,
		lmType:   cfg.LMType,
		addK:     cfg.Smoothing,
		wordIDs:  wordIDs,
		words:    uniqueWords,
	}

	if cfg.LMType == Words {
		return lm, nil
	}

	lm.computeUnigrams(words)
	lm.computeBigrams(words)

	return lm, nil
}

func tokenize(corpus string, alphabet *label.Alphabet) ([][]label.Label, error) {
	var words [][]label.Label
	var current []label.Label

	runes := []rune(corpus)
	for i, r := range runes {
		l, err := alphabet.ToLabels(string(r))
		if err != nil {
			return nil, fmt.Errorf("langmodel: corpus: %w", err)
		}

		if alphabet.IsWordLabel(l[0]) {
			current = append(current, l[0])
		}

		last := i == len(runes)-1
		if (!alphabet.IsWordLabel(l[0]) || last) && len(current) > 0 {
			words = append(words, current)
			current = nil
		}
	}

	return words, nil
}

func (lm *LanguageModel) computeUnigrams(words [][]label.Label) {
	lm.unigramProbs = make([]float64, len(lm.words))
	if len(words) == 0 {
		return
	}

	weight := 1.0 / float64(len(words))
	for _, w := range words {
		id := lm.wordIDs[label.Key(w)]
		lm.unigramProbs[id] += weight
	}
}

func (lm *LanguageModel) computeBigrams(words [][]label.Label) {
	lm.bigramRows = make(map[uint32]*bigramRow)
	for i := 0; i < len(words); i++ {
		id1 := lm.wordIDs[label.Key(words[i])]

		row, ok := lm.bigramRows[id1]
		if !ok {
			row = &bigramRow{counts: make(map[uint32]float64)}
			lm.bigramRows[id1] = row
		}
		row.sum += 1.0

		if i+1 == len(words) {
			break
		}
		id2 := lm.wordIDs[label.Key(words[i+1])]
		if _, ok := row.counts[id2]; !ok {
			row.counts[id2] = lm.addK
		}
		row.counts[id2] += 1.0
	}

	numWords := float64(len(lm.words))
	for _, row := range lm.bigramRows {
		denom := row.sum + lm.addK*numWords
		for id2 := range row.counts {
			row.counts[id2] /= denom
		}
	}
}

// Alphabet returns the label alphabet the language model was built
// with.
func (lm *LanguageModel) Alphabet() *label.Alphabet {
	return lm.alphabet
}

// Type returns the scoring mode.
func (lm *LanguageModel) Type() Type {
	return lm.lmType
}

// IsWordLabel reports whether l may occur inside a dictionary word.
func (lm *LanguageModel) IsWordLabel(l label.Label) bool {
	return lm.alphabet.IsWordLabel(l)
}

// UnigramProb returns P(w), or 0 if w was never seen in the corpus.
func (lm *LanguageModel) UnigramProb(w []label.Label) float64 {
	id, ok := lm.wordIDs[label.Key(w)]
	if !ok {
		return 0
	}
	return lm.unigramProbs[id]
}

// BigramProb returns the add-k smoothed P(w2|w1): the observed,
// smoothed value if the pair was seen; alpha/(count(w1)+alpha*|V|) if
// w1 and w2 are both known words but the pair was never observed
// together; 0 if either word is unknown to the vocabulary.
func (lm *LanguageModel) BigramProb(w1, w2 []label.Label) float64 {
	id1, ok := lm.wordIDs[label.Key(w1)]
	if !ok {
		return 0
	}
	id2, ok := lm.wordIDs[label.Key(w2)]
	if !ok {
		return 0
	}

	row, ok := lm.bigramRows[id1]
	if !ok {
		return 0
	}
	if p, ok := row.counts[id2]; ok {
		return p
	}

	denom := row.sum + lm.addK*float64(len(lm.words))
	return lm.addK / denom
}

// IsWord reports whether text is a complete dictionary word.
func (lm *LanguageModel) IsWord(text []label.Label) bool {
	return lm.tree.IsWord(text)
}

// NextWords returns every dictionary word that has text as a prefix.
func (lm *LanguageModel) NextWords(text []label.Label) [][]label.Label {
	return lm.tree.NextWords(text)
}

// NextChars returns the legal word-label extensions of text plus, if
// text is empty or already a complete word, the non-word-labels (a
// word boundary is only legal between words).
func (lm *LanguageModel) NextChars(text []label.Label) []label.Label {
	res := lm.tree.NextChars(text)
	if len(text) == 0 || lm.IsWord(text) {
		res = append(res, lm.alphabet.NonWordLabels()...)
	}
	return res
}

// MaxForecastSample is exported for use by the beam package's sampling
// branch.
func MaxForecastSample() int {
	return maxForecastSample
}

// GobEncode implements gob.GobEncoder.
func (lm *LanguageModel) GobEncode() ([]byte, error) {
	chars := make([]rune, lm.alphabet.NumClasses()-1)
	for i := range chars {
		s, err := lm.alphabet.ToString([]label.Label{label.Label(i)})
		if err != nil {
			return nil, err
		}
		chars[i] = []rune(s)[0]
	}

	var wordChars []rune
	for _, l := range lm.alphabet.WordLabels() {
		s, err := lm.alphabet.ToString([]label.Label{l})
		if err != nil {
			return nil, err
		}
		wordChars = append(wordChars, []rune(s)[0])
	}

	enc := encodedLanguageModel{
		Chars:        chars,
		WordChars:    wordChars,
		LMType:       int(lm.lmType),
		AddK:         lm.addK,
		Words:        lm.words,
		UnigramProbs: lm.unigramProbs,
		BigramRows:   make(map[uint32]map[uint32]float64, len(lm.bigramRows)),
		BigramSums:   make(map[uint32]float64, len(lm.bigramRows)),
	}
	for id1, row := range lm.bigramRows {
		enc.BigramRows[id1] = row.counts
		enc.BigramSums[id1] = row.sum
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (lm *LanguageModel) GobDecode(data []byte) error {
	var enc encodedLanguageModel
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&enc); err != nil {
		return err
	}

	alphabet, err := label.New(string(enc.Chars), string(enc.WordChars))
	if err != nil {
		return err
	}

	tree := dictionary.New()
	wordIDs := make(map[string]uint32, len(enc.Words))
	for i, w := range enc.Words {
		tree.AddWord(w)
		wordIDs[label.Key(w)] = uint32(i)
	}
	tree.Finalize()

	bigramRows := make(map[uint32]*bigramRow, len(enc.BigramRows))
	for id1, counts := range enc.BigramRows {
		bigramRows[id1] = &bigramRow{counts: counts, sum: enc.BigramSums[id1]}
	}

	lm.alphabet = alphabet
	lm.tree = tree
	lm.lmType = Type(enc.LMType)
	lm.addK = enc.AddK
	lm.wordIDs = wordIDs
	lm.words = enc.Words
	lm.unigramProbs = enc.UnigramProbs
	lm.bigramRows = bigramRows
	return nil
}

type encodedLanguageModel struct {
	Chars        []rune
	WordChars    []rune
	LMType       int
	AddK         float64
	Words        [][]label.Label
	UnigramProbs []float64
	BigramRows   map[uint32]map[uint32]float64
	BigramSums   map[uint32]float64
}
