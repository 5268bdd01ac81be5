// Package label maps the Unicode alphabet a classifier was trained on
// onto a dense integer label space, and partitions that space into
// word-labels (characters that may occur inside a dictionary word) and
// non-word-labels (separators).
package label

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"unicode/utf8"

	"golang.org/x/exp/slices"
)

// Label identifies a column of the classifier's output matrix. The
// blank label used by CTC is always NumClasses()-1.
type Label int32

// Alphabet is a bijection between Unicode codepoints and Labels, plus
// the partition of labels into word-labels and non-word-labels.
//
// An Alphabet is immutable once constructed and safe for concurrent
// read access from multiple decoder workers.
type Alphabet struct {
	labelToCodepoint []rune
	codepointToLabel map[rune]Label
	wordLabels       map[Label]struct{}
	sortedWordLabels []Label
	sortedNonWord    []Label
}

// New builds an Alphabet from the exact character order the classifier
// uses for its output columns (chars) and the subset of those
// characters that may occur inside a dictionary word (wordChars).
//
// New returns an error if chars is empty or repeats a character, or if
// wordChars is empty, has more characters than chars, or contains a
// codepoint absent from chars. wordChars may cover every character of
// chars, leaving no non-word-labels.
func New(chars, wordChars string) (*Alphabet, error) {
	if chars == "" {
		return nil, fmt.Errorf("label: chars must not be empty")
	}

	labelToCodepoint := make([]rune, 0, utf8.RuneCountInString(chars))
	codepointToLabel := make(map[rune]Label, utf8.RuneCountInString(chars))
	for _, r := range chars {
		if _, dup := codepointToLabel[r]; dup {
			return nil, fmt.Errorf("label: duplicate character %q in chars", r)
		}
		codepointToLabel[r] = Label(len(labelToCodepoint))
		labelToCodepoint = append(labelToCodepoint, r)
	}

	wordCount := 0
	for range wordChars {
		wordCount++
	}
	if wordCount == 0 {
		return nil, fmt.Errorf("label: wordChars must contain at least one character")
	}
	if wordCount > len(labelToCodepoint) {
		return nil, fmt.Errorf("label: wordChars must not be longer than chars")
	}

	wordLabels := make(map[Label]struct{}, wordCount)
	for _, r := range wordChars {
		l, ok := codepointToLabel[r]
		if !ok {
			return nil, fmt.Errorf("label: wordChars character %q is not present in chars", r)
		}
		wordLabels[l] = struct{}{}
	}

	a := &Alphabet{
		labelToCodepoint: labelToCodepoint,
		codepointToLabel: codepointToLabel,
		wordLabels:       wordLabels,
	}
	a.buildSortedSets()
	return a, nil
}

func (a *Alphabet) buildSortedSets() {
	a.sortedWordLabels = a.sortedWordLabels[:0]
	a.sortedNonWord = a.sortedNonWord[:0]
	for l := Label(0); int(l) < len(a.labelToCodepoint); l++ {
		if _, ok := a.wordLabels[l]; ok {
			a.sortedWordLabels = append(a.sortedWordLabels, l)
		} else {
			a.sortedNonWord = append(a.sortedNonWord, l)
		}
	}
	slices.Sort(a.sortedWordLabels)
	slices.Sort(a.sortedNonWord)
}

// NumClasses returns |chars|+1, the number of columns a matrix decoded
// with this alphabet must have (the extra column is the CTC blank).
func (a *Alphabet) NumClasses() int {
	return len(a.labelToCodepoint) + 1
}

// Blank returns the reserved CTC blank label, NumClasses()-1.
func (a *Alphabet) Blank() Label {
	return Label(len(a.labelToCodepoint))
}

// IsWordLabel reports whether l may occur inside a dictionary word.
func (a *Alphabet) IsWordLabel(l Label) bool {
	_, ok := a.wordLabels[l]
	return ok
}

// WordLabels returns the word-labels in ascending order. The returned
// slice must not be modified.
func (a *Alphabet) WordLabels() []Label {
	return a.sortedWordLabels
}

// NonWordLabels returns the non-word-labels in ascending order. The
// returned slice must not be modified.
func (a *Alphabet) NonWordLabels() []Label {
	return a.sortedNonWord
}

// ToLabels decodes a UTF-8 string into labels. It returns an error if
// the string contains a codepoint that is not part of the alphabet.
func (a *Alphabet) ToLabels(s string) ([]Label, error) {
	labels := make([]Label, 0, len(s))
	for _, r := range s {
		l, ok := a.codepointToLabel[r]
		if !ok {
			return nil, fmt.Errorf("label: codepoint %q is not part of the alphabet", r)
		}
		labels = append(labels, l)
	}
	return labels, nil
}

// ToString renders a sequence of labels back to a UTF-8 string. It
// returns an error if a label is out of range or is the blank label
// (the blank never survives CTC path collapsing into an output text).
func (a *Alphabet) ToString(labels []Label) (string, error) {
	var buf bytes.Buffer
	for _, l := range labels {
		if int(l) < 0 || int(l) >= len(a.labelToCodepoint) {
			return "", fmt.Errorf("label: %d is out of range or is the blank label", l)
		}
		buf.WriteRune(a.labelToCodepoint[l])
	}
	return buf.String(), nil
}

// Key encodes a label sequence as a string suitable for use as a map
// key. It is injective: distinct sequences never collide, and two
// runs of this process produce identical keys for identical inputs,
// which is what beam deduplication and the language model's word
// lookup rely on for determinism.
func Key(labels []Label) string {
	buf := make([]byte, len(labels)*4)
	for i, l := range labels {
		v := uint32(l)
		buf[i*4] = byte(v)
		buf[i*4+1] = byte(v >> 8)
		buf[i*4+2] = byte(v >> 16)
		buf[i*4+3] = byte(v >> 24)
	}
	return string(buf)
}

// GobEncode implements gob.GobEncoder.
func (a *Alphabet) GobEncode() ([]byte, error) {
	wordChars := make([]rune, 0, len(a.wordLabels))
	for l := range a.wordLabels {
		wordChars = append(wordChars, a.labelToCodepoint[l])
	}

	enc := encodedAlphabet{
		Chars:     a.labelToCodepoint,
		WordChars: wordChars,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (a *Alphabet) GobDecode(data []byte) error {
	var enc encodedAlphabet
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&enc); err != nil {
		return err
	}

	codepointToLabel := make(map[rune]Label, len(enc.Chars))
	for i, r := range enc.Chars {
		codepointToLabel[r] = Label(i)
	}

	wordLabels := make(map[Label]struct{}, len(enc.WordChars))
	for _, r := range enc.WordChars {
		wordLabels[codepointToLabel[r]] = struct{}{}
	}

	a.labelToCodepoint = enc.Chars
	a.codepointToLabel = codepointToLabel
	a.wordLabels = wordLabels
	a.buildSortedSets()
	return nil
}

type encodedAlphabet struct {
	Chars     []rune
	WordChars []rune
}
