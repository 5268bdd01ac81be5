package beam

import (
	"cmp"

	"golang.org/x/exp/slices"

	"github.com/kwbeam/wordbeamsearch/label"
)

// List is a per-time-step collector that deduplicates beams by their
// emitted label sequence and selects the top-k by ranking score.
type List struct {
	beams map[string]*Beam
	order []string
}

// NewList returns an empty List.
func NewList() *List {
	return &List{beams: make(map[string]*Beam)}
}

// AddBeam inserts b, or merges it into the existing beam with the same
// Text if one is already present.
func (l *List) AddBeam(b *Beam) {
	key := label.Key(b.Text())
	if existing, ok := l.beams[key]; ok {
		existing.MergeBeam(b)
		return
	}
	l.beams[key] = b
	l.order = append(l.order, key)
}

// Len returns the number of distinct beams currently held.
func (l *List) Len() int {
	return len(l.order)
}

// GetBestBeams returns the k highest-ranking beams, ties broken by
// insertion order for deterministic results.
func (l *List) GetBestBeams(k int) []*Beam {
	beams := make([]*Beam, len(l.order))
	for i, key := range l.order {
		beams[i] = l.beams[key]
	}

	slices.SortStableFunc(beams, func(a, b *Beam) int {
		return cmp.Compare(b.Score(), a.Score())
	})

	if k < len(beams) {
		beams = beams[:k]
	}
	return beams
}
