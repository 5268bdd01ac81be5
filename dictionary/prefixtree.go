// Package dictionary provides a trie (prefix tree) over word-label
// sequences, used to constrain beam extensions to legal dictionary
// word prefixes.
package dictionary

import (
	"bytes"
	"encoding/gob"
	"sort"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/kwbeam/wordbeamsearch/label"
)

type edge struct {
	label label.Label
	child *node
}

type node struct {
	children []edge
	word     []label.Label // non-nil iff this node terminates a word
}

func newNode() *node {
	return &node{}
}

func (n *node) childAt(l label.Label, finalized bool) *node {
	if finalized {
		i := sort.Search(len(n.children), func(i int) bool { return n.children[i].label >= l })
		if i < len(n.children) && n.children[i].label == l {
			return n.children[i].child
		}
		return nil
	}

	for _, e := range n.children {
		if e.label == l {
			return e.child
		}
	}
	return nil
}

// PrefixTree is a dictionary trie over word-label sequences.
//
// Insert words with AddWord, then call Finalize exactly once before
// issuing any query. Finalize sorts every node's children so queries
// can binary search; AddWord is only efficient before that point.
//
// A finalized PrefixTree is immutable and safe for concurrent read
// access; its only mutable state is the depth-1 getNextWords cache,
// which is guarded by a mutex.
type PrefixTree struct {
	root      *node
	finalized bool

	cacheMu sync.RWMutex
	cache   map[label.Label][][]label.Label
}

// New returns an empty PrefixTree.
func New() *PrefixTree {
	return &PrefixTree{root: newNode()}
}

// AddWord inserts a word (a sequence of word-labels) into the tree.
// AddWord must not be called after Finalize.
func (t *PrefixTree) AddWord(word []label.Label) {
	n := t.root
	for _, l := range word {
		child := n.childAt(l, false)
		if child == nil {
			child = newNode()
			n.children = append(n.children, edge{label: l, child: child})
		}
		n = child
	}
	n.word = word
}

// Finalize sorts every node's children by label so that subsequent
// queries can binary search. It must be called exactly once, after
// every AddWord call and before any query.
func (t *PrefixTree) Finalize() {
	var walk func(*node)
	walk = func(n *node) {
		slices.SortFunc(n.children, func(a, b edge) int { return int(a.label) - int(b.label) })
		for _, e := range n.children {
			walk(e.child)
		}
	}
	walk(t.root)
	t.finalized = true
}

func (t *PrefixTree) getNode(text []label.Label) *node {
	n := t.root
	for _, l := range text {
		n = n.childAt(l, t.finalized)
		if n == nil {
			return nil
		}
	}
	return n
}

// IsWord reports whether text is a word that was inserted into the
// tree.
func (t *PrefixTree) IsWord(text []label.Label) bool {
	n := t.getNode(text)
	return n != nil && n.word != nil
}

// NextChars returns the labels on the outgoing edges of the node
// reached by text, or nil if text leaves the tree.
func (t *PrefixTree) NextChars(text []label.Label) []label.Label {
	n := t.getNode(text)
	if n == nil {
		return nil
	}

	res := make([]label.Label, len(n.children))
	for i, e := range n.children {
		res[i] = e.label
	}
	return res
}

// NextWords returns every inserted word that has text as a prefix,
// enumerated by a breadth-first sweep under the node reached by text.
//
// Depth-1 prefixes (a single label) are memoized, since forecast
// scoring queries them far more often than any other prefix length.
func (t *PrefixTree) NextWords(text []label.Label) [][]label.Label {
	if len(text) == 1 {
		t.cacheMu.RLock()
		cached, ok := t.cache[text[0]]
		t.cacheMu.RUnlock()
		if ok {
			return cached
		}
	}

	start := t.getNode(text)
	if start == nil {
		return nil
	}

	var res [][]label.Label
	queue := []*node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		queue = append(queue, childNodes(n)...)
		if n.word != nil {
			res = append(res, n.word)
		}
	}

	if len(text) == 1 {
		t.cacheMu.Lock()
		if t.cache == nil {
			t.cache = make(map[label.Label][][]label.Label)
		}
		t.cache[text[0]] = res
		t.cacheMu.Unlock()
	}

	return res
}

func childNodes(n *node) []*node {
	res := make([]*node, len(n.children))
	for i, e := range n.children {
		res[i] = e.child
	}
	return res
}

func (t *PrefixTree) allWords() [][]label.Label {
	var res [][]label.Label
	queue := []*node{t.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		queue = append(queue, childNodes(n)...)
		if n.word != nil {
			res = append(res, n.word)
		}
	}
	return res
}

// GobEncode implements gob.GobEncoder. It serializes the inserted word
// list rather than the pointer tree itself; GobDecode rebuilds the
// tree from that list via AddWord and Finalize.
func (t *PrefixTree) GobEncode() ([]byte, error) {
	enc := encodedPrefixTree{Words: t.allWords()}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(enc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (t *PrefixTree) GobDecode(data []byte) error {
	var enc encodedPrefixTree
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&enc); err != nil {
		return err
	}

	t.root = newNode()
	t.finalized = false
	t.cache = nil
	for _, w := range enc.Words {
		t.AddWord(w)
	}
	t.Finalize()
	return nil
}

type encodedPrefixTree struct {
	Words [][]label.Label
}
