// Package trie implements the compact array-trie of spec.md §4.6.6: a
// static prefix trie over a fixed vocabulary, gob-encoded for storage
// through the cache envelope. Only the trie is stored; the bloom.Filter
// used for fast negative membership checks is rebuilt in memory from the
// vocabulary by search.FromCorpus and is not persisted.
package trie

import (
	"encoding/gob"
	"io"
)

// node is one trie node: a rune-keyed child map plus the vocabulary
// indices of every word that terminates here (normally one, but a
// case-folded vocabulary can collide).
type node struct {
	Children    map[rune]int
	WordIndices []int
}

// Trie is a static prefix trie over the words it was built from.
type Trie struct {
	Nodes []node // Nodes[0] is the root
}

// Build constructs a trie over vocabulary, where each entry's position is
// its word index.
func Build(vocabulary []string) *Trie {
	t := &Trie{Nodes: []node{{Children: make(map[rune]int)}}}
	for i, word := range vocabulary {
		t.insert(word, i)
	}
	return t
}

func (t *Trie) insert(word string, wordIndex int) {
	cur := 0
	for _, r := range word {
		next, ok := t.Nodes[cur].Children[r]
		if !ok {
			t.Nodes = append(t.Nodes, node{Children: make(map[rune]int)})
			next = len(t.Nodes) - 1
			t.Nodes[cur].Children[r] = next
		}
		cur = next
	}
	t.Nodes[cur].WordIndices = append(t.Nodes[cur].WordIndices, wordIndex)
}

// Lookup returns the word indices stored at the exact match for word.
func (t *Trie) Lookup(word string) ([]int, bool) {
	cur := 0
	for _, r := range word {
		next, ok := t.Nodes[cur].Children[r]
		if !ok {
			return nil, false
		}
		cur = next
	}
	if len(t.Nodes[cur].WordIndices) == 0 {
		return nil, false
	}
	return t.Nodes[cur].WordIndices, true
}

// PrefixSearch returns the word indices of every entry whose path starts
// with prefix.
func (t *Trie) PrefixSearch(prefix string) []int {
	cur := 0
	for _, r := range prefix {
		next, ok := t.Nodes[cur].Children[r]
		if !ok {
			return nil
		}
		cur = next
	}
	var out []int
	t.collect(cur, &out)
	return out
}

func (t *Trie) collect(nodeIdx int, out *[]int) {
	*out = append(*out, t.Nodes[nodeIdx].WordIndices...)
	for _, child := range t.Nodes[nodeIdx].Children {
		t.collect(child, out)
	}
}

// Encode gob-encodes the trie for storage through the cache envelope.
func Encode(w io.Writer, t *Trie) error {
	return gob.NewEncoder(w).Encode(t)
}

// Decode reconstitutes a trie previously written by Encode.
func Decode(r io.Reader) (*Trie, error) {
	var t Trie
	if err := gob.NewDecoder(r).Decode(&t); err != nil {
		return nil, err
	}
	return &t, nil
}
