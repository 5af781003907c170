// Package search builds the trie/fuzzy/semantic lookup surface over a
// corpus vocabulary, per spec.md §4.6.4: trie and fuzzy layers build
// synchronously, the semantic layer builds in the background so the
// caller is never blocked on an embedding run that can take minutes.
package search

// Status is the immutable snapshot handed out by Search.SemanticStatus,
// matching spec.md §6.3's semantic_status() contract and the lock-free
// atomic enum called for in §9's Design Notes.
type Status struct {
	Enabled        bool
	Ready          bool
	Building       bool
	VocabularySize int
	ModelName      string
	Message        string
}

var disabledStatus = Status{Enabled: false}
