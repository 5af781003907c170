// Package cache implements the two-tier cache manager described in
// spec.md §4.3: an in-memory L1 (hashicorp/golang-lru/v2, one instance per
// namespace) backed by an on-disk L2 (internal/cache/diskcache). Every
// read/write/invalidate path goes through Manager rather than either tier
// directly.
package cache

import "time"

// NamespacePolicy configures the per-namespace capacity and expiry rules
// named in spec.md §4.3's cache namespace table.
type NamespacePolicy struct {
	Namespace    string
	MemoryItems  int           // L1 capacity, in entries
	DiskTTL      time.Duration // zero means no expiry
	MemoryTTL    time.Duration // zero means entries expire after 24 hours
	WriteThrough bool          // false for namespaces that are L1-only
}

// DefaultPolicies returns the built-in namespace policy table. Callers may
// override entries or add namespaces by passing their own policy map to
// NewManager.
func DefaultPolicies() map[string]NamespacePolicy {
	policies := []NamespacePolicy{
		{Namespace: "corpus_content", MemoryItems: 256, DiskTTL: 0, MemoryTTL: 10 * time.Minute, WriteThrough: true},
		{Namespace: "search_index_content", MemoryItems: 64, DiskTTL: 0, MemoryTTL: 10 * time.Minute, WriteThrough: true},
		{Namespace: "trie_index_content", MemoryItems: 64, DiskTTL: 0, MemoryTTL: 10 * time.Minute, WriteThrough: true},
		{Namespace: "semantic_index_content", MemoryItems: 16, DiskTTL: 0, MemoryTTL: 10 * time.Minute, WriteThrough: true},
		{Namespace: "dictionary_entry_content", MemoryItems: 4096, DiskTTL: 24 * time.Hour, MemoryTTL: 30 * time.Minute, WriteThrough: true},
		{Namespace: "literature_entry_content", MemoryItems: 512, DiskTTL: 24 * time.Hour, MemoryTTL: 30 * time.Minute, WriteThrough: true},
		{Namespace: "language_entry_content", MemoryItems: 256, DiskTTL: 0, MemoryTTL: 30 * time.Minute, WriteThrough: true},
		{Namespace: "embedding_matrix", MemoryItems: 8, DiskTTL: 0, MemoryTTL: 15 * time.Minute, WriteThrough: true},
	}

	out := make(map[string]NamespacePolicy, len(policies))
	for _, p := range policies {
		out[p.Namespace] = p
	}
	return out
}
