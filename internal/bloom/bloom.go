// Package bloom implements a small from-scratch Bloom filter over
// hash/fnv. No Bloom-filter library appears anywhere in the retrieved
// example pack, so this piece is deliberately standard-library (see
// DESIGN.md) rather than reaching for an unneeded third-party dependency.
package bloom

import (
	"encoding/gob"
	"hash/fnv"
	"io"
	"math"
)

// Filter is a fixed-size, k-hash-function Bloom filter used for fast
// negative membership checks ahead of an exact trie lookup (spec.md
// §4.6.6).
type Filter struct {
	Bits          []uint64
	NumBits       uint
	NumHashes     uint
	InsertedCount uint
}

// New sizes a filter for expectedItems at the given falsePositiveRate
// using the standard optimal-parameter formulas.
func New(expectedItems int, falsePositiveRate float64) *Filter {
	if expectedItems < 1 {
		expectedItems = 1
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = 0.01
	}

	n := float64(expectedItems)
	m := math.Ceil(-n * math.Log(falsePositiveRate) / (math.Ln2 * math.Ln2))
	k := math.Round((m / n) * math.Ln2)
	if k < 1 {
		k = 1
	}

	numBits := uint(m)
	if numBits == 0 {
		numBits = 1
	}
	return &Filter{
		Bits:      make([]uint64, (numBits/64)+1),
		NumBits:   numBits,
		NumHashes: uint(k),
	}
}

// Add inserts word into the filter.
func (f *Filter) Add(word string) {
	h1, h2 := f.hashPair(word)
	for i := uint(0); i < f.NumHashes; i++ {
		idx := (h1 + uint64(i)*h2) % uint64(f.NumBits)
		f.Bits[idx/64] |= 1 << (idx % 64)
	}
	f.InsertedCount++
}

// MightContain reports whether word may be present. False means word is
// definitely absent; true means word is present or (rarely) a false
// positive.
func (f *Filter) MightContain(word string) bool {
	h1, h2 := f.hashPair(word)
	for i := uint(0); i < f.NumHashes; i++ {
		idx := (h1 + uint64(i)*h2) % uint64(f.NumBits)
		if f.Bits[idx/64]&(1<<(idx%64)) == 0 {
			return false
		}
	}
	return true
}

// hashPair derives two independent 64-bit hashes from word using the
// double-hashing technique (Kirsch-Mitzenmacher), avoiding the need for k
// distinct hash function implementations.
func (f *Filter) hashPair(word string) (uint64, uint64) {
	h1 := fnv.New64a()
	_, _ = h1.Write([]byte(word))
	sum1 := h1.Sum64()

	h2 := fnv.New64()
	_, _ = h2.Write([]byte(word))
	sum2 := h2.Sum64()

	return sum1, sum2
}

// Encode gob-encodes the filter for storage through the cache envelope.
func Encode(w io.Writer, f *Filter) error {
	return gob.NewEncoder(w).Encode(f)
}

// Decode reconstitutes a filter previously written by Encode.
func Decode(r io.Reader) (*Filter, error) {
	var f Filter
	if err := gob.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	return &f, nil
}
