// Package corpus implements the in-memory Corpus projection and its
// derivations (normalization, lemmatization, signature indexing,
// vocabulary hashing) described in spec.md §3.1 and §4.6.1, plus the
// hierarchical aggregation and cascade-deletion orchestration of §4.6.2
// and §4.6.3.
package corpus

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/mkbabb/words-sub000/internal/lemmatize"
)

// SignatureParallelThreshold is the vocabulary size above which the
// signature index build is chunked and merged with errgroup, per
// spec.md §4.6.1 step 4.
const SignatureParallelThreshold = 10000

// Word is one input pair accepted by Build.
type Word struct {
	Original string
	Language string
}

// Corpus is the in-memory projection derived from a sequence of
// (original_word, language) pairs.
type Corpus struct {
	Vocabulary          []string       // normalized, deduplicated, insertion order
	OriginalVocabulary  map[string]string // normalized -> original form
	LemmatizedVocabulary []string
	WordToLemmaIndices  map[int]int
	LemmaToWordIndices  map[int][]int
	SignatureBuckets    map[string][]int
	LengthBuckets       map[int][]int
	VocabularyHash      string
}

// Build runs the full §4.6.1 pipeline over words: normalize, dedup,
// optionally lemmatize, build the signature/length indices, hash.
func Build(ctx context.Context, words []Word, lem lemmatize.Lemmatizer) (*Corpus, error) {
	c := &Corpus{
		OriginalVocabulary: make(map[string]string),
	}

	seen := make(map[string]struct{})
	for _, w := range words {
		normalized := Normalize(w.Original)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		c.Vocabulary = append(c.Vocabulary, normalized)
		c.OriginalVocabulary[normalized] = w.Original
	}

	if lem != nil {
		result, err := lemmatize.Lemmatize(ctx, lem, c.Vocabulary)
		if err != nil {
			return nil, err
		}
		c.LemmatizedVocabulary = result.LemmatizedVocabulary
		c.WordToLemmaIndices = result.WordToLemmaIndices
		c.LemmaToWordIndices = result.LemmaToWordIndices
	}

	buckets, lengths, err := buildSignatureIndex(ctx, c.Vocabulary)
	if err != nil {
		return nil, err
	}
	c.SignatureBuckets = buckets
	c.LengthBuckets = lengths

	c.VocabularyHash = VocabularyHash(c.Vocabulary)
	return c, nil
}

// signature is a compact, deterministic summary of a word's character
// multiset, used to bucket likely anagram/near-match candidates.
func signature(word string) string {
	runes := []rune(word)
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes)
}

func buildSignatureIndex(ctx context.Context, vocabulary []string) (map[string][]int, map[int][]int, error) {
	if len(vocabulary) < SignatureParallelThreshold {
		buckets := make(map[string][]int)
		lengths := make(map[int][]int)
		for i, word := range vocabulary {
			sig := signature(word)
			buckets[sig] = append(buckets[sig], i)
			lengths[len([]rune(word))] = append(lengths[len([]rune(word))], i)
		}
		return buckets, lengths, nil
	}

	const chunkSize = 2000
	type partial struct {
		buckets map[string][]int
		lengths map[int][]int
	}
	numChunks := (len(vocabulary) + chunkSize - 1) / chunkSize
	partials := make([]partial, numChunks)

	g, _ := errgroup.WithContext(ctx)
	for ci := 0; ci < numChunks; ci++ {
		ci := ci
		start := ci * chunkSize
		end := start + chunkSize
		if end > len(vocabulary) {
			end = len(vocabulary)
		}
		g.Go(func() error {
			buckets := make(map[string][]int)
			lengths := make(map[int][]int)
			for i := start; i < end; i++ {
				word := vocabulary[i]
				sig := signature(word)
				buckets[sig] = append(buckets[sig], i)
				lengths[len([]rune(word))] = append(lengths[len([]rune(word))], i)
			}
			partials[ci] = partial{buckets: buckets, lengths: lengths}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	buckets := make(map[string][]int)
	lengths := make(map[int][]int)
	for _, p := range partials {
		for sig, idxs := range p.buckets {
			buckets[sig] = append(buckets[sig], idxs...)
		}
		for l, idxs := range p.lengths {
			lengths[l] = append(lengths[l], idxs...)
		}
	}
	return buckets, lengths, nil
}
