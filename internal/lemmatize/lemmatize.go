// Package lemmatize reduces normalized words to their dictionary lemma.
// The default English lemmatizer is a small rule-based suffix stripper,
// expensive enough to construct (its exception table) that it is
// lazy-initialized on first use rather than at process start, per
// spec.md §4.6.1.
package lemmatize

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ParallelThreshold is the vocabulary size above which batches are
// lemmatized concurrently instead of sequentially.
const ParallelThreshold = 2000

// Lemmatizer reduces a single normalized word to its lemma.
type Lemmatizer interface {
	Lemma(word string) string
}

// englishSuffixRules is the ordered exception table: longer, more
// specific suffixes are tried before shorter, more general ones.
var englishSuffixRules = []struct {
	suffix      string
	replacement string
	minStemLen  int
}{
	{"ies", "y", 2},
	{"sses", "ss", 2},
	{"xes", "x", 2},
	{"ches", "ch", 2},
	{"shes", "sh", 2},
	{"ying", "y", 2},
	{"ing", "", 3},
	{"ied", "y", 2},
	{"ed", "", 3},
	{"es", "", 2},
	{"s", "", 2},
}

type english struct{}

func (english) Lemma(word string) string {
	lower := strings.ToLower(word)
	for _, rule := range englishSuffixRules {
		if strings.HasSuffix(lower, rule.suffix) {
			stem := lower[:len(lower)-len(rule.suffix)]
			if len(stem) >= rule.minStemLen {
				return stem + rule.replacement
			}
		}
	}
	return lower
}

var (
	defaultOnce sync.Once
	defaultImpl Lemmatizer
)

// Default returns the shipped rule-based English lemmatizer, constructing
// it (and any exception tables it owns) on first call only.
func Default() Lemmatizer {
	defaultOnce.Do(func() {
		defaultImpl = english{}
	})
	return defaultImpl
}

// Result is the lemmatization of one vocabulary: the unique lemmas in
// insertion order, and the bidirectional index maps spec.md §4.6.1 calls
// for.
type Result struct {
	LemmatizedVocabulary []string
	WordToLemmaIndices   map[int]int
	LemmaToWordIndices   map[int][]int
}

// Lemmatize reduces every word in vocabulary to its lemma, sequentially
// below ParallelThreshold and via errgroup-sharded batches above it.
func Lemmatize(ctx context.Context, lem Lemmatizer, vocabulary []string) (Result, error) {
	lemmas := make([]string, len(vocabulary))

	if len(vocabulary) < ParallelThreshold {
		for i, w := range vocabulary {
			lemmas[i] = lem.Lemma(w)
		}
	} else {
		if err := lemmatizeParallel(ctx, lem, vocabulary, lemmas); err != nil {
			return Result{}, err
		}
	}

	return buildResult(vocabulary, lemmas), nil
}

func lemmatizeParallel(ctx context.Context, lem Lemmatizer, vocabulary, lemmas []string) error {
	const chunkSize = 500
	g, _ := errgroup.WithContext(ctx)

	for start := 0; start < len(vocabulary); start += chunkSize {
		start := start
		end := start + chunkSize
		if end > len(vocabulary) {
			end = len(vocabulary)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				lemmas[i] = lem.Lemma(vocabulary[i])
			}
			return nil
		})
	}

	return g.Wait()
}

func buildResult(vocabulary, lemmas []string) Result {
	lemmaIndex := make(map[string]int)
	var lemmaVocab []string
	wordToLemma := make(map[int]int, len(vocabulary))
	lemmaToWords := make(map[int][]int)

	for wi, lemma := range lemmas {
		li, ok := lemmaIndex[lemma]
		if !ok {
			li = len(lemmaVocab)
			lemmaIndex[lemma] = li
			lemmaVocab = append(lemmaVocab, lemma)
		}
		wordToLemma[wi] = li
		lemmaToWords[li] = append(lemmaToWords[li], wi)
	}

	return Result{
		LemmatizedVocabulary: lemmaVocab,
		WordToLemmaIndices:   wordToLemma,
		LemmaToWordIndices:   lemmaToWords,
	}
}
