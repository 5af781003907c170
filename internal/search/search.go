package search

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/sahilm/fuzzy"
	"github.com/ternarybob/arbor"

	"github.com/mkbabb/words-sub000/internal/bloom"
	"github.com/mkbabb/words-sub000/internal/common"
	"github.com/mkbabb/words-sub000/internal/embeddings"
	"github.com/mkbabb/words-sub000/internal/semanticindex"
	"github.com/mkbabb/words-sub000/internal/trie"
)

// Search is the combined exact/fuzzy/semantic lookup surface over a fixed
// vocabulary snapshot. It is not safe for concurrent mutation — per
// spec.md §5's shared-resource policy, a Search is owned by a single task
// after construction, though its read-only query methods may run
// concurrently with the background semantic build.
type Search struct {
	vocabulary []string
	trie       *trie.Trie
	bloom      *bloom.Filter

	provider embeddings.Provider
	ann      atomic.Pointer[semanticindex.ANN]

	status atomic.Value // Status
	cancel context.CancelFunc
	done   chan struct{}

	logger arbor.ILogger
}

// fuzzyData adapts a []string vocabulary to sahilm/fuzzy's Source interface
// so matching never copies the vocabulary.
type fuzzyData []string

func (d fuzzyData) String(i int) string { return d[i] }
func (d fuzzyData) Len() int            { return len(d) }

// FromCorpus builds the trie and bloom layers synchronously, then — if
// semanticEnabled — launches the embedding build on a goroutine tracked by
// a cancel handle, returning promptly regardless of vocabulary size (§8
// scenario 5, §8 property 11). buildSemantic performs the actual
// embedding+ANN build and is supplied by the caller so this package does
// not need to know how a SemanticIndex resource is persisted.
func FromCorpus(vocabulary []string, semanticEnabled bool, modelName string, provider embeddings.Provider, buildSemantic func(ctx context.Context) (*semanticindex.ANN, error), logger arbor.ILogger) *Search {
	s := &Search{
		vocabulary: vocabulary,
		trie:       trie.Build(vocabulary),
		bloom:      bloom.New(len(vocabulary), 0.01),
		provider:   provider,
		done:       make(chan struct{}),
		logger:     logger,
	}
	for _, w := range vocabulary {
		s.bloom.Add(w)
	}

	if !semanticEnabled {
		s.status.Store(disabledStatus)
		close(s.done)
		return s
	}

	s.status.Store(Status{Enabled: true, Building: true, VocabularySize: len(vocabulary), ModelName: modelName})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	common.SafeGoWithContext(ctx, logger, "semantic-index-build", func() {
		defer close(s.done)
		ann, err := buildSemantic(ctx)
		if err != nil {
			if logger != nil {
				logger.Warn().Err(err).Msg("search: semantic index build failed")
			}
			s.status.Store(Status{Enabled: true, Building: false, VocabularySize: len(vocabulary), ModelName: modelName, Message: err.Error()})
			return
		}
		s.ann.Store(ann)
		s.status.Store(Status{Enabled: true, Ready: true, VocabularySize: len(vocabulary), ModelName: modelName})
	})

	return s
}

// SearchExact returns the trie's exact-match result for query, if any.
func (s *Search) SearchExact(query string) []Result {
	if !s.bloom.MightContain(query) {
		return nil
	}
	indices, ok := s.trie.Lookup(query)
	if !ok {
		return nil
	}
	out := make([]Result, len(indices))
	for i, idx := range indices {
		out[i] = Result{Word: s.vocabulary[idx], Index: idx, Score: 1.0}
	}
	return out
}

// SearchFuzzy ranks vocabulary entries against query using sahilm/fuzzy's
// subsequence matcher, keeping at most maxResults whose normalized score
// is at least minScore. The matching algorithm itself is an external
// collaborator per spec.md §1 ("the core specifies only how their
// serialized state is stored and retrieved"); only the normalization and
// result-shaping below are this package's concern.
func (s *Search) SearchFuzzy(query string, maxResults int, minScore float64) []Result {
	matches := fuzzy.FindFrom(query, fuzzyData(s.vocabulary))
	if len(matches) == 0 {
		return nil
	}

	best := matches[0].Score
	if best <= 0 {
		best = 1
	}

	out := make([]Result, 0, len(matches))
	for _, m := range matches {
		score := float64(m.Score) / float64(best)
		if score < minScore {
			continue
		}
		out = append(out, Result{Word: m.Str, Index: m.Index, Score: score})
		if maxResults > 0 && len(out) >= maxResults {
			break
		}
	}
	return out
}

// SearchSemantic embeds query and searches the ANN index, returning an
// empty result (never an error) while the background build is still in
// progress, per spec.md §8 scenario 5.
func (s *Search) SearchSemantic(ctx context.Context, query string, maxResults int, minScore float64) ([]Result, error) {
	ann := s.ann.Load()
	if ann == nil {
		return nil, nil
	}

	status := s.SemanticStatus()
	vec, err := s.provider.Embed(ctx, status.ModelName, []string{query})
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}

	hits, err := ann.Search(ctx, vec[0], maxResults)
	if err != nil {
		return nil, fmt.Errorf("search: ann search: %w", err)
	}

	out := make([]Result, 0, len(hits))
	for _, h := range hits {
		score := 1 - h.Distance
		if score < minScore {
			continue
		}
		if h.VocabularyIndex < 0 || h.VocabularyIndex >= len(s.vocabulary) {
			continue
		}
		out = append(out, Result{Word: s.vocabulary[h.VocabularyIndex], Index: h.VocabularyIndex, Score: score})
	}
	return out, nil
}

// SemanticStatus returns the current lock-free status snapshot.
func (s *Search) SemanticStatus() Status {
	if v := s.status.Load(); v != nil {
		return v.(Status)
	}
	return disabledStatus
}

// AwaitSemanticReady blocks until the background build finishes (ready or
// failed) or ctx is canceled. Test/debug only, per spec.md §6.3.
func (s *Search) AwaitSemanticReady(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels any in-flight semantic build cooperatively and releases
// the ANN index. Per spec.md §4.6.4, a cancelled build's partial state is
// never persisted — cancellation here only stops the goroutine; the
// caller's buildSemantic/persist path is responsible for discarding
// partial artifacts on ctx.Err().
func (s *Search) Close() {
	if s.cancel != nil {
		s.cancel()
	}
	if ann := s.ann.Load(); ann != nil {
		ann.Close()
	}
}
