package corpus

import (
	"context"
	"fmt"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/mkbabb/words-sub000/internal/coreerrors"
	"github.com/mkbabb/words-sub000/internal/lemmatize"
	"github.com/mkbabb/words-sub000/internal/models"
	"github.com/mkbabb/words-sub000/internal/versionmanager"
)

type corpusMgr = versionmanager.Manager[models.CorpusDocument, *models.CorpusDocument]
type searchIndexMgr = versionmanager.Manager[models.SearchIndexDocument, *models.SearchIndexDocument]
type trieIndexMgr = versionmanager.Manager[models.TrieIndexDocument, *models.TrieIndexDocument]
type semanticIndexMgr = versionmanager.Manager[models.SemanticIndexDocument, *models.SemanticIndexDocument]

// Manager orchestrates the Corpus resource type and its cascade of
// dependent resources (SearchIndex, TrieIndex, SemanticIndex), per
// spec.md §4.6.2 and §4.6.3.
type Manager struct {
	corpora         *corpusMgr
	searchIndexes   *searchIndexMgr
	trieIndexes     *trieIndexMgr
	semanticIndexes *semanticIndexMgr
	logger          arbor.ILogger
}

// NewManager constructs a corpus orchestrator over its four collaborator
// version managers.
func NewManager(corpora *corpusMgr, searchIndexes *searchIndexMgr, trieIndexes *trieIndexMgr, semanticIndexes *semanticIndexMgr, logger arbor.ILogger) *Manager {
	return &Manager{
		corpora:         corpora,
		searchIndexes:   searchIndexes,
		trieIndexes:     trieIndexes,
		semanticIndexes: semanticIndexes,
		logger:          logger,
	}
}

// AggregateVocabularies implements spec.md §4.6.2: union the vocabularies
// of every live child, fetching each child's latest version with its own
// GetLatest call (children are not fetched in one batched query), rebuild
// the master's derived indices, and save only if the vocabulary hash
// changed.
func (m *Manager) AggregateVocabularies(ctx context.Context, masterResourceID string, childResourceIDs []string, lem lemmatize.Lemmatizer) (*versionmanager.Snapshot[models.CorpusDocument], error) {
	if masterResourceID == "" {
		return nil, fmt.Errorf("%w: master resource_id is required", coreerrors.ErrInvalidArgument)
	}

	seen := make(map[string]struct{})
	var words []Word

	for _, childID := range childResourceIDs {
		snap, err := m.corpora.GetLatest(ctx, childID, true)
		if err != nil {
			if err == coreerrors.ErrNotFound {
				m.logWarn("dangling child_corpus_id reference during aggregation", childID, err)
				continue
			}
			return nil, err
		}
		child := snap.Document
		if child.Envelope.ResourceID == "" {
			continue
		}
		for _, normalized := range normalizedVocabularyOf(snap) {
			if _, ok := seen[normalized]; ok {
				continue
			}
			seen[normalized] = struct{}{}
			words = append(words, Word{Original: normalized, Language: child.Language})
		}
	}

	// Sort for stability before Build so the derived signature/length
	// indices are computed over the same deterministic order as the
	// resulting vocabulary, regardless of child iteration order
	// (spec.md §4.6.2 step 2).
	sort.Slice(words, func(i, j int) bool { return words[i].Original < words[j].Original })

	aggregated, err := Build(ctx, words, lem)
	if err != nil {
		return nil, err
	}

	fields := models.CorpusFields{
		CorpusType:     models.CorpusKindLexicon,
		VocabularyHash: aggregated.VocabularyHash,
		VocabularySize: len(aggregated.Vocabulary),
		IsMaster:       true,
		ChildCorpusIDs: childResourceIDs,
	}

	cfg := versionmanager.DefaultSaveConfig()
	return m.corpora.Save(ctx, masterResourceID, "default", aggregated, cfg, nil, nil, fields)
}

// normalizedVocabularyOf extracts the vocabulary a child corpus's own
// content carries. Content is canonical JSON of a *Corpus value saved via
// Build; a best-effort empty result is returned for content that does not
// decode as expected rather than failing the whole aggregation.
func normalizedVocabularyOf(snap *versionmanager.Snapshot[models.CorpusDocument]) []string {
	var c Corpus
	if err := unmarshalContent(snap.Content, &c); err != nil {
		return nil
	}
	return c.Vocabulary
}

// DeleteCorpus implements spec.md §4.6.3's cascade: SearchIndex documents
// referencing this corpus are deleted first (cascading in turn to their
// TrieIndex/SemanticIndex), then the corpus's own version chain. A
// failure to delete one child is logged and does not abort the rest.
func (m *Manager) DeleteCorpus(ctx context.Context, corpusResourceID string) (int, error) {
	if corpusResourceID == "" {
		return 0, fmt.Errorf("%w: resource_id is required", coreerrors.ErrInvalidArgument)
	}

	total := 0

	searchIndexes, err := m.searchIndexes.Query(badgerhold.Where("CorpusID").Eq(corpusResourceID))
	if err != nil && err != coreerrors.ErrNotFound {
		return total, err
	}
	for _, si := range searchIndexes {
		n, err := m.deleteSearchIndex(ctx, si.Envelope.ResourceID)
		if err != nil {
			m.logWarn("failed to cascade-delete search index", si.Envelope.ResourceID, err)
			continue
		}
		total += n
	}

	n, err := m.corpora.DeleteResource(ctx, corpusResourceID)
	if err != nil {
		return total, err
	}
	total += n
	return total, nil
}

func (m *Manager) deleteSearchIndex(ctx context.Context, searchIndexResourceID string) (int, error) {
	snap, err := m.searchIndexes.GetLatest(ctx, searchIndexResourceID, true)
	if err == nil {
		if snap.Document.TrieIndexID != "" {
			if _, err := m.trieIndexes.DeleteResource(ctx, snap.Document.TrieIndexID); err != nil {
				m.logWarn("failed to cascade-delete trie index", snap.Document.TrieIndexID, err)
			}
		}
		if snap.Document.SemanticIndexID != "" {
			if _, err := m.semanticIndexes.DeleteResource(ctx, snap.Document.SemanticIndexID); err != nil {
				m.logWarn("failed to cascade-delete semantic index", snap.Document.SemanticIndexID, err)
			}
		}
	} else if err != coreerrors.ErrNotFound {
		m.logWarn("failed to load search index for cascade", searchIndexResourceID, err)
	}

	return m.searchIndexes.DeleteResource(ctx, searchIndexResourceID)
}

func (m *Manager) logWarn(msg, resourceID string, err error) {
	if m.logger != nil {
		m.logger.Warn().Str("resource_id", resourceID).Err(err).Msg(msg)
	}
}
