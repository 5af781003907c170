package corpus

import (
	"context"
	"testing"

	"github.com/mkbabb/words-sub000/internal/cache"
	"github.com/mkbabb/words-sub000/internal/cache/diskcache"
	"github.com/mkbabb/words-sub000/internal/common"
	"github.com/mkbabb/words-sub000/internal/coreerrors"
	"github.com/mkbabb/words-sub000/internal/models"
	"github.com/mkbabb/words-sub000/internal/store"
	"github.com/mkbabb/words-sub000/internal/versionmanager"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	logger := common.GetLogger()

	db, err := store.Open(logger, store.Config{Path: t.TempDir() + "/meta"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	disk, err := diskcache.Open(logger, diskcache.Config{Path: t.TempDir() + "/disk"})
	if err != nil {
		t.Fatalf("open disk cache: %v", err)
	}
	t.Cleanup(func() { disk.Close() })

	cacheMgr := cache.NewManager(disk, nil, logger, cache.DefaultPolicies())

	corpora := versionmanager.New[models.CorpusDocument, *models.CorpusDocument](db, cacheMgr, models.ResourceTypeCorpus, "corpus_content", versionmanager.InlineThresholdBytes, logger)
	searchIndexes := versionmanager.New[models.SearchIndexDocument, *models.SearchIndexDocument](db, cacheMgr, models.ResourceTypeSearchIndex, "search_index_content", versionmanager.InlineThresholdBytes, logger)
	trieIndexes := versionmanager.New[models.TrieIndexDocument, *models.TrieIndexDocument](db, cacheMgr, models.ResourceTypeTrieIndex, "trie_index_content", versionmanager.InlineThresholdBytes, logger)
	semanticIndexes := versionmanager.New[models.SemanticIndexDocument, *models.SemanticIndexDocument](db, cacheMgr, models.ResourceTypeSemanticIndex, "semantic_index_content", versionmanager.InlineThresholdBytes, logger)

	return NewManager(corpora, searchIndexes, trieIndexes, semanticIndexes, logger)
}

func saveChildCorpus(t *testing.T, m *Manager, resourceID string, words []string) {
	t.Helper()
	ctx := context.Background()
	var wordVals []Word
	for _, w := range words {
		wordVals = append(wordVals, Word{Original: w, Language: "en"})
	}
	c, err := Build(ctx, wordVals, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	fields := models.CorpusFields{CorpusType: models.CorpusKindLexicon, VocabularyHash: c.VocabularyHash, VocabularySize: len(c.Vocabulary)}
	if _, err := m.corpora.Save(ctx, resourceID, "default", c, versionmanager.DefaultSaveConfig(), nil, nil, fields); err != nil {
		t.Fatalf("save child corpus: %v", err)
	}
}

func TestAggregateVocabulariesUnionsChildren(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	saveChildCorpus(t, m, "child_1", []string{"cat", "dog"})
	saveChildCorpus(t, m, "child_2", []string{"dog", "bird"})

	snap, err := m.AggregateVocabularies(ctx, "master_1", []string{"child_1", "child_2"}, nil)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if snap.Document.VocabularySize != 3 {
		t.Fatalf("aggregated vocabulary size = %d, want 3 (cat, dog, bird)", snap.Document.VocabularySize)
	}
	if !snap.Document.IsMaster {
		t.Fatal("expected aggregated corpus to be marked is_master")
	}
}

func TestAggregateVocabulariesToleratesDanglingChild(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	saveChildCorpus(t, m, "child_1", []string{"cat"})

	snap, err := m.AggregateVocabularies(ctx, "master_1", []string{"child_1", "missing_child"}, nil)
	if err != nil {
		t.Fatalf("aggregate should tolerate a dangling child reference: %v", err)
	}
	if snap.Document.VocabularySize != 1 {
		t.Fatalf("vocabulary size = %d, want 1", snap.Document.VocabularySize)
	}
}

func TestDeleteCorpusCascadesToSearchAndTrieIndexes(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	saveChildCorpus(t, m, "corpus_1", []string{"cat", "dog"})

	trieFields := models.TrieIndexFields{CorpusID: "corpus_1", NumEntries: 2}
	if _, err := m.trieIndexes.Save(ctx, "trie_1", "default", []byte("trie-bytes"), versionmanager.DefaultSaveConfig(), nil, nil, trieFields); err != nil {
		t.Fatalf("save trie index: %v", err)
	}

	searchFields := models.SearchIndexFields{CorpusID: "corpus_1", TrieIndexID: "trie_1"}
	if _, err := m.searchIndexes.Save(ctx, "search_1", "default", map[string]any{"ready": true}, versionmanager.DefaultSaveConfig(), nil, nil, searchFields); err != nil {
		t.Fatalf("save search index: %v", err)
	}

	// an unrelated sibling corpus and its own search index must survive
	saveChildCorpus(t, m, "corpus_2", []string{"bird"})
	siblingFields := models.SearchIndexFields{CorpusID: "corpus_2"}
	if _, err := m.searchIndexes.Save(ctx, "search_2", "default", map[string]any{"ready": true}, versionmanager.DefaultSaveConfig(), nil, nil, siblingFields); err != nil {
		t.Fatalf("save sibling search index: %v", err)
	}

	if _, err := m.DeleteCorpus(ctx, "corpus_1"); err != nil {
		t.Fatalf("delete corpus: %v", err)
	}

	if _, err := m.corpora.GetLatest(ctx, "corpus_1", false); err != coreerrors.ErrNotFound {
		t.Fatalf("expected corpus_1 to be deleted, got %v", err)
	}
	if _, err := m.searchIndexes.GetLatest(ctx, "search_1", false); err != coreerrors.ErrNotFound {
		t.Fatalf("expected search_1 to be cascade-deleted, got %v", err)
	}
	if _, err := m.trieIndexes.GetLatest(ctx, "trie_1", false); err != coreerrors.ErrNotFound {
		t.Fatalf("expected trie_1 to be cascade-deleted, got %v", err)
	}

	if _, err := m.corpora.GetLatest(ctx, "corpus_2", false); err != nil {
		t.Fatalf("expected sibling corpus_2 to survive, got %v", err)
	}
	if _, err := m.searchIndexes.GetLatest(ctx, "search_2", false); err != nil {
		t.Fatalf("expected sibling search_2 to survive, got %v", err)
	}
}
