package semanticindex

import (
	"context"
	"testing"

	"github.com/mkbabb/words-sub000/internal/cache"
	"github.com/mkbabb/words-sub000/internal/cache/diskcache"
	"github.com/mkbabb/words-sub000/internal/common"
	"github.com/mkbabb/words-sub000/internal/embeddings"
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
	indexes := versionmanager.New[models.SemanticIndexDocument, *models.SemanticIndexDocument](db, cacheMgr, models.ResourceTypeSemanticIndex, "semantic_index_content", versionmanager.InlineThresholdBytes, logger)

	return NewManager(indexes, embeddings.NewStub(8), logger)
}

func TestBuildPersistsValidSemanticIndex(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	snap, err := m.Build(ctx, "semantic_1", "corpus_1", "stub-model", "hash-1", []string{"cat", "dog", "bird"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if snap.Document.NumEmbeddings != 3 {
		t.Fatalf("num_embeddings = %d, want 3", snap.Document.NumEmbeddings)
	}
	if snap.Document.EmbeddingDimension != 8 {
		t.Fatalf("embedding_dimension = %d, want 8", snap.Document.EmbeddingDimension)
	}
}

func TestBuildRejectsEmptyVocabulary(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Build(context.Background(), "semantic_1", "corpus_1", "stub-model", "hash-1", nil); err == nil {
		t.Fatal("expected error building over an empty vocabulary")
	}
}

func TestLoadANNRehydratesSearchableIndex(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	if _, err := m.Build(ctx, "semantic_1", "corpus_1", "stub-model", "hash-1", []string{"cat", "dog"}); err != nil {
		t.Fatalf("build: %v", err)
	}

	ann, err := m.LoadANN(ctx, "semantic_1")
	if err != nil {
		t.Fatalf("load ann: %v", err)
	}
	defer ann.Close()

	vec, err := embeddings.NewStub(8).Embed(ctx, "stub-model", []string{"cat"})
	if err != nil {
		t.Fatalf("embed query: %v", err)
	}
	results, err := ann.Search(ctx, vec[0], 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 || results[0].VocabularyIndex != 0 {
		t.Fatalf("unexpected search results: %+v", results)
	}
}
