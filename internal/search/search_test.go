package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkbabb/words-sub000/internal/embeddings"
	"github.com/mkbabb/words-sub000/internal/semanticindex"
)

func vocabulary() []string {
	return []string{"apple", "banana", "cherry", "date"}
}

func TestSearchExactFindsExactMatch(t *testing.T) {
	s := FromCorpus(vocabulary(), false, "", nil, nil, nil)
	results := s.SearchExact("banana")
	if len(results) != 1 || results[0].Word != "banana" {
		t.Fatalf("unexpected exact results: %+v", results)
	}
}

func TestSearchExactMissesUnknownWord(t *testing.T) {
	s := FromCorpus(vocabulary(), false, "", nil, nil, nil)
	if results := s.SearchExact("grape"); results != nil {
		t.Fatalf("expected no results for unknown word, got %+v", results)
	}
}

func TestSearchFuzzyRanksCloseMatchesAboveThreshold(t *testing.T) {
	s := FromCorpus(vocabulary(), false, "", nil, nil, nil)
	results := s.SearchFuzzy("bnana", 5, 0.0)
	if len(results) == 0 {
		t.Fatal("expected at least one fuzzy match")
	}
	if results[0].Word != "banana" {
		t.Fatalf("top fuzzy match = %q, want banana", results[0].Word)
	}
}

func TestFromCorpusReturnsImmediatelyWithoutSemantics(t *testing.T) {
	start := time.Now()
	s := FromCorpus(vocabulary(), false, "", nil, nil, nil)
	if time.Since(start) > time.Second {
		t.Fatal("FromCorpus with semantics disabled took too long")
	}
	status := s.SemanticStatus()
	if status.Enabled {
		t.Fatal("expected semantic layer disabled")
	}
}

func TestFromCorpusBuildsSemanticIndexInBackground(t *testing.T) {
	provider := embeddings.NewStub(8)
	buildCalled := make(chan struct{})

	buildSemantic := func(ctx context.Context) (*semanticindex.ANN, error) {
		vecs, err := provider.Embed(ctx, "stub-model", vocabulary())
		if err != nil {
			return nil, err
		}
		ann, err := semanticindex.NewANN(8)
		if err != nil {
			return nil, err
		}
		if err := ann.Insert(ctx, vecs); err != nil {
			return nil, err
		}
		close(buildCalled)
		return ann, nil
	}

	s := FromCorpus(vocabulary(), true, "stub-model", provider, buildSemantic, nil)
	defer s.Close()

	status := s.SemanticStatus()
	if !status.Enabled || !status.Building {
		t.Fatalf("expected building status immediately after construction, got %+v", status)
	}

	if err := s.AwaitSemanticReady(context.Background()); err != nil {
		t.Fatalf("await semantic ready: %v", err)
	}
	status = s.SemanticStatus()
	if !status.Ready {
		t.Fatalf("expected ready status after background build, got %+v", status)
	}

	results, err := s.SearchSemantic(context.Background(), "apple", 3, 0.0)
	if err != nil {
		t.Fatalf("search semantic: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected non-empty semantic results once ready")
	}
}

func TestSearchSemanticReturnsEmptyWhileBuilding(t *testing.T) {
	release := make(chan struct{})
	buildSemantic := func(ctx context.Context) (*semanticindex.ANN, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return nil, errors.New("never completes in this test")
	}

	s := FromCorpus(vocabulary(), true, "stub-model", embeddings.NewStub(8), buildSemantic, nil)
	defer func() {
		close(release)
		s.Close()
	}()

	results, err := s.SearchSemantic(context.Background(), "apple", 3, 0.0)
	if err != nil {
		t.Fatalf("search semantic while building should not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty results while building, got %+v", results)
	}
}
