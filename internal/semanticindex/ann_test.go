package semanticindex

import (
	"context"
	"testing"
)

func TestANNInsertAndSearchFindsNearestVector(t *testing.T) {
	ann, err := NewANN(4)
	if err != nil {
		t.Fatalf("new ann: %v", err)
	}
	defer ann.Close()

	ctx := context.Background()
	vectors := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
	if err := ann.Insert(ctx, vectors); err != nil {
		t.Fatalf("insert: %v", err)
	}

	results, err := ann.Search(ctx, []float32{1, 0, 0, 0}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].VocabularyIndex != 0 {
		t.Fatalf("nearest index = %d, want 0", results[0].VocabularyIndex)
	}
}

func TestANNSerializeDeserializeRoundTrips(t *testing.T) {
	ann, err := NewANN(2)
	if err != nil {
		t.Fatalf("new ann: %v", err)
	}
	ctx := context.Background()
	if err := ann.Insert(ctx, [][]float32{{1, 1}, {2, 2}}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	data, err := ann.Serialize()
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	ann.Close()

	restored, err := DeserializeANN(data, 2)
	if err != nil {
		t.Fatalf("deserialize: %v", err)
	}
	defer restored.Close()

	results, err := restored.Search(ctx, []float32{1, 1}, 1)
	if err != nil {
		t.Fatalf("search after deserialize: %v", err)
	}
	if len(results) != 1 || results[0].VocabularyIndex != 0 {
		t.Fatalf("unexpected search results after deserialize: %+v", results)
	}
}
