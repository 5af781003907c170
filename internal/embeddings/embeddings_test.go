package embeddings

import (
	"context"
	"testing"

	"github.com/mkbabb/words-sub000/internal/common"
)

func TestStubEmbedIsDeterministic(t *testing.T) {
	s := NewStub(16)
	ctx := context.Background()

	first, err := s.Embed(ctx, "ignored-model", []string{"cat", "dog", "cat"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	second, err := s.Embed(ctx, "ignored-model", []string{"cat", "dog", "cat"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}

	for i := range first {
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Fatalf("stub embeddings are not deterministic at [%d][%d]", i, j)
			}
		}
	}
	if !vecEqual(first[0], first[2]) {
		t.Fatal("identical words must produce identical vectors")
	}
	if vecEqual(first[0], first[1]) {
		t.Fatal("distinct words produced identical vectors")
	}
}

func TestStubDimensionMatchesRequestedWidth(t *testing.T) {
	s := NewStub(32)
	if s.Dimension("any") != 32 {
		t.Fatalf("dimension = %d, want 32", s.Dimension("any"))
	}
}

func TestStubDefaultsDimensionWhenNonPositive(t *testing.T) {
	s := NewStub(0)
	if s.Dimension("any") != 8 {
		t.Fatalf("default dimension = %d, want 8", s.Dimension("any"))
	}
}

func TestAnthropicEmbedIsUnsupported(t *testing.T) {
	a := NewAnthropic("test-key")
	if _, err := a.Embed(context.Background(), "claude-3", []string{"cat"}); err == nil {
		t.Fatal("expected anthropic Embed to fail, it has no embeddings endpoint")
	}
	if a.Dimension("claude-3") != 0 {
		t.Fatalf("anthropic dimension = %d, want 0", a.Dimension("claude-3"))
	}
}

func TestNewProviderSelectsStubByDefault(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{StubDimension: 4}, common.GetLogger())
	if err != nil {
		t.Fatalf("new provider: %v", err)
	}
	if _, ok := p.(*Stub); !ok {
		t.Fatalf("expected *Stub for empty provider name, got %T", p)
	}
}

func TestNewProviderRejectsUnknownName(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: "unknown"}, common.GetLogger()); err == nil {
		t.Fatal("expected error for unknown provider name")
	}
}

func TestNewProviderRequiresAPIKeyForGemini(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: "gemini"}, common.GetLogger()); err == nil {
		t.Fatal("expected error when gemini provider has no API key")
	}
}

func vecEqual(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
