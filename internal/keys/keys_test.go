package keys

import "testing"

func TestResourceKeyDeterministic(t *testing.T) {
	a := ResourceKey("corpus", "c1", "content", "abcd1234")
	b := ResourceKey("corpus", "c1", "content", "abcd1234")
	if a != b {
		t.Fatalf("expected deterministic output, got %q vs %q", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64-hex digest, got length %d", len(a))
	}
}

func TestResourceKeyDistinguishesQualifiers(t *testing.T) {
	a := ResourceKey("corpus", "c1", "v1")
	b := ResourceKey("corpus", "c1", "v2")
	if a == b {
		t.Fatal("expected different qualifiers to produce different keys")
	}
}

func TestHTTPKeyIgnoresParamOrder(t *testing.T) {
	a := HTTPKey("GET", "/corpus", map[string]string{"a": "1", "b": "2"})
	b := HTTPKey("GET", "/corpus", map[string]string{"b": "2", "a": "1"})
	if a != b {
		t.Fatal("expected param order to not affect the derived key")
	}
}

func TestContentHashLength(t *testing.T) {
	h := ContentHash(`{"a":1}`)
	if len(h) != 64 {
		t.Fatalf("expected 64-hex digest, got length %d", len(h))
	}
}
