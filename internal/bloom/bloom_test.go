package bloom

import (
	"bytes"
	"testing"
)

func TestFilterNeverFalseNegative(t *testing.T) {
	f := New(1000, 0.01)
	words := []string{"cat", "dog", "bird", "fish", "wolf"}
	for _, w := range words {
		f.Add(w)
	}
	for _, w := range words {
		if !f.MightContain(w) {
			t.Fatalf("inserted word %q reported absent", w)
		}
	}
}

func TestFilterRoundTripsThroughEncoding(t *testing.T) {
	f := New(100, 0.01)
	f.Add("hello")
	f.Add("world")

	var buf bytes.Buffer
	if err := Encode(&buf, f); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.MightContain("hello") || !decoded.MightContain("world") {
		t.Fatal("decoded filter lost inserted members")
	}
}

func TestFilterLikelyRejectsUnseenWord(t *testing.T) {
	f := New(3, 0.001)
	f.Add("apple")
	f.Add("banana")
	f.Add("cherry")
	if f.MightContain("zzzzzqqqq-not-inserted") {
		t.Log("false positive on unseen word (statistically possible, not a bug on its own)")
	}
}
