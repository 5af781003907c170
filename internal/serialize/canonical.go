// Package serialize implements the canonical JSON form used once per save
// for hashing, size-based placement, and external cache payloads. It never
// serializes the same content twice.
package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/mkbabb/words-sub000/internal/keys"
)

// Result bundles the one canonical serialization pass a save needs.
type Result struct {
	JSON      string
	SizeBytes int
	DataHash  string
}

// Canonicalize serializes v into the canonical JSON form (sorted object
// keys, UTF-8, documented coercions for enums/ids/timestamps handled by
// each type's own MarshalJSON) and derives its size and content hash in
// the same pass.
//
// Canonicalization works by round-tripping through a generic value: Go's
// encoding/json marshals map[string]interface{} keys in sorted order, so
// unmarshaling the caller's value into a generic interface{} and
// re-marshaling yields the sorted-key canonical form without a bespoke
// JSON writer.
func Canonicalize(v any) (Result, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return Result{}, fmt.Errorf("serialize: marshal: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Result{}, fmt.Errorf("serialize: round-trip unmarshal: %w", err)
	}

	canonical, err := json.Marshal(generic)
	if err != nil {
		return Result{}, fmt.Errorf("serialize: canonical marshal: %w", err)
	}

	str := string(canonical)
	return Result{
		JSON:      str,
		SizeBytes: len(canonical),
		DataHash:  keys.ContentHash(str),
	}, nil
}

// CanonicalizeBytes canonicalizes an already-serialized JSON document,
// used when content arrives pre-encoded (e.g. a cached blob being
// re-verified).
func CanonicalizeBytes(raw []byte) (Result, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return Result{}, fmt.Errorf("serialize: round-trip unmarshal: %w", err)
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return Result{}, fmt.Errorf("serialize: canonical marshal: %w", err)
	}
	str := string(canonical)
	return Result{
		JSON:      str,
		SizeBytes: len(canonical),
		DataHash:  keys.ContentHash(str),
	}, nil
}
