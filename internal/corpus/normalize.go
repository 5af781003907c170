package corpus

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizer implements spec.md §4.6.1 step 1: NFKD decomposition,
// combining-mark stripping, case-folding, whitespace collapse.
var normalizer = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize reduces word to its canonical vocabulary form.
func Normalize(word string) string {
	decomposed, _, err := transform.String(normalizer, word)
	if err != nil {
		decomposed = word
	}
	folded := strings.ToLower(decomposed)
	return collapseWhitespace(folded)
}

func collapseWhitespace(s string) string {
	fields := strings.Fields(s)
	return strings.Join(fields, " ")
}

// VocabularyHash is SHA-256(join("\n", sorted(normalized_vocabulary))),
// per spec.md §4.6.1 step 5.
func VocabularyHash(vocabulary []string) string {
	sorted := append([]string(nil), vocabulary...)
	sort.Strings(sorted)
	return contentHashOfLines(sorted)
}
