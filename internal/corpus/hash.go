package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

func contentHashOfLines(lines []string) string {
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(sum[:])
}
