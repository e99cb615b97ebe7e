// Package hash computes the deterministic content fingerprint every
// change-detection decision in the indexer is ultimately based on.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Content returns the lower-case hex SHA-256 digest of the normalized form
// of text: line endings collapsed to LF, trailing whitespace trimmed from
// each line, interior whitespace left untouched. Normalizing first means two
// chunks that differ only in how their source file was saved still hash
// identically, which is the property the snapshot comparison in C6 depends
// on.
func Content(text string) string {
	sum := sha256.Sum256([]byte(normalize(text)))
	return hex.EncodeToString(sum[:])
}

// normalize collapses line endings and trims trailing whitespace so content
// that only differs in how it was saved hashes the same.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
