// Package citation assigns per-run source identifiers and rewrites
// generated text so that every citation marker links to its source.
package citation

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix starts every citation ID.
const Prefix = "SRC"

// MaxID is the largest rank representable as a three-digit ID.
const MaxID = 999

// FormatID returns the citation ID for a 1-based rank, e.g. 1 -> "SRC001".
// Ranks outside 1..MaxID have no ID.
func FormatID(rank int) (string, error) {
	if rank < 1 || rank > MaxID {
		return "", fmt.Errorf("citation: rank %d outside 1..%d", rank, MaxID)
	}
	return fmt.Sprintf("%s%03d", Prefix, rank), nil
}

// ParseID returns the rank encoded in id. Matching is case-insensitive.
func ParseID(id string) (int, bool) {
	if len(id) != len(Prefix)+3 || !strings.EqualFold(id[:len(Prefix)], Prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(id[len(Prefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// canonicalID upper-cases the prefix of an ID taken from generated text.
func canonicalID(id string) string {
	return Prefix + id[len(Prefix):]
}
