package citation

import (
	"fmt"
	"strconv"
	"strings"
)

// Label is the visible text of every resolved citation link.
const Label = "source"

// nestLimit is how many brackets a marker may be wrapped in.
const nestLimit = 3

// markerWords are the citation words accepted inside brackets or parens,
// including misspellings models commonly produce.
var markerWords = []string{
	"reference", "scource", "sources", "source", "souce", "sorce", "cite", "src", "ref",
}

// bareWords may appear unbracketed at the end of a claim.
var bareWords = []string{"scource", "sources", "source", "souce", "sorce"}

const unknownMarker = "UNKNOWN_SRC"

// canonicalOpen starts every rewritten marker.
const canonicalOpen = "[" + Label + "]("

// Normalizer rewrites citation markers in generated text to
// "[source](url)" links resolved against a Registry.
//
// Accepted shapes, tried in this order at each position:
//
//	[source] [[Sources]] ((cite)) [ref]   word markers in 1-3 brackets or parens
//	[SRC001] [SRC001, SRC004]            bracketed IDs
//	[3]                                  bracketed rank
//	[UNKNOWN_SRC]
//	SRC002                               bare ID
//	... claim source.                    bare word at the end of a claim
//
// A marker directly followed by "(" is left alone, and link destinations are
// skipped, so normalized output passes through unchanged.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer { return &Normalizer{} }

// Normalize returns text with every recognised marker replaced. With an
// empty registry nothing can be resolved and text is returned as is.
func (n *Normalizer) Normalize(text string, reg *Registry) string {
	fallback, ok := reg.Fallback()
	if !ok {
		return text
	}

	var b strings.Builder
	last := 0
	for i := 0; i < len(text); {
		if end := linkEnd(text, i); end > 0 {
			i = end
			continue
		}
		end := matchMarker(text, i)
		if end < 0 {
			i++
			continue
		}
		b.WriteString(text[last:i])
		fmt.Fprintf(&b, "[%s](%s)", Label, resolve(text[i:end], reg, fallback))
		last = end
		i = end
	}
	if last == 0 {
		return text
	}
	b.WriteString(text[last:])
	return b.String()
}

// resolve picks the URL for a matched marker: an explicit ID wins, then a
// bare rank, then the fallback.
func resolve(marker string, reg *Registry, fallback string) string {
	if id, ok := firstID(marker); ok {
		if url, ok := reg.Lookup(id); ok {
			return url
		}
		return fallback
	}
	if digits, ok := firstNumber(marker); ok {
		trimmed := strings.TrimLeft(digits, "0")
		if len(trimmed) > 3 {
			return fallback
		}
		rank := 0
		if trimmed != "" {
			rank, _ = strconv.Atoi(trimmed)
		}
		if url, ok := reg.Lookup(fmt.Sprintf("%s%03d", Prefix, rank)); ok {
			return url
		}
	}
	return fallback
}

// matchMarker returns the end of the marker starting at i, or -1.
func matchMarker(text string, i int) int {
	switch text[i] {
	case '[':
		if end := bracketed(text, i, '[', ']', wordInner(']')); end > 0 {
			return end
		}
		if end := bracketed(text, i, '[', ']', idListInner); end > 0 {
			return end
		}
		if end := bracketed(text, i, '[', ']', numberInner); end > 0 {
			return end
		}
		return bracketed(text, i, '[', ']', unknownInner)
	case '(':
		return bracketed(text, i, '(', ')', wordInner(')'))
	}
	if end := bareID(text, i); end > 0 {
		return end
	}
	return bareWord(text, i)
}

// bracketed matches 1-3 open chars, optional space, inner, optional space
// and 1-3 close chars. Fewer closing chars are tried when the longest run
// is followed by "(".
func bracketed(text string, i int, open, close byte, inner func(string, int) int) int {
	j := i
	for j < len(text) && text[j] == open && j-i < nestLimit {
		j++
	}
	if j == i {
		return -1
	}
	k := inner(text, skipSpace(text, j))
	if k < 0 {
		return -1
	}
	k = skipSpace(text, k)
	closes := 0
	for k+closes < len(text) && text[k+closes] == close && closes < nestLimit {
		closes++
	}
	for c := closes; c >= 1; c-- {
		if !blockedByParen(text, k+c) {
			return k + c
		}
	}
	return -1
}

func wordInner(close byte) func(string, int) int {
	return func(text string, j int) int {
		for _, w := range markerWords {
			if !hasFoldPrefix(text[j:], w) {
				continue
			}
			end := j + len(w)
			if k := skipSpace(text, end); k < len(text) && text[k] == close {
				return end
			}
		}
		return -1
	}
}

// idListInner matches "SRC001" or "SRC001, SRC002, ...".
func idListInner(text string, j int) int {
	k := idAt(text, j)
	if k < 0 {
		return -1
	}
	for k < len(text) && text[k] == ',' {
		next := idAt(text, skipSpace(text, k+1))
		if next < 0 {
			break
		}
		k = next
	}
	return k
}

func numberInner(text string, j int) int {
	k := j
	for k < len(text) && isDigit(text[k]) {
		k++
	}
	if k == j {
		return -1
	}
	return k
}

func unknownInner(text string, j int) int {
	if hasFoldPrefix(text[j:], unknownMarker) {
		return j + len(unknownMarker)
	}
	return -1
}

// idAt matches "SRC" plus exactly three digits at j.
func idAt(text string, j int) int {
	if !hasFoldPrefix(text[j:], Prefix) {
		return -1
	}
	k := j + len(Prefix)
	if k+3 > len(text) {
		return -1
	}
	for _, c := range []byte(text[k : k+3]) {
		if !isDigit(c) {
			return -1
		}
	}
	return k + 3
}

func bareID(text string, i int) int {
	if i > 0 && isWordByte(text[i-1]) {
		return -1
	}
	end := idAt(text, i)
	if end < 0 || (end < len(text) && isWordByte(text[end])) {
		return -1
	}
	if blockedByParen(text, end) {
		return -1
	}
	return end
}

// bareWord matches an unbracketed "source" that closes a claim: it must be
// followed only by spaces and then punctuation, a line break or the end.
func bareWord(text string, i int) int {
	if i > 0 {
		prev := text[i-1]
		if isWordByte(prev) || prev == '[' || prev == '(' || prev == '/' {
			return -1
		}
	}
	for _, w := range bareWords {
		if !hasFoldPrefix(text[i:], w) {
			continue
		}
		end := i + len(w)
		if end < len(text) && isWordByte(text[end]) {
			continue
		}
		k := end
		for k < len(text) && (text[k] == ' ' || text[k] == '\t') {
			k++
		}
		if k == len(text) || strings.IndexByte(".,;:!?\r\n", text[k]) >= 0 {
			return end
		}
		return -1
	}
	return -1
}

// firstID finds the first "SRC###" in s, case-insensitively.
func firstID(s string) (string, bool) {
	for j := 0; j+len(Prefix)+3 <= len(s); j++ {
		if end := idAt(s, j); end > 0 {
			return canonicalID(s[j:end]), true
		}
	}
	return "", false
}

// firstNumber finds the first standalone run of digits in s.
func firstNumber(s string) (string, bool) {
	for j := 0; j < len(s); j++ {
		if !isDigit(s[j]) || (j > 0 && isWordByte(s[j-1])) {
			continue
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k < len(s) && isWordByte(s[k]) {
			j = k
			continue
		}
		return s[j:k], true
	}
	return "", false
}

// blockedByParen reports whether a marker ending at i is the label of an
// existing link. A "(" that opens a marker of its own does not block.
func blockedByParen(text string, i int) bool {
	return i < len(text) && text[i] == '(' && matchMarker(text, i) < 0
}

// linkEnd returns the end of the link target when i starts either a
// canonical "[source](url)" or the "](url)" tail of any other link, or -1.
func linkEnd(text string, i int) int {
	switch {
	case strings.HasPrefix(text[i:], canonicalOpen):
		return closeParen(text, i+len(canonicalOpen))
	case strings.HasPrefix(text[i:], "]("):
		return closeParen(text, i+2)
	}
	return -1
}

// closeParen returns the index after the ")" that closes a "(" opened just
// before j. Balanced parentheses inside the URL are kept; when they never
// balance, the first ")" ends the target.
func closeParen(text string, j int) int {
	first := -1
	depth := 1
	for k := j; k < len(text); k++ {
		switch text[k] {
		case '(':
			depth++
		case ')':
			if first < 0 {
				first = k + 1
			}
			depth--
			if depth == 0 {
				return k + 1
			}
		}
	}
	return first
}

func skipSpace(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			i++
		default:
			return i
		}
	}
	return i
}

func hasFoldPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isWordByte treats non-ASCII bytes as letters so a marker never starts or
// ends inside a non-English word.
func isWordByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}
