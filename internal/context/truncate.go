package context

// Separator marks the span removed by SmartTruncate.
const Separator = " [...] "

const (
	headShare = 0.45
	tailShare = 0.45

	// minSeparatorCost is the token headroom always reserved for Separator.
	minSeparatorCost = 5
)

// SmartTruncate shortens s to at most maxTokens tokens, keeping its opening
// and closing spans joined by Separator. Text already within budget is
// returned unchanged. When the head+tail split cannot be kept under the
// ceiling it falls back to a plain prefix cut.
func (t *Tokenizer) SmartTruncate(s string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	tokens := t.Encode(s)
	n := len(tokens)
	if n <= maxTokens {
		return s
	}

	head := int(float64(n) * headShare)
	tail := int(float64(n) * tailShare)

	// Boundary merges around the separator can add a token on either side.
	reserve := t.Count(Separator) + 2
	if reserve < minSeparatorCost {
		reserve = minSeparatorCost
	}

	if over := head + tail + reserve - maxTokens; over > 0 {
		head = max(0, head-(over+1)/2)
		tail = max(0, tail-over/2)
	}

	out := t.Decode(tokens[:head]) + Separator + t.Decode(tokens[n-tail:])
	if t.Count(out) > maxTokens {
		return t.prefix(tokens, maxTokens)
	}
	return out
}
