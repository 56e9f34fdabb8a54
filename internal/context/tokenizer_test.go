package context

import (
	"strings"
	"testing"
)

func newTestTokenizer(t *testing.T) *Tokenizer {
	t.Helper()
	tok, err := NewTokenizer()
	if err != nil {
		t.Fatalf("NewTokenizer: %v", err)
	}
	return tok
}

func TestTokenizer_Count(t *testing.T) {
	tok := newTestTokenizer(t)

	count := tok.Count("Hello, world!")
	if count <= 0 {
		t.Errorf("expected positive token count, got %d", count)
	}
}

func TestTokenizer_Count_EmptyString(t *testing.T) {
	tok := newTestTokenizer(t)

	if count := tok.Count(""); count != 0 {
		t.Errorf("expected 0 tokens for empty string, got %d", count)
	}
}

func TestTokenizer_EncodeDecode(t *testing.T) {
	tok := newTestTokenizer(t)

	s := "Citation-linked context for u/someone."
	ids := tok.Encode(s)
	if len(ids) != tok.Count(s) {
		t.Errorf("Encode length %d != Count %d", len(ids), tok.Count(s))
	}
	if got := tok.Decode(ids); got != s {
		t.Errorf("Decode(Encode(s)) = %q, want %q", got, s)
	}
	if tok.Encode("") != nil || tok.Decode(nil) != "" {
		t.Error("empty input should round trip to empty")
	}
}

func TestTokenizer_Truncate(t *testing.T) {
	tok := newTestTokenizer(t)

	long := "This is a fairly long string that should have more than five tokens in total."
	truncated := tok.Truncate(long, 5)

	if len(truncated) >= len(long) {
		t.Error("truncated string should be shorter than original")
	}
	if n := tok.Count(truncated); n > 5 {
		t.Errorf("truncated to 5 tokens but Count says %d", n)
	}
	if !strings.HasPrefix(long, truncated) {
		t.Errorf("hard truncation should keep a prefix, got %q", truncated)
	}
}

func TestTokenizer_Truncate_ShortString(t *testing.T) {
	tok := newTestTokenizer(t)

	short := "Hi"
	if result := tok.Truncate(short, 100); result != short {
		t.Errorf("short string should not be truncated: got %q", result)
	}
}

func TestTokenizer_Truncate_MultibyteBoundary(t *testing.T) {
	tok := newTestTokenizer(t)

	s := strings.Repeat("日本語のテキスト🙂 ", 40)
	for _, max := range []int{1, 2, 3, 7, 31} {
		if n := tok.Count(tok.Truncate(s, max)); n > max {
			t.Errorf("Truncate(_, %d) produced %d tokens", max, n)
		}
	}
}
