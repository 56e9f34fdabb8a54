package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/redlens/redlens/internal/activity"
	"github.com/redlens/redlens/internal/adapter"
	"github.com/redlens/redlens/internal/cache"
	"github.com/redlens/redlens/internal/config"
	ctxpkg "github.com/redlens/redlens/internal/context"
	"github.com/redlens/redlens/internal/reddit"
)

type fakeFetcher struct {
	coll  activity.Collection
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, username string) (activity.Collection, error) {
	f.calls++
	c := f.coll
	c.Username = username
	return c, f.err
}

type fakeLLM struct {
	summary, persona       string
	summaryErr, personaErr error
	requests               []adapter.CompletionRequest
}

func (f *fakeLLM) Complete(_ context.Context, req adapter.CompletionRequest) (string, error) {
	f.requests = append(f.requests, req)
	if strings.Contains(req.UserMessage, "EXECUTIVE SUMMARY") {
		return f.summary, f.summaryErr
	}
	return f.persona, f.personaErr
}

func (f *fakeLLM) Info() adapter.ModelInfo {
	return adapter.ModelInfo{Name: "fake", Provider: "fake"}
}

const (
	postURL    = "https://reddit.com/r/golang/comments/p1/hi/"
	commentURL = "https://reddit.com/r/golang/comments/p1/hi/c1/"
)

func sampleCollection() activity.Collection {
	return activity.Collection{
		Comments: []activity.Item{activity.NewComment("nice", commentURL, time.Unix(100, 0))},
		Posts:    []activity.Item{activity.NewPost("Hi", "world", postURL, time.Unix(200, 0))},
	}
}

func defaultOptions(username string) Options {
	cfg := config.DefaultConfig()
	return Options{
		Username:   username,
		Budget:     cfg.Budget,
		Generation: cfg.Generation,
	}
}

func newTestPipeline(t *testing.T, f reddit.Fetcher, llm adapter.LLMAdapter) *Pipeline {
	t.Helper()
	tok, err := ctxpkg.NewTokenizer()
	if err != nil {
		t.Fatalf("NewTokenizer: %v", err)
	}
	return New(f, cache.NewMemoryStore(), llm, tok, zerolog.Nop())
}

func TestRun_EndToEnd(t *testing.T) {
	fetcher := &fakeFetcher{coll: sampleCollection()}
	llm := &fakeLLM{
		summary: "**CRITICAL FINDINGS**\n- Friendly tone [SRC002]\n- Asks questions source.",
		persona: "## PERSONALITY TRAITS\n- Curious (source)\n- Posts greetings [[SRC001]]",
	}
	p := newTestPipeline(t, fetcher, llm)

	res, err := p.Run(context.Background(), defaultOptions("someone"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.RunID == "" || res.Username != "someone" {
		t.Errorf("run metadata: %+v", res)
	}
	if res.RawCached || res.ProcessedCached {
		t.Error("first run should not hit the cache")
	}
	if res.Items != 2 || res.Context.ItemsIncluded != 2 {
		t.Errorf("items: %d processed, %d packed", res.Items, res.Context.ItemsIncluded)
	}

	text := res.Context.Text
	post := strings.Index(text, "[SRC001] POST (1970-01-01): Title: Hi. Content: world")
	comment := strings.Index(text, "[SRC002] COMMENT (1970-01-01): nice")
	if post < 0 || comment < 0 || post > comment {
		t.Errorf("unexpected context:\n%s", text)
	}

	wantSummary := "**CRITICAL FINDINGS**\n- Friendly tone [source](" + commentURL + ")\n- Asks questions [source](" + postURL + ")."
	if res.ExecutiveSummary != wantSummary {
		t.Errorf("summary:\n got %q\nwant %q", res.ExecutiveSummary, wantSummary)
	}
	if !strings.Contains(res.Persona, "Curious [source]("+postURL+")") ||
		!strings.Contains(res.Persona, "greetings [source]("+postURL+")") {
		t.Errorf("persona not normalized: %q", res.Persona)
	}

	if len(llm.requests) != 2 {
		t.Fatalf("expected 2 generation calls, got %d", len(llm.requests))
	}
	s, pr := llm.requests[0], llm.requests[1]
	if s.MaxTokens != 500 || s.Temperature != 0.2 {
		t.Errorf("summary parameters: %d tokens at %g", s.MaxTokens, s.Temperature)
	}
	if pr.MaxTokens != 1200 || pr.Temperature != 0.3 {
		t.Errorf("persona parameters: %d tokens at %g", pr.MaxTokens, pr.Temperature)
	}
	if !strings.Contains(s.UserMessage, text) {
		t.Error("summary prompt should embed the packed context")
	}
}

func TestRun_UsesCacheOnSecondRun(t *testing.T) {
	fetcher := &fakeFetcher{coll: sampleCollection()}
	p := newTestPipeline(t, fetcher, &fakeLLM{summary: "s [SRC001]", persona: "p [SRC002]"})

	if _, err := p.Run(context.Background(), defaultOptions("Someone")); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	res, err := p.Run(context.Background(), defaultOptions("someone"))
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}
	if !res.RawCached || !res.ProcessedCached {
		t.Errorf("expected cache hits, got raw=%v processed=%v", res.RawCached, res.ProcessedCached)
	}
	if res.Context.Registry.Len() != 2 {
		t.Errorf("cached registry has %d entries", res.Context.Registry.Len())
	}
	if res.Persona != "p [source]("+commentURL+")" {
		t.Errorf("cached registry not used for normalization: %q", res.Persona)
	}
}

func TestAssemble_ItemBudgetChangeMissesProcessedCache(t *testing.T) {
	long := strings.Repeat("a fairly long comment about many unrelated things ", 80)
	coll := activity.Collection{
		Comments: []activity.Item{activity.NewComment(long, commentURL, time.Unix(100, 0))},
	}
	p := newTestPipeline(t, &fakeFetcher{coll: coll}, nil)

	first, err := p.Assemble(context.Background(), defaultOptions("someone"))
	if err != nil {
		t.Fatalf("first Assemble: %v", err)
	}

	opts := defaultOptions("someone")
	opts.Budget.ItemTokens = 50
	second, err := p.Assemble(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Assemble: %v", err)
	}
	if !second.RawCached {
		t.Error("raw activity should still come from the cache")
	}
	if second.ProcessedCached {
		t.Error("processed artifact reused across different item budgets")
	}
	if second.Context.Tokens >= first.Context.Tokens {
		t.Errorf("smaller item ceiling should shrink the context: %d >= %d", second.Context.Tokens, first.Context.Tokens)
	}

	third, err := p.Assemble(context.Background(), opts)
	if err != nil {
		t.Fatalf("third Assemble: %v", err)
	}
	if !third.ProcessedCached {
		t.Error("same budgets should hit the processed cache")
	}
}

func TestRun_NoCacheRefetches(t *testing.T) {
	fetcher := &fakeFetcher{coll: sampleCollection()}
	p := newTestPipeline(t, fetcher, &fakeLLM{summary: "s", persona: "p"})

	opts := defaultOptions("someone")
	opts.NoCache = true
	p.Run(context.Background(), opts)
	res, err := p.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fetcher.calls != 2 || res.RawCached {
		t.Errorf("NoCache should bypass reads: calls=%d raw=%v", fetcher.calls, res.RawCached)
	}
}

func TestRun_PartialFetchIsRecoverable(t *testing.T) {
	fetcher := &fakeFetcher{
		coll: sampleCollection(),
		err:  &reddit.PartialError{Username: "someone", Listings: []string{"submitted"}, Err: errors.New("403")},
	}
	p := newTestPipeline(t, fetcher, &fakeLLM{summary: "s", persona: "p"})

	res, err := p.Run(context.Background(), defaultOptions("someone"))
	if err != nil {
		t.Fatalf("partial fetch should not fail the run: %v", err)
	}
	if len(res.Warnings) == 0 || !strings.Contains(res.Warnings[0], "partial fetch") {
		t.Errorf("expected partial fetch warning, got %v", res.Warnings)
	}

	p.Run(context.Background(), defaultOptions("someone"))
	if fetcher.calls != 2 {
		t.Error("a partial fetch should not be cached")
	}
}

func TestRun_UserNotFoundIsTerminal(t *testing.T) {
	fetcher := &fakeFetcher{err: reddit.ErrUserNotFound}
	llm := &fakeLLM{}
	p := newTestPipeline(t, fetcher, llm)

	_, err := p.Run(context.Background(), defaultOptions("ghost"))
	if !errors.Is(err, reddit.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if len(llm.requests) != 0 {
		t.Error("generation should not run after a terminal fetch error")
	}
}

func TestRun_SingleGenerationFailure(t *testing.T) {
	llm := &fakeLLM{summaryErr: errors.New("rate limited"), persona: "p [SRC001]"}
	p := newTestPipeline(t, &fakeFetcher{coll: sampleCollection()}, llm)

	res, err := p.Run(context.Background(), defaultOptions("someone"))
	if err != nil {
		t.Fatalf("one failed section should not fail the run: %v", err)
	}
	if res.ExecutiveSummary != SummaryErrorNotice {
		t.Errorf("summary: %q", res.ExecutiveSummary)
	}
	if res.Persona != "p [source]("+postURL+")" {
		t.Errorf("persona: %q", res.Persona)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "rate limited") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning naming the failure, got %v", res.Warnings)
	}
}

func TestRun_BothGenerationsFail(t *testing.T) {
	llm := &fakeLLM{summaryErr: errors.New("down"), personaErr: errors.New("down")}
	p := newTestPipeline(t, &fakeFetcher{coll: sampleCollection()}, llm)

	_, err := p.Run(context.Background(), defaultOptions("someone"))
	if !errors.Is(err, ErrNoReport) {
		t.Errorf("expected ErrNoReport, got %v", err)
	}
}

func TestRun_EmptyActivitySkipsGeneration(t *testing.T) {
	llm := &fakeLLM{}
	p := newTestPipeline(t, &fakeFetcher{}, llm)

	res, err := p.Run(context.Background(), defaultOptions("quiet"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(llm.requests) != 0 {
		t.Error("generation should be skipped with no activity")
	}
	if res.ExecutiveSummary != NoActivitySummary || res.Persona != NoActivityPersona {
		t.Errorf("unexpected sections: %q / %q", res.ExecutiveSummary, res.Persona)
	}
}

func TestRun_TruncationWarning(t *testing.T) {
	var coll activity.Collection
	for i := 0; i < 40; i++ {
		coll.Comments = append(coll.Comments, activity.NewComment(
			strings.Repeat("a longer comment body ", 20), commentURL, time.Unix(int64(1000+i), 0)))
	}
	p := newTestPipeline(t, &fakeFetcher{coll: coll}, &fakeLLM{summary: "s", persona: "p"})

	opts := defaultOptions("chatty")
	opts.Budget.ContextTokens = 1000
	opts.Budget.ReservedTokens = 200
	res, err := p.Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Context.Truncated || res.Context.Tokens > 800 {
		t.Errorf("context: truncated=%v tokens=%d", res.Context.Truncated, res.Context.Tokens)
	}
	if res.Context.ItemsIncluded >= res.Items {
		t.Errorf("packed %d of %d", res.Context.ItemsIncluded, res.Items)
	}
	found := false
	for _, w := range res.Warnings {
		if strings.Contains(w, "truncated") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected truncation warning, got %v", res.Warnings)
	}
}

func TestRun_Progress(t *testing.T) {
	p := newTestPipeline(t, &fakeFetcher{coll: sampleCollection()}, &fakeLLM{summary: "s", persona: "p"})

	var seen []int
	opts := defaultOptions("someone")
	opts.Progress = func(percent int, _ string) { seen = append(seen, percent) }
	if _, err := p.Run(context.Background(), opts); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) == 0 || seen[len(seen)-1] != 100 {
		t.Fatalf("progress should end at 100: %v", seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Errorf("progress went backwards: %v", seen)
		}
	}
}

func TestAssemble_NoGeneration(t *testing.T) {
	p := newTestPipeline(t, &fakeFetcher{coll: sampleCollection()}, nil)

	res, err := p.Assemble(context.Background(), defaultOptions("someone"))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if res.Context.ItemsIncluded != 2 || res.ExecutiveSummary != "" {
		t.Errorf("unexpected assemble result: %+v", res)
	}
	if _, err := p.Run(context.Background(), defaultOptions("someone")); err == nil {
		t.Error("Run without an adapter should fail")
	}
}

func TestAssemble_RejectsEmptyBudget(t *testing.T) {
	p := newTestPipeline(t, &fakeFetcher{}, nil)
	opts := defaultOptions("someone")
	opts.Budget.ReservedTokens = opts.Budget.ContextTokens
	if _, err := p.Assemble(context.Background(), opts); err == nil {
		t.Error("expected budget error")
	}
}
