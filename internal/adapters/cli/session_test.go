package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mantisproject/mantis/internal/core/domain"
	"github.com/mantisproject/mantis/internal/infrastructure/resilience"
	"github.com/mantisproject/mantis/internal/observability/metrics"
)

type queryServiceFake struct {
	chunks []domain.RetrievedChunk
	err    error

	filter domain.SearchFilter
}

func (f *queryServiceFake) Query(context.Context, string, int, domain.SearchFilter) (*domain.Answer, error) {
	return nil, errors.New("not used by the session")
}

func (f *queryServiceFake) Retrieve(string, int, domain.SearchFilter) ([]domain.RetrievedChunk, error) {
	return f.chunks, f.err
}

func (f *queryServiceFake) BuildPrompt(question string, _ int, filter domain.SearchFilter) (domain.Prompt, []domain.RetrievedChunk, error) {
	f.filter = filter
	if f.err != nil {
		return domain.Prompt{}, nil, f.err
	}
	return domain.Prompt{
		Messages:  []domain.Message{{Role: domain.RoleUser, Content: question}},
		MaxLength: 1000,
	}, f.chunks, nil
}

type generatorFake struct {
	text  string
	err   error
	calls int
}

func (f *generatorFake) Generate(context.Context, domain.Prompt) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *generatorFake) Status(context.Context) (string, error) {
	return "test-model", nil
}

func runSession(t *testing.T, input string, q *queryServiceFake, g *generatorFake) string {
	t.Helper()

	var out strings.Builder
	exec := resilience.NewExecutor(resilience.Config{MaxAttempts: 1, BreakerEnabled: false})
	session := NewSession(q, g, exec, metrics.New("test"), 3,
		[]string{"AH-1", "UH-1", "RC-12"}, strings.NewReader(input), &out)
	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestSessionAnswersQuestion(t *testing.T) {
	q := &queryServiceFake{chunks: []domain.RetrievedChunk{
		{Chunk: domain.Chunk{ID: 1, Text: "oil", SourceDocument: "uh1.pdf", PageNumber: 3}, Score: 1.2},
	}}
	g := &generatorFake{text: "The capacity is 5 quarts."}

	out := runSession(t, "oil capacity\n/quit\n", q, g)
	if !strings.Contains(out, "Assistant: The capacity is 5 quarts.") {
		t.Fatalf("missing answer in output:\n%s", out)
	}
	if g.calls != 1 {
		t.Fatalf("expected 1 generation call, got %d", g.calls)
	}
}

func TestSessionNoResultsSkipsGeneration(t *testing.T) {
	q := &queryServiceFake{chunks: []domain.RetrievedChunk{}}
	g := &generatorFake{text: "unused"}

	out := runSession(t, "unknown topic\n/quit\n", q, g)
	if !strings.Contains(out, "couldn't find any relevant information") {
		t.Fatalf("missing no-results message:\n%s", out)
	}
	if g.calls != 0 {
		t.Fatalf("generator must not run without retrieved chunks, got %d calls", g.calls)
	}
}

func TestSessionEmptyQueryMessage(t *testing.T) {
	q := &queryServiceFake{err: domain.WrapError(domain.ErrEmptyQuery, "tokenize query", errors.New("no tokens"))}
	g := &generatorFake{}

	out := runSession(t, "the of and\n/quit\n", q, g)
	if !strings.Contains(out, "at least one usable keyword") {
		t.Fatalf("missing empty-query message:\n%s", out)
	}
}

func TestSessionGenerationOutageMessage(t *testing.T) {
	q := &queryServiceFake{chunks: []domain.RetrievedChunk{
		{Chunk: domain.Chunk{ID: 1, Text: "oil"}, Score: 1.0},
	}}
	g := &generatorFake{err: domain.WrapError(domain.ErrGenerationUnavailable, "generate", errors.New("refused"))}

	out := runSession(t, "oil\n/quit\n", q, g)
	if !strings.Contains(out, "Cannot reach the generation server") {
		t.Fatalf("missing outage message:\n%s", out)
	}
}

func TestSessionPlatformFilterCommand(t *testing.T) {
	q := &queryServiceFake{chunks: []domain.RetrievedChunk{
		{Chunk: domain.Chunk{ID: 1, Text: "oil"}, Score: 1.0},
	}}
	g := &generatorFake{text: "answer"}

	out := runSession(t, "/platform uh-1 rc-12\noil\n/platform\n/quit\n", q, g)
	if !strings.Contains(out, "Platform filter set to UH-1, RC-12.") {
		t.Fatalf("missing filter confirmation:\n%s", out)
	}
	if len(q.filter.PlatformTags) != 2 || q.filter.PlatformTags[0] != "UH-1" {
		t.Fatalf("filter not applied to query: %+v", q.filter)
	}
	if !strings.Contains(out, "Platform filter cleared.") {
		t.Fatalf("missing filter cleared message:\n%s", out)
	}
}

func TestSessionSourcesCommand(t *testing.T) {
	q := &queryServiceFake{chunks: []domain.RetrievedChunk{
		{Chunk: domain.Chunk{ID: 1, Text: "oil", SourceDocument: "uh1.pdf", PageNumber: 3, PlatformTags: []string{"UH-1"}}, Score: 1.2},
	}}
	g := &generatorFake{text: "answer"}

	out := runSession(t, "/sources\noil\n/sources\n/quit\n", q, g)
	if !strings.Contains(out, "No previous query sources available.") {
		t.Fatalf("missing empty sources message:\n%s", out)
	}
	if !strings.Contains(out, "uh1.pdf - Page 3 [UH-1]") {
		t.Fatalf("missing source listing:\n%s", out)
	}
}

func TestSessionUnsupportedPlatformShortCircuits(t *testing.T) {
	q := &queryServiceFake{chunks: []domain.RetrievedChunk{
		{Chunk: domain.Chunk{ID: 1, Text: "generic engine text"}, Score: 1.0},
	}}
	g := &generatorFake{text: "unused"}

	out := runSession(t, "What is the F-16 oil capacity?\n/quit\n", q, g)
	if !strings.Contains(out, "I don't have information about F-16 in the loaded manuals.") {
		t.Fatalf("missing unsupported-platform message:\n%s", out)
	}
	if !strings.Contains(out, "The available manuals cover: AH-1, UH-1, RC-12.") {
		t.Fatalf("missing covered-platform listing:\n%s", out)
	}
	if g.calls != 0 {
		t.Fatalf("generator must not run for an unsupported platform, got %d calls", g.calls)
	}
}

func TestSessionUnknownCommand(t *testing.T) {
	out := runSession(t, "/bogus\n/quit\n", &queryServiceFake{}, &generatorFake{})
	if !strings.Contains(out, "Unknown command") {
		t.Fatalf("missing unknown command message:\n%s", out)
	}
}
