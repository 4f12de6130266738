package prompt

import (
	"strings"
	"testing"

	"github.com/mantisproject/mantis/internal/core/domain"
)

func retrieved(id int, text string) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk: domain.Chunk{ID: id, Text: text, SourceDocument: "uh1.pdf", PageNumber: id},
		Score: float64(10 - id),
	}
}

func TestAssembleIncludesContextAndQuestion(t *testing.T) {
	a := NewAssembler(6000, 1000)

	p := a.Assemble("What is the oil capacity?", []domain.RetrievedChunk{
		retrieved(1, "Engine oil capacity is 5 quarts."),
	})

	if len(p.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(p.Messages))
	}
	if p.Messages[0].Role != domain.RoleSystem || p.Messages[0].Content != DefaultSystemPreamble {
		t.Fatalf("unexpected system message: %+v", p.Messages[0])
	}
	user := p.Messages[1].Content
	if !strings.Contains(user, "[Source 1: uh1.pdf, Page 1]") {
		t.Fatalf("user message missing source annotation: %s", user)
	}
	if !strings.Contains(user, "Engine oil capacity is 5 quarts.") {
		t.Fatalf("user message missing chunk text: %s", user)
	}
	if !strings.Contains(user, "Question: What is the oil capacity?") {
		t.Fatalf("user message missing verbatim question: %s", user)
	}
	if p.MaxLength != 1000 {
		t.Fatalf("expected MaxLength 1000, got %d", p.MaxLength)
	}
}

func TestAssembleDropsLowestRankedWholeChunks(t *testing.T) {
	a := NewAssembler(700, 1000)
	chunks := []domain.RetrievedChunk{
		retrieved(1, strings.Repeat("a", 200)),
		retrieved(2, strings.Repeat("b", 200)),
		retrieved(3, strings.Repeat("c", 200)),
	}

	p := a.Assemble("question", chunks)
	if p.Size() > 700 {
		t.Fatalf("prompt size %d exceeds budget", p.Size())
	}
	user := p.Messages[1].Content
	if !strings.Contains(user, strings.Repeat("a", 200)) {
		t.Fatalf("highest ranked chunk was dropped")
	}
	if strings.Contains(user, strings.Repeat("c", 200)) {
		t.Fatalf("lowest ranked chunk should have been dropped first")
	}
	// A surviving chunk is whole or absent, never truncated.
	if strings.Contains(user, "ccc") {
		t.Fatalf("chunk text was truncated instead of dropped")
	}
}

func TestAssembleNoChunksIsDegradedButValid(t *testing.T) {
	a := NewAssembler(6000, 1000)

	p := a.Assemble("anything", nil)
	if len(p.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(p.Messages))
	}
	if !strings.Contains(p.Messages[1].Content, "No relevant context found.") {
		t.Fatalf("expected context-free marker, got %s", p.Messages[1].Content)
	}
	if !strings.Contains(p.Messages[1].Content, "Question: anything") {
		t.Fatalf("question missing from degraded prompt")
	}
}

func TestAssembleBudgetTooSmallForAnyChunk(t *testing.T) {
	a := NewAssembler(400, 1000)

	p := a.Assemble("q", []domain.RetrievedChunk{
		retrieved(1, strings.Repeat("x", 500)),
	})
	if strings.Contains(p.Messages[1].Content, "xxx") {
		t.Fatalf("oversized chunk should have been dropped entirely")
	}
	if !strings.Contains(p.Messages[1].Content, "No relevant context found.") {
		t.Fatalf("expected context-free fallback")
	}
}

func TestAssembleRankOrderPreserved(t *testing.T) {
	a := NewAssembler(6000, 1000)

	p := a.Assemble("q", []domain.RetrievedChunk{
		retrieved(1, "first passage"),
		retrieved(2, "second passage"),
	})
	user := p.Messages[1].Content
	if strings.Index(user, "first passage") > strings.Index(user, "second passage") {
		t.Fatalf("chunks out of rank order: %s", user)
	}
	if !strings.Contains(user, "[Source 2: uh1.pdf, Page 2]") {
		t.Fatalf("second source annotation missing")
	}
}
