package prompt

import (
	"fmt"
	"strings"

	"github.com/mantisproject/mantis/internal/core/domain"
)

// DefaultSystemPreamble is the fixed instruction block describing the
// assistant's role and constraints. It is always included.
const DefaultSystemPreamble = `You are a military maintenance assistant.
Answer ONLY using the Context below. Cite the source document.
If the answer is NOT in the Context, say: "Not found in loaded manuals."
NEVER invent or guess procedures.`

// Assembler builds a role-structured prompt from retrieved chunks and the
// user query within a rune budget. Chunks are dropped whole from the
// lowest-ranked end when the budget would be exceeded; a chunk is never
// silently truncated.
type Assembler struct {
	SystemPreamble string
	Budget         int
	MaxLength      int
}

func NewAssembler(budget, maxLength int) *Assembler {
	if budget <= 0 {
		budget = 6000
	}
	if maxLength <= 0 {
		maxLength = 1000
	}
	return &Assembler{
		SystemPreamble: DefaultSystemPreamble,
		Budget:         budget,
		MaxLength:      maxLength,
	}
}

func (a *Assembler) Assemble(question string, chunks []domain.RetrievedChunk) domain.Prompt {
	// Try the full context first, then drop the lowest-ranked chunk until
	// the prompt fits. Zero surviving chunks is a degraded but valid
	// state: the query still goes out context-free.
	for n := len(chunks); n >= 0; n-- {
		p := a.build(question, chunks[:n])
		if p.Size() <= a.Budget {
			return p
		}
	}
	return a.build(question, nil)
}

func (a *Assembler) build(question string, chunks []domain.RetrievedChunk) domain.Prompt {
	var user strings.Builder
	user.WriteString("Context:\n")
	user.WriteString(formatContext(chunks))
	user.WriteString("\n\nQuestion: ")
	user.WriteString(question)
	user.WriteString("\n\nAnswer in English:")

	return domain.Prompt{
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: a.SystemPreamble},
			{Role: domain.RoleUser, Content: user.String()},
		},
		MaxLength: a.MaxLength,
	}
}

// formatContext lists chunks in rank order, each annotated with its source
// document and page for traceability.
func formatContext(chunks []domain.RetrievedChunk) string {
	if len(chunks) == 0 {
		return "No relevant context found."
	}
	parts := make([]string, 0, len(chunks))
	for i, rc := range chunks {
		parts = append(parts, fmt.Sprintf("[Source %d: %s, Page %d]\n%s",
			i+1, rc.Chunk.SourceDocument, rc.Chunk.PageNumber, rc.Chunk.Text))
	}
	return strings.Join(parts, "\n\n")
}
