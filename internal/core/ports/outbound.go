package ports

import (
	"context"

	"github.com/mantisproject/mantis/internal/core/domain"
)

// PageExtractor extracts ordered page texts from one local source document.
// Extract is restartable: every call re-reads the file.
type PageExtractor interface {
	Extract(ctx context.Context, path string) ([]domain.Page, error)
}

// Chunker segments page texts into chunk candidates. Candidates carry source
// document and page number but no IDs; IDs are assigned by the builder.
type Chunker interface {
	Split(pages []domain.Page, sourceDocument string) []domain.Chunk
}

// Tagger classifies chunk text and source name against the platform pattern
// table, returning zero or more labels.
type Tagger interface {
	Tags(text, sourceDocument string) []string
}

// ExtractorSelector picks the page extractor responsible for a source
// document, by file type.
type ExtractorSelector interface {
	ForPath(path string) (PageExtractor, error)
}

// TaskPool runs independent per-document build jobs concurrently.
type TaskPool interface {
	Submit(task func()) error
	Release()
}

// KnowledgeHolder owns the currently loaded knowledge base. Get returns an
// immutable snapshot; Swap atomically replaces it after a rebuild.
type KnowledgeHolder interface {
	Get() *domain.KnowledgeBase
	Swap(kb *domain.KnowledgeBase)
}

// KnowledgeStore persists and loads the knowledge base file.
type KnowledgeStore interface {
	Save(kb *domain.KnowledgeBase, path string) error
	Load(path string) (*domain.KnowledgeBase, error)
}

// Retriever ranks chunks of a knowledge base against a query.
type Retriever interface {
	Retrieve(kb *domain.KnowledgeBase, query string, k int, filter domain.SearchFilter) ([]domain.RetrievedChunk, error)
}

// PromptAssembler formats retrieved chunks and the query into a bounded,
// role-structured prompt.
type PromptAssembler interface {
	Assemble(question string, chunks []domain.RetrievedChunk) domain.Prompt
}

// AnswerGenerator is the external text-generation collaborator.
type AnswerGenerator interface {
	Generate(ctx context.Context, prompt domain.Prompt) (string, error)
	Status(ctx context.Context) (string, error)
}
