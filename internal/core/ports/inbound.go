package ports

import (
	"context"

	"github.com/mantisproject/mantis/internal/core/domain"
)

// KnowledgeBuilder is the inbound contract for full knowledge base rebuilds.
type KnowledgeBuilder interface {
	Rebuild(ctx context.Context, paths []string) (*domain.BuildReport, error)
}

// QueryService is the inbound contract for retrieval-augmented queries.
type QueryService interface {
	Query(ctx context.Context, question string, k int, filter domain.SearchFilter) (*domain.Answer, error)
	Retrieve(question string, k int, filter domain.SearchFilter) ([]domain.RetrievedChunk, error)
	BuildPrompt(question string, k int, filter domain.SearchFilter) (domain.Prompt, []domain.RetrievedChunk, error)
}
