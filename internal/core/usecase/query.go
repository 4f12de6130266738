package usecase

import (
	"context"
	"fmt"

	"github.com/mantisproject/mantis/internal/core/domain"
	"github.com/mantisproject/mantis/internal/core/ports"
)

// QueryUseCase answers a question from the currently loaded knowledge base:
// keyword retrieval, prompt assembly, then one call to the external
// generation service.
type QueryUseCase struct {
	holder    ports.KnowledgeHolder
	retriever ports.Retriever
	assembler ports.PromptAssembler
	generator ports.AnswerGenerator
}

func NewQueryUseCase(
	holder ports.KnowledgeHolder,
	retriever ports.Retriever,
	assembler ports.PromptAssembler,
	generator ports.AnswerGenerator,
) *QueryUseCase {
	return &QueryUseCase{
		holder:    holder,
		retriever: retriever,
		assembler: assembler,
		generator: generator,
	}
}

func (uc *QueryUseCase) Query(
	ctx context.Context,
	question string,
	k int,
	filter domain.SearchFilter,
) (*domain.Answer, error) {
	prompt, sources, err := uc.BuildPrompt(question, k, filter)
	if err != nil {
		return nil, err
	}

	text, err := uc.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &domain.Answer{
		Text:    text,
		Sources: sources,
	}, nil
}

// BuildPrompt retrieves and assembles without calling the generation
// service. An empty retrieval result still yields a valid context-free
// prompt.
func (uc *QueryUseCase) BuildPrompt(
	question string,
	k int,
	filter domain.SearchFilter,
) (domain.Prompt, []domain.RetrievedChunk, error) {
	sources, err := uc.Retrieve(question, k, filter)
	if err != nil {
		return domain.Prompt{}, nil, err
	}
	return uc.assembler.Assemble(question, sources), sources, nil
}

func (uc *QueryUseCase) Retrieve(question string, k int, filter domain.SearchFilter) ([]domain.RetrievedChunk, error) {
	kb := uc.holder.Get()
	if kb == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "retrieve",
			fmt.Errorf("no knowledge base loaded; run a build first"))
	}

	sources, err := uc.retriever.Retrieve(kb, question, k, filter)
	if err != nil {
		return nil, fmt.Errorf("retrieve chunks: %w", err)
	}
	return sources, nil
}
