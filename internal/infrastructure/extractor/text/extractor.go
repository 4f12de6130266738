package text

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/mantisproject/mantis/internal/core/domain"
	"github.com/mantisproject/mantis/internal/infrastructure/extractor"
)

// Extractor handles plain-text manuals. The whole file is treated as a
// single page.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, path string) ([]domain.Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "read text file", fmt.Errorf("%s: %w", path, err))
	}
	if !utf8.Valid(raw) {
		return nil, domain.WrapError(domain.ErrExtraction, "read text file",
			fmt.Errorf("%s: not valid utf-8", path))
	}

	cleaned := extractor.NormalizeText(string(raw))
	if cleaned == "" {
		return nil, nil
	}
	return []domain.Page{{Number: 1, Text: cleaned}}, nil
}
