package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"

	"github.com/mantisproject/mantis/internal/core/domain"
	"github.com/mantisproject/mantis/internal/infrastructure/extractor"
)

// Extractor reads a PDF manual page by page. Pages that cannot be parsed or
// contain no text are skipped; a document that cannot be opened at all fails
// with domain.ErrExtraction.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "read pdf", fmt.Errorf("%s: %w", path, err))
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "parse pdf", fmt.Errorf("%s: %w", path, err))
	}

	pageCount := reader.NumPage()
	pages := make([]domain.Page, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip pages the parser cannot decode; the rest of the
			// document is still usable.
			continue
		}
		cleaned := extractor.NormalizeText(text)
		if cleaned == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: i, Text: cleaned})
	}

	if len(pages) == 0 && pageCount == 0 {
		return nil, domain.WrapError(domain.ErrExtraction, "parse pdf",
			fmt.Errorf("%s: document has no pages", path))
	}
	return pages, nil
}
