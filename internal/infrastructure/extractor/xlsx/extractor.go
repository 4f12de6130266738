package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mantisproject/mantis/internal/core/domain"
	"github.com/mantisproject/mantis/internal/infrastructure/extractor"
)

// Extractor reads spreadsheet manuals (maintenance data tables). Each sheet
// becomes one page, numbered in workbook order.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(ctx context.Context, path string) ([]domain.Page, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrExtraction, "open workbook", fmt.Errorf("%s: %w", path, err))
	}
	defer book.Close()

	sheets := book.GetSheetList()
	pages := make([]domain.Page, 0, len(sheets))
	for idx, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := book.GetRows(sheet)
		if err != nil {
			return nil, domain.WrapError(domain.ErrExtraction, "read sheet",
				fmt.Errorf("%s: sheet %q: %w", path, sheet, err))
		}

		var b strings.Builder
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, " "))
			if line == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString(" ")
			}
			b.WriteString(line)
		}

		cleaned := extractor.NormalizeText(b.String())
		if cleaned == "" {
			continue
		}
		pages = append(pages, domain.Page{Number: idx + 1, Text: cleaned})
	}
	return pages, nil
}
