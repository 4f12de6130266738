package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mantisproject/mantis/internal/core/domain"
	"github.com/mantisproject/mantis/internal/core/ports"
)

// Registry dispatches source documents to a page extractor by file extension.
type Registry struct {
	byExt map[string]ports.PageExtractor
}

func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]ports.PageExtractor)}
}

func (r *Registry) Register(ext string, e ports.PageExtractor) {
	r.byExt[strings.ToLower(strings.TrimPrefix(ext, "."))] = e
}

func (r *Registry) ForPath(path string) (ports.PageExtractor, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	e, ok := r.byExt[ext]
	if !ok {
		return nil, domain.WrapError(domain.ErrExtraction, "select extractor",
			fmt.Errorf("unsupported document type %q", ext))
	}
	return e, nil
}

func (r *Registry) Supports(path string) bool {
	_, err := r.ForPath(path)
	return err == nil
}

// NormalizeText collapses all whitespace runs to single spaces and trims the
// result. Extracted page text is stored in this normalized form.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
