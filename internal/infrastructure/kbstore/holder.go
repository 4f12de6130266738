package kbstore

import (
	"sync/atomic"

	"github.com/mantisproject/mantis/internal/core/domain"
)

// Holder owns the process-wide "currently loaded knowledge base" reference.
// Queries read it without locking; a rebuild swaps the whole pointer so an
// in-flight query never observes a partial build.
type Holder struct {
	current atomic.Pointer[domain.KnowledgeBase]
}

func NewHolder() *Holder {
	return &Holder{}
}

func (h *Holder) Get() *domain.KnowledgeBase {
	return h.current.Load()
}

func (h *Holder) Swap(kb *domain.KnowledgeBase) {
	h.current.Store(kb)
}
