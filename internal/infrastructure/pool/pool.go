package pool

import (
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
)

// WorkerPool bounds the number of concurrently processed documents during a
// build. Ingestion is CPU and I/O bound; unbounded goroutines would thrash
// the constrained target hardware.
type WorkerPool struct {
	inner *ants.Pool
}

func New(capacity int) (*WorkerPool, error) {
	if capacity <= 0 {
		capacity = 4
	}
	inner, err := ants.NewPool(capacity,
		ants.WithExpiryDuration(30*time.Second),
		ants.WithNonblocking(false),
	)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &WorkerPool{inner: inner}, nil
}

func (p *WorkerPool) Submit(task func()) error {
	return p.inner.Submit(task)
}

func (p *WorkerPool) Release() {
	p.inner.Release()
}
