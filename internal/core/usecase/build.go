package usecase

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mantisproject/mantis/internal/core/domain"
	"github.com/mantisproject/mantis/internal/core/ports"
)

// BuildUseCase runs the full ingestion pipeline: per-document
// extract->chunk->tag jobs execute concurrently on a worker pool, then chunk
// IDs are assigned serially in sorted path order so a rebuild over identical
// inputs reproduces identical IDs regardless of completion order.
type BuildUseCase struct {
	extractors ports.ExtractorSelector
	chunker    ports.Chunker
	tagger     ports.Tagger
	store      ports.KnowledgeStore
	holder     ports.KnowledgeHolder
	pool       ports.TaskPool
	kbPath     string
}

func NewBuildUseCase(
	extractors ports.ExtractorSelector,
	chunker ports.Chunker,
	tagger ports.Tagger,
	store ports.KnowledgeStore,
	holder ports.KnowledgeHolder,
	pool ports.TaskPool,
	kbPath string,
) *BuildUseCase {
	return &BuildUseCase{
		extractors: extractors,
		chunker:    chunker,
		tagger:     tagger,
		store:      store,
		holder:     holder,
		pool:       pool,
		kbPath:     kbPath,
	}
}

// Rebuild processes every document and replaces the persisted and in-memory
// knowledge base. One corrupt document does not abort the build; its failure
// lands in the report. A build where no document succeeds fails with
// domain.ErrEmptyBuild and leaves the previous knowledge base untouched.
func (uc *BuildUseCase) Rebuild(ctx context.Context, paths []string) (*domain.BuildReport, error) {
	if len(paths) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "rebuild", fmt.Errorf("no document paths given"))
	}

	start := time.Now()
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	perDoc := make([][]domain.Chunk, len(sorted))
	perDocErr := make([]error, len(sorted))

	var wg sync.WaitGroup
	for i, path := range sorted {
		wg.Add(1)
		submitted := uc.pool.Submit(func() {
			defer wg.Done()
			perDoc[i], perDocErr[i] = uc.processDocument(ctx, path)
		})
		if submitted != nil {
			wg.Done()
			perDocErr[i] = fmt.Errorf("submit build job: %w", submitted)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Single serialization point: IDs are assigned in path order, never in
	// completion order.
	var chunks []domain.Chunk
	var failures []domain.DocumentFailure
	succeeded := 0
	nextID := 0
	for i, path := range sorted {
		if perDocErr[i] != nil {
			failures = append(failures, domain.DocumentFailure{
				Path:   path,
				Reason: perDocErr[i].Error(),
			})
			continue
		}
		succeeded++
		for _, chunk := range perDoc[i] {
			nextID++
			chunk.ID = nextID
			chunks = append(chunks, chunk)
		}
	}

	report := &domain.BuildReport{
		BuildID:   uuid.NewString(),
		Documents: succeeded,
		Chunks:    len(chunks),
		Failures:  failures,
		Duration:  time.Since(start),
	}

	if succeeded == 0 {
		return report, domain.WrapError(domain.ErrEmptyBuild, "rebuild",
			fmt.Errorf("%d of %d documents failed", len(failures), len(sorted)))
	}

	kb := &domain.KnowledgeBase{
		Metadata: domain.Metadata{
			BuiltAt:       time.Now().UTC(),
			DocumentCount: succeeded,
			ChunkCount:    len(chunks),
		},
		Chunks: chunks,
	}

	if err := uc.store.Save(kb, uc.kbPath); err != nil {
		return report, fmt.Errorf("persist knowledge base: %w", err)
	}
	uc.holder.Swap(kb)

	return report, nil
}

func (uc *BuildUseCase) processDocument(ctx context.Context, path string) ([]domain.Chunk, error) {
	extractor, err := uc.extractors.ForPath(path)
	if err != nil {
		return nil, err
	}

	pages, err := extractor.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)
	chunks := uc.chunker.Split(pages, source)
	for i := range chunks {
		chunks[i].PlatformTags = uc.tagger.Tags(chunks[i].Text, source)
	}
	return chunks, nil
}
