package bootstrap

import (
	"fmt"
	"time"

	"github.com/mantisproject/mantis/internal/config"
	"github.com/mantisproject/mantis/internal/core/ports"
	"github.com/mantisproject/mantis/internal/core/usecase"
	"github.com/mantisproject/mantis/internal/infrastructure/chunking"
	"github.com/mantisproject/mantis/internal/infrastructure/extractor"
	pdfextractor "github.com/mantisproject/mantis/internal/infrastructure/extractor/pdf"
	textextractor "github.com/mantisproject/mantis/internal/infrastructure/extractor/text"
	xlsxextractor "github.com/mantisproject/mantis/internal/infrastructure/extractor/xlsx"
	"github.com/mantisproject/mantis/internal/infrastructure/kbstore"
	"github.com/mantisproject/mantis/internal/infrastructure/llm/kobold"
	"github.com/mantisproject/mantis/internal/infrastructure/pool"
	"github.com/mantisproject/mantis/internal/infrastructure/tagging"
	"github.com/mantisproject/mantis/internal/observability/metrics"
	"github.com/mantisproject/mantis/internal/prompt"
	"github.com/mantisproject/mantis/internal/retrieval"
)

type App struct {
	Config  config.Config
	Metrics *metrics.Metrics

	Extractors *extractor.Registry
	Generator  ports.AnswerGenerator
	BuildUC    ports.KnowledgeBuilder
	QueryUC    ports.QueryService

	// Platforms lists the labels of the active pattern table, in table
	// order.
	Platforms []string

	holder *kbstore.Holder
	store  *kbstore.FileStore

	closeFn func()
}

func New(cfg config.Config) (*App, error) {
	rules, err := tagging.LoadRules(cfg.PatternTablePath)
	if err != nil {
		return nil, fmt.Errorf("load pattern table: %w", err)
	}
	tagger := tagging.New(rules)
	labels := make([]string, 0, len(rules))
	for _, rule := range rules {
		labels = append(labels, rule.Label)
	}

	registry := extractor.NewRegistry()
	registry.Register("pdf", pdfextractor.New())
	registry.Register("xlsx", xlsxextractor.New())
	registry.Register("txt", textextractor.New())

	workers, err := pool.New(cfg.BuildWorkers)
	if err != nil {
		return nil, fmt.Errorf("init worker pool: %w", err)
	}

	store := kbstore.New()
	holder := kbstore.NewHolder()

	splitter := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap, cfg.MinChunkChars)
	retriever := retrieval.New(retrieval.NewTokenizer(nil), cfg.TopK)
	assembler := prompt.NewAssembler(cfg.PromptBudget, cfg.GenMaxLength)
	generator := kobold.New(cfg.KoboldURL, kobold.GenParams{
		Temperature: cfg.GenTemperature,
		TopP:        cfg.GenTopP,
		TopK:        cfg.GenTopK,
		RepPen:      cfg.GenRepPen,
	}, time.Duration(cfg.GenTimeoutSeconds)*time.Second)

	buildUC := usecase.NewBuildUseCase(registry, splitter, tagger, store, holder, workers, cfg.KnowledgeBase)
	queryUC := usecase.NewQueryUseCase(holder, retriever, assembler, generator)

	return &App{
		Config:     cfg,
		Metrics:    metrics.New("mantis"),
		Extractors: registry,
		Generator:  generator,
		BuildUC:    buildUC,
		QueryUC:    queryUC,
		Platforms:  labels,
		holder:     holder,
		store:      store,
		closeFn:    workers.Release,
	}, nil
}

// LoadKnowledgeBase reads the persisted knowledge base into the holder.
// Missing file is an error; callers decide whether that is fatal (chat)
// or expected (first build).
func (a *App) LoadKnowledgeBase() error {
	kb, err := a.store.Load(a.Config.KnowledgeBase)
	if err != nil {
		return err
	}
	a.holder.Swap(kb)
	return nil
}

func (a *App) ListManuals() ([]string, error) {
	return a.Extractors.ScanDir(a.Config.ManualsDir)
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
