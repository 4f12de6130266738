package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mantisproject/mantis/internal/core/domain"
	"github.com/mantisproject/mantis/internal/core/ports"
	"github.com/mantisproject/mantis/internal/infrastructure/resilience"
	"github.com/mantisproject/mantis/internal/observability/metrics"
)

// Session is the interactive chat loop. Retrieval errors and generation
// outages surface as messages; no failure terminates the loop.
type Session struct {
	queryUC   ports.QueryService
	generator ports.AnswerGenerator
	exec      *resilience.Executor
	metrics   *metrics.Metrics
	topK      int
	covered   []string

	in  io.Reader
	out io.Writer

	filter     domain.SearchFilter
	lastChunks []domain.RetrievedChunk
}

// unsupportedTerms names platforms the manual set is known not to cover.
// Questions mentioning one get an immediate answer instead of a retrieval
// round that can only come back empty or, worse, loosely relevant.
var unsupportedTerms = []string{
	"f-16", "f-15", "f-22", "f-35", "f-18", "a-10", "b-52", "b-1", "b-2",
	"747", "737", "777", "787", "a320", "a380", "c-130", "c-17", "c-5",
	"mig", "su-", "tu-", "felon", "nuclear", "submarine", "ship",
	"bradley", "stryker",
}

func NewSession(
	queryUC ports.QueryService,
	generator ports.AnswerGenerator,
	exec *resilience.Executor,
	m *metrics.Metrics,
	topK int,
	covered []string,
	in io.Reader,
	out io.Writer,
) *Session {
	return &Session{
		queryUC:   queryUC,
		generator: generator,
		exec:      exec,
		metrics:   m,
		topK:      topK,
		covered:   covered,
		in:        in,
		out:       out,
	}
}

func (s *Session) Run(ctx context.Context) error {
	s.printBanner()
	s.reportServerStatus(ctx)
	fmt.Fprintln(s.out, "Type your question, or '/help' for commands.")
	fmt.Fprintln(s.out)

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	for {
		fmt.Fprint(s.out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out, "\nGoodbye!")
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if quit := s.handleCommand(ctx, line); quit {
				return nil
			}
			continue
		}

		s.answer(ctx, line)
	}
}

// handleCommand returns true when the session should end.
func (s *Session) handleCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(strings.ToLower(line))
	switch parts[0] {
	case "/quit", "/exit":
		fmt.Fprintln(s.out, "Goodbye!")
		return true
	case "/help":
		s.printHelp()
	case "/status":
		s.reportServerStatus(ctx)
	case "/sources":
		s.printSources()
	case "/platform":
		s.setPlatformFilter(parts[1:])
	default:
		fmt.Fprintf(s.out, "Unknown command %q. Type /help for commands.\n", parts[0])
	}
	return false
}

func (s *Session) answer(ctx context.Context, question string) {
	start := time.Now()

	if term := s.unsupportedTerm(question); term != "" {
		s.metrics.ObserveQuery(time.Since(start), 0, nil)
		fmt.Fprintf(s.out, "\nAssistant: I don't have information about %s in the loaded manuals.\n", strings.ToUpper(term))
		if len(s.covered) > 0 {
			fmt.Fprintf(s.out, "           The available manuals cover: %s.\n\n", strings.Join(s.covered, ", "))
		}
		return
	}

	prompt, chunks, err := s.queryUC.BuildPrompt(question, s.topK, s.filter)
	if err != nil {
		s.metrics.ObserveQuery(time.Since(start), 0, err)
		if errors.Is(err, domain.ErrEmptyQuery) {
			fmt.Fprintln(s.out, "I need at least one usable keyword. Try rephrasing your question.")
		} else {
			fmt.Fprintf(s.out, "Search failed: %v\n", err)
		}
		return
	}
	s.lastChunks = chunks

	if len(chunks) == 0 {
		s.metrics.ObserveQuery(time.Since(start), 0, nil)
		fmt.Fprintln(s.out, "I couldn't find any relevant information for that query.")
		fmt.Fprintln(s.out, "Try rephrasing or using different keywords.")
		return
	}

	fmt.Fprintln(s.out, "[...] Generating response...")
	var text string
	err = s.exec.Execute(ctx, "generate", func(callCtx context.Context) error {
		var genErr error
		text, genErr = s.generator.Generate(callCtx, prompt)
		return genErr
	}, nil)
	s.metrics.ObserveQuery(time.Since(start), len(chunks), err)
	if err != nil {
		s.reportGenerationFailure(err)
		return
	}

	fmt.Fprintf(s.out, "\nAssistant: %s\n", text)
	fmt.Fprintf(s.out, "           [Sources: %d chunks from knowledge base]\n\n", len(chunks))
}

func (s *Session) unsupportedTerm(question string) string {
	lower := strings.ToLower(question)
	for _, term := range unsupportedTerms {
		if strings.Contains(lower, term) {
			return term
		}
	}
	return ""
}

func (s *Session) reportGenerationFailure(err error) {
	switch {
	case resilience.IsCircuitOpen(err):
		fmt.Fprintln(s.out, "Generation server is failing repeatedly; backing off. Try again shortly.")
	case domain.IsKind(err, domain.ErrGenerationUnavailable):
		fmt.Fprintln(s.out, "Cannot reach the generation server. Make sure it is running, then try /status.")
	default:
		fmt.Fprintf(s.out, "Generation failed: %v\n", err)
	}
	fmt.Fprintln(s.out)
}

func (s *Session) reportServerStatus(ctx context.Context) {
	statusCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	model, err := s.generator.Status(statusCtx)
	if err != nil {
		fmt.Fprintln(s.out, "[WARN] Generation server not detected. Answers are unavailable until it starts.")
		return
	}
	fmt.Fprintf(s.out, "[INFO] Generation server online. Model: %s\n", model)
}

func (s *Session) printSources() {
	if len(s.lastChunks) == 0 {
		fmt.Fprintln(s.out, "No previous query sources available.")
		return
	}
	fmt.Fprintln(s.out, "Sources from last query:")
	for i, rc := range s.lastChunks {
		tags := strings.Join(rc.Chunk.PlatformTags, ",")
		if tags == "" {
			tags = "untagged"
		}
		fmt.Fprintf(s.out, "  %d. %s - Page %d [%s] (score %.2f)\n",
			i+1, rc.Chunk.SourceDocument, rc.Chunk.PageNumber, tags, rc.Score)
	}
}

func (s *Session) setPlatformFilter(args []string) {
	if len(args) == 0 {
		s.filter = domain.SearchFilter{}
		fmt.Fprintln(s.out, "Platform filter cleared.")
		return
	}
	tags := make([]string, 0, len(args))
	for _, a := range args {
		tags = append(tags, strings.ToUpper(a))
	}
	s.filter = domain.SearchFilter{PlatformTags: tags}
	fmt.Fprintf(s.out, "Platform filter set to %s.\n", strings.Join(tags, ", "))
}

func (s *Session) printBanner() {
	fmt.Fprintln(s.out, strings.Repeat("=", 60))
	fmt.Fprintln(s.out, "  MANTIS: Field Manual Assistant")
	fmt.Fprintln(s.out, strings.Repeat("=", 60))
	fmt.Fprintln(s.out)
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, "Commands:")
	fmt.Fprintln(s.out, "  /help              - Show this help message")
	fmt.Fprintln(s.out, "  /quit              - Exit the program")
	fmt.Fprintln(s.out, "  /status            - Check generation server connection")
	fmt.Fprintln(s.out, "  /sources           - Show sources for the last query")
	fmt.Fprintln(s.out, "  /platform [tags]   - Restrict retrieval to platforms; no args clears")
}
