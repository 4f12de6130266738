package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mantisproject/mantis/internal/adapters/cli"
	httpadapter "github.com/mantisproject/mantis/internal/adapters/http"
	"github.com/mantisproject/mantis/internal/bootstrap"
	"github.com/mantisproject/mantis/internal/config"
	"github.com/mantisproject/mantis/internal/core/domain"
	"github.com/mantisproject/mantis/internal/infrastructure/resilience"
	"github.com/mantisproject/mantis/internal/observability/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mantis",
		Short:         "Offline field-manual retrieval assistant",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newBuildCmd(), newChatCmd(), newQueryCmd(), newServeCmd())
	return root
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func newApp(logFormat string) (*bootstrap.App, error) {
	cfg := config.Load()
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	slog.SetDefault(logging.NewLogger("mantis", cfg.LogLevel, cfg.LogFormat))
	return bootstrap.New(cfg)
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [paths...]",
		Short: "Rebuild the knowledge base from PDF/XLSX/TXT manuals",
		Long:  "Rebuild the knowledge base. With no arguments, scans the configured manuals directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, err := newApp("text")
			if err != nil {
				return err
			}
			defer app.Close()

			paths := args
			if len(paths) == 0 {
				paths, err = app.ListManuals()
				if err != nil {
					return err
				}
			}
			fmt.Printf("Building knowledge base from %d document(s)...\n", len(paths))

			start := time.Now()
			report, err := app.BuildUC.Rebuild(ctx, paths)
			chunks := 0
			if report != nil {
				chunks = report.Chunks
			}
			app.Metrics.ObserveBuild(time.Since(start), chunks, err)

			if report != nil {
				for _, failure := range report.Failures {
					fmt.Printf("  [FAILED] %s: %s\n", failure.Path, failure.Reason)
				}
			}
			if err != nil {
				return err
			}
			fmt.Printf("Done: %d chunks from %d document(s) in %s -> %s\n",
				report.Chunks, report.Documents, report.Duration.Round(time.Millisecond), app.Config.KnowledgeBase)
			return nil
		},
	}
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive question-answering session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, err := newApp("text")
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.LoadKnowledgeBase(); err != nil {
				return fmt.Errorf("cannot start without a knowledge base (run 'mantis build' first): %w", err)
			}

			exec := resilience.NewExecutor(resilience.GenerationConfig())
			session := cli.NewSession(app.QueryUC, app.Generator, exec, app.Metrics,
				app.Config.TopK, app.Platforms, os.Stdin, os.Stdout)
			return session.Run(ctx)
		},
	}
}

func newQueryCmd() *cobra.Command {
	var platforms []string
	var limit int
	var retrieveOnly bool

	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "One-shot retrieval-augmented query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, err := newApp("text")
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.LoadKnowledgeBase(); err != nil {
				return fmt.Errorf("load knowledge base: %w", err)
			}

			question := joinArgs(args)
			filter := domain.SearchFilter{PlatformTags: platforms}

			if retrieveOnly {
				sources, err := app.QueryUC.Retrieve(question, limit, filter)
				if err != nil {
					return err
				}
				for i, rc := range sources {
					fmt.Printf("%d. [%.2f] %s p.%d: %s\n",
						i+1, rc.Score, rc.Chunk.SourceDocument, rc.Chunk.PageNumber, rc.Chunk.Text)
				}
				return nil
			}

			start := time.Now()
			answer, err := app.QueryUC.Query(ctx, question, limit, filter)
			sources := 0
			if answer != nil {
				sources = len(answer.Sources)
			}
			app.Metrics.ObserveQuery(time.Since(start), sources, err)
			if err != nil {
				return err
			}

			fmt.Println(answer.Text)
			for i, rc := range answer.Sources {
				fmt.Printf("  [Source %d: %s, Page %d]\n", i+1, rc.Chunk.SourceDocument, rc.Chunk.PageNumber)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&platforms, "platform", nil, "restrict retrieval to these platform tags")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum chunks to retrieve (0 = configured default)")
	cmd.Flags().BoolVar(&retrieveOnly, "retrieve-only", false, "print ranked chunks without calling the generation server")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Expose query and rebuild over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			app, err := newApp("")
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.LoadKnowledgeBase(); err != nil {
				log.Printf("no knowledge base loaded yet: %v", err)
			}

			router := httpadapter.NewRouter(app.QueryUC, app.BuildUC, app.Metrics, app.ListManuals)
			server := &http.Server{
				Addr:         ":" + app.Config.APIPort,
				Handler:      router.Handler(),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: time.Duration(app.Config.GenTimeoutSeconds+30) * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			go func() {
				log.Printf("api listening on :%s", app.Config.APIPort)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("api server error: %v", err)
				}
			}()

			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}

func joinArgs(args []string) string {
	out := args[0]
	for _, a := range args[1:] {
		out += " " + a
	}
	return out
}
