package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/joseph-ayodele/invoice-ledger/internal/common"
	"github.com/joseph-ayodele/invoice-ledger/internal/export"
	"github.com/joseph-ayodele/invoice-ledger/internal/extract"
	"github.com/joseph-ayodele/invoice-ledger/internal/ingest"
	"github.com/joseph-ayodele/invoice-ledger/internal/pipeline"
	repo "github.com/joseph-ayodele/invoice-ledger/internal/repository"
	"github.com/joseph-ayodele/invoice-ledger/internal/textsource"
)

const defaultWorkbookName = "发票清单.xlsx"

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	cfg := common.LoadConfig()

	fs := ff.NewFlagSet("invoice-batch")
	var (
		dir      = fs.StringLong("dir", "", "directory to scan for invoices (required)")
		buyer    = fs.StringLong("buyer", cfg.Extract.BuyerKeyword, "keyword identifying the buyer company")
		out      = fs.StringLong("out", "", "output XLSX path (default <dir>/"+defaultWorkbookName+")")
		jsonOut  = fs.StringLong("json", "", "also write records as JSON to this path")
		workers  = fs.IntLong("workers", cfg.Pipeline.Workers, "documents processed concurrently")
		lexicon  = fs.StringLong("lexicon", cfg.Extract.LexiconFile, "YAML file extending the built-in lexicon")
		dsn      = fs.StringLong("db", cfg.Archive.DSN, "archive runs to sqlite://... or postgres://...")
		exts     = fs.StringLong("ext", "", "comma-separated file extensions to include (default pdf,png,jpg,jpeg)")
		maxPages = fs.IntLong("max-pages", cfg.Extract.MaxPages, "read at most this many PDF pages (0 = all)")
		hidden   = fs.BoolLong("include-hidden", "include dot-files and dot-directories")
		quiet    = fs.BoolLong("quiet", "do not print the summary tables")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("INVOICE")); err != nil {
		printError("%s\n", ffhelp.Flags(fs))
		printError("error: %v\n", err)
		os.Exit(1)
	}

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(*dir, defaultWorkbookName)
	}
	cfg.Extract.BuyerKeyword = strings.TrimSpace(*buyer)
	cfg.Extract.LexiconFile = *lexicon
	cfg.Extract.MaxPages = *maxPages
	cfg.Pipeline.Workers = *workers
	cfg.Pipeline.SkipHidden = cfg.Pipeline.SkipHidden && !*hidden
	cfg.Archive.DSN = *dsn
	if err := cfg.Validate(); err != nil {
		printError("Error: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so the summary on stdout stays readable
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, runArgs{
		dir:     *dir,
		out:     *out,
		jsonOut: *jsonOut,
		exts:    *exts,
		quiet:   *quiet,
	}, logger); err != nil {
		logger.Error("invoice-batch.failed", "error", err)
		os.Exit(1)
	}
}

type runArgs struct {
	dir, out, jsonOut, exts string
	quiet                   bool
}

func run(ctx context.Context, cfg *common.Config, args runArgs, logger *slog.Logger) error {
	lex := extract.DefaultLexicon()
	if cfg.Extract.LexiconFile != "" {
		l, err := extract.LoadLexicon(cfg.Extract.LexiconFile)
		if err != nil {
			return fmt.Errorf("load lexicon: %w", err)
		}
		lex = l
		logger.Info("lexicon loaded", "path", cfg.Extract.LexiconFile)
	}

	docs, stats, err := ingest.ListDocuments(args.dir, ingest.Options{
		Extensions: ingest.ExtSet(strings.Split(args.exts, ",")),
		SkipHidden: cfg.Pipeline.SkipHidden,
	}, logger)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		logger.Warn("no documents found", "dir", args.dir, "scanned", stats.Scanned)
	}

	builder := extract.NewBuilder(extract.Config{BuyerKeyword: cfg.Extract.BuyerKeyword, Lexicon: lex}, logger)
	reader := textsource.NewReader(textsource.Config{MaxPages: cfg.Extract.MaxPages}, logger)

	events := make(chan pipeline.Event)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			logger.Info("progress",
				"done", ev.Done, "total", ev.Total,
				"filename", ev.Document.Filename, "status", ev.Status,
			)
		}
	}()

	processor := pipeline.NewProcessor(builder, reader, logger,
		pipeline.WithWorkers(cfg.Pipeline.Workers),
		pipeline.WithEvents(events),
	)
	outcome, err := processor.Run(ctx, docs)
	close(events)
	wg.Wait()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	if err := writeFile(args.out, func(f *os.File) error {
		return export.NewWorkbookWriter(logger).Write(f, outcome.Records, &outcome.Report)
	}); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	logger.Info("workbook written", "path", args.out, "rows", len(outcome.Records))

	if args.jsonOut != "" {
		if err := writeFile(args.jsonOut, func(f *os.File) error {
			return export.WriteJSON(f, outcome.Records, &outcome.Report, logger)
		}); err != nil {
			// the workbook is already on disk; a bad JSON export does not fail the run
			logger.Error("json export failed", "path", args.jsonOut, "error", err)
		}
	}

	if cfg.Archive.DSN != "" {
		if err := archive(ctx, cfg.Archive.DSN, outcome, logger); err != nil {
			logger.Error("archive failed", "error", err)
		}
	}

	if !args.quiet {
		if err := export.WriteSummary(os.Stdout, &outcome.Report); err != nil {
			return fmt.Errorf("summary: %w", err)
		}
	}
	return nil
}

func archive(ctx context.Context, dsn string, outcome *pipeline.Outcome, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	db, err := repo.Open(ctx, repo.Config{DSN: dsn}, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	runs := repo.NewRunRepository(db, logger)
	if err := runs.Migrate(ctx); err != nil {
		return err
	}
	return runs.SaveRun(ctx, &outcome.Report, outcome.Records)
}

// writeFile writes through a temp file in the target directory and renames it into place.
func writeFile(path string, write func(*os.File) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if err = write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Join(err, fmt.Errorf("rename %s", tmp.Name()))
	}
	return nil
}
