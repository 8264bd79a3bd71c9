package pipeline

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/invoice-ledger/constants"
	"github.com/joseph-ayodele/invoice-ledger/internal/batch"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
	"github.com/joseph-ayodele/invoice-ledger/internal/extract"
	"github.com/joseph-ayodele/invoice-ledger/internal/ingest"
)

// Event reports the completion of one document. Events arrive in completion order,
// which is not the batch order when more than one worker is running.
type Event struct {
	Done     int // documents finished so far, this one included
	Total    int
	Document entity.Document
	Status   constants.DocStatus
	Err      error
	Duration time.Duration
}

// Outcome is the result of one batch run.
type Outcome struct {
	Results    []extract.Result   // one per document, batch order
	Records    []entity.Invoice   // deduplicated, batch order
	Duplicates []entity.Duplicate // dropped records, batch order
	Report     batch.Report
	Failed     int
}

// Processor runs extraction over a batch of documents, then deduplication and aggregation.
type Processor struct {
	builder *extract.Builder
	source  extract.TextSource
	logger  *slog.Logger
	workers int
	events  chan<- Event
}

type Option func(*Processor)

func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithEvents delivers a progress Event per document on ch. Sends block, so the consumer
// must keep reading until Run returns; ch is not closed by the processor.
func WithEvents(ch chan<- Event) Option {
	return func(p *Processor) {
		p.events = ch
	}
}

func NewProcessor(builder *extract.Builder, source extract.TextSource, logger *slog.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Processor{
		builder: builder,
		source:  source,
		logger:  logger,
		workers: 4,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Extract builds one result per document, in the order of docs. Document failures never
// abort the batch; only cancellation of ctx does.
func (p *Processor) Extract(ctx context.Context, docs []entity.Document) ([]extract.Result, error) {
	results := make([]extract.Result, len(docs))
	finished := make(chan int, len(docs))
	emitted := make(chan struct{})
	go func() {
		defer close(emitted)
		n := 0
		for i := range finished {
			n++
			p.emit(ctx, Event{
				Done:     n,
				Total:    len(docs),
				Document: docs[i],
				Status:   results[i].Status,
				Err:      results[i].Err,
				Duration: results[i].Duration,
			})
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := range docs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			res := p.builder.Process(gctx, p.source, docs[i])
			results[i] = res
			p.logDocument(docs[i], res)
			finished <- i
			return nil
		})
	}
	err := g.Wait()
	close(finished)
	<-emitted
	if err == nil {
		err = ctx.Err()
	}
	return results, err
}

func (p *Processor) emit(ctx context.Context, ev Event) {
	if p.events == nil {
		return
	}
	select {
	case p.events <- ev:
	case <-ctx.Done():
	}
}

func (p *Processor) logDocument(doc entity.Document, res extract.Result) {
	if res.Err != nil {
		p.logger.Warn("pipeline.document.failed",
			"folder", doc.Folder, "filename", doc.Filename,
			"parse_error", extract.IsParseError(res.Err),
			"elapsed_ms", res.Duration.Milliseconds(), "error", res.Err)
		return
	}
	p.logger.Info("pipeline.document.ok",
		"folder", doc.Folder, "filename", doc.Filename, "status", res.Status,
		"invoice_number", res.Invoice.InvoiceNumber, "amount", res.Invoice.Amount,
		"amount_rule", res.AmountRule, "elapsed_ms", res.Duration.Milliseconds())
}

// Run processes docs end to end: sort into batch order, extract, deduplicate, aggregate.
// The returned report carries a fresh run ID and the wall time of the whole run.
func (p *Processor) Run(ctx context.Context, docs []entity.Document) (*Outcome, error) {
	start := time.Now()
	docs = slices.Clone(docs)
	ingest.SortDocuments(docs)

	p.logger.Info("pipeline.run.start", "documents", len(docs), "workers", p.workers)
	results, err := p.Extract(ctx, docs)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Results: results}
	records := make([]entity.Invoice, len(results))
	for i, r := range results {
		records[i] = r.Record()
		if r.Err != nil {
			out.Failed++
		}
	}

	out.Records, out.Duplicates = batch.NewDeduplicator(p.logger).Deduplicate(records)
	out.Report = batch.Aggregate(out.Records)
	out.Report.RunID = uuid.New()
	out.Report.Duplicates = out.Duplicates
	out.Report.Elapsed = time.Since(start)

	p.logger.Info("pipeline.run.ok",
		"run_id", out.Report.RunID.String(),
		"documents", len(docs),
		"kept", len(out.Records),
		"duplicates", len(out.Duplicates),
		"failed", out.Failed,
		"elapsed_ms", out.Report.Elapsed.Milliseconds(),
	)
	return out, nil
}
