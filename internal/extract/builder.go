package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/joseph-ayodele/invoice-ledger/constants"
	"github.com/joseph-ayodele/invoice-ledger/internal/common"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

// Config holds per-run inputs of the record builder.
type Config struct {
	BuyerKeyword string   // may be empty
	Lexicon      *Lexicon // nil -> DefaultLexicon()
}

// Builder turns the text of one document into an entity.Invoice.
// It holds no mutable state and is safe for concurrent use.
type Builder struct {
	cfg     Config
	parties *PartyResolver
	logger  *slog.Logger
}

func NewBuilder(cfg Config, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Lexicon == nil {
		cfg.Lexicon = DefaultLexicon()
	}
	return &Builder{cfg: cfg, parties: NewPartyResolver(cfg.Lexicon), logger: logger}
}

// Result is the outcome for one document. A failed result still converts to a row via Record.
type Result struct {
	Invoice    entity.Invoice
	Status     constants.DocStatus
	AmountRule string
	Duration   time.Duration
	Err        error
}

// Record collapses the result into the record written to the report. On failure only the
// document identity and a "parse error: ..." note survive.
func (r Result) Record() entity.Invoice {
	if r.Err == nil {
		return r.Invoice
	}
	return entity.Invoice{
		Folder:   r.Invoice.Folder,
		Filename: r.Invoice.Filename,
		FileType: r.Invoice.FileType,
		Note:     constants.ParseErrorPrefix + r.Err.Error(),
	}
}

// Build evaluates all rules against text. filename feeds the last-resort amount rule.
func (b *Builder) Build(text, filename string) (entity.Invoice, string) {
	var inv entity.Invoice
	ExtractPatterns(text, &inv)

	p := b.parties.Resolve(text, b.cfg.BuyerKeyword, inv.SellerTaxID)
	inv.BuyerName = b.cfg.Lexicon.NormalizeName(p.Buyer)
	inv.SellerName = b.cfg.Lexicon.NormalizeName(p.Seller)

	var rule string
	inv.Amount, rule = ResolveAmount(text, filename)
	return inv, rule
}

// Process acquires the text of doc from src and builds its record. Failures, including
// panics raised while evaluating rules, are returned in Result.Err rather than propagated.
func (b *Builder) Process(ctx context.Context, src TextSource, doc entity.Document) (res Result) {
	start := time.Now()
	res.Invoice = doc.Blank()
	defer func() {
		if rec := recover(); rec != nil {
			b.logger.Error("extract.panic", "filename", doc.Filename, "panic", rec, "stack", string(debug.Stack()))
			res.Err = fmt.Errorf("%w: %v", common.ErrParse, rec)
			res.Status = constants.DocStatusFailed
		}
		res.Duration = time.Since(start)
	}()

	var text string
	if doc.FileType.HasText() {
		t, err := src.Text(ctx, doc)
		if err != nil {
			b.logger.Warn("extract.text.failed", "folder", doc.Folder, "filename", doc.Filename, "error", err)
			res.Err = err
			res.Status = constants.DocStatusFailed
			return res
		}
		text = t
		res.Status = constants.DocStatusOK
	} else {
		res.Status = constants.DocStatusNoText
	}

	inv, rule := b.Build(text, doc.Filename)
	inv.Folder, inv.Filename, inv.FileType = doc.Folder, doc.Filename, string(doc.FileType)
	res.Invoice = inv
	res.AmountRule = rule

	b.logger.Debug("extract.ok",
		"folder", doc.Folder, "filename", doc.Filename,
		"invoice_number", inv.InvoiceNumber, "amount", inv.Amount, "amount_rule", rule,
		"seller", inv.SellerName,
	)
	return res
}

// IsParseError reports whether err came from rule evaluation rather than text acquisition.
func IsParseError(err error) bool {
	return errors.Is(err, common.ErrParse)
}
