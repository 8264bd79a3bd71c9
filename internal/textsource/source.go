package textsource

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/invoice-ledger/constants"
	"github.com/joseph-ayodele/invoice-ledger/internal/common"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

type Config struct {
	MaxPages int // 0 = no limit
}

type ExtractionResult struct {
	Text     string
	Pages    int
	Method   string // "pdf-text" | "plain-text"
	Duration time.Duration
}

// Reader reads document text. It implements extract.TextSource.
type Reader struct {
	cfg    Config
	logger *slog.Logger
}

func NewReader(cfg Config, logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxPages < 0 {
		cfg.MaxPages = 0
	}
	return &Reader{cfg: cfg, logger: logger}
}

// Text returns the text of doc, every page concatenated in reading order.
func (r *Reader) Text(ctx context.Context, doc entity.Document) (string, error) {
	res, err := r.Extract(ctx, doc.Path, doc.FileType)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Extract picks a strategy based on file type.
func (r *Reader) Extract(ctx context.Context, path string, ft constants.FileType) (ExtractionResult, error) {
	start := time.Now()
	r.logger.Debug("textsource.start", "path", path, "file_type", ft)

	var (
		res ExtractionResult
		err error
	)
	switch ft {
	case constants.PDF:
		res, err = r.pdfText(ctx, path)
	case constants.TXT:
		res, err = r.plainText(path)
	default:
		if ft.IsImage() {
			return ExtractionResult{}, fmt.Errorf("%w: %s has no text layer", common.ErrUnsupported, ft)
		}
		return ExtractionResult{}, fmt.Errorf("%w: %q", common.ErrUnsupported, ft)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, common.WrapError(err, filepath.Base(path))
	}
	res.Text = Normalize(res.Text)
	r.logger.Debug("textsource.ok", "path", path, "method", res.Method, "pages", res.Pages,
		"chars", len(res.Text), "elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}
