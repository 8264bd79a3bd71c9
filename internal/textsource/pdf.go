package textsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

func (r *Reader) pdfText(ctx context.Context, path string) (ExtractionResult, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		if err := doc.Close(); err != nil {
			r.logger.Warn("textsource.pdf.close", "path", path, "error", err)
		}
	}()

	pages := doc.NumPage()
	if r.cfg.MaxPages > 0 && pages > r.cfg.MaxPages {
		pages = r.cfg.MaxPages
	}

	var b strings.Builder
	for n := 0; n < pages; n++ {
		if err := ctx.Err(); err != nil {
			return ExtractionResult{}, err
		}
		txt, err := doc.Text(n)
		if err != nil {
			return ExtractionResult{}, fmt.Errorf("page %d: %w", n+1, err)
		}
		b.WriteString(txt)
	}
	return ExtractionResult{Text: b.String(), Pages: pages, Method: "pdf-text"}, nil
}
