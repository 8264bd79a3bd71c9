package extract

import (
	"context"

	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

// TextSource supplies the full text of a document, all pages concatenated in reading order.
type TextSource interface {
	Text(ctx context.Context, doc entity.Document) (string, error)
}

// TextSourceFunc adapts a plain function to TextSource.
type TextSourceFunc func(ctx context.Context, doc entity.Document) (string, error)

func (f TextSourceFunc) Text(ctx context.Context, doc entity.Document) (string, error) {
	return f(ctx, doc)
}
