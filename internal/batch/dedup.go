package batch

import (
	"log/slog"

	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

// Deduplicator collapses records that share a DedupKey. It owns the key index for exactly
// one run; create a new one per batch.
type Deduplicator struct {
	index  map[string]*entity.Invoice
	logger *slog.Logger
}

func NewDeduplicator(logger *slog.Logger) *Deduplicator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deduplicator{index: map[string]*entity.Invoice{}, logger: logger}
}

// Deduplicate walks records in the given order, which must already be the (folder, filename)
// batch order. The first record of each key is kept; later ones are returned as duplicates
// referencing it. Records without a key are always kept.
func (d *Deduplicator) Deduplicate(records []entity.Invoice) ([]entity.Invoice, []entity.Duplicate) {
	kept := make([]entity.Invoice, 0, len(records))
	var dups []entity.Duplicate

	for i := range records {
		rec := &records[i]
		key := rec.DedupKey()
		if key == "" {
			kept = append(kept, *rec)
			continue
		}
		if first, ok := d.index[key]; ok {
			dups = append(dups, entity.Duplicate{
				Key:               key,
				OriginalFilename:  first.Filename,
				DuplicateFilename: rec.Filename,
				InvoiceNumber:     rec.InvoiceNumber,
				InvoiceCode:       rec.InvoiceCode,
			})
			d.logger.Warn("batch.dedup.duplicate", "key", key, "original", first.Filename, "duplicate", rec.Filename)
			continue
		}
		d.index[key] = rec
		kept = append(kept, *rec)
	}

	d.logger.Info("batch.dedup.done",
		"input", len(records),
		"kept", len(kept),
		"duplicates", len(dups),
	)
	return kept, dups
}
