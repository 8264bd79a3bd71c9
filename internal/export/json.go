package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joseph-ayodele/invoice-ledger/internal/batch"
	"github.com/joseph-ayodele/invoice-ledger/internal/common"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

// Document is the JSON export layout.
type Document struct {
	Report  *batch.Report    `json:"report,omitempty"`
	Records []entity.Invoice `json:"records"`
}

// WriteJSON validates every record and writes the batch as indented JSON. Nothing is
// written when a record fails validation; the returned error wraps common.ErrValidation.
func WriteJSON(w io.Writer, records []entity.Invoice, rep *batch.Report, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if violations := ValidateRecords(records); len(violations) > 0 {
		errs := make([]error, 0, len(violations))
		for _, v := range violations {
			logger.Warn("export.json.invalid", "filename", v.Filename, "error", v.Err)
			errs = append(errs, v)
		}
		return fmt.Errorf("%w: %d invalid record(s): %w", common.ErrValidation, len(violations), errors.Join(errs...))
	}

	if records == nil {
		records = []entity.Invoice{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Document{Report: rep, Records: records}); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	logger.Info("export.json.ok", "rows", len(records))
	return nil
}
