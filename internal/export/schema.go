package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/invoice-ledger/constants"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

// BuildInvoiceJSONSchema returns the record invariants as a JSON-Schema (draft 2020-12).
func BuildInvoiceJSONSchema() map[string]any {
	str := func() map[string]any { return map[string]any{"type": "string"} }
	pattern := func(p string) map[string]any { return map[string]any{"type": "string", "pattern": p} }
	taxID := pattern(`^[0-9A-Z]{18}$`)

	props := map[string]any{
		"folder":           str(),
		"filename":         map[string]any{"type": "string", "minLength": 1},
		"file_type":        str(),
		"invoice_number":   pattern(`^(\d{20}|\d{8})$`),
		"invoice_code":     pattern(`^\d{12}$`),
		"verify_code":      pattern(`^\d{20}$`),
		"issue_date":       map[string]any{"type": "string", "format": "date"},
		"buyer_name":       str(),
		"buyer_tax_id":     taxID,
		"seller_name":      str(),
		"seller_tax_id":    taxID,
		"item_description": map[string]any{"type": "string", "maxLength": constants.ItemFullMaxLen},
		"amount":           pattern(`^\d+(\.\d+)?$`),
		"note":             str(),
	}

	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"folder", "filename"},
		// an 8-digit number only exists paired with its 12-digit code
		"if": map[string]any{
			"properties": map[string]any{"invoice_number": pattern(`^\d{8}$`)},
			"required":   []string{"invoice_number"},
		},
		"then": map[string]any{"required": []string{"invoice_code"}},
	}
}

var (
	invoiceSchemaOnce sync.Once
	invoiceSchema     *jsonschema.Schema
	invoiceSchemaErr  error
)

func compiledInvoiceSchema() (*jsonschema.Schema, error) {
	invoiceSchemaOnce.Do(func() {
		b, err := json.Marshal(BuildInvoiceJSONSchema())
		if err != nil {
			invoiceSchemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if err := compiler.AddResource("invoice.json", bytes.NewReader(b)); err != nil {
			invoiceSchemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		invoiceSchema, invoiceSchemaErr = compiler.Compile("invoice.json")
	})
	return invoiceSchema, invoiceSchemaErr
}

// Violation is a record that does not satisfy the invoice schema.
type Violation struct {
	Index    int // position in the validated slice
	Filename string
	Err      error
}

func (v Violation) Error() string {
	return fmt.Sprintf("record %d (%s): %v", v.Index+1, v.Filename, v.Err)
}

// ValidateRecord checks one record against the invoice schema.
func ValidateRecord(inv entity.Invoice) error {
	schema, err := compiledInvoiceSchema()
	if err != nil {
		return err
	}
	b, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}

// ValidateRecords returns one Violation per record that fails validation.
func ValidateRecords(records []entity.Invoice) []Violation {
	var out []Violation
	for i, inv := range records {
		if err := ValidateRecord(inv); err != nil {
			out = append(out, Violation{Index: i, Filename: inv.Filename, Err: err})
		}
	}
	return out
}
