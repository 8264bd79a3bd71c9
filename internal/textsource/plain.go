package textsource

import (
	"fmt"
	"os"
	"unicode/utf8"
)

// plainText reads already-extracted text; used for fixtures and re-runs.
func (r *Reader) plainText(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return ExtractionResult{}, fmt.Errorf("read text: %w", err)
	}
	if !utf8.Valid(b) {
		return ExtractionResult{}, fmt.Errorf("read text: %s is not valid UTF-8", path)
	}
	return ExtractionResult{Text: string(b), Pages: 1, Method: "plain-text"}, nil
}
