package constants

// DocStatus is the outcome of extracting a single document.
type DocStatus string

const (
	DocStatusOK     DocStatus = "OK"      // text read and rules evaluated
	DocStatusNoText DocStatus = "NO_TEXT" // image or other text-less type, filename rules only
	DocStatusFailed DocStatus = "FAILED"  // degraded to a note-only record
)
