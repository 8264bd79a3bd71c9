package entity

import "github.com/joseph-ayodele/invoice-ledger/constants"

// Document identifies one input file of a batch.
type Document struct {
	Folder   string             `json:"folder"` // relative to the scan root, "." for the root itself
	Filename string             `json:"filename"`
	FileType constants.FileType `json:"file_type"`
	Path     string             `json:"path"`
}

// Blank returns a record carrying only this document's identity columns.
func (d Document) Blank() Invoice {
	return Invoice{Folder: d.Folder, Filename: d.Filename, FileType: string(d.FileType)}
}
