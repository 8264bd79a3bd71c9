package entity

// Invoice is the structured record produced for one document. Every field is optional;
// an empty string means the corresponding rule found nothing.
type Invoice struct {
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
	FileType string `json:"file_type"`

	InvoiceNumber string `json:"invoice_number,omitempty"`
	InvoiceCode   string `json:"invoice_code,omitempty"`
	VerifyCode    string `json:"verify_code,omitempty"`
	IssueDate     string `json:"issue_date,omitempty"` // YYYY-MM-DD

	BuyerName   string `json:"buyer_name,omitempty"`
	BuyerTaxID  string `json:"buyer_tax_id,omitempty"`
	SellerName  string `json:"seller_name,omitempty"`
	SellerTaxID string `json:"seller_tax_id,omitempty"`

	ItemDescription string `json:"item_description,omitempty"`
	Amount          string `json:"amount,omitempty"` // decimal, separators stripped
	Note            string `json:"note,omitempty"`
}

// DedupKey is "code_number" when both are present, the number alone when only it is,
// and empty otherwise. Records with an empty key are never treated as duplicates.
func (i *Invoice) DedupKey() string {
	if i.InvoiceNumber == "" {
		return ""
	}
	if i.InvoiceCode != "" {
		return i.InvoiceCode + "_" + i.InvoiceNumber
	}
	return i.InvoiceNumber
}

// Duplicate references a record dropped because an earlier record had the same DedupKey.
type Duplicate struct {
	Key               string `json:"key"`
	OriginalFilename  string `json:"original_filename"`
	DuplicateFilename string `json:"duplicate_filename"`
	InvoiceNumber     string `json:"invoice_number"`
	InvoiceCode       string `json:"invoice_code,omitempty"`
}
