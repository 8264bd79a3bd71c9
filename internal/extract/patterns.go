package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/invoice-ledger/constants"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

var (
	reNumber20 = regexp.MustCompile(`\b(\d{20})\b`)
	reCode12   = regexp.MustCompile(`\b(\d{12})\b`)
	reNumber8  = regexp.MustCompile(`\b(\d{8})\b`)
	reVerify   = regexp.MustCompile(`(\d{5})[\s\p{Zs}]+(\d{5})[\s\p{Zs}]+(\d{5})[\s\p{Zs}]+(\d{5})`)

	reIssueDate = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	reTaxID     = regexp.MustCompile(`\b[0-9A-Z]{18}\b`)

	reItemFull     = regexp.MustCompile(`\*[^*]+\*[^\n*]+`)
	reItemCategory = regexp.MustCompile(`\*[^*]+\*`)
)

// NumberRule is one step of the invoice identifier chain. Apply fills the identifier fields
// and reports whether it matched; the first matching rule ends the chain.
type NumberRule struct {
	Name  string
	Apply func(text string, inv *entity.Invoice) bool
}

// NumberRules is evaluated in order: a standalone 20-digit number always beats a 12+8 pairing.
var NumberRules = []NumberRule{
	{Name: "number-20", Apply: applyNumber20},
	{Name: "code-12-number-8", Apply: applyCodeAndNumber},
}

func applyNumber20(text string, inv *entity.Invoice) bool {
	m := reNumber20.FindStringSubmatch(text)
	if m == nil {
		return false
	}
	inv.InvoiceNumber = m[1]
	return true
}

// applyCodeAndNumber handles the split scheme of toll invoices. Both tokens must be present
// to populate either. The spaced verification code is picked up on this path only.
func applyCodeAndNumber(text string, inv *entity.Invoice) bool {
	if m := reVerify.FindStringSubmatch(text); m != nil {
		inv.VerifyCode = m[1] + m[2] + m[3] + m[4]
	}
	code := reCode12.FindStringSubmatch(text)
	number := reNumber8.FindStringSubmatch(text)
	if code == nil || number == nil {
		return false
	}
	inv.InvoiceCode = code[1]
	inv.InvoiceNumber = number[1]
	return true
}

// ExtractPatterns fills the identifier, date, tax ID and item fields of inv from text.
// It never fails; a rule that does not match leaves its field empty.
func ExtractPatterns(text string, inv *entity.Invoice) {
	for _, r := range NumberRules {
		if r.Apply(text, inv) {
			break
		}
	}
	inv.IssueDate = IssueDate(text)
	inv.BuyerTaxID, inv.SellerTaxID = TaxIDs(text, inv.InvoiceNumber)
	inv.ItemDescription = ItemDescription(text)
}

// IssueDate returns the first valid "YYYY年M月D日" date as YYYY-MM-DD.
func IssueDate(text string) string {
	for _, m := range reIssueDate.FindAllStringSubmatch(text, -1) {
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		s := fmt.Sprintf("%s-%02d-%02d", m[1], month, day)
		if _, err := time.Parse(time.DateOnly, s); err == nil {
			return s
		}
	}
	return ""
}

// TaxIDs returns the first two standalone 18-character registration identifiers.
// An all-digit token shaped like an invoice number is skipped.
func TaxIDs(text, invoiceNumber string) (buyer, seller string) {
	var valid []string
	for _, t := range reTaxID.FindAllString(text, -1) {
		if isInvoiceNumberShaped(t, invoiceNumber) {
			continue
		}
		valid = append(valid, t)
		if len(valid) == 2 {
			break
		}
	}
	if len(valid) > 0 {
		buyer = valid[0]
	}
	if len(valid) > 1 {
		seller = valid[1]
	}
	return buyer, seller
}

func isInvoiceNumberShaped(token, invoiceNumber string) bool {
	if !allDigits(token) {
		return false
	}
	return len(token) == 20 || (invoiceNumber != "" && token == invoiceNumber)
}

// ItemDescription prefers "*category*label" (newlines removed, 50 characters), then falls back
// to the bare "*category*" token (30 characters).
func ItemDescription(text string) string {
	if m := reItemFull.FindString(text); m != "" {
		m = strings.TrimSpace(m)
		m = strings.NewReplacer("\n", "", "\r", "").Replace(m)
		return truncateRunes(m, constants.ItemFullMaxLen)
	}
	if m := reItemCategory.FindString(text); m != "" {
		return truncateRunes(m, constants.ItemCategoryMaxLen)
	}
	return ""
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
