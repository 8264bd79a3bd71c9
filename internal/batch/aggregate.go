package batch

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-ledger/constants"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

// Rate is a recognition count over a denominator.
type Rate struct {
	Hits  int `json:"hits"`
	Total int `json:"total"`
}

// Percent returns the rate in percent; ok is false when there is nothing to divide by.
func (r Rate) Percent() (pct float64, ok bool) {
	if r.Total == 0 {
		return 0, false
	}
	return float64(r.Hits) / float64(r.Total) * 100, true
}

// Group is one row of a top-N breakdown.
type Group struct {
	Label  string          `json:"label"`
	Count  int             `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Report summarizes a deduplicated batch.
type Report struct {
	RunID uuid.UUID `json:"run_id"`

	Documents int `json:"documents"`
	PDFs      int `json:"pdfs"`
	Others    int `json:"others"`

	// invoice number and seller are measured over PDFs, amount over all documents
	InvoiceNumberRate Rate `json:"invoice_number_rate"`
	SellerRate        Rate `json:"seller_rate"`
	AmountRate        Rate `json:"amount_rate"`

	AmountSum   decimal.Decimal `json:"amount_sum"`
	AmountCount int             `json:"amount_count"` // amounts that parsed as decimals

	Duplicates []entity.Duplicate `json:"duplicates"`
	TopItems   []Group            `json:"top_items"`
	TopSellers []Group            `json:"top_sellers"`

	// set by the caller around the whole run
	Elapsed time.Duration `json:"elapsed_ns"`
}

// AmountMean returns the mean of the parsed amounts; ok is false for an empty sample.
func (r *Report) AmountMean() (decimal.Decimal, bool) {
	if r.AmountCount == 0 {
		return decimal.Zero, false
	}
	return r.AmountSum.Div(decimal.NewFromInt(int64(r.AmountCount))), true
}

// PerDocument returns the mean elapsed time per document; ok is false for an empty batch.
func (r *Report) PerDocument() (time.Duration, bool) {
	if r.Documents == 0 {
		return 0, false
	}
	return r.Elapsed / time.Duration(r.Documents), true
}

// Aggregate computes counts, recognition rates, amount totals and the item and seller
// breakdowns of records. It does not touch RunID, Duplicates or Elapsed.
func Aggregate(records []entity.Invoice) Report {
	rep := Report{Documents: len(records)}
	items := newGrouper()
	sellers := newGrouper()

	for i := range records {
		rec := &records[i]
		if rec.FileType == string(constants.PDF) {
			rep.PDFs++
			rep.InvoiceNumberRate.Total++
			rep.SellerRate.Total++
			if rec.InvoiceNumber != "" {
				rep.InvoiceNumberRate.Hits++
			}
			if sellerRecognized(rec.SellerName) {
				rep.SellerRate.Hits++
			}
		}
		rep.AmountRate.Total++
		if rec.Amount != "" {
			rep.AmountRate.Hits++
		}

		amt, ok := parseAmount(rec.Amount)
		if ok {
			rep.AmountSum = rep.AmountSum.Add(amt)
			rep.AmountCount++
		}

		item := rec.ItemDescription
		if item == "" {
			item = constants.Unrecognized
		}
		items.add(item, amt)

		seller := rec.SellerName
		if !sellerRecognized(seller) {
			seller = constants.Unrecognized
		}
		sellers.add(seller, amt)
	}
	rep.Others = rep.Documents - rep.PDFs
	rep.TopItems = items.top(constants.TopItems)
	rep.TopSellers = sellers.top(constants.TopSellers)
	return rep
}

// sellerRecognized rejects empty names and item markers that leaked into the seller column.
func sellerRecognized(s string) bool {
	return s != "" && !strings.HasPrefix(s, "*")
}

// parseAmount yields zero for a missing or non-numeric amount.
func parseAmount(s string) (decimal.Decimal, bool) {
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// grouper accumulates (count, amount) per label in first-seen order.
type grouper struct {
	order []string
	by    map[string]*Group
}

func newGrouper() *grouper {
	return &grouper{by: map[string]*Group{}}
}

func (g *grouper) add(label string, amt decimal.Decimal) {
	grp, ok := g.by[label]
	if !ok {
		grp = &Group{Label: label}
		g.by[label] = grp
		g.order = append(g.order, label)
	}
	grp.Count++
	grp.Amount = grp.Amount.Add(amt)
}

// top sorts by amount descending; equal amounts keep first-seen order.
func (g *grouper) top(n int) []Group {
	out := make([]Group, 0, len(g.order))
	for _, label := range g.order {
		out = append(out, *g.by[label])
	}
	slices.SortStableFunc(out, func(a, b Group) int {
		return b.Amount.Cmp(a.Amount)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
