package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-ledger/internal/batch"
)

// duplicates listed before the remainder is collapsed into a count
const summaryDuplicateLimit = 10

// WriteSummary prints the run report as plain-text tables.
func WriteSummary(w io.Writer, rep *batch.Report) error {
	if rep == nil {
		return nil
	}
	p := &printer{w: w}

	p.line("Run %s", rep.RunID)
	stats := newTable(w, []string{"Metric", "Value"})
	mean := "N/A"
	if m, ok := rep.AmountMean(); ok {
		mean = money(m)
	}
	perDoc := "N/A"
	if d, ok := rep.PerDocument(); ok {
		perDoc = d.Round(time.Millisecond).String()
	}
	stats.AppendBulk([][]string{
		{"Documents", humanize.Comma(int64(rep.Documents))},
		{"PDF", humanize.Comma(int64(rep.PDFs))},
		{"Other files", humanize.Comma(int64(rep.Others))},
		{"Invoice number recognized", ratePercent(rep.InvoiceNumberRate)},
		{"Seller recognized", ratePercent(rep.SellerRate)},
		{"Amount recognized", ratePercent(rep.AmountRate)},
		{"Total amount", money(rep.AmountSum)},
		{"Average amount", mean},
		{"Duplicates", strconv.Itoa(len(rep.Duplicates))},
		{"Elapsed", rep.Elapsed.Round(time.Millisecond).String()},
		{"Per document", perDoc},
	})
	stats.Render()

	if n := len(rep.Duplicates); n > 0 {
		p.line("")
		p.line("Duplicates (%d)", n)
		dups := newTable(w, []string{"Key", "Original", "Duplicate"})
		for i, d := range rep.Duplicates {
			if i == summaryDuplicateLimit {
				break
			}
			dups.Append([]string{d.Key, d.OriginalFilename, d.DuplicateFilename})
		}
		dups.Render()
		if n > summaryDuplicateLimit {
			p.line("... and %d more", n-summaryDuplicateLimit)
		}
	}

	writeGroups(p, w, "Top items", rep.TopItems)
	writeGroups(p, w, "Top sellers", rep.TopSellers)
	return p.err
}

func writeGroups(p *printer, w io.Writer, title string, groups []batch.Group) {
	if len(groups) == 0 {
		return
	}
	p.line("")
	p.line("%s", title)
	t := newTable(w, []string{"#", "Label", "Count", "Amount"})
	for i, g := range groups {
		t.Append([]string{strconv.Itoa(i + 1), g.Label, strconv.Itoa(g.Count), money(g.Amount)})
	}
	t.Render()
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	return t
}

func money(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return humanize.FormatFloat("#,###.##", f)
}

func ratePercent(r batch.Rate) string {
	pct, ok := r.Percent()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.1f%% (%d/%d)", pct, r.Hits, r.Total)
}

// printer remembers the first write error so callers can check once.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}
