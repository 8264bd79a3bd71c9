package export

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-ledger/internal/batch"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

const (
	InvoiceSheet   = "发票清单"
	SummarySheet   = "统计"
	DuplicateSheet = "重复发票"
)

// Column order of the invoice sheet.
var invoiceHeaders = []string{
	"序号", "文件夹", "文件名", "发票代码", "发票号码", "开票日期", "购买方", "购买方税号",
	"销售方", "销售方税号", "项目内容", "金额", "备注",
}

var invoiceWidths = []float64{6, 26, 36, 14, 18, 11, 22, 16, 28, 16, 18, 10, 12}

// InvoiceRow flattens a record into the invoice sheet's columns; index is 1-based.
func InvoiceRow(index int, inv entity.Invoice) []any {
	return []any{
		index, inv.Folder, inv.Filename, inv.InvoiceCode, inv.InvoiceNumber, inv.IssueDate,
		inv.BuyerName, inv.BuyerTaxID, inv.SellerName, inv.SellerTaxID, inv.ItemDescription,
		inv.Amount, inv.Note,
	}
}

// WorkbookWriter renders a batch into an XLSX workbook.
type WorkbookWriter struct {
	logger *slog.Logger
}

func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// Write renders the invoice sheet plus summary and duplicate sheets to w.
func (ww *WorkbookWriter) Write(w io.Writer, records []entity.Invoice, rep *batch.Report) error {
	start := time.Now()
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			ww.logger.Warn("export.xlsx.close", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", InvoiceSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	st, err := newStyles(f)
	if err != nil {
		return err
	}
	if err := writeInvoiceSheet(f, st, records); err != nil {
		return err
	}
	if rep != nil {
		if err := writeSummarySheet(f, st, rep); err != nil {
			return err
		}
		if err := writeDuplicateSheet(f, st, rep.Duplicates); err != nil {
			return err
		}
	}
	idx, _ := f.GetSheetIndex(InvoiceSheet)
	f.SetActiveSheet(idx)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	ww.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

type styles struct {
	header int
	cell   int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 10, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    border,
	})
	if err != nil {
		return styles{}, fmt.Errorf("header style: %w", err)
	}
	cell, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center"},
		Border:    border,
	})
	if err != nil {
		return styles{}, fmt.Errorf("cell style: %w", err)
	}
	return styles{header: header, cell: cell}, nil
}

func writeInvoiceSheet(f *excelize.File, st styles, records []entity.Invoice) error {
	sheet := InvoiceSheet
	if err := writeHeader(f, sheet, invoiceHeaders, st.header); err != nil {
		return err
	}
	for i, inv := range records {
		row := i + 2
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := InvoiceRow(i+1, inv)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}
	if len(records) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(invoiceHeaders), len(records)+1)
		if err := f.SetCellStyle(sheet, "A2", last, st.cell); err != nil {
			return err
		}
	}
	for i, wdt := range invoiceWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(sheet, col, col, wdt)
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeSummarySheet(f *excelize.File, st styles, rep *batch.Report) error {
	sheet := SummarySheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, []string{"指标", "值"}, st.header); err != nil {
		return err
	}
	mean := "N/A"
	if m, ok := rep.AmountMean(); ok {
		mean = m.StringFixed(2)
	}
	rows := [][]any{
		{"批次", rep.RunID.String()},
		{"总文件数", rep.Documents},
		{"PDF发票数", rep.PDFs},
		{"其他文件", rep.Others},
		{"发票号码识别率", rateCell(rep.InvoiceNumberRate)},
		{"销售方识别率", rateCell(rep.SellerRate)},
		{"金额识别率", rateCell(rep.AmountRate)},
		{"总金额", rep.AmountSum.StringFixed(2)},
		{"平均金额", mean},
		{"重复发票", len(rep.Duplicates)},
		{"总耗时(秒)", strconv.FormatFloat(rep.Elapsed.Seconds(), 'f', 2, 64)},
	}
	row := 2
	for _, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
		row++
	}

	row++
	for _, block := range []struct {
		title  string
		groups []batch.Group
	}{
		{"项目内容 Top 10", rep.TopItems},
		{"销售方 Top 5", rep.TopSellers},
	} {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &[]any{block.title, "张数", "金额"}); err != nil {
			return err
		}
		end, _ := excelize.CoordinatesToCellName(3, row)
		_ = f.SetCellStyle(sheet, cell, end, st.header)
		row++
		for _, g := range block.groups {
			cell, _ := excelize.CoordinatesToCellName(1, row)
			if err := f.SetSheetRow(sheet, cell, &[]any{g.Label, g.Count, g.Amount.StringFixed(2)}); err != nil {
				return err
			}
			row++
		}
		row++
	}
	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "C", 40)
	return nil
}

func writeDuplicateSheet(f *excelize.File, st styles, dups []entity.Duplicate) error {
	if len(dups) == 0 {
		return nil
	}
	sheet := DuplicateSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := writeHeader(f, sheet, []string{"唯一标识", "原始文件", "重复文件"}, st.header); err != nil {
		return err
	}
	for i, d := range dups {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &[]any{d.Key, d.OriginalFilename, d.DuplicateFilename}); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 34)
	_ = f.SetColWidth(sheet, "B", "C", 40)
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}

func rateCell(r batch.Rate) string {
	pct, ok := r.Percent()
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%d/%d (%.1f%%)", r.Hits, r.Total, pct)
}
