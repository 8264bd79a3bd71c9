package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-ledger/internal/batch"
	"github.com/joseph-ayodele/invoice-ledger/internal/common"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

func sampleRecords() []entity.Invoice {
	return []entity.Invoice{
		{
			Folder: ".", Filename: "freight.pdf", FileType: ".PDF",
			InvoiceNumber: "24442000000123456789", IssueDate: "2024-03-05",
			BuyerName: "ACME物流有限公司", SellerName: "北京云杉科技有限公司",
			SellerTaxID: "92440101MA59ABCD3E", ItemDescription: "*运输服务*运费", Amount: "1234.56",
		},
		{
			Folder: "toll", Filename: "road.pdf", FileType: ".PDF",
			InvoiceCode: "144031900111", InvoiceNumber: "12345678", VerifyCode: "12345678901234567890",
			Amount: "35",
		},
		{Folder: "toll", Filename: "broken.pdf", FileType: ".PDF", Note: "parse error: encrypted"},
	}
}

func sampleReport(records []entity.Invoice) *batch.Report {
	rep := batch.Aggregate(records)
	rep.RunID = uuid.MustParse("5f0c8f9e-4b6c-4d7e-9a51-2f3b1c0d9e7a")
	rep.Duplicates = []entity.Duplicate{{Key: "24442000000123456789", OriginalFilename: "freight.pdf", DuplicateFilename: "freight (1).pdf", InvoiceNumber: "24442000000123456789"}}
	rep.Elapsed = 1500 * time.Millisecond
	return &rep
}

var _ = Describe("WorkbookWriter", func() {
	var (
		records []entity.Invoice
		f       *excelize.File
	)

	BeforeEach(func() {
		records = sampleRecords()
		var buf bytes.Buffer
		Expect(NewWorkbookWriter(nil).Write(&buf, records, sampleReport(records))).To(Succeed())

		var err error
		f, err = excelize.OpenReader(&buf)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(f.Close)
	})

	It("should write the invoice, summary and duplicate sheets", func() {
		Expect(f.GetSheetList()).To(Equal([]string{InvoiceSheet, SummarySheet, DuplicateSheet}))
	})

	It("should write one row per record under the header", func() {
		rows, err := f.GetRows(InvoiceSheet)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(4))
		Expect(rows[0]).To(Equal(invoiceHeaders))
		Expect(rows[1][0]).To(Equal("1"))
		Expect(rows[1][4]).To(Equal("24442000000123456789"))
		Expect(rows[1][11]).To(Equal("1234.56"))
		Expect(rows[2][3]).To(Equal("144031900111"))
		Expect(rows[3][12]).To(Equal("parse error: encrypted"))
	})

	It("should summarize the run", func() {
		rows, err := f.GetRows(SummarySheet)
		Expect(err).NotTo(HaveOccurred())
		values := map[string]string{}
		for _, r := range rows {
			if len(r) >= 2 {
				values[r[0]] = r[1]
			}
		}
		Expect(values["总文件数"]).To(Equal("3"))
		Expect(values["发票号码识别率"]).To(Equal("2/3 (66.7%)"))
		Expect(values["总金额"]).To(Equal("1269.56"))
		Expect(values["重复发票"]).To(Equal("1"))
	})

	It("should list duplicates", func() {
		rows, err := f.GetRows(DuplicateSheet)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[1]).To(Equal([]string{"24442000000123456789", "freight.pdf", "freight (1).pdf"}))
	})
})

var _ = Describe("WriteJSON", func() {
	It("should write report and records", func() {
		records := sampleRecords()
		var buf bytes.Buffer
		Expect(WriteJSON(&buf, records, sampleReport(records), nil)).To(Succeed())

		var doc struct {
			Report  map[string]any   `json:"report"`
			Records []entity.Invoice `json:"records"`
		}
		Expect(json.Unmarshal(buf.Bytes(), &doc)).To(Succeed())
		Expect(doc.Records).To(Equal(records))
		Expect(doc.Report["run_id"]).To(Equal("5f0c8f9e-4b6c-4d7e-9a51-2f3b1c0d9e7a"))
		Expect(doc.Report["amount_sum"]).To(Equal("1269.56"))
	})

	It("should write an empty list for an empty batch", func() {
		var buf bytes.Buffer
		Expect(WriteJSON(&buf, nil, nil, nil)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring(`"records": []`))
	})

	It("should refuse invalid records and write nothing", func() {
		var buf bytes.Buffer
		records := []entity.Invoice{{Folder: ".", Filename: "bad.pdf", InvoiceNumber: "12345678"}}
		err := WriteJSON(&buf, records, nil, nil)
		Expect(err).To(MatchError(common.ErrValidation))
		Expect(buf.Len()).To(BeZero())
	})
})

var _ = Describe("ValidateRecords", func() {
	DescribeTable("record shapes",
		func(inv entity.Invoice, valid bool) {
			inv.Folder, inv.Filename = ".", "x.pdf"
			violations := ValidateRecords([]entity.Invoice{inv})
			if valid {
				Expect(violations).To(BeEmpty())
			} else {
				Expect(violations).To(HaveLen(1))
				Expect(violations[0].Filename).To(Equal("x.pdf"))
			}
		},
		Entry("empty record", entity.Invoice{}, true),
		Entry("20-digit number", entity.Invoice{InvoiceNumber: "24442000000123456789"}, true),
		Entry("8-digit number with code", entity.Invoice{InvoiceCode: "144031900111", InvoiceNumber: "12345678"}, true),
		Entry("8-digit number without code", entity.Invoice{InvoiceNumber: "12345678"}, false),
		Entry("malformed number", entity.Invoice{InvoiceNumber: "12345"}, false),
		Entry("impossible date", entity.Invoice{IssueDate: "2024-02-30"}, false),
		Entry("lowercase tax ID", entity.Invoice{SellerTaxID: "92440101ma59abcd3e"}, false),
		Entry("amount with separators", entity.Invoice{Amount: "1,234.56"}, false),
		Entry("plain amount", entity.Invoice{Amount: "1234.56"}, true),
	)
})

var _ = Describe("WriteSummary", func() {
	It("should print metrics, duplicates and rankings", func() {
		records := sampleRecords()
		var buf bytes.Buffer
		Expect(WriteSummary(&buf, sampleReport(records))).To(Succeed())
		out := buf.String()
		Expect(out).To(ContainSubstring("5f0c8f9e-4b6c-4d7e-9a51-2f3b1c0d9e7a"))
		Expect(out).To(ContainSubstring("66.7% (2/3)"))
		Expect(out).To(ContainSubstring("1,269.56"))
		Expect(out).To(ContainSubstring("freight (1).pdf"))
		Expect(out).To(ContainSubstring("Top sellers"))
		Expect(out).To(ContainSubstring("1.5s"))
	})

	It("should print N/A for an empty batch", func() {
		rep := batch.Aggregate(nil)
		var buf bytes.Buffer
		Expect(WriteSummary(&buf, &rep)).To(Succeed())
		Expect(strings.Count(buf.String(), "N/A")).To(Equal(5))
		Expect(buf.String()).NotTo(ContainSubstring("Duplicates ("))
	})

	It("should collapse long duplicate lists", func() {
		rep := batch.Report{}
		for range 12 {
			rep.Duplicates = append(rep.Duplicates, entity.Duplicate{Key: "k", OriginalFilename: "a", DuplicateFilename: "b"})
		}
		var buf bytes.Buffer
		Expect(WriteSummary(&buf, &rep)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring("... and 2 more"))
	})

	It("should accept a zero amount", func() {
		Expect(money(decimal.Zero)).To(Equal("0.00"))
	})
})
