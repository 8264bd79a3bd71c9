package batch_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/joseph-ayodele/invoice-ledger/internal/batch"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

var _ = Describe("Deduplicator", func() {
	var (
		records []entity.Invoice
		kept    []entity.Invoice
		dups    []entity.Duplicate
	)

	JustBeforeEach(func() {
		kept, dups = batch.NewDeduplicator(nil).Deduplicate(records)
	})

	When("two records share a 20-digit number", func() {
		BeforeEach(func() {
			records = []entity.Invoice{
				{Folder: "a", Filename: "A.pdf", InvoiceNumber: "24442000000123456789"},
				{Folder: "a", Filename: "B.pdf", InvoiceNumber: "24442000000123456789"},
			}
		})

		It("should keep the first and report the second", func() {
			Expect(kept).To(HaveLen(1))
			Expect(kept[0].Filename).To(Equal("A.pdf"))
			Expect(dups).To(Equal([]entity.Duplicate{{
				Key:               "24442000000123456789",
				OriginalFilename:  "A.pdf",
				DuplicateFilename: "B.pdf",
				InvoiceNumber:     "24442000000123456789",
			}}))
		})
	})

	When("records share the number but not the code", func() {
		BeforeEach(func() {
			records = []entity.Invoice{
				{Filename: "A.pdf", InvoiceCode: "144031900111", InvoiceNumber: "12345678"},
				{Filename: "B.pdf", InvoiceCode: "144031900222", InvoiceNumber: "12345678"},
				{Filename: "C.pdf", InvoiceCode: "144031900111", InvoiceNumber: "12345678"},
			}
		})

		It("should key on code and number together", func() {
			Expect(kept).To(HaveLen(2))
			Expect(dups).To(HaveLen(1))
			Expect(dups[0].Key).To(Equal("144031900111_12345678"))
			Expect(dups[0].DuplicateFilename).To(Equal("C.pdf"))
		})
	})

	When("records have no identifier", func() {
		BeforeEach(func() {
			records = []entity.Invoice{
				{Filename: "x.png", Amount: "10"},
				{Filename: "y.png", Amount: "10"},
			}
		})

		It("should keep all of them in order", func() {
			Expect(kept).To(Equal(records))
			Expect(dups).To(BeEmpty())
		})
	})

	When("the batch is empty", func() {
		BeforeEach(func() {
			records = nil
		})

		It("should return nothing", func() {
			Expect(kept).To(BeEmpty())
			Expect(dups).To(BeEmpty())
		})
	})

	It("should not share its index between runs", func() {
		recs := []entity.Invoice{{Filename: "A.pdf", InvoiceNumber: "24442000000123456789"}}
		_, first := batch.NewDeduplicator(nil).Deduplicate(recs)
		_, second := batch.NewDeduplicator(nil).Deduplicate(recs)
		Expect(first).To(BeEmpty())
		Expect(second).To(BeEmpty())
	})
})

var _ = Describe("DedupKey", func() {
	It("should join code and number", func() {
		inv := entity.Invoice{InvoiceCode: "144031900111", InvoiceNumber: "12345678"}
		Expect(inv.DedupKey()).To(Equal("144031900111_12345678"))
	})

	It("should be empty without a number", func() {
		inv := entity.Invoice{InvoiceCode: "144031900111"}
		Expect(inv.DedupKey()).To(BeEmpty())
	})
})
