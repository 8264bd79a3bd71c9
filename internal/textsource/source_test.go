package textsource

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/joseph-ayodele/invoice-ledger/constants"
	"github.com/joseph-ayodele/invoice-ledger/internal/common"
	"github.com/joseph-ayodele/invoice-ledger/internal/entity"
)

var _ = Describe("Reader", func() {
	var (
		reader *Reader
		dir    string
		ctx    context.Context
	)

	BeforeEach(func() {
		reader = NewReader(Config{}, nil)
		dir = GinkgoT().TempDir()
		ctx = context.Background()
	})

	When("reading a text file", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(dir, "invoice.txt")
			Expect(os.WriteFile(path, []byte("\ufeff北京云杉科技有限公司\r\n圆整 ¥12.00\x00\r\n"), 0o600)).To(Succeed())
		})

		It("should return normalized text", func() {
			text, err := reader.Text(ctx, entity.Document{Filename: "invoice.txt", FileType: constants.TXT, Path: path})
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("北京云杉科技有限公司\n圆整 ¥12.00\n"))
		})

		It("should report the method", func() {
			res, err := reader.Extract(ctx, path, constants.TXT)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Method).To(Equal("plain-text"))
			Expect(res.Pages).To(Equal(1))
		})
	})

	When("the text file is not UTF-8", func() {
		It("should fail", func() {
			path := filepath.Join(dir, "gbk.txt")
			Expect(os.WriteFile(path, []byte{0xb1, 0xb1, 0xbe, 0xa9, 0xff}, 0o600)).To(Succeed())
			_, err := reader.Extract(ctx, path, constants.TXT)
			Expect(err).To(MatchError(ContainSubstring("not valid UTF-8")))
		})
	})

	When("the document is an image", func() {
		It("should report the type as unsupported", func() {
			_, err := reader.Extract(ctx, filepath.Join(dir, "scan.png"), constants.PNG)
			Expect(err).To(MatchError(common.ErrUnsupported))
		})
	})

	When("reading a PDF with a text layer", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(dir, "two-pages.pdf")
			writeTextPDF(path, "INVOICE PAGE ONE", "INVOICE PAGE TWO")
		})

		It("should concatenate every page in order", func() {
			res, err := reader.Extract(ctx, path, constants.PDF)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Method).To(Equal("pdf-text"))
			Expect(res.Pages).To(Equal(2))
			one := strings.Index(res.Text, "INVOICE PAGE ONE")
			two := strings.Index(res.Text, "INVOICE PAGE TWO")
			Expect(one).To(BeNumerically(">=", 0))
			Expect(two).To(BeNumerically(">", one))
		})

		When("a page limit is set", func() {
			BeforeEach(func() {
				reader = NewReader(Config{MaxPages: 1}, nil)
			})

			It("should stop after the limit", func() {
				res, err := reader.Extract(ctx, path, constants.PDF)
				Expect(err).NotTo(HaveOccurred())
				Expect(res.Pages).To(Equal(1))
				Expect(res.Text).To(ContainSubstring("INVOICE PAGE ONE"))
				Expect(res.Text).NotTo(ContainSubstring("INVOICE PAGE TWO"))
			})
		})
	})

	When("the PDF cannot be opened", func() {
		It("should return an error", func() {
			path := filepath.Join(dir, "broken.pdf")
			Expect(os.WriteFile(path, []byte("not a pdf"), 0o600)).To(Succeed())
			_, err := reader.Extract(ctx, path, constants.PDF)
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("Normalize", func() {
	It("should unify line endings", func() {
		Expect(Normalize("a\r\nb\rc")).To(Equal("a\nb\nc"))
	})

	It("should keep empty input", func() {
		Expect(Normalize("")).To(BeEmpty())
	})
})

// writeTextPDF writes a minimal PDF with one Helvetica text line per page.
func writeTextPDF(path string, pages ...string) {
	var (
		buf     bytes.Buffer
		offsets []int
	)
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, 0, len(pages))
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 4+2*i))
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)))
	obj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")
	for i, text := range pages {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		stream := fmt.Sprintf("BT /F1 24 Tf 72 700 Td (%s) Tj ET", text)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	Expect(os.WriteFile(path, buf.Bytes(), 0o600)).To(Succeed())
}
