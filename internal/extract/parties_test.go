package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PartyResolver", func() {
	var (
		resolver *PartyResolver
		text     string
		keyword  string
		taxID    string
		parties  Parties
	)

	BeforeEach(func() {
		resolver = NewPartyResolver(nil)
		keyword, taxID = "", ""
	})

	JustBeforeEach(func() {
		parties = resolver.Resolve(text, keyword, taxID)
	})

	Describe("Candidates", func() {
		It("should keep distinct company lines in first-seen order", func() {
			text = "北京云杉科技有限公司\n上海青禾贸易有限公司\n北京云杉科技有限公司"
			Expect(resolver.Candidates(text)).To(Equal([]string{"北京云杉科技有限公司", "上海青禾贸易有限公司"}))
		})

		It("should reject item markers and column headers", func() {
			text = "*餐饮服务*餐饮有限公司\n项目名称 科技有限公司\n价税合计 有限公司"
			Expect(resolver.Candidates(text)).To(BeEmpty())
		})

		It("should reject lines ending with the fee suffix", func() {
			Expect(resolver.Candidates("广州路桥有限公司通行费")).To(BeEmpty())
		})

		It("should reject lines outside the length bounds", func() {
			Expect(resolver.Candidates("科技\n中心")).To(BeEmpty())
		})
	})

	When("one candidate contains the buyer keyword", func() {
		BeforeEach(func() {
			text = "ACME物流有限公司\n合计"
			keyword = "ACME"
		})

		It("should assign it to the buyer and leave the seller empty", func() {
			Expect(parties.Buyer).To(Equal("ACME物流有限公司"))
			Expect(parties.Seller).To(BeEmpty())
		})
	})

	When("one candidate does not contain the buyer keyword", func() {
		BeforeEach(func() {
			text = "北京云杉科技有限公司"
			keyword = "ACME"
		})

		It("should make it the seller and mark the buyer as not shown", func() {
			Expect(parties.Seller).To(Equal("北京云杉科技有限公司"))
			Expect(parties.Buyer).To(Equal("ACME (not shown on invoice)"))
		})
	})

	When("one candidate and no buyer keyword", func() {
		BeforeEach(func() {
			text = "北京云杉科技有限公司"
		})

		It("should only set the seller", func() {
			Expect(parties.Seller).To(Equal("北京云杉科技有限公司"))
			Expect(parties.Buyer).To(BeEmpty())
		})
	})

	When("two candidates and one contains the buyer keyword", func() {
		BeforeEach(func() {
			text = "ACME物流有限公司\n北京云杉科技有限公司"
			keyword = "ACME"
		})

		It("should split buyer and seller", func() {
			Expect(parties.Buyer).To(Equal("ACME物流有限公司"))
			Expect(parties.Seller).To(Equal("北京云杉科技有限公司"))
		})
	})

	When("two candidates and neither contains the buyer keyword", func() {
		BeforeEach(func() {
			text = "北京云杉科技有限公司\n上海青禾贸易有限公司"
			keyword = "ACME"
		})

		It("should take the first line as seller", func() {
			Expect(parties.Seller).To(Equal("北京云杉科技有限公司"))
			Expect(parties.Buyer).To(Equal("ACME (not shown on invoice)"))
		})
	})

	When("three candidates and the buyer is last", func() {
		BeforeEach(func() {
			text = "北京云杉科技有限公司\n顺达物流有限公司\nACME实业有限公司"
			keyword = "ACME"
		})

		It("should take the first non-buyer line as seller", func() {
			Expect(parties.Buyer).To(Equal("ACME实业有限公司"))
			Expect(parties.Seller).To(Equal("北京云杉科技有限公司"))
		})
	})

	When("no candidate resolves a seller but a shop name sits near the seller tax ID", func() {
		BeforeEach(func() {
			text = "销售方 92440101MA59ABCD3E 好又多便利店 地址"
			taxID = "92440101MA59ABCD3E"
		})

		It("should take the shop-like token", func() {
			Expect(parties.Seller).To(Equal("好又多便利店"))
		})
	})

	When("the seller tax ID opens the text", func() {
		BeforeEach(func() {
			text = "92440101MA59ABCD3E 好又多便利店 地址"
			taxID = "92440101MA59ABCD3E"
		})

		It("should not search around it", func() {
			Expect(parties.Seller).To(BeEmpty())
		})
	})

	When("the token near the tax ID is too short", func() {
		BeforeEach(func() {
			text = "销售方 92440101MA59ABCD3E 小店"
			taxID = "92440101MA59ABCD3E"
		})

		It("should leave the seller empty", func() {
			Expect(parties.Seller).To(BeEmpty())
		})
	})

	When("the text has no candidates and no tax ID", func() {
		BeforeEach(func() {
			text = "合计 ¥10.00"
			keyword = "ACME"
		})

		It("should leave both parties empty", func() {
			Expect(parties).To(Equal(Parties{}))
		})
	})
})

var _ = Describe("NormalizeName", func() {
	lex := DefaultLexicon()

	It("should strip one label prefix", func() {
		Expect(lex.NormalizeName("名称：北京云杉科技有限公司")).To(Equal("北京云杉科技有限公司"))
	})

	It("should cut at the registration label", func() {
		Expect(lex.NormalizeName("北京云杉科技有限公司 统一社会信用代码:91440300MA5F8XY12K")).To(Equal("北京云杉科技有限公司"))
	})

	It("should leave plain names alone", func() {
		Expect(lex.NormalizeName("北京云杉科技有限公司")).To(Equal("北京云杉科技有限公司"))
		Expect(lex.NormalizeName("")).To(BeEmpty())
	})
})
