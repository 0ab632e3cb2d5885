package extraction

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DetectStore", func() {
	var (
		lines []MergedLine
		store StoreID
	)

	JustBeforeEach(func() {
		texts := make([]string, len(lines))
		for i, ln := range lines {
			texts[i] = ln.Text
		}
		store = DetectStore(lines, strings.Join(texts, "\n"))
	})

	When("the input is empty", func() {
		BeforeEach(func() {
			lines = nil
		})

		It("returns unknown", func() {
			Expect(store).To(Equal(StoreUnknown))
		})
	})

	When("the header names a chain with digit noise around it", func() {
		BeforeEach(func() {
			lines = mkLines(
				"WALMART SUPERCENTER #1234",
				"1234 MAIN ST",
				"555-867-5309",
			)
		})

		It("classifies by the priority table, not the noise", func() {
			Expect(store).To(Equal(StoreWalmart))
		})
	})

	When("the header matches a lower-priority chain", func() {
		BeforeEach(func() {
			lines = mkLines("TARGET", "EXPECT MORE. PAY LESS.")
		})

		It("returns that chain", func() {
			Expect(store).To(Equal(StoreTarget))
		})
	})

	When("product vocabulary appears only past the header", func() {
		BeforeEach(func() {
			texts := make([]string, 0, 13)
			for i := 0; i < 12; i++ {
				texts = append(texts, "PRODUCE ITEM 1.99")
			}
			texts = append(texts, "KIRKLAND SIGNATURE WATER 3.49")
			lines = mkLines(texts...)
		})

		It("falls back to a full-text scan", func() {
			Expect(store).To(Equal(StoreCostco))
		})
	})

	When("nothing matches any template", func() {
		BeforeEach(func() {
			lines = mkLines("CORNER DELI", "SANDWICH 6.50", "TOTAL 6.50")
		})

		It("returns generic", func() {
			Expect(store).To(Equal(StoreGeneric))
		})
	})
})
