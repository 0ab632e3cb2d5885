package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func amountOf(d *decimal.Decimal) float64 {
	ExpectWithOffset(1, d).NotTo(BeNil())
	return d.InexactFloat64()
}

var _ = Describe("field extraction", func() {
	Describe("extractTotalKeyword", func() {
		It("keeps subtotal, tax and total apart", func() {
			lines := mkLines("SUBTOTAL 10.00", "TAX 1.00", "TOTAL 11.00")
			Expect(amountOf(extractTotalKeyword(lines))).To(Equal(11.00))
			Expect(amountOf(extractSubtotal(lines))).To(Equal(10.00))
			Expect(amountOf(extractTax(lines))).To(Equal(1.00))
		})

		It("prefers higher-priority keywords over line order", func() {
			lines := mkLines("TOTAL 11.00", "GRAND TOTAL 12.00")
			Expect(amountOf(extractTotalKeyword(lines))).To(Equal(12.00))
		})

		It("looks ahead up to three lines for the value", func() {
			lines := mkLines("AMOUNT DUE", "thank", "11.50")
			Expect(amountOf(extractTotalKeyword(lines))).To(Equal(11.50))
		})

		It("stops the lookahead at a competing keyword", func() {
			lines := mkLines("TOTAL", "TAX 1.00")
			Expect(extractTotalKeyword(lines)).To(BeNil())
		})

		It("rejects item-count phrasing", func() {
			lines := mkLines("3 ITEMS TOTAL", "TOTAL 30.00")
			Expect(amountOf(extractTotalKeyword(lines))).To(Equal(30.00))
		})

		It("rejects savings lines", func() {
			lines := mkLines("TOTAL SAVINGS 5.00", "TOTAL 20.00")
			Expect(amountOf(extractTotalKeyword(lines))).To(Equal(20.00))
		})

		It("takes the last symbol-anchored value on the line", func() {
			lines := mkLines("TOTAL $1 $24.99")
			Expect(amountOf(extractTotalKeyword(lines))).To(Equal(24.99))
		})

		It("never treats a bare integer as a price", func() {
			lines := mkLines("TOTAL 42")
			Expect(extractTotalKeyword(lines)).To(BeNil())
		})
	})

	Describe("extractTotalFallback", func() {
		It("scans bottom-up for the first value of at least 1.00", func() {
			lines := mkLines("MILK 3.99", "BREAD 2.50", "0.75")
			Expect(amountOf(extractTotalFallback(lines))).To(Equal(2.50))
		})

		It("skips savings lines", func() {
			lines := mkLines("BREAD 2.50", "YOU SAVED 5.00")
			Expect(amountOf(extractTotalFallback(lines))).To(Equal(2.50))
		})
	})

	Describe("extractTax", func() {
		It("rejects values at or above the heuristic ceiling", func() {
			Expect(extractTax(mkLines("TAX 600.00"))).To(BeNil())
			Expect(amountOf(extractTax(mkLines("TAX 499.99")))).To(Equal(499.99))
		})
	})

	Describe("extractSavings", func() {
		It("finds coupon and discount amounts", func() {
			Expect(amountOf(extractSavings(mkLines("COUPON 1.25")))).To(Equal(1.25))
		})
	})

	Describe("extractDate", func() {
		It("prefers lines with an explicit date keyword", func() {
			lines := mkLines("12/24/2023 19:02", "DATE: 01/15/2024")
			Expect(extractDate(lines)).To(Equal("01/15/2024"))
		})

		It("falls back to any date-shaped token", func() {
			lines := mkLines("CORNER DELI", "01/15/2024 10:32")
			Expect(extractDate(lines)).To(Equal("01/15/2024"))
		})

		It("excludes address lines from the fallback pass", func() {
			lines := mkLines("SUITE 12-34-5678 AUSTIN TX 78701", "01/15/2024")
			Expect(extractDate(lines)).To(Equal("01/15/2024"))
		})

		It("returns empty when nothing matches", func() {
			Expect(extractDate(mkLines("MILK 3.99"))).To(Equal(""))
		})
	})

	Describe("extractMerchant", func() {
		It("short-circuits to the template's canonical name", func() {
			tpl := templateByID(StoreWalmart)
			Expect(extractMerchant(mkLines("WAL*MART"), tpl)).To(Equal("Walmart"))
		})

		It("returns the first plausible header line otherwise", func() {
			lines := mkLines("*****", "01/15/2024", "JOE'S DINER", "MILK 3.99")
			Expect(extractMerchant(lines, genericTemplate)).To(Equal("JOE'S DINER"))
		})

		It("only considers the first five lines", func() {
			lines := mkLines("1.00", "2.00", "3.00", "4.00", "5.00", "JOE'S DINER")
			Expect(extractMerchant(lines, genericTemplate)).To(Equal(""))
		})
	})

	Describe("extractItemCount", func() {
		It("checks the template phrasing first", func() {
			tpl := templateByID(StoreWalmart)
			Expect(extractItemCount(mkLines("# ITEMS SOLD 5"), tpl)).To(Equal(5))
		})

		It("falls back to generic phrasing", func() {
			Expect(extractItemCount(mkLines("ITEMS: 3"), genericTemplate)).To(Equal(3))
		})

		It("returns zero when absent", func() {
			Expect(extractItemCount(mkLines("MILK 3.99"), genericTemplate)).To(Equal(0))
		})
	})

	Describe("extractCurrency", func() {
		It("returns the first symbol in the text", func() {
			Expect(extractCurrency("TOTAL €12.00")).To(Equal("€"))
		})

		It("normalizes an Rs token to the rupee sign", func() {
			Expect(extractCurrency("Rs. 45.00")).To(Equal("₹"))
		})

		It("defaults to the dollar sign", func() {
			Expect(extractCurrency("TOTAL 12.00")).To(Equal("$"))
		})
	})
})
