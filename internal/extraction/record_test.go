package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractFromLines", func() {
	var (
		input  []string
		record *ReceiptRecord
	)

	JustBeforeEach(func() {
		record = ExtractFromLines(input)
	})

	When("the input is empty", func() {
		BeforeEach(func() {
			input = nil
		})

		It("returns a sparse record, not an error", func() {
			Expect(record.DetectedStore).To(Equal(StoreUnknown))
			Expect(record.Items).To(BeEmpty())
			Expect(record.Items).NotTo(BeNil())
			Expect(record.Total).To(BeNil())
			Expect(record.Subtotal).To(BeNil())
			Expect(record.Tax).To(BeNil())
			Expect(record.Savings).To(BeNil())
			Expect(record.Merchant).To(BeNil())
			Expect(record.Currency).To(BeNil())
			Expect(record.RawText).To(Equal(""))
		})
	})

	When("given a complete receipt", func() {
		BeforeEach(func() {
			input = []string{
				"WALMART SUPERCENTER #1234",
				"555 COMMERCE PKWY",
				"01/15/2024 10:32",
				"GV MILK 3.02 X",
				"GV BREAD 1.98 T",
				"SUBTOTAL 5.00",
				"TAX 0.40",
				"TOTAL 5.40",
				"# ITEMS SOLD 2",
				"THANK YOU FOR SHOPPING",
			}
		})

		It("detects the store", func() {
			Expect(record.DetectedStore).To(Equal(StoreWalmart))
		})

		It("uses the canonical merchant name", func() {
			Expect(record.Merchant).To(HaveValue(Equal("Walmart")))
		})

		It("extracts the monetary fields", func() {
			Expect(record.Total).To(HaveValue(Equal(5.40)))
			Expect(record.Subtotal).To(HaveValue(Equal(5.00)))
			Expect(record.Tax).To(HaveValue(Equal(0.40)))
			Expect(record.Savings).To(BeNil())
		})

		It("extracts the date and item count", func() {
			Expect(record.PurchaseDate).To(HaveValue(Equal("01/15/2024")))
			Expect(record.ItemCount).To(Equal(2))
		})

		It("parses the items", func() {
			Expect(record.Items).To(Equal([]LineItem{
				{Name: "Gv Milk", Quantity: 1, Price: 3.02},
				{Name: "Gv Bread", Quantity: 1, Price: 1.98},
			}))
		})

		It("defaults the currency to the dollar sign", func() {
			Expect(record.Currency).To(HaveValue(Equal("$")))
		})

		It("is idempotent", func() {
			Expect(ExtractFromLines(input)).To(Equal(record))
		})
	})

	When("the receipt uses an Rs amount", func() {
		BeforeEach(func() {
			input = []string{"SHARMA GENERAL STORE", "Rs. 45.00"}
		})

		It("normalizes the currency to the rupee sign", func() {
			Expect(record.Currency).To(HaveValue(Equal("₹")))
		})

		It("reads the amount through the fallback", func() {
			Expect(record.Total).To(HaveValue(Equal(45.00)))
		})
	})

	When("duplicate items appear", func() {
		BeforeEach(func() {
			input = []string{"COKE 1.99", "COKE 1.99", "CHIPS 2.49", "TOTAL 6.47"}
		})

		It("collapses them to the first occurrence", func() {
			Expect(record.Items).To(Equal([]LineItem{
				{Name: "COKE", Quantity: 1, Price: 1.99},
				{Name: "CHIPS", Quantity: 1, Price: 2.49},
			}))
		})
	})

	When("the total comes only from the bottom-up fallback", func() {
		BeforeEach(func() {
			input = []string{"BIG ITEM 50.00", "ALPHA SNACK 2.00"}
		})

		It("fills the total without bounding item prices", func() {
			Expect(record.Total).To(HaveValue(Equal(2.00)))
			Expect(record.Items).To(Equal([]LineItem{
				{Name: "BIG ITEM", Quantity: 1, Price: 50.00},
				{Name: "ALPHA SNACK", Quantity: 1, Price: 2.00},
			}))
		})

		It("still flags the implausible sum", func() {
			Expect(record.Warnings).To(HaveLen(1))
		})
	})

	When("the item sum dwarfs the reference total", func() {
		BeforeEach(func() {
			input = []string{
				"ALPHA ITEM 4.00",
				"BRAVO ITEM 4.00",
				"DELTA ITEM 4.00",
				"ECHO ITEM 4.00",
				"TOTAL 4.00",
			}
		})

		It("keeps the data and flags a warning", func() {
			Expect(record.Items).To(HaveLen(4))
			Expect(record.Warnings).To(HaveLen(1))
			Expect(record.Warnings[0]).To(ContainSubstring("likely mis-parsed"))
		})
	})
})

var _ = Describe("ExtractFromDetections", func() {
	var (
		detections []TextDetection
		record     *ReceiptRecord
	)

	JustBeforeEach(func() {
		record = ExtractFromDetections(detections)
	})

	When("there are no detections", func() {
		BeforeEach(func() {
			detections = nil
		})

		It("returns a sparse record", func() {
			Expect(record.DetectedStore).To(Equal(StoreUnknown))
			Expect(record.Items).To(BeEmpty())
		})
	})

	When("detections carry geometry and confidence", func() {
		BeforeEach(func() {
			detections = []TextDetection{
				det("2.50", 200, 100, 20),
				det("BREAD", 10, 102, 20),
				det("ghost", 10, 140, 20),
				det("TOTAL", 10, 180, 20),
				det("2.50", 200, 182, 20),
			}
			detections[2].Confidence = 0.1
		})

		It("drops low-confidence detections before reconstruction", func() {
			Expect(record.Lines).To(Equal([]string{"BREAD 2.50", "TOTAL 2.50"}))
		})

		It("produces the same record as the linearized form", func() {
			Expect(record).To(Equal(ExtractFromLines([]string{"BREAD 2.50", "TOTAL 2.50"})))
		})
	})
})
