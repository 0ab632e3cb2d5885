package scanning

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Azure/azure-sdk-for-go/services/cognitiveservices/v3.0/computervision"

	"github.com/receiptwise/receiptwise/internal/extraction"
)

func strPtr(s string) *string { return &s }

var _ = Describe("parseBoundingBox", func() {
	It("should build a clockwise box from x,y,width,height", func() {
		polygon, ok := parseBoundingBox("10,20,100,30")

		Expect(ok).To(BeTrue())
		Expect(polygon).To(Equal([4]extraction.Point{
			{X: 10, Y: 20},
			{X: 110, Y: 20},
			{X: 110, Y: 50},
			{X: 10, Y: 50},
		}))
	})

	It("should tolerate whitespace between fields", func() {
		_, ok := parseBoundingBox("10, 20, 100, 30")
		Expect(ok).To(BeTrue())
	})

	It("should reject a box with the wrong number of fields", func() {
		_, ok := parseBoundingBox("10,20,100")
		Expect(ok).To(BeFalse())
	})

	It("should reject a box with non-numeric fields", func() {
		_, ok := parseBoundingBox("10,20,abc,30")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("detectionsFromOCRResult", func() {
	var (
		result     computervision.OcrResult
		detections []extraction.TextDetection
	)

	JustBeforeEach(func() {
		detections = detectionsFromOCRResult(result)
	})

	When("the result has no regions", func() {
		BeforeEach(func() {
			result = computervision.OcrResult{}
		})

		It("should return no detections", func() {
			Expect(detections).To(BeEmpty())
		})
	})

	When("the result has words across regions and lines", func() {
		BeforeEach(func() {
			result = computervision.OcrResult{
				Regions: &[]computervision.OcrRegion{
					{
						Lines: &[]computervision.OcrLine{
							{
								Words: &[]computervision.OcrWord{
									{Text: strPtr("MILK"), BoundingBox: strPtr("10,100,80,20")},
									{Text: strPtr("3.99"), BoundingBox: strPtr("200,100,60,20")},
								},
							},
							{
								Words: &[]computervision.OcrWord{
									{Text: strPtr("TOTAL"), BoundingBox: strPtr("10,140,90,20")},
								},
							},
						},
					},
				},
			}
		})

		It("should flatten every word into a detection", func() {
			Expect(detections).To(HaveLen(3))
			Expect(detections[0].Text).To(Equal("MILK"))
			Expect(detections[1].Text).To(Equal("3.99"))
			Expect(detections[2].Text).To(Equal("TOTAL"))
		})

		It("should carry the word geometry", func() {
			Expect(detections[0].Polygon[0]).To(Equal(extraction.Point{X: 10, Y: 100}))
			Expect(detections[0].Polygon[2]).To(Equal(extraction.Point{X: 90, Y: 120}))
		})

		It("should mark every word as certain", func() {
			for _, d := range detections {
				Expect(d.Confidence).To(Equal(1.0))
			}
		})
	})

	When("a word is missing its text or box", func() {
		BeforeEach(func() {
			result = computervision.OcrResult{
				Regions: &[]computervision.OcrRegion{
					{
						Lines: &[]computervision.OcrLine{
							{
								Words: &[]computervision.OcrWord{
									{Text: strPtr("KEPT"), BoundingBox: strPtr("0,0,10,10")},
									{Text: nil, BoundingBox: strPtr("0,0,10,10")},
									{Text: strPtr("NOBOX"), BoundingBox: nil},
								},
							},
						},
					},
				},
			}
		})

		It("should skip the incomplete words", func() {
			Expect(detections).To(HaveLen(1))
			Expect(detections[0].Text).To(Equal("KEPT"))
		})
	})
})
