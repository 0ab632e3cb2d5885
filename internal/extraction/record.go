package extraction

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineItem is one purchased item reconstructed from the receipt.
type LineItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// ReceiptRecord is the structured result of one extraction. Monetary and
// text fields are nil when not found, never zero. Item prices are capped
// at 1.1x Total only when the total came from an explicit keyword line;
// a bottom-up fallback total fills the field without constraining items,
// since it often latches onto a single item's own price. The caller
// fully owns the record after return; no shared mutable state survives
// the call.
type ReceiptRecord struct {
	RawText       string     `json:"raw_text"`
	Lines         []string   `json:"lines"`
	Items         []LineItem `json:"items"`
	Merchant      *string    `json:"merchant"`
	PurchaseDate  *string    `json:"purchase_date"`
	Total         *float64   `json:"total"`
	Subtotal      *float64   `json:"subtotal"`
	Tax           *float64   `json:"tax"`
	Savings       *float64   `json:"savings"`
	Currency      *string    `json:"currency"`
	ItemCount     int        `json:"item_count"`
	DetectedStore StoreID    `json:"detected_store"`
	Warnings      []string   `json:"warnings,omitempty"`
}

// minDetectionConfidence drops detector noise before line reconstruction.
const minDetectionConfidence = 0.25

// ExtractFromDetections runs the full pipeline on raw geometric
// detections: confidence filtering, line reconstruction, then the
// text-only stages. It never fails; empty input yields a sparse record.
func ExtractFromDetections(detections []TextDetection) *ReceiptRecord {
	kept := make([]TextDetection, 0, len(detections))
	for _, d := range detections {
		if d.Confidence >= minDetectionConfidence && len(strings.TrimSpace(d.Text)) >= 2 {
			kept = append(kept, d)
		}
	}
	return extract(ReconstructLines(kept))
}

// ExtractFromLines runs the pipeline on pre-linearized text lines, used
// when the upstream detector already returns document-structured text.
func ExtractFromLines(rawLines []string) *ReceiptRecord {
	lines := make([]MergedLine, 0, len(rawLines))
	for _, raw := range rawLines {
		text := strings.TrimSpace(raw)
		if text == "" {
			continue
		}
		lines = append(lines, MergedLine{Text: text, Order: len(lines)})
	}
	return extract(lines)
}

// extract is the stage pipeline proper. Data flows strictly forward:
// classification, noise filtering, field extraction, item parsing, then
// validation. Deterministic and side-effect-free apart from diagnostic
// logging.
func extract(lines []MergedLine) *ReceiptRecord {
	record := &ReceiptRecord{
		Items:         []LineItem{},
		DetectedStore: StoreUnknown,
	}
	if len(lines) == 0 {
		return record
	}

	texts := make([]string, len(lines))
	for i, ln := range lines {
		texts[i] = ln.Text
	}
	record.Lines = texts
	record.RawText = strings.Join(texts, "\n")

	record.DetectedStore = DetectStore(lines, record.RawText)
	tpl := templateByID(record.DetectedStore)

	usable := make([]MergedLine, 0, len(lines))
	for _, ln := range lines {
		if !IsNoise(ln.Text, tpl) {
			usable = append(usable, ln)
		}
	}

	total := extractTotalKeyword(usable)
	itemBound := total
	if total == nil {
		total = extractTotalFallback(usable)
	}
	subtotal := extractSubtotal(usable)
	tax := extractTax(usable)
	savings := extractSavings(usable)

	record.Total = toFloat(total)
	record.Subtotal = toFloat(subtotal)
	record.Tax = toFloat(tax)
	record.Savings = toFloat(savings)

	if date := extractDate(usable); date != "" {
		record.PurchaseDate = &date
	}
	if merchant := extractMerchant(lines, tpl); merchant != "" {
		record.Merchant = &merchant
	}
	currency := extractCurrency(record.RawText)
	record.Currency = &currency
	record.ItemCount = extractItemCount(usable, tpl)

	items := dedupeItems(ParseItems(usable, tpl, itemBound))
	record.Items = items
	if warning := checkPlausibility(items, subtotal, total); warning != "" {
		record.Warnings = append(record.Warnings, warning)
	}

	return record
}

func toFloat(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
