package extraction

import (
	"regexp"
	"strconv"
	"unicode"

	"github.com/shopspring/decimal"
)

// Monetary value detection. A symbol-anchored number is preferred, taking
// the last match on the line because receipts right-align the price
// furthest from the label. Failing that, a bare number with exactly two
// decimal digits counts; bare integers never do.
var (
	moneySymbolPattern = regexp.MustCompile(`[$£€₹]\s*(\d[\d,]*(?:\.\d{1,2})?)`)
	moneyBarePattern   = regexp.MustCompile(`(?:^|[^\d.$£€₹])(\d[\d,]*\.\d{2})(?:[^\d.]|$)`)

	qtyPattern    = regexp.MustCompile(`(?i)\b(\d{1,3})\s*[x@]\s*[$£€₹]?\s*(\d+(?:\.\d{1,2})?)`)
	weightPattern = regexp.MustCompile(`(?i)\b(\d+\.\d+)\s*(?:lbs?|kg|oz|g)\b\.?\s*/?\s*@\s*[$£€₹]?\s*(\d+(?:\.\d{1,2})?)`)
)

// Keyword pattern sets per field category.
var (
	// totalKeywords is a fixed priority list; earlier entries are more
	// trusted labels for the grand total. Never reorder.
	totalKeywords = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bgrand\s+total\b`),
		regexp.MustCompile(`(?i)\bnet\s+(?:amount|payable|total)\b`),
		regexp.MustCompile(`(?i)\btotal\b`),
		regexp.MustCompile(`(?i)\bamount\s+due\b`),
		regexp.MustCompile(`(?i)\bbalance\s+due\b`),
		regexp.MustCompile(`(?i)\bpayable\b`),
	}

	totalAnyPattern      = regexp.MustCompile(`(?i)\bgrand\s+total\b|\btotal\b|\bamount\s+due\b|\bbalance\s+due\b|\bpayable\b|\bnet\s+(?:amount|payable|total)\b`)
	subtotalPattern      = regexp.MustCompile(`(?i)\bsub\s?-?\s?total\b`)
	taxPattern           = regexp.MustCompile(`(?i)\b(?:tax|vat|gst|hst)\b`)
	savingsPattern       = regexp.MustCompile(`(?i)\bsavings?\b|\bdiscount\b|\bcoupon\b|\byou\s+saved\b`)
	itemCountLinePattern = regexp.MustCompile(`(?i)\b\d+\s+items?\b|\bitems?\s+(?:sold|count)\b|\b(?:items?|qty)\s*[:#]`)

	itemCountGenericPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bitems?\s*[:#]\s*(\d{1,3})\b`),
		regexp.MustCompile(`(?i)\bqty\s*[:#]?\s*(\d{1,3})\b`),
	}

	dateKeywordPattern = regexp.MustCompile(`(?i)\bdate\b`)
	datePatterns       = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\b`),
		regexp.MustCompile(`\b\d{4}[/-]\d{1,2}[/-]\d{1,2}\b`),
		regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+\d{2,4}\b`),
	}

	// US state abbreviation + ZIP, the classic address line whose digit
	// runs resemble dates.
	addressPattern = regexp.MustCompile(`\b[A-Z]{2}\s+\d{5}(?:-\d{4})?\b`)

	currencySymbolPattern = regexp.MustCompile(`[$£€₹]`)
	rupeePrefixPattern    = regexp.MustCompile(`(?i)(?:^|\s)rs\.?\s*\d`)
)

// fieldCategory distinguishes the competing keyword families during
// lookahead scanning.
type fieldCategory int

const (
	catTotal fieldCategory = iota
	catSubtotal
	catTax
	catSavings
)

// lookaheadLimit is how many subsequent lines a keyword-only match may
// scan for its value.
const lookaheadLimit = 3

func matchesCategory(text string, cat fieldCategory) bool {
	switch cat {
	case catTotal:
		return totalAnyPattern.MatchString(text)
	case catSubtotal:
		return subtotalPattern.MatchString(text)
	case catTax:
		return taxPattern.MatchString(text)
	case catSavings:
		return savingsPattern.MatchString(text)
	}
	return false
}

func parseAmount(s string) (decimal.Decimal, bool) {
	cleaned := ""
	for _, r := range s {
		if r != ',' {
			cleaned += string(r)
		}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// findLineValue extracts the preferred monetary value from a single line.
func findLineValue(text string) (decimal.Decimal, bool) {
	if ms := moneySymbolPattern.FindAllStringSubmatch(text, -1); len(ms) > 0 {
		if d, ok := parseAmount(ms[len(ms)-1][1]); ok {
			return d, true
		}
	}
	if ms := moneyBarePattern.FindAllStringSubmatch(text, -1); len(ms) > 0 {
		if d, ok := parseAmount(ms[len(ms)-1][1]); ok {
			return d, true
		}
	}
	return decimal.Zero, false
}

// valueNear implements the common lookahead contract: the keyword line's
// own value wins; otherwise up to lookaheadLimit subsequent lines are
// scanned, stopping early when a competing category keyword appears first.
func valueNear(lines []MergedLine, idx int, own fieldCategory) (decimal.Decimal, bool) {
	if v, ok := findLineValue(lines[idx].Text); ok {
		return v, true
	}
	for j := idx + 1; j <= idx+lookaheadLimit && j < len(lines); j++ {
		text := lines[j].Text
		competing := false
		for cat := catTotal; cat <= catSavings; cat++ {
			if cat != own && matchesCategory(text, cat) {
				competing = true
				break
			}
		}
		if competing {
			break
		}
		if v, ok := findLineValue(text); ok {
			return v, true
		}
	}
	return decimal.Zero, false
}

var (
	minTotal     = decimal.NewFromFloat(0.01)
	minFallback  = decimal.NewFromInt(1)
	maxTaxAmount = decimal.NewFromInt(500)
)

// extractTotalKeyword walks the total keyword priority list; the first
// accepted value wins. Lines that also carry subtotal, tax, or item-count
// phrasing are rejected as mislabeled candidates.
func extractTotalKeyword(lines []MergedLine) *decimal.Decimal {
	for _, kw := range totalKeywords {
		for i, ln := range lines {
			if !kw.MatchString(ln.Text) {
				continue
			}
			if subtotalPattern.MatchString(ln.Text) ||
				taxPattern.MatchString(ln.Text) ||
				savingsPattern.MatchString(ln.Text) ||
				itemCountLinePattern.MatchString(ln.Text) {
				continue
			}
			if v, ok := valueNear(lines, i, catTotal); ok && v.GreaterThanOrEqual(minTotal) {
				return &v
			}
		}
	}
	return nil
}

// extractTotalFallback scans bottom-up, skipping savings lines, for the
// first value of at least 1.00. A fallback total is a guess, so it fills
// the record but never bounds item prices.
func extractTotalFallback(lines []MergedLine) *decimal.Decimal {
	for i := len(lines) - 1; i >= 0; i-- {
		if savingsPattern.MatchString(lines[i].Text) {
			continue
		}
		if v, ok := findLineValue(lines[i].Text); ok && v.GreaterThanOrEqual(minFallback) {
			return &v
		}
	}
	return nil
}

func extractSubtotal(lines []MergedLine) *decimal.Decimal {
	for i, ln := range lines {
		if !subtotalPattern.MatchString(ln.Text) {
			continue
		}
		if v, ok := valueNear(lines, i, catSubtotal); ok {
			return &v
		}
	}
	return nil
}

// extractTax caps accepted values below 500, a heuristic ceiling that
// keeps totals printed near a TAX label from being read as the tax.
func extractTax(lines []MergedLine) *decimal.Decimal {
	for i, ln := range lines {
		if !taxPattern.MatchString(ln.Text) {
			continue
		}
		if v, ok := valueNear(lines, i, catTax); ok && v.LessThan(maxTaxAmount) {
			return &v
		}
	}
	return nil
}

func extractSavings(lines []MergedLine) *decimal.Decimal {
	for i, ln := range lines {
		if !savingsPattern.MatchString(ln.Text) {
			continue
		}
		if v, ok := valueNear(lines, i, catSavings); ok {
			return &v
		}
	}
	return nil
}

func findDate(text string) string {
	for _, p := range datePatterns {
		if m := p.FindString(text); m != "" {
			return m
		}
	}
	return ""
}

// extractDate runs two passes: lines labeled with an explicit "date"
// keyword first, then any date-shaped token, excluding address lines.
func extractDate(lines []MergedLine) string {
	for _, ln := range lines {
		if !dateKeywordPattern.MatchString(ln.Text) {
			continue
		}
		if m := findDate(ln.Text); m != "" {
			return m
		}
	}
	for _, ln := range lines {
		if addressPattern.MatchString(ln.Text) {
			continue
		}
		if m := findDate(ln.Text); m != "" {
			return m
		}
	}
	return ""
}

func alphaRatio(s string) float64 {
	total, letters := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

// extractMerchant short-circuits to the template's canonical display name
// when the chain is known; otherwise the first plausible line among the
// receipt's first five wins. Operates on the unfiltered lines so "first
// five" means the physical header, not the fifth non-noise line.
func extractMerchant(lines []MergedLine, tpl *StoreTemplate) string {
	if tpl.CanonicalName != "" {
		return tpl.CanonicalName
	}
	limit := 5
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, ln := range lines[:limit] {
		if IsNoise(ln.Text, tpl) || findDate(ln.Text) != "" {
			continue
		}
		if len(ln.Text) < 3 || alphaRatio(ln.Text) < 0.3 {
			continue
		}
		return ln.Text
	}
	return ""
}

// extractItemCount checks the template's own phrasing before the generic
// "items/qty: N" forms.
func extractItemCount(lines []MergedLine, tpl *StoreTemplate) int {
	if tpl.ItemCountPattern != nil {
		for _, ln := range lines {
			if m := tpl.ItemCountPattern.FindStringSubmatch(ln.Text); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					return n
				}
			}
		}
	}
	for _, p := range itemCountGenericPatterns {
		for _, ln := range lines {
			if m := p.FindStringSubmatch(ln.Text); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					return n
				}
			}
		}
	}
	return 0
}

// extractCurrency returns the first currency symbol in the raw text. A
// bare "Rs"-family token normalizes to the rupee sign; with no signal at
// all the dollar sign is assumed.
func extractCurrency(rawText string) string {
	if m := currencySymbolPattern.FindString(rawText); m != "" {
		return m
	}
	if rupeePrefixPattern.MatchString(rawText) {
		return "₹"
	}
	return "$"
}
