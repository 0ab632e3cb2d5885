package extraction

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"
)

// plausibilityFactor is how far the item-price sum may exceed the
// reference total before the record is flagged as a likely mis-parse.
const plausibilityFactor = 2.5

// dedupeItems collapses duplicate items, keyed by lowercased name and
// price, to the first occurrence while preserving order.
func dedupeItems(items []LineItem) []LineItem {
	type key struct {
		name  string
		price float64
	}
	seen := make(map[key]bool, len(items))
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		k := key{name: strings.ToLower(it.Name), price: it.Price}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}

// checkPlausibility compares the item-price sum against the reference
// total (subtotal when known, else grand total). A breach is a non-fatal
// warning signal for downstream consumers; the data is never altered.
func checkPlausibility(items []LineItem, subtotal, total *decimal.Decimal) string {
	reference := subtotal
	if reference == nil {
		reference = total
	}
	if reference == nil || !reference.IsPositive() || len(items) == 0 {
		return ""
	}

	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(decimal.NewFromFloat(it.Price))
	}

	limit := reference.Mul(decimal.NewFromFloat(plausibilityFactor))
	if sum.GreaterThan(limit) {
		warning := fmt.Sprintf(
			"item price sum %s exceeds %.1fx the reference total %s; items are likely mis-parsed",
			sum.StringFixed(2), plausibilityFactor, reference.StringFixed(2),
		)
		slog.Warn("Implausible item sum",
			"item_sum", sum.StringFixed(2),
			"reference", reference.StringFixed(2),
			"items", len(items),
		)
		return warning
	}
	return ""
}
