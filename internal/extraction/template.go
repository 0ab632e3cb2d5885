package extraction

import "regexp"

// StoreID identifies a merchant template.
type StoreID string

const (
	StoreWalmart   StoreID = "walmart"
	StoreTarget    StoreID = "target"
	StoreKroger    StoreID = "kroger"
	StoreWalgreens StoreID = "walgreens"
	StoreCVS       StoreID = "cvs"
	StoreSafeway   StoreID = "safeway"
	StoreAldi      StoreID = "aldi"
	StoreCostco    StoreID = "costco"
	StoreGeneric   StoreID = "generic"
	StoreUnknown   StoreID = "unknown"
)

// StoreTemplate bundles the patterns and heuristics specific to one
// merchant chain. Templates are compiled once at package init and are
// read-only afterwards; concurrent requests only read them.
type StoreTemplate struct {
	ID            StoreID
	CanonicalName string

	// DetectPatterns is ordered; the first match wins during
	// classification.
	DetectPatterns []*regexp.Regexp

	// NoisePatterns supplements the shared cross-template noise list.
	NoisePatterns []*regexp.Regexp

	// ItemCodePattern strips store-specific item/UPC codes from item
	// names. Nil when the chain prints no such codes.
	ItemCodePattern *regexp.Regexp

	// TaxSuffixes is the alphabet of single trailing letters this chain
	// prints to mark taxability. Meaning is template-specific; only the
	// active template's alphabet is ever consulted.
	TaxSuffixes string

	// ItemCountPattern captures the chain's own "N items sold" phrasing.
	ItemCountPattern *regexp.Regexp

	// TitleCaseNames converts fully uppercase item names to title case.
	TitleCaseNames bool
}

// storeTemplates is a fixed priority list, not an alphabetical one: costco
// detects on product vocabulary (KIRKLAND) that could false-positive
// against other chains' item lines, so it is checked last. Never reorder.
var storeTemplates = []*StoreTemplate{
	{
		ID:            StoreWalmart,
		CanonicalName: "Walmart",
		DetectPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)wal[\s*-]?mart`),
			regexp.MustCompile(`(?i)save\s+money\.?\s+live\s+better`),
		},
		NoisePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:st|op|te|tr)#\s*\d`),
			regexp.MustCompile(`(?i)\btc#\s*\d`),
		},
		ItemCodePattern:  regexp.MustCompile(`\b\d{9,14}\b`),
		TaxSuffixes:      "TXON",
		ItemCountPattern: regexp.MustCompile(`(?i)#?\s*items\s+sold\s+(\d{1,3})\b`),
		TitleCaseNames:   true,
	},
	{
		ID:            StoreTarget,
		CanonicalName: "Target",
		DetectPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\btarget\b`),
			regexp.MustCompile(`(?i)expect\s+more\.?\s+pay\s+less`),
		},
		NoisePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\brec#`),
			regexp.MustCompile(`(?i)\bredcard\b`),
		},
		ItemCodePattern: regexp.MustCompile(`^\d{9}\s+`),
		TaxSuffixes:     "FT",
		TitleCaseNames:  true,
	},
	{
		ID:            StoreKroger,
		CanonicalName: "Kroger",
		DetectPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bkroger\b`),
			regexp.MustCompile(`(?i)fresh\s+for\s+everyone`),
		},
		NoisePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bkroger\s+plus\b`),
			regexp.MustCompile(`(?i)\bfuel\s+points?\b`),
		},
		TaxSuffixes: "BT",
	},
	{
		ID:            StoreWalgreens,
		CanonicalName: "Walgreens",
		DetectPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)walgreens`),
			regexp.MustCompile(`(?i)\bbe\s+well\b`),
		},
		NoisePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bbalance\s+rewards\b`),
			regexp.MustCompile(`(?i)\brfn#`),
		},
		TaxSuffixes: "T",
	},
	{
		ID:            StoreCVS,
		CanonicalName: "CVS Pharmacy",
		DetectPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bcvs\b`),
			regexp.MustCompile(`(?i)extracare`),
		},
		NoisePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bextrabucks\b`),
			regexp.MustCompile(`(?i)\bextracare\s+card\b`),
		},
		TaxSuffixes: "FT",
	},
	{
		ID:            StoreSafeway,
		CanonicalName: "Safeway",
		DetectPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)safeway`),
			regexp.MustCompile(`(?i)ingredients\s+for\s+life`),
		},
		NoisePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bclub\s+card\b`),
		},
		TaxSuffixes: "ST",
	},
	{
		ID:            StoreAldi,
		CanonicalName: "ALDI",
		DetectPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\baldi\b`),
		},
		TaxSuffixes:    "AB",
		TitleCaseNames: true,
	},
	{
		ID:            StoreCostco,
		CanonicalName: "Costco Wholesale",
		DetectPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)costco`),
			regexp.MustCompile(`(?i)\bwholesale\b`),
			regexp.MustCompile(`(?i)\bkirkland\b|\bks\b`),
		},
		NoisePatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\bgold\s+star\s+member\b`),
			regexp.MustCompile(`(?i)\bexecutive\s+member\b`),
		},
		ItemCodePattern:  regexp.MustCompile(`^\d{5,7}\s+`),
		TaxSuffixes:      "AE",
		ItemCountPattern: regexp.MustCompile(`(?i)items\s+sold\s*[:#]?\s*(\d{1,3})\b`),
	},
}

// genericTemplate is used when no chain matches; it carries no
// chain-specific behavior.
var genericTemplate = &StoreTemplate{ID: StoreGeneric}

// fallbackTemplate is re-checked against the entire raw text when the
// header scan finds nothing: costco is the one template whose detection
// vocabulary is product-led rather than store-name-led.
var fallbackTemplate = storeTemplates[len(storeTemplates)-1]

// sharedNoisePatterns identify lines that are never item or value-bearing
// on any chain: legal boilerplate, slogans, payment lines.
var sharedNoisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:tel|phone|fax)\b`),
	regexp.MustCompile(`(?i)\b(?:reg(?:istration)?|lic(?:ense)?|gstin|fssai)\s*(?:no|#|:)`),
	regexp.MustCompile(`(?i)thank\s+you|have\s+a\s+(?:nice|great|good)|please\s+come|visit\s+(?:us|again)|\bwelcome\b`),
	regexp.MustCompile(`^[\s\-=*_~.#]{3,}$`),
	regexp.MustCompile(`(?i)www\.|https?://|\.com\b`),
	regexp.MustCompile(`(?i)\b(?:visa|mastercard|amex|discover|debit|credit)\b|\bcard\s*#`),
	regexp.MustCompile(`(?i)\bmember(?:ship)?\s*(?:no|#|:)|\bref(?:erence)?\s*(?:no|#|:)`),
	regexp.MustCompile(`(?i)\b(?:cashier|approval|auth)\b\s*[:#]`),
}

// digitRunPattern flags phone numbers and barcodes. Item lines embed
// digit runs this long too (UPC and item codes), so the run alone is
// not enough to call a line noise.
var digitRunPattern = regexp.MustCompile(`\d{10,}`)

// IsNoise reports whether a line can be excluded from both field scanning
// and item parsing under the given template.
func IsNoise(text string, tpl *StoreTemplate) bool {
	for _, p := range sharedNoisePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	if tpl != nil {
		for _, p := range tpl.NoisePatterns {
			if p.MatchString(text) {
				return true
			}
		}
	}
	if digitRunPattern.MatchString(text) {
		// A named, priced line is an item carrying a code; name cleanup
		// strips the code later. Anything else with a run this long is a
		// bare barcode or phone line.
		if _, hasValue := findLineValue(text); !hasValue || letterCount(stripValueTokens(text)) < 3 {
			return true
		}
	}
	return false
}

// templateByID returns the template for a detected store, or the generic
// template for generic/unknown.
func templateByID(id StoreID) *StoreTemplate {
	for _, tpl := range storeTemplates {
		if tpl.ID == id {
			return tpl
		}
	}
	return genericTemplate
}
