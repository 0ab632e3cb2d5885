package extraction

// headerLineCount bounds the store scan to the receipt header, where chain
// names and slogans are printed.
const headerLineCount = 10

// DetectStore matches the header lines, then the full raw text, against
// the ordered template table and returns the winning template id.
//
// The header scan honors table order as a priority list: the first
// template with any matching detection pattern wins. When nothing matches
// the header, the fallback template (product-vocabulary detection) is
// re-checked against the entire text before giving up with "generic".
func DetectStore(lines []MergedLine, rawText string) StoreID {
	if len(lines) == 0 {
		return StoreUnknown
	}

	header := lines
	if len(header) > headerLineCount {
		header = header[:headerLineCount]
	}

	for _, tpl := range storeTemplates {
		for _, pattern := range tpl.DetectPatterns {
			for _, line := range header {
				if pattern.MatchString(line.Text) {
					return tpl.ID
				}
			}
		}
	}

	for _, pattern := range fallbackTemplate.DetectPatterns {
		if pattern.MatchString(rawText) {
			return fallbackTemplate.ID
		}
	}

	return StoreGeneric
}
