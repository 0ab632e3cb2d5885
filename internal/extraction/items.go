package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// The item parser is a line-buffering state machine. A receipt may split
// one item across several physical lines (name, then "qty x unit", then
// the extended price), so a pending item is buffered until the input
// proves it complete.
type parserState int

const (
	stateIdle    parserState = iota // no pending item
	statePending                    // buffering a name, awaiting/refining price
	stateClosed                     // past the subtotal/total block
)

type lineClass int

const (
	classSkip lineClass = iota
	classTerminal
	classNameOnly
	classNameAndPrice
	classPriceOnly
)

var (
	longDigitPattern = regexp.MustCompile(`\d{4,}`)
	spaceRunPattern  = regexp.MustCompile(`\s+`)
	taxSuffixPattern = regexp.MustCompile(`^(.*\S)\s+([A-Z])$`)
)

type itemParser struct {
	tpl   *StoreTemplate
	total *decimal.Decimal

	state           parserState
	pendingName     string
	pendingQty      int
	pendingPrice    decimal.Decimal
	pendingHasPrice bool

	items []LineItem
}

// ParseItems reconstructs name-price associations from the noise-filtered
// lines, honoring the active template's code prefix and tax-suffix
// alphabet. total, when known, bounds plausible item prices.
func ParseItems(lines []MergedLine, tpl *StoreTemplate, total *decimal.Decimal) []LineItem {
	p := &itemParser{tpl: tpl, total: total, state: stateIdle}
	for _, ln := range lines {
		if p.state == stateClosed {
			break
		}
		p.feed(ln.Text)
	}
	p.finalizePending()
	return p.items
}

func (p *itemParser) feed(text string) {
	cls, value, qty := p.classify(text)

	switch cls {
	case classSkip:
		return
	case classTerminal:
		p.finalizePending()
		p.state = stateClosed
	case classNameOnly:
		p.finalizePending()
		p.pendingName = text
		p.pendingQty = 1
		p.pendingHasPrice = false
		p.state = statePending
	case classNameAndPrice:
		p.finalizePending()
		p.pendingName = text
		p.pendingQty = qty
		p.pendingPrice = value
		p.pendingHasPrice = true
		p.state = statePending
	case classPriceOnly:
		// The latest price on a multi-line item wins: receipts often
		// print the unit price, then the extended price on the next line.
		if p.state == statePending {
			p.pendingPrice = value
			p.pendingHasPrice = true
			if qty > 1 {
				p.pendingQty = qty
			}
		}
	}
}

func (p *itemParser) classify(text string) (lineClass, decimal.Decimal, int) {
	if IsNoise(text, p.tpl) {
		return classSkip, decimal.Zero, 0
	}
	if subtotalPattern.MatchString(text) || totalAnyPattern.MatchString(text) {
		return classTerminal, decimal.Zero, 0
	}
	if taxPattern.MatchString(text) || savingsPattern.MatchString(text) ||
		itemCountLinePattern.MatchString(text) {
		return classSkip, decimal.Zero, 0
	}

	value, qty, hasValue := lineItemValue(text)
	hasName := letterCount(stripValueTokens(text)) >= 3

	switch {
	case hasName && hasValue:
		return classNameAndPrice, value, qty
	case hasName:
		return classNameOnly, decimal.Zero, 0
	case hasValue:
		return classPriceOnly, value, qty
	}
	return classSkip, decimal.Zero, 0
}

// lineItemValue resolves the monetary value a line contributes to an item.
// A "qty x unit" pattern computes qty*unit and a weight pattern computes
// weight*unit, both rounded to cents, but an explicit extended price
// elsewhere on the same line overrides the computed one.
func lineItemValue(text string) (decimal.Decimal, int, bool) {
	if wm := weightPattern.FindStringSubmatch(text); wm != nil {
		weight, wok := parseAmount(wm[1])
		unit, uok := parseAmount(wm[2])
		if wok && uok {
			v := weight.Mul(unit).Round(2)
			if ev, ok := findLineValue(weightPattern.ReplaceAllString(text, " ")); ok {
				v = ev
			}
			return v, 1, true
		}
	}
	if qm := qtyPattern.FindStringSubmatch(text); qm != nil {
		qty, qerr := strconv.Atoi(qm[1])
		unit, uok := parseAmount(qm[2])
		if qerr == nil && qty > 0 && uok {
			v := decimal.NewFromInt(int64(qty)).Mul(unit).Round(2)
			if ev, ok := findLineValue(qtyPattern.ReplaceAllString(text, " ")); ok {
				v = ev
			}
			return v, qty, true
		}
	}
	if v, ok := findLineValue(text); ok {
		return v, 1, true
	}
	return decimal.Zero, 1, false
}

// stripValueTokens removes monetary, quantity, and weight sub-patterns so
// the remainder can be judged as a potential item name.
func stripValueTokens(text string) string {
	s := weightPattern.ReplaceAllString(text, " ")
	s = qtyPattern.ReplaceAllString(s, " ")
	s = moneySymbolPattern.ReplaceAllString(s, " ")
	s = moneyBarePattern.ReplaceAllString(s, " ")
	return s
}

func letterCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

func (p *itemParser) finalizePending() {
	if p.state != statePending {
		return
	}
	name := p.pendingName
	price := p.pendingPrice
	qty := p.pendingQty
	hasPrice := p.pendingHasPrice

	p.pendingName = ""
	p.pendingQty = 0
	p.pendingPrice = decimal.Zero
	p.pendingHasPrice = false
	p.state = stateIdle

	if !hasPrice || !price.IsPositive() {
		return
	}
	cleaned := cleanItemName(name, p.tpl)
	if len([]rune(cleaned)) < 2 || alphaRatio(cleaned) < 0.25 {
		return
	}
	if p.total != nil && price.GreaterThan(p.total.Mul(decimal.NewFromFloat(1.1))) {
		return
	}
	if qty < 1 {
		qty = 1
	}
	p.items = append(p.items, LineItem{
		Name:     cleaned,
		Quantity: qty,
		Price:    price.InexactFloat64(),
	})
}

// cleanItemName strips the template's item-code pattern, value tokens,
// long digit runs (store and department codes), and a single trailing
// tax-suffix letter from the template's alphabet, then normalizes
// whitespace and stray punctuation.
func cleanItemName(raw string, tpl *StoreTemplate) string {
	s := raw
	if tpl.ItemCodePattern != nil {
		s = tpl.ItemCodePattern.ReplaceAllString(s, " ")
	}
	s = stripValueTokens(s)
	s = longDigitPattern.ReplaceAllString(s, " ")
	s = spaceRunPattern.ReplaceAllString(strings.TrimSpace(s), " ")

	if tpl.TaxSuffixes != "" {
		if m := taxSuffixPattern.FindStringSubmatch(s); m != nil && strings.Contains(tpl.TaxSuffixes, m[2]) {
			s = m[1]
		}
	}

	s = strings.Trim(s, " -*,.:;#@/\\|")
	s = spaceRunPattern.ReplaceAllString(s, " ")

	if tpl.TitleCaseNames && isAllUpper(s) {
		s = titleCase(s)
	}
	return s
}

func isAllUpper(s string) bool {
	hasUpper := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			hasUpper = true
		}
	}
	return hasUpper
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
