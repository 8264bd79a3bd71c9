package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-ledger/constants"
)

var (
	reRoundedTotal = regexp.MustCompile(regexp.QuoteMeta(constants.RoundedTotalMarker) + `[\s\p{Zs}]*[¥￥]?[\s\p{Zs}]*([\d,]+\.?\d*)`)
	reCurrency     = regexp.MustCompile(`[¥￥][\s\p{Zs}]*([\d,]+\.?\d*)`)
	reFileAmount   = regexp.MustCompile(`(?i)(\d+\.?\d*)\.(?:pdf|png|jpe?g|txt)$`)

	amountCeiling = decimal.NewFromInt(constants.AmountCeiling)
)

// AmountRule is one step of the amount chain; the first rule returning ok wins.
type AmountRule struct {
	Name  string
	Match func(text, filename string) (amount string, ok bool)
}

// AmountRules lists the amount sources by priority.
var AmountRules = []AmountRule{
	{Name: "rounded-total", Match: roundedTotalAmount},
	{Name: "max-currency", Match: maxCurrencyAmount},
	{Name: "filename", Match: filenameAmount},
}

// ResolveAmount returns the authoritative amount with separators stripped, and the name of
// the rule that produced it. Both are empty when no rule matched.
func ResolveAmount(text, filename string) (amount, rule string) {
	for _, r := range AmountRules {
		if a, ok := r.Match(text, filename); ok {
			return a, r.Name
		}
	}
	return "", ""
}

func roundedTotalAmount(text, _ string) (string, bool) {
	m := reRoundedTotal.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	s, d, ok := parseAmount(m[1])
	if !ok || d.IsNegative() {
		return "", false
	}
	return s, true
}

// maxCurrencyAmount takes the largest plausible currency-prefixed figure; the tax-inclusive
// total is normally the largest number on the document. Ties keep the first occurrence.
func maxCurrencyAmount(text, _ string) (string, bool) {
	var (
		best    decimal.Decimal
		bestStr string
	)
	for _, m := range reCurrency.FindAllStringSubmatch(text, -1) {
		s, d, ok := parseAmount(m[1])
		if !ok || !d.IsPositive() || d.GreaterThanOrEqual(amountCeiling) {
			continue
		}
		if bestStr == "" || d.GreaterThan(best) {
			best, bestStr = d, s
		}
	}
	return bestStr, bestStr != ""
}

func filenameAmount(_, filename string) (string, bool) {
	m := reFileAmount.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	s, _, ok := parseAmount(m[1])
	return s, ok
}

// parseAmount strips thousands separators and a dangling decimal point, then parses.
func parseAmount(raw string) (string, decimal.Decimal, bool) {
	s := strings.TrimSuffix(strings.ReplaceAll(raw, ",", ""), ".")
	if s == "" {
		return "", decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", decimal.Decimal{}, false
	}
	return s, d, true
}
