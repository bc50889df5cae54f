package knowledgecore

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// streetAbbreviations maps full street-type words to the postal short form
// used in constituent records.
var streetAbbreviations = []struct{ full, abbrev string }{
	{" STREET", " ST"},
	{" DRIVE", " DR"},
	{" AVENUE", " AVE"},
	{" BOULEVARD", " BLVD"},
	{" ROAD", " RD"},
	{" LANE", " LN"},
	{" COURT", " CT"},
	{" PLACE", " PL"},
	{" CIRCLE", " CIR"},
	{" TRAIL", " TRL"},
}

// NormalizeZip keeps the first five digits of a ZIP, handling ZIP+4 input
// like "54113-1247".
func NormalizeZip(zip string) string {
	var digits strings.Builder
	for _, r := range zip {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	s := digits.String()
	if len(s) > 5 {
		return s[:5]
	}
	return s
}

// NormalizeAddress upper-cases, collapses whitespace, and abbreviates street
// types so two renderings of the same address compare equal.
func NormalizeAddress(address string) string {
	normalized := strings.Join(strings.Fields(strings.ToUpper(address)), " ")
	for _, a := range streetAbbreviations {
		normalized = strings.ReplaceAll(normalized, a.full, a.abbrev)
	}
	return normalized
}

// AddressMatchScore is the fraction of the search address tokens found in the
// candidate address, both normalized first.
func AddressMatchScore(candidate, search string) float64 {
	candidateParts := strings.Fields(NormalizeAddress(candidate))
	searchParts := strings.Fields(NormalizeAddress(search))
	if len(candidateParts) == 0 || len(searchParts) == 0 {
		return 0
	}

	set := make(map[string]bool, len(candidateParts))
	for _, p := range candidateParts {
		set[p] = true
	}

	matches := 0
	for _, p := range searchParts {
		if set[p] {
			matches++
		}
	}
	return float64(matches) / float64(len(searchParts))
}

// ParseAmount cleans a currency string ("$1,000.00", "1000") into a float.
// Returns false for empty, non-numeric, or non-positive amounts.
func ParseAmount(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.NewReplacer("$", "", ",", "").Replace(raw))
	if cleaned == "" || strings.EqualFold(cleaned, "none") || strings.EqualFold(cleaned, "null") {
		return 0, false
	}
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// FormatCurrency renders an amount as "$1,234.56". Unparseable input is
// returned unchanged.
func FormatCurrency(raw string) string {
	amount, ok := ParseAmount(raw)
	if !ok {
		return raw
	}
	return formatDollars(amount)
}

func formatDollars(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	dot := strings.Index(s, ".")
	intPart, fracPart := s[:dot], s[dot:]

	var out strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(r)
	}
	return fmt.Sprintf("$%s%s", out.String(), fracPart)
}
