package knowledgecore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeZip(t *testing.T) {
	tests := []struct {
		name string
		zip  string
		want string
	}{
		{"plain five digit", "62704", "62704"},
		{"zip plus four", "54113-1247", "54113"},
		{"short zip kept", "123", "123"},
		{"non digits stripped", " 62-704 ", "62704"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeZip(tt.zip))
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"street abbreviated", "123 Main Street", "123 MAIN ST"},
		{"drive abbreviated", "9 Oak Drive", "9 OAK DR"},
		{"boulevard abbreviated", "1 Sunset Boulevard", "1 SUNSET BLVD"},
		{"already short", "123 MAIN ST", "123 MAIN ST"},
		{"extra whitespace collapsed", "  123   Main   Street ", "123 MAIN ST"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.address))
		})
	}
}

func TestAddressMatchScore(t *testing.T) {
	assert.Equal(t, 1.0, AddressMatchScore("123 Main Street", "123 MAIN ST"),
		"abbreviation differences do not lower the score")
	assert.Equal(t, 0.0, AddressMatchScore("9 Oak Dr", "123 Main St"))
	assert.Equal(t, 0.0, AddressMatchScore("", "123 Main St"))

	// two of three search tokens present
	assert.InDelta(t, 2.0/3.0, AddressMatchScore("123 Main Apt 4", "123 Main St"), 0.001)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   float64
		wantOK bool
	}{
		{"dollar and commas", "$1,000.50", 1000.50, true},
		{"bare number", "250", 250, true},
		{"zero rejected", "0", 0, false},
		{"negative rejected", "-50", 0, false},
		{"blank rejected", "  ", 0, false},
		{"null literal rejected", "NULL", 0, false},
		{"garbage rejected", "abc", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$1,234.56", FormatCurrency("1234.56"))
	assert.Equal(t, "$1,000,000.00", FormatCurrency("$1,000,000"))
	assert.Equal(t, "$250.00", FormatCurrency("250"))
	assert.Equal(t, "not-a-number", FormatCurrency("not-a-number"), "unparseable input passes through")
}
