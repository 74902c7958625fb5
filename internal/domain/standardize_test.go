package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"trims and uppercases", "  seattle ", "SEATTLE"},
		{"collapses internal whitespace", "new   york\tcity", "NEW YORK CITY"},
		{"folds diacritics", "Montréal", "MONTREAL"},
		{"keeps punctuation", "St. Louis", "ST. LOUIS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanText(tt.in))
		})
	}
}

func TestStandardizeOwnerName(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"leading article and abbreviation", "The Boeing Co.", "BOEING CO"},
		{"already standard", "BOEING CO", "BOEING CO"},
		{"spelled out company", "Boeing Company", "BOEING CO"},
		{"corporation", "Textron Aviation Corporation", "TEXTRON AVIATION CORP"},
		{"incorporated with comma", "Acme Flying, Incorporated", "ACME FLYING INC"},
		{"dotted llc", "Skyward Aviation L.L.C.", "SKYWARD AVIATION LLC"},
		{"spaced llc", "SKYWARD AVIATION L L C", "SKYWARD AVIATION LLC"},
		{"limited liability company", "Skyward Aviation Limited Liability Company", "SKYWARD AVIATION LLC"},
		{"limited partnership", "Blue Sky Limited Partnership", "BLUE SKY LP"},
		{"and becomes ampersand", "Smith and Sons", "SMITH & SONS"},
		{"ampersand spacing", "Smith&Sons", "SMITH & SONS"},
		{"apostrophe dropped", "O'Brien Aero", "OBRIEN AERO"},
		{"hyphen splits words", "Coca-Cola Enterprises", "COCA COLA ENTERPRISES"},
		{"lone article kept", "The", "THE"},
		{"individual name", "SMITH JOHN A", "SMITH JOHN A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StandardizeOwnerName(tt.in))
		})
	}
}

func TestStandardizeOwnerName_Converges(t *testing.T) {
	variants := []string{"The Boeing Co.", "BOEING CO", "Boeing Company", "the  boeing   company"}
	for _, v := range variants {
		assert.Equal(t, "BOEING CO", StandardizeOwnerName(v), v)
	}
}

func TestStandardizeOwnerName_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"The Boeing Co.",
		"THE THE FOO",
		"The",
		"L L L C",
		"LIMITED LIMITED PARTNERSHIP",
		"Ltd. Liability Co. Holdings, L.P.",
		"Société Générale & Cie",
		"A&B AND C",
		"O'Hare Flyers' Assn.",
		"123 Main-St. Partners (USA)",
		" non breaking space",
	}

	for _, in := range inputs {
		once := StandardizeOwnerName(in)
		assert.Equal(t, once, StandardizeOwnerName(once), "input %q", in)
	}
}

func TestCombineAddress(t *testing.T) {
	tests := []struct {
		name     string
		line1    string
		line2    string
		expected string
	}{
		{"both lines", "100 Main St", "Suite 2", "100 MAIN ST SUITE 2"},
		{"first only", "100 Main St", "", "100 MAIN ST"},
		{"second only", "", "PO Box 12", "PO BOX 12"},
		{"blank lines", "  ", "\t", ""},
		{"padded lines", " 100  Main St ", " Suite 2 ", "100 MAIN ST SUITE 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CombineAddress(tt.line1, tt.line2))
		})
	}
}

func TestStandardizeState(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"empty", "", ""},
		{"code", "WA", "WA"},
		{"lowercase code", " wa ", "WA"},
		{"full name", "Washington", "WA"},
		{"multi word name", "new  hampshire", "NH"},
		{"district", "District of Columbia", "DC"},
		{"territory", "Puerto Rico", "PR"},
		{"military", "AE", "AE"},
		{"unrecognized passes through", "QC", "QC"},
		{"unrecognized name is uppercased", "Ontario", "ONTARIO"},
		{"unrecognized name is cleaned", "  Île  de France ", "ILE DE FRANCE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StandardizeState(tt.in))
		})
	}
}

func TestStandardizeZip(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"empty", "", ""},
		{"five digits", "98101", "98101"},
		{"zip plus four", "98101-1234", "98101"},
		{"zip plus four without hyphen", "981011234", "98101"},
		{"padded", " 02139 ", "02139"},
		{"trailing hyphen", "98101-", "98101"},
		{"too short", "9810", ""},
		{"foreign postal code", "H3Z 2Y7", ""},
		{"letters", "ABCDE", ""},
		{"partial plus four", "98101-12", "98101"},
		{"space separated plus four", "98101 1234", "98101"},
		{"space separated partial", "98101 12", "98101"},
		{"six digits", "981012", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StandardizeZip(tt.in))
		})
	}
}
