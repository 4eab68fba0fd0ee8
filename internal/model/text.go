package model

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText NFC-normalizes s and trims surrounding whitespace.
// Mobile and web clients submit the same names in different normal forms;
// comparing or storing un-normalized text produces spurious differences.
func NormalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
