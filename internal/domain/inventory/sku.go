package inventory

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var digitRun = regexp.MustCompile(`\d+`)

// identifierCode keeps the first n upper-cased letters and digits of s and
// right-pads the result with 'X'.
func identifierCode(s string, n int) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(s) {
		if b.Len() == n {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	for b.Len() < n {
		b.WriteByte('X')
	}
	return b.String()
}

// nameOrModelToken prefers the model. Without one it takes the first word of
// the name that contains a digit, falling back to the first word.
func nameOrModelToken(name, model string) string {
	if strings.TrimSpace(model) != "" {
		return identifierCode(model, 4)
	}
	words := strings.Fields(name)
	for _, w := range words {
		if digitRun.MatchString(w) {
			return identifierCode(w, 4)
		}
	}
	if len(words) > 0 {
		return identifierCode(words[0], 4)
	}
	return identifierCode("", 4)
}

// SKUPrefix returns BRAND(3)-CATEGORY(3)-TOKEN(4); the sequence is appended
// by FormatSKU.
func SKUPrefix(brand, category, name, model string) string {
	return identifierCode(brand, 3) + "-" + identifierCode(category, 3) + "-" + nameOrModelToken(name, model)
}

// FormatSKU appends a two digit sequence to a prefix
func FormatSKU(prefix string, sequence int) string {
	return fmt.Sprintf("%s-%02d", prefix, sequence)
}

// firstNumericToken returns the first three digits of the first digit run in
// name, left-padded with zeros, or "000" when name has no digits.
func firstNumericToken(name string) string {
	run := digitRun.FindString(name)
	if len(run) > 3 {
		run = run[:3]
	}
	return strings.Repeat("0", 3-len(run)) + run
}

// BarcodeStem returns PAR-BRAND(3)NUM(3); FormatBarcode adds the random suffix
func BarcodeStem(brand, name string) string {
	return "PAR-" + identifierCode(brand, 3) + firstNumericToken(name)
}

// FormatBarcode appends a four digit suffix to a stem
func FormatBarcode(stem string, suffix int) string {
	if suffix < 0 {
		suffix = -suffix
	}
	return fmt.Sprintf("%s-%04d", stem, suffix%10000)
}
