// Package rules implements the trading-rules dispatch table: given a demand
// habitat and a candidate supply habitat, is the substitution legally
// admissible. Area, hedgerow and watercourse each get their own
// implementation behind a common signature, selected by umbrella type — a
// function-table dispatch rather than an inheritance hierarchy.
package rules

import (
	"regexp"
	"strings"
)

var collapseWhitespace = regexp.MustCompile(`\s+`)

// canonicalPrefixes strips a fixed set of filler prefixes the workbook and
// catalogue are known to use interchangeably.
var canonicalPrefixes = []string{
	"other ",
}

// Canonicalise normalises a habitat name for trading-rule comparison:
// collapse whitespace/case, strip known filler prefixes.
func Canonicalise(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = collapseWhitespace.ReplaceAllString(n, " ")
	for _, p := range canonicalPrefixes {
		if strings.HasPrefix(n, p) {
			n = strings.TrimPrefix(n, p)
			break
		}
	}
	return n
}

// SameHabitat reports whether two habitat names refer to the same habitat
// after canonicalisation.
func SameHabitat(a, b string) bool {
	return Canonicalise(a) == Canonicalise(b)
}
