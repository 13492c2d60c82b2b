package sources

import (
	"regexp"
	"strings"
)

// brandPrefixes are vendor names and part-code prefixes that make stock
// photo searches worse. They are only removed from the very start of the name.
var brandPrefixes = []string{"daikin", "carrier", "thermoking", "tk-", "q-"}

var (
	parentheticalRegex  = regexp.MustCompile(`\([^)]*\)`)
	multipleSpacesRegex = regexp.MustCompile(`\s+`)
)

// CleanSearchTerm turns a catalog product name into a stock photo search phrase.
//
// Prefixes are checked against the name as given, so a brand inside
// parentheses such as "(Daikin)" is not a prefix; it is removed afterwards
// together with every other parenthetical fragment.
func CleanSearchTerm(productName string) string {
	cleaned := productName

	for _, prefix := range brandPrefixes {
		if strings.HasPrefix(strings.ToLower(cleaned), prefix) {
			cleaned = strings.TrimSpace(cleaned[len(prefix):])
		}
	}

	cleaned = parentheticalRegex.ReplaceAllString(cleaned, "")
	cleaned = multipleSpacesRegex.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}
