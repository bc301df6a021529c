package caption

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	beerLineMinRunes = 5
	beerLineMaxRunes = 80
)

var (
	// Latin brewery name before an optional @mention and the より connector
	// ("より新作", "よりの", or より at end of text).
	breweryRe = regexp.MustCompile(`([A-Za-z][A-Za-z0-9\s&\-]+?)\s+(?:@\w+\s+)?より(?:新作|の|$)`)

	// A standalone latin product line: starts with an uppercase letter and
	// carries no Japanese script.
	beerLineRe = regexp.MustCompile(`^[A-Z][A-Za-z0-9\s\-'&().]+$`)

	japaneseRe = regexp.MustCompile(`[ぁ-んァ-ン一-龥]`)
)

// unstructuredDialect handles free-form Japanese captions. The brewery is
// matched ahead of the より connector; product candidates are the standalone
// latin lines, joined in caption order.
type unstructuredDialect struct{}

func (unstructuredDialect) Extract(caption, breweryHint string) (Result, bool) {
	brewery := breweryHint
	if brewery == "" {
		brewery = Unknown
		if m := breweryRe.FindStringSubmatch(caption); m != nil {
			brewery = strings.TrimSpace(m[1])
		}
	}

	var beerLines []string
	for _, line := range strings.Split(caption, "\n") {
		trimmed := strings.TrimSpace(line)
		if !beerLineRe.MatchString(trimmed) || japaneseRe.MatchString(line) {
			continue
		}
		if n := utf8.RuneCountInString(trimmed); n <= beerLineMinRunes || n >= beerLineMaxRunes {
			continue
		}
		beerLines = append(beerLines, trimmed)
	}

	beer := Unknown
	if len(beerLines) > 0 {
		beer = strings.Join(beerLines, " / ")
	}

	return Result{BeerName: beer, BreweryName: brewery}, true
}
