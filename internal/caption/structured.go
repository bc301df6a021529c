package caption

import (
	"regexp"
	"strings"
)

var (
	nameRe  = regexp.MustCompile(`(?m)^Name:\s*(.+)$`)
	styleRe = regexp.MustCompile(`(?m)^Style:\s*(.+)$`)
)

// structuredDialect handles captions with labeled "Name:" / "Style:" fields.
// The brewery is never inferred from the text in this dialect; it comes from
// the hint or stays unknown.
type structuredDialect struct{}

func (structuredDialect) Extract(caption, breweryHint string) (Result, bool) {
	m := nameRe.FindStringSubmatch(caption)
	if m == nil {
		return Result{}, false
	}

	beer := strings.TrimSpace(m[1])
	if sm := styleRe.FindStringSubmatch(caption); sm != nil {
		beer += " (" + strings.TrimSpace(sm[1]) + ")"
	}

	return Result{BeerName: beer, BreweryName: hintOr(breweryHint)}, true
}
