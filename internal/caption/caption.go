// Package caption extracts beer and brewery names from Instagram captions.
//
// The monitored accounts write captions in two dialects: a labeled form with
// "Name:" / "Style:" fields, and free-form Japanese text carrying latin
// product lines. Each dialect is its own Dialect implementation; Extract
// dispatches to the first one that recognizes the caption, so a new account
// convention is a new implementation, not a change here.
package caption

// Unknown is the sentinel rendered when a field cannot be extracted.
const Unknown = "不明"

// Result is the outcome of caption extraction.
type Result struct {
	BeerName    string
	BreweryName string
}

// Dialect recognizes one caption convention. Extract reports false when the
// caption does not belong to this dialect.
type Dialect interface {
	Extract(caption, breweryHint string) (Result, bool)
}

// dialects are tried in order; the labeled form takes absolute precedence.
var dialects = []Dialect{
	structuredDialect{},
	unstructuredDialect{},
}

// Extract parses a caption, using breweryHint verbatim as the brewery name
// when it is non-empty. Deterministic, no side effects.
func Extract(caption, breweryHint string) Result {
	if caption == "" {
		return Result{BeerName: Unknown, BreweryName: hintOr(breweryHint)}
	}
	for _, d := range dialects {
		if res, ok := d.Extract(caption, breweryHint); ok {
			return res
		}
	}
	return Result{BeerName: Unknown, BreweryName: hintOr(breweryHint)}
}

func hintOr(hint string) string {
	if hint != "" {
		return hint
	}
	return Unknown
}
