package caption

import (
	"strings"
	"testing"
)

func TestExtractEmptyCaption(t *testing.T) {
	got := Extract("", "")
	if got.BeerName != Unknown || got.BreweryName != Unknown {
		t.Errorf("got %+v, want both unknown", got)
	}

	got = Extract("", "Inkhorn Brewing")
	if got.BeerName != Unknown {
		t.Errorf("beer = %q, want %q", got.BeerName, Unknown)
	}
	if got.BreweryName != "Inkhorn Brewing" {
		t.Errorf("brewery = %q, want hint", got.BreweryName)
	}
}

func TestExtractStructuredNameAndStyle(t *testing.T) {
	caption := "新作のご案内です。\nName: Mejiro 2026\nStyle: Hazy IPA\nABV: 6.5%\n本日リリース！"

	got := Extract(caption, "Inkhorn Brewing")
	if got.BeerName != "Mejiro 2026 (Hazy IPA)" {
		t.Errorf("beer = %q, want %q", got.BeerName, "Mejiro 2026 (Hazy IPA)")
	}
	if got.BreweryName != "Inkhorn Brewing" {
		t.Errorf("brewery = %q, want hint", got.BreweryName)
	}
}

func TestExtractStructuredNameOnly(t *testing.T) {
	got := Extract("Name: Kuramae Porter\n本日より樽生で提供中です。", "")
	if got.BeerName != "Kuramae Porter" {
		t.Errorf("beer = %q, want %q", got.BeerName, "Kuramae Porter")
	}
	if got.BreweryName != Unknown {
		t.Errorf("brewery = %q, want %q (never inferred for labeled captions)", got.BreweryName, Unknown)
	}
}

func TestExtractStructuredTakesPrecedence(t *testing.T) {
	// Qualifying latin lines must be ignored once a Name: field exists.
	caption := "Name: Mejiro 2026\nHazy Little Thing IPA\nTorpedo Extra IPA\n"

	got := Extract(caption, "")
	if got.BeerName != "Mejiro 2026" {
		t.Errorf("beer = %q, want the labeled name only", got.BeerName)
	}
}

func TestExtractUnstructured(t *testing.T) {
	caption := strings.Join([]string{
		"Sierra Nevada @sierranevada より新作が入荷しました！",
		"",
		"Hazy Little Thing IPA",
		"Torpedo Extra IPA",
		"",
		"ぜひお試しください。",
	}, "\n")

	got := Extract(caption, "")
	if got.BreweryName != "Sierra Nevada" {
		t.Errorf("brewery = %q, want %q", got.BreweryName, "Sierra Nevada")
	}
	want := "Hazy Little Thing IPA / Torpedo Extra IPA"
	if got.BeerName != want {
		t.Errorf("beer = %q, want %q", got.BeerName, want)
	}
}

func TestExtractUnstructuredBreweryWithoutMention(t *testing.T) {
	got := Extract("Cloudwater より新作のご案内です。\nSmall Batch Pale Ale\n", "")
	if got.BreweryName != "Cloudwater" {
		t.Errorf("brewery = %q, want %q", got.BreweryName, "Cloudwater")
	}
}

func TestExtractUnstructuredHintSkipsInference(t *testing.T) {
	got := Extract("West Coast Brewing より新作\nOcean Daze IPA\n", "Inkhorn Brewing")
	if got.BreweryName != "Inkhorn Brewing" {
		t.Errorf("brewery = %q, want hint verbatim", got.BreweryName)
	}
}

func TestExtractUnstructuredNoMatches(t *testing.T) {
	got := Extract("本日も通常営業です。よろしくお願いします。", "")
	if got.BeerName != Unknown || got.BreweryName != Unknown {
		t.Errorf("got %+v, want both unknown", got)
	}
}

func TestCandidateLineFilter(t *testing.T) {
	cases := []struct {
		name string
		line string
		want bool
	}{
		{"qualifying line", "Hazy Little Thing IPA", true},
		{"leading and trailing spaces", "  Torpedo Extra IPA  ", true},
		{"punctuation allowed", "Bob's Brown Ale (2026)", true},
		{"too short at five runes", "IPA X", false},
		{"just above minimum", "IPA No2", true},
		{"too long", strings.Repeat("A", 80), false},
		{"lowercase start", "hazy little thing", false},
		{"starts with digit", "2026 Vintage Ale", false},
		{"contains japanese", "Hazy IPA 入荷", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.line, "")
			qualified := got.BeerName != Unknown
			if qualified != tc.want {
				t.Errorf("line %q qualified = %v, want %v (beer=%q)", tc.line, qualified, tc.want, got.BeerName)
			}
		})
	}
}

func TestExtractMultilineLinesEvaluatedIndependently(t *testing.T) {
	// A latin line glued to a Japanese line by a newline must not merge into
	// one spanning candidate.
	caption := "Fresh Hop Harvest Ale\n限定入荷です\nWinter Warmer Stout"

	got := Extract(caption, "")
	want := "Fresh Hop Harvest Ale / Winter Warmer Stout"
	if got.BeerName != want {
		t.Errorf("beer = %q, want %q", got.BeerName, want)
	}
}
