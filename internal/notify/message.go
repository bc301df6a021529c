package notify

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	postURLBase    = "https://www.instagram.com/p/"
	excerptRunes   = 100
	postTimeLayout = "2006-01-02T15:04:05"
)

// FormatMessage renders the announcement for one post. postedAt is expected
// in the display timezone already; the layout deliberately omits the zone.
func FormatMessage(beerName, breweryName string, postedAt time.Time, shortcode, caption, displayName string) string {
	url := postURLBase + shortcode + "/"

	excerpt := strings.ReplaceAll(firstNRunes(caption, excerptRunes), "\n", " ")
	if utf8.RuneCountInString(caption) > excerptRunes {
		excerpt += "..."
	}

	return fmt.Sprintf(
		":beer: *新しいInstagram投稿 - %s*\n"+
			">*ビール名*: %s\n"+
			">*醸造所*: %s\n"+
			">*投稿日時*: %s\n"+
			">*投稿URL*: %s\n"+
			">*キャプション抜粋*: %s",
		displayName, beerName, breweryName, postedAt.Format(postTimeLayout), url, excerpt)
}

func firstNRunes(s string, n int) string {
	if n <= 0 || s == "" {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
