package source

import (
	"errors"
	"time"
)

// Post represents a single Instagram post.
type Post struct {
	Shortcode string    // unique within its profile, used in the post URL
	Caption   string    // raw caption text, possibly empty
	TakenAt   time.Time // publication timestamp, UTC
}

// Source fetches recent posts for one profile.
type Source interface {
	// Fetch returns up to limit posts published at or after since, newest
	// first. Failures are classified by the sentinel errors below so the
	// caller decides which ones abort the run; ErrRateLimited may accompany
	// a partial result.
	Fetch(username string, limit int, since time.Time) ([]Post, error)
}

// Fetch failure kinds, matched with errors.Is.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfilePrivate  = errors.New("profile is private")
	ErrRateLimited     = errors.New("rate limited")
	ErrLoginRequired   = errors.New("login required")
)
