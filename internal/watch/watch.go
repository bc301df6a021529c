// Package watch runs one polling pass over the configured profiles.
package watch

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tapline/tapline/internal/caption"
	"github.com/tapline/tapline/internal/config"
	"github.com/tapline/tapline/internal/ledger"
	"github.com/tapline/tapline/internal/notify"
	"github.com/tapline/tapline/internal/source"
)

// Runner processes profiles sequentially: fetch candidates, diff against the
// ledger, announce unseen posts. Collaborators are injected so tests can
// substitute fakes.
type Runner struct {
	Source     source.Source
	Notifier   notify.Notifier // unused in bootstrap mode
	Ledger     *ledger.Store
	FetchCount int
	Since      time.Time
	Location   *time.Location // display timezone for post timestamps
	Log        *zap.Logger
}

// Run executes one pass. In bootstrap mode every candidate is marked seen
// without any delivery. A nil return means the pass completed; individual
// delivery or rate-limit failures are logged and retried on the next run.
func (r *Runner) Run(profiles []config.Profile, bootstrap bool) error {
	if r.Log == nil {
		r.Log = zap.NewNop()
	}
	if r.Location == nil {
		r.Location = time.UTC
	}

	for _, profile := range profiles {
		r.Log.Info("fetching recent posts",
			zap.String("profile", profile.Username), zap.Int("count", r.FetchCount))

		posts, err := r.Source.Fetch(profile.Username, r.FetchCount, r.Since)
		if err != nil {
			// Login, not-found, and private-profile failures abort the whole
			// run. Not-found/private aborting the remaining profiles too is
			// a long-standing asymmetry against rate limiting, kept as is.
			if errors.Is(err, source.ErrLoginRequired) ||
				errors.Is(err, source.ErrProfileNotFound) ||
				errors.Is(err, source.ErrProfilePrivate) {
				return fmt.Errorf("fetch %s: %w", profile.Username, err)
			}
			// Rate limits and connectivity failures cost this profile one
			// cycle; any posts fetched before the failure still count.
			r.Log.Warn("fetch incomplete, remainder retried next run",
				zap.String("profile", profile.Username), zap.Error(err))
		}

		r.Log.Info("fetched posts", zap.String("profile", profile.Username), zap.Int("posts", len(posts)))

		if bootstrap {
			err = r.bootstrap(profile, posts)
		} else {
			err = r.announce(profile, posts)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// bootstrap marks every candidate as seen without delivering, so the first
// real run does not flood the channel with history.
func (r *Runner) bootstrap(profile config.Profile, posts []source.Post) error {
	seen, err := r.Ledger.Load()
	if err != nil {
		return err
	}

	added := 0
	for _, post := range posts {
		key := ledger.Key(profile.Username, post.Shortcode)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			added++
		}
	}
	if err := r.Ledger.Save(seen); err != nil {
		return err
	}

	r.Log.Info("bootstrap complete",
		zap.String("profile", profile.Username), zap.Int("added", added), zap.Int("total", len(seen)))
	return nil
}

// announce delivers unseen posts oldest first, persisting the ledger after
// each successful delivery so a crash never loses confirmed announcements
// and never marks undelivered posts as seen.
func (r *Runner) announce(profile config.Profile, posts []source.Post) error {
	seen, err := r.Ledger.Load()
	if err != nil {
		return err
	}

	var newPosts []source.Post
	for _, post := range posts {
		if _, ok := seen[ledger.Key(profile.Username, post.Shortcode)]; !ok {
			newPosts = append(newPosts, post)
		}
	}

	if len(newPosts) == 0 {
		r.Log.Info("no new posts", zap.String("profile", profile.Username))
		return nil
	}

	r.Log.Info("new posts detected",
		zap.String("profile", profile.Username), zap.Int("posts", len(newPosts)))

	sort.Slice(newPosts, func(i, j int) bool {
		return newPosts[i].TakenAt.Before(newPosts[j].TakenAt)
	})

	for _, post := range newPosts {
		r.Log.Info("processing post",
			zap.String("profile", profile.Username), zap.String("shortcode", post.Shortcode))

		res := caption.Extract(post.Caption, profile.BreweryName)
		text := notify.FormatMessage(
			res.BeerName, res.BreweryName,
			post.TakenAt.In(r.Location), post.Shortcode, post.Caption, profile.DisplayName)

		if err := r.Notifier.Deliver(text); err != nil {
			// Not marked seen, so the next run retries this post.
			r.Log.Error("delivery failed, post will be retried next run",
				zap.String("profile", profile.Username),
				zap.String("shortcode", post.Shortcode), zap.Error(err))
			continue
		}

		seen[ledger.Key(profile.Username, post.Shortcode)] = struct{}{}
		if err := r.Ledger.Save(seen); err != nil {
			return err
		}
	}

	return nil
}
