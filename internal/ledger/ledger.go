// Package ledger persists the set of already-announced posts as a flat JSON
// file, so the file stays reviewable and hand-editable.
package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Set holds seen keys of the form "username:shortcode".
type Set map[string]struct{}

// Store reads and writes the ledger file.
type Store struct {
	path          string
	legacyProfile string
	log           *zap.Logger
}

// NewStore creates a ledger store. Entries predating profile-prefixed keys are
// attributed to legacyProfile on load.
func NewStore(path, legacyProfile string, log *zap.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("ledger: path is required")
	}
	if strings.TrimSpace(legacyProfile) == "" {
		return nil, errors.New("ledger: legacy profile is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{path: path, legacyProfile: legacyProfile, log: log}, nil
}

// Key builds the composite seen key for a post.
func Key(username, shortcode string) string {
	return username + ":" + shortcode
}

// Load reads the ledger file. A missing file yields an empty set. A file that
// is not a JSON string array also yields an empty set, with a warning, so a
// corrupted ledger degrades to re-announcing rather than halting the run.
func (s *Store) Load() (Set, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("ledger: read %s: %w", s.path, err)
	}

	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		s.log.Warn("ledger file is malformed, starting from an empty set",
			zap.String("path", s.path), zap.Error(err))
		return Set{}, nil
	}

	set := make(Set, len(entries))
	for _, entry := range entries {
		if !strings.Contains(entry, ":") {
			entry = Key(s.legacyProfile, entry)
		}
		set[entry] = struct{}{}
	}
	return set, nil
}

// Save writes the full set back as a sorted, indented JSON array. The write
// goes through a temp file and rename so readers never observe a partial file.
func (s *Store) Save(set Set) error {
	entries := make([]string, 0, len(set))
	for entry := range set {
		entries = append(entries, entry)
	}
	sort.Strings(entries)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("ledger: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("ledger: create dir: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".seen_posts-*")
	if err != nil {
		return fmt.Errorf("ledger: create temp: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("ledger: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("ledger: close temp: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("ledger: rename: %w", err)
	}
	return nil
}
