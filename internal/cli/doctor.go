package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tapline/tapline/internal/config"
	"github.com/tapline/tapline/internal/ledger"
	"github.com/tapline/tapline/internal/notify"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, credentials, and ledger health",
	RunE:  doctorAction,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func doctorAction(_ *cobra.Command, _ []string) error {
	ok := true

	// Config dir
	if info, err := os.Stat(configDir); err != nil || !info.IsDir() {
		printCheck(false, "config directory %s", configDir)
		ok = false
	} else {
		printCheck(true, "config directory %s", configDir)
	}

	// Config file
	cfg, err := config.Load(configDir)
	if err != nil {
		printCheck(false, "config.yaml: %v", err)
		return fmt.Errorf("some checks failed")
	}
	printCheck(true, "config.yaml (%d profiles, fetch count %d)", len(cfg.Profiles), cfg.Fetch.Count)

	// Timezone
	if _, err := cfg.Location(); err != nil {
		printCheck(false, "timezone %s: %v", cfg.Fetch.Timezone, err)
		ok = false
	} else {
		printCheck(true, "timezone %s", cfg.Fetch.Timezone)
	}

	// Slack token + auth
	if cfg.Slack.Token == "" {
		printCheck(false, "slack token (%s is not set)", cfg.Slack.TokenEnv)
		ok = false
	} else {
		printCheck(true, "slack token (%s)", cfg.Slack.TokenEnv)
		sn, err := notify.NewSlack(cfg.Slack.Token, cfg.Slack.ChannelID, zap.NewNop())
		if err != nil {
			printCheck(false, "slack client: %v", err)
			ok = false
		} else if err := sn.CheckAuth(); err != nil {
			printCheck(false, "slack auth: %v", err)
			ok = false
		} else {
			printCheck(true, "slack auth (channel %s)", cfg.Slack.ChannelID)
		}
	}

	// Instagram credentials
	if cfg.Instagram.Username == "" || cfg.Instagram.Password == "" {
		printInfo("instagram credentials not set, fetching will be anonymous")
	} else {
		printCheck(true, "instagram credentials")
		if _, err := os.Stat(cfg.Instagram.SessionFile); err != nil {
			printInfo("no instagram session file yet, first run will log in")
		} else {
			printCheck(true, "instagram session %s", cfg.Instagram.SessionFile)
		}
	}

	if os.Getenv("CI") != "" {
		printInfo("CI is set, instagram login is disabled")
	}

	// Ledger
	store, err := ledger.NewStore(cfg.Ledger.Path, cfg.Ledger.LegacyProfile, zap.NewNop())
	if err != nil {
		printCheck(false, "ledger: %v", err)
		ok = false
	} else if seen, err := store.Load(); err != nil {
		printCheck(false, "ledger %s: %v", cfg.Ledger.Path, err)
		ok = false
	} else {
		printCheck(true, "ledger %s (%d seen posts)", cfg.Ledger.Path, len(seen))
	}

	if !ok {
		return fmt.Errorf("some checks failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

func printCheck(pass bool, format string, args ...any) {
	mark := "FAIL"
	if pass {
		mark = " OK "
	}
	fmt.Printf("[%s] %s\n", mark, fmt.Sprintf(format, args...))
}

func printInfo(format string, args ...any) {
	fmt.Printf("[INFO] %s\n", fmt.Sprintf(format, args...))
}
