package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tapline/tapline/internal/config"
	"github.com/tapline/tapline/internal/ledger"
	"github.com/tapline/tapline/internal/notify"
	"github.com/tapline/tapline/internal/source"
	"github.com/tapline/tapline/internal/watch"
)

var runBootstrap bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch new posts and announce them to Slack",
	RunE:  runAction,
}

func init() {
	runCmd.Flags().BoolVar(&runBootstrap, "bootstrap", false,
		"mark current posts as seen without announcing them (initial setup)")
	rootCmd.AddCommand(runCmd)
}

func runAction(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Checked before any fetch, in bootstrap mode too, so a misconfigured
	// deployment fails fast instead of after burning Instagram requests.
	if cfg.Slack.Token == "" {
		return fmt.Errorf("slack token env %s is not set", cfg.Slack.TokenEnv)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	store, err := ledger.NewStore(cfg.Ledger.Path, cfg.Ledger.LegacyProfile, log)
	if err != nil {
		return err
	}

	ig, err := source.NewInstagram(cfg.Instagram.Username, cfg.Instagram.Password, cfg.Instagram.SessionFile, log)
	if err != nil {
		return err
	}

	var notifier notify.Notifier
	if !runBootstrap {
		notifier, err = notify.NewSlack(cfg.Slack.Token, cfg.Slack.ChannelID, log)
		if err != nil {
			return err
		}
	}

	runner := &watch.Runner{
		Source:     ig,
		Notifier:   notifier,
		Ledger:     store,
		FetchCount: cfg.Fetch.Count,
		Since:      cfg.Fetch.Since,
		Location:   loc,
		Log:        log,
	}

	if err := runner.Run(cfg.Profiles, runBootstrap); err != nil {
		log.Error("run failed", zap.Error(err))
		return err
	}
	return nil
}
