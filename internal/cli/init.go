package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tapline/tapline/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create example config files",
	RunE:  initAction,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func initAction(_ *cobra.Command, _ []string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	created := 0

	configPath := filepath.Join(configDir, config.DefaultConfigFile)
	wrote, err := writeIfNotExists(configPath, []byte(exampleConfig))
	if err != nil {
		return err
	}
	if wrote {
		created++
	}

	envPath := filepath.Join(configDir, ".env.example")
	wrote, err = writeIfNotExists(envPath, []byte(exampleEnv))
	if err != nil {
		return err
	}
	if wrote {
		created++
	}

	if created == 0 {
		fmt.Printf("Config directory %s already initialized.\n", configDir)
	} else {
		fmt.Printf("Initialized %s with %d config files.\n", configDir, created)
	}
	return nil
}

// writeIfNotExists writes data to path if the file does not exist.
// Returns true if the file was created.
func writeIfNotExists(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("  exists: %s\n", path)
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Printf("  created: %s\n", path)
	return true, nil
}

const exampleConfig = `# tapline configuration

profiles:
  - username: antenna_america_tokyo
    display_name: antenna america tokyo
  - username: inkhorn_brewing
    display_name: Inkhorn Brewing
    brewery_name: Inkhorn Brewing

fetch:
  count: 10
  since: 2026-02-01T00:00:00Z
  timezone: Asia/Tokyo

instagram:
  username_env: INSTAGRAM_USERNAME
  password_env: INSTAGRAM_PASSWORD
  session_file: .tapline/instagram_session.json

slack:
  channel_id: C0AFFKY9DHB
  token_env: SLACK_BOT_TOKEN

ledger:
  path: seen_posts.json
  legacy_profile: antenna_america_tokyo
`

const exampleEnv = `# Copy to .env and fill in.

SLACK_BOT_TOKEN=xoxb-...

# Optional: without these, fetching is anonymous and rate limits hit sooner.
INSTAGRAM_USERNAME=
INSTAGRAM_PASSWORD=
`
