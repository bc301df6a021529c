package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tapline/tapline/internal/config"
)

func withConfigDir(t *testing.T, body string) {
	t.Helper()
	dir := t.TempDir()
	if body != "" {
		if err := os.WriteFile(filepath.Join(dir, config.DefaultConfigFile), []byte(body), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	old := configDir
	configDir = dir
	t.Cleanup(func() { configDir = old })
}

func TestRunActionMissingConfig(t *testing.T) {
	withConfigDir(t, "")

	err := runAction(runCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("err = %v, want load config failure", err)
	}
}

func TestRunActionMissingSlackToken(t *testing.T) {
	withConfigDir(t, `
profiles:
  - username: antenna_america_tokyo
    display_name: antenna america tokyo
slack:
  channel_id: C0TESTCHAN
  token_env: TAPLINE_TEST_TOKEN
`)
	os.Unsetenv("TAPLINE_TEST_TOKEN")

	err := runAction(runCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "TAPLINE_TEST_TOKEN") {
		t.Fatalf("err = %v, want missing token error naming the env var", err)
	}
}

func TestRunActionBootstrapStillRequiresToken(t *testing.T) {
	withConfigDir(t, `
profiles:
  - username: antenna_america_tokyo
    display_name: antenna america tokyo
slack:
  channel_id: C0TESTCHAN
  token_env: TAPLINE_TEST_TOKEN
`)
	os.Unsetenv("TAPLINE_TEST_TOKEN")

	old := runBootstrap
	runBootstrap = true
	t.Cleanup(func() { runBootstrap = old })

	err := runAction(runCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "TAPLINE_TEST_TOKEN") {
		t.Fatalf("err = %v, want missing token error in bootstrap mode too", err)
	}
}
