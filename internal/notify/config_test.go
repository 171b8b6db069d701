package notify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pocketpoker/internal/config"
)

const targetsYAML = `
targets:
  - platform: Discord
    endpoint: " https://discord.example/api/webhooks/1/abc "
    seasons: [default]
    events: [" Game.Settled "]
    enabled: true
  - platform: feishu
    endpoint: https://open.feishu.example/hook
    secret: "sig:s1"
    enabled: false
  - platform: feishu
    endpoint: ""
    enabled: true
`

func TestConfigFromServerReadsYAMLTargets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notify.yaml")
	if err := os.WriteFile(path, []byte(targetsYAML), 0o600); err != nil {
		t.Fatalf("write targets: %v", err)
	}

	cfg, err := ConfigFromServer(config.ServerConfig{
		NotifyEnabled:     true,
		NotifyConfigPath:  path,
		NotifyWorkers:     0,
		NotifyRetryMax:    -1,
		NotifyRetryBaseMS: 0,
	})
	if err != nil {
		t.Fatalf("ConfigFromServer() error = %v", err)
	}
	want := []Target{{
		Platform: "discord",
		Endpoint: "https://discord.example/api/webhooks/1/abc",
		Seasons:  []string{"default"},
		Events:   []string{"game.settled"},
		Enabled:  true,
	}}
	if diff := cmp.Diff(want, cfg.Targets); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
	if cfg.Workers != 2 || cfg.RetryMax != 0 || cfg.RetryBase != 500*time.Millisecond {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestConfigFromServerDisabledSkipsFile(t *testing.T) {
	cfg, err := ConfigFromServer(config.ServerConfig{NotifyConfigPath: "/does/not/exist.yaml"})
	if err != nil {
		t.Fatalf("ConfigFromServer() error = %v", err)
	}
	if cfg.Enabled || len(cfg.Targets) != 0 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestConfigFromServerMissingFile(t *testing.T) {
	_, err := ConfigFromServer(config.ServerConfig{NotifyEnabled: true, NotifyConfigPath: "/does/not/exist.yaml"})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParseTargetsRejectsBadYAML(t *testing.T) {
	if _, err := parseTargets([]byte("targets: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
