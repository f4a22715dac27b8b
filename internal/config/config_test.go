package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sedbot-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	content := `nick: sedbot
server: irc.example.net
port: 6697
channels:
  - "#main"
  - "#staff"
casemapping: ascii
history_depth: 25
metrics_addr: "127.0.0.1:9120"
`
	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Nick != "sedbot" || cfg.Server != "irc.example.net" || cfg.Port != 6697 {
		t.Errorf("unexpected connection settings: %+v", cfg)
	}
	if len(cfg.Channels) != 2 || cfg.Channels[0] != "#main" {
		t.Errorf("channels = %v", cfg.Channels)
	}
	if cfg.Casemapping != "ascii" {
		t.Errorf("casemapping = %q, want ascii", cfg.Casemapping)
	}
	if cfg.HistoryDepth != 25 {
		t.Errorf("history_depth = %d, want 25", cfg.HistoryDepth)
	}
	if cfg.MetricsAddr != "127.0.0.1:9120" {
		t.Errorf("metrics_addr = %q", cfg.MetricsAddr)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "sedbot-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(path, []byte("nick: sedbot\nserver: irc.example.net\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != 6667 {
		t.Errorf("default port = %d, want 6667", cfg.Port)
	}
	if cfg.Alternate != "sedbot_" {
		t.Errorf("default alternate = %q, want sedbot_", cfg.Alternate)
	}
	if cfg.Username != "sedbot" || cfg.IRCName != "sedbot" {
		t.Errorf("default username/irc_name = %q/%q", cfg.Username, cfg.IRCName)
	}
	if cfg.Casemapping != "rfc1459" {
		t.Errorf("default casemapping = %q, want rfc1459", cfg.Casemapping)
	}
	if cfg.HistoryDepth != 10 {
		t.Errorf("default history_depth = %d, want 10", cfg.HistoryDepth)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load should fail for a missing file")
	}
}
