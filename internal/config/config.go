package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all bot configuration
type Config struct {
	Nick       string   `yaml:"nick"`
	NickPass   string   `yaml:"nick_pass"`
	Alternate  string   `yaml:"alternate"`
	Server     string   `yaml:"server"`
	Port       int      `yaml:"port"`
	ServerPass string   `yaml:"server_pass"`
	IRCName    string   `yaml:"irc_name"`
	Username   string   `yaml:"username"`
	Channels   []string `yaml:"channels"`

	// Casemapping is the folding mode used for nick and channel
	// comparisons until the server advertises one: ascii, rfc1459 or
	// strict-rfc1459.
	Casemapping string `yaml:"casemapping"`

	// HistoryDepth is how many lines are remembered per user per channel.
	HistoryDepth int `yaml:"history_depth"`

	// MetricsAddr, when set, exposes Prometheus metrics on that address.
	MetricsAddr string `yaml:"metrics_addr"`
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults
	if cfg.Port == 0 {
		cfg.Port = 6667
	}
	if cfg.Alternate == "" && cfg.Nick != "" {
		cfg.Alternate = cfg.Nick + "_"
	}
	if cfg.Username == "" {
		cfg.Username = cfg.Nick
	}
	if cfg.IRCName == "" {
		cfg.IRCName = cfg.Nick
	}
	if cfg.Casemapping == "" {
		cfg.Casemapping = "rfc1459"
	}
	if cfg.HistoryDepth == 0 {
		cfg.HistoryDepth = 10
	}

	return &cfg, nil
}
