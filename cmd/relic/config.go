package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the relic configuration file (~/.config/relic/config.yaml).
type Config struct {
	// Game selects the default engine release when --game is not given.
	Game string `yaml:"game"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "relic", "config.yaml")
}

// applyGameConfig applies the config file default when the corresponding
// CLI flag was not explicitly set.
func applyGameConfig(c *cli.Command, cfg Config, game *string) {
	if cfg.Game != "" && !c.IsSet("game") {
		*game = cfg.Game
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, game *string, addr *string) {
	applyGameConfig(c, cfg, game)
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
