package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Token        string   `toml:"token"`
	Workspace    string   `toml:"workspace"`
	CachePath    string   `toml:"cache_path"`
	Dependencies []string `toml:"dependencies"`
	ConfigPath   string   `toml:"-"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "release-notes", "config.toml")
}

func defaultWorkspace() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", "release-notes", "repos")
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cache", "release-notes", "http-cache.db")
}

// Load resolves configuration with the precedence: built-in defaults, then
// the config file, then environment, then CLI flags.
func Load(configPath, cliToken, cliWorkspace string, cliDeps []string) (*Config, error) {
	cfg := &Config{
		Workspace: defaultWorkspace(),
		CachePath: defaultCachePath(),
	}

	if configPath == "" {
		configPath = defaultConfigPath()
	}
	cfg.ConfigPath = configPath

	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if envToken := os.Getenv("GITHUB_TOKEN"); envToken != "" {
		cfg.Token = envToken
	}

	if cliToken != "" {
		cfg.Token = cliToken
	}
	if cliWorkspace != "" {
		cfg.Workspace = cliWorkspace
	}
	if len(cliDeps) > 0 {
		cfg.Dependencies = cliDeps
	}

	if cfg.Workspace == "" {
		cfg.Workspace = defaultWorkspace()
	}

	return cfg, nil
}
