package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultConfigPath returns $XDG_CONFIG_HOME/shear/config.toml, falling back
// to ~/.config/shear/config.toml. It returns "" when neither can be resolved.
func DefaultConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "shear", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "shear", "config.toml")
}

// LoadFile decodes the TOML file at path over cfg. Keys not present in the
// file keep their current values. Unknown keys are an error so typos do
// not pass silently.
func LoadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return fmt.Errorf("parse config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.CachePath = expandHome(cfg.CachePath)
	cfg.LogFile = expandHome(cfg.LogFile)
	return nil
}

// loadDefaultFile loads DefaultConfigPath if it exists.
func loadDefaultFile(cfg *Config) error {
	p := DefaultConfigPath()
	if p == "" {
		return nil
	}
	if _, err := os.Stat(p); err != nil {
		return nil
	}
	return LoadFile(p, cfg)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
