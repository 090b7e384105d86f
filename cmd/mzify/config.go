package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"mzify/internal/logs"
)

const configFileName = "mzify.toml"

type fileConfig struct {
	Path    string        `toml:"-"`
	Convert convertConfig `toml:"convert"`
	Cache   cacheConfig   `toml:"cache"`
	Log     logs.Config   `toml:"log"`
}

type convertConfig struct {
	KeepMVColor  bool   `toml:"keep_mv_color"`
	InjectHeader bool   `toml:"inject_header"`
	Suffix       string `toml:"suffix"`
	Jobs         int    `toml:"jobs"`
	ReportFormat string `toml:"report_format"`
}

type cacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

func findConfigFile(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadConfigFile(path string) (*fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if cfg.Convert.Jobs < 0 {
		return nil, fmt.Errorf("%s: [convert].jobs must not be negative", path)
	}
	if dir := strings.TrimSpace(cfg.Cache.Dir); dir != "" && !filepath.IsAbs(dir) {
		cfg.Cache.Dir = filepath.Join(filepath.Dir(path), dir)
	}
	if file := strings.TrimSpace(cfg.Log.File); file != "" && !filepath.IsAbs(file) {
		cfg.Log.File = filepath.Join(filepath.Dir(path), file)
	}
	cfg.Path = path
	return &cfg, nil
}

// loadConfig resolves the configuration for a run. An explicit path must
// exist; otherwise the nearest mzify.toml above startDir is used, and a
// missing file yields zero values.
func loadConfig(explicit, startDir string) (*fileConfig, error) {
	if explicit != "" {
		return loadConfigFile(explicit)
	}
	path, ok, err := findConfigFile(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &fileConfig{}, nil
	}
	return loadConfigFile(path)
}
