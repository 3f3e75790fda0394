// Package config loads the optional per-project .includeparser.yaml file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up from the working directory upwards.
const FileName = ".includeparser.yaml"

// Config holds project defaults that command-line flags extend.
type Config struct {
	// IncludeDirs are searched after the includer's own directory, in order.
	IncludeDirs []string `yaml:"include_dirs"`
	// Defines are NAME, NAME=VALUE or NAME= entries applied before processing.
	Defines []string `yaml:"defines"`
	// SkipDirs are not descended into by static scans.
	SkipDirs []string `yaml:"skip_dirs"`
	// Format is the default graph output format.
	Format string `yaml:"format"`

	// dir is the directory the file was loaded from; relative paths resolve against it.
	dir string
}

// Load reads the config file at path. A missing file yields an empty config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return &cfg, nil
}

// Find looks for FileName in dir and its parents and returns the first path found.
func Find(dir string) (string, bool) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Discover loads the nearest config file above dir, or an empty config if there is none.
func Discover(dir string) (*Config, error) {
	path, ok := Find(dir)
	if !ok {
		return &Config{}, nil
	}
	return Load(path)
}

// IncludeDirectories returns the config's include directories followed by extra as one
// semicolon-delimited string. Relative config entries resolve against the config file's
// directory; extra entries are taken as given.
func (c *Config) IncludeDirectories(extra []string) string {
	dirs := make([]string, 0, len(c.IncludeDirs)+len(extra))
	for _, d := range c.IncludeDirs {
		dirs = append(dirs, c.resolve(d))
	}
	return join(append(dirs, extra...))
}

// SkipDirectories returns the config's skip directories followed by extra.
func (c *Config) SkipDirectories(extra []string) []string {
	dirs := make([]string, 0, len(c.SkipDirs)+len(extra))
	for _, d := range c.SkipDirs {
		dirs = append(dirs, c.resolve(d))
	}
	return append(dirs, extra...)
}

// DefineList returns the config's defines followed by extra as one semicolon-delimited
// string.
func (c *Config) DefineList(extra []string) string {
	return join(append(append([]string{}, c.Defines...), extra...))
}

func (c *Config) resolve(path string) string {
	if c.dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

func join(values []string) string {
	var kept []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ";")
}
