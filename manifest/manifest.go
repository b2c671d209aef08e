// Package manifest handles rickroll.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "rickroll.toml"

// Manifest represents a rickroll.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Source  Source  `toml:"source"`
	Build   Build   `toml:"build"`
	Cache   Cache   `toml:"cache"`

	// Dir is the directory containing the rickroll.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Source configures the program entry point.
type Source struct {
	Entry string `toml:"entry"`
}

// Build configures bytecode output.
type Build struct {
	Output string `toml:"output"`
}

// Cache configures the compile cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Exists reports whether dir contains a manifest file.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, FileName))
	return err == nil
}

// Load parses a rickroll.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if m.Source.Entry == "" {
		return nil, fmt.Errorf("%s: source.entry is required", path)
	}
	m.Dir = dir
	return &m, nil
}

// EntryPath returns the path of the program entry point, joined onto the
// manifest directory (relative when Dir is relative).
func (m *Manifest) EntryPath() string {
	return filepath.Join(m.Dir, m.Source.Entry)
}

// OutputPath returns the bytecode output path, defaulting to the entry
// file with a .rrbc extension.
func (m *Manifest) OutputPath() string {
	if m.Build.Output != "" {
		return filepath.Join(m.Dir, m.Build.Output)
	}
	entry := m.EntryPath()
	ext := filepath.Ext(entry)
	return entry[:len(entry)-len(ext)] + ".rrbc"
}

// CachePath returns the compile-cache database path, defaulting to
// ~/.rickroll/cache.db.
func (m *Manifest) CachePath() (string, error) {
	if m.Cache.Path != "" {
		return filepath.Join(m.Dir, m.Cache.Path), nil
	}
	return DefaultCachePath()
}

// DefaultCachePath returns ~/.rickroll/cache.db.
func DefaultCachePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(home, ".rickroll", "cache.db"), nil
}
