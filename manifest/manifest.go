// Package manifest handles kindling.toml project configuration and the
// TOML program description format.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project configuration file.
const FileName = "kindling.toml"

// Manifest represents a kindling.toml project configuration.
type Manifest struct {
	Project   Project   `toml:"project"`
	Source    Source    `toml:"source"`
	Companion Companion `toml:"companion"`
	Output    Output    `toml:"output"`
	Compile   Compile   `toml:"compile"`

	// Dir is the directory containing the kindling.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name  string `toml:"name"`
	Owner string `toml:"owner"`
}

// Source configures where program descriptions live.
type Source struct {
	Dirs []string `toml:"dirs"`
}

// Companion configures delivery to the companion process.
type Companion struct {
	Addr     string `toml:"addr"`
	Protocol string `toml:"protocol"`
	Pace     string `toml:"pace"`
}

// Output configures compiled artifact destinations.
type Output struct {
	Bundle  string `toml:"bundle"`
	History string `toml:"history"`
}

// Compile configures the compile stage.
type Compile struct {
	Permissive bool `toml:"permissive"`
}

// Load parses a kindling.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Source.Dirs) == 0 {
		m.Source.Dirs = []string{"src"}
	}
	if m.Companion.Protocol == "" {
		m.Companion.Protocol = "nbt"
	}
	if _, err := m.PaceDuration(); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a kindling.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourceDirPaths returns absolute paths for the configured source directories.
func (m *Manifest) SourceDirPaths() []string {
	var paths []string
	for _, d := range m.Source.Dirs {
		paths = append(paths, filepath.Join(m.Dir, d))
	}
	return paths
}

// PaceDuration parses the delay between companion deliveries.
// An empty pace means no delay.
func (m *Manifest) PaceDuration() (time.Duration, error) {
	if m.Companion.Pace == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(m.Companion.Pace)
	if err != nil {
		return 0, fmt.Errorf("companion.pace: %w", err)
	}
	return d, nil
}

// HistoryPath returns the absolute path of the history database, or ""
// when history is disabled.
func (m *Manifest) HistoryPath() string {
	return m.resolve(m.Output.History)
}

// BundlePath returns the absolute path of the bundle output, or "".
func (m *Manifest) BundlePath() string {
	return m.resolve(m.Output.Bundle)
}

func (m *Manifest) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
