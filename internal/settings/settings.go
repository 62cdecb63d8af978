// Package settings holds the small configuration structures that travel
// alongside a compile (spec.md §6) and the registry-build manifest that
// precedes it (SPEC_FULL.md §3). Both are plain data; loading the YAML
// manifest is the only non-trivial behavior here.
package settings

import (
	"io"

	"github.com/goccy/go-yaml"
)

// Settings carries the per-compile knobs spec.md §6 defines: a loop-counter
// budget (0 disables the guard) and whether to emit debug-info line
// directives.
type Settings struct {
	MaxLoopCounter int  `yaml:"maxLoopCounter"`
	DebugInfo      bool `yaml:"debugInfo"`
}

// Default returns the Settings a CLI invocation falls back to
// when no manifest is supplied: no loop guard, debug-info on (scripts are
// short-lived and the line numbers are cheap).
func Default() Settings {
	return Settings{MaxLoopCounter: 0, DebugInfo: true}
}

// BuildManifest configures how a host process assembles its Registry at
// startup: which whitelist files to load, in what order, and the default
// Settings new compiles should use unless overridden.
type BuildManifest struct {
	WhitelistFiles []string `yaml:"whitelistFiles"`
	Settings       Settings `yaml:"settings"`
}

// LoadManifest reads a YAML build manifest.
func LoadManifest(r io.Reader) (*BuildManifest, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var m BuildManifest
	if err := yaml.Unmarshal(buf, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
