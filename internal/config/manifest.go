package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestName is the file flint looks for when resolving project settings.
const ManifestName = "flint.toml"

// Manifest is a discovered flint.toml together with its location.
// Values not present in the file keep their defaults; explicit CLI flags
// override the manifest in the command layer.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type manifestFile struct {
	Style styleSection `toml:"style"`
}

type styleSection struct {
	MaxLineLength       int  `toml:"max_line_length"`
	IndentWidth         int  `toml:"indent_width"`
	RequireFinalNewline bool `toml:"require_final_newline"`
	RequireDefaultCase  bool `toml:"require_default_case"`
}

// FindManifest walks upward from startDir looking for flint.toml.
func FindManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
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

// LoadManifest discovers and decodes flint.toml, layering explicit manifest
// values over the defaults. ok is false when no manifest exists (not an error).
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := decodeManifest(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func decodeManifest(path string) (*Manifest, error) {
	var raw manifestFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return nil, &InvalidConfigError{Reason: fmt.Sprintf("%s: failed to parse TOML: %v", path, err)}
	}
	for _, undecoded := range meta.Undecoded() {
		return nil, &InvalidConfigError{Reason: fmt.Sprintf("%s: unknown key %q", path, undecoded.String())}
	}

	m := &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: Default(),
	}
	if meta.IsDefined("style", "max_line_length") {
		m.Config.MaxLineLength = raw.Style.MaxLineLength
	}
	if meta.IsDefined("style", "indent_width") {
		m.Config.IndentWidth = raw.Style.IndentWidth
	}
	if meta.IsDefined("style", "require_final_newline") {
		m.Config.RequireFinalNewline = raw.Style.RequireFinalNewline
	}
	if meta.IsDefined("style", "require_default_case") {
		m.Config.RequireDefaultCase = raw.Style.RequireDefaultCase
	}
	if err := m.Config.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// DefaultManifest returns the starter flint.toml written by `flint init`.
func DefaultManifest() string {
	c := Default()
	return fmt.Sprintf(`[style]
max_line_length = %d
indent_width = %d
require_final_newline = %t
require_default_case = %t
`, c.MaxLineLength, c.IndentWidth, c.RequireFinalNewline, c.RequireDefaultCase)
}
