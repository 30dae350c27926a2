// Package config loads and validates YAML configuration for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-nb2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
)

// Field length limits to keep generated markup and filenames sane.
const (
	MaxTitleLength    = 200
	MaxSubtitleLength = 200
	MaxColorLength    = 20
	MaxTOCTitleLength = 100
	MaxStyleLength    = 4096 // style may be a name, a path, or inline CSS
)

// Config holds all configuration for document generation.
type Config struct {
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Document  DocumentConfig  `yaml:"document"`
	Page      PageConfig      `yaml:"page"`
	TOC       TOCConfig       `yaml:"toc"`
	TitlePage TitlePageConfig `yaml:"titlePage"`
	Style     StyleConfig     `yaml:"style"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default input directory (empty = must specify)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Default output directory (empty = same as source)
}

// DocumentConfig defines title page content and accent styling.
type DocumentConfig struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	AccentColor string `yaml:"accentColor"` // hex, e.g. "#41395f"
}

// PageConfig defines PDF page settings.
type PageConfig struct {
	Size   string  `yaml:"size"`   // "letter", "a4", "legal" (default: "a4")
	Margin float64 `yaml:"margin"` // inches (default: 0.59, the classic 1.5cm)
}

// TOCConfig defines table of contents options.
type TOCConfig struct {
	Enabled bool   `yaml:"enabled"`
	Title   string `yaml:"title"`
	Depth   int    `yaml:"depth"` // max heading level in the TOC (1-4)
}

// TitlePageConfig defines title page options.
type TitlePageConfig struct {
	Enabled bool `yaml:"enabled"`
}

// StyleConfig defines stylesheet options.
type StyleConfig struct {
	Name string `yaml:"name"` // asset name, file path, or inline CSS
}

// DefaultConfig returns a config with sensible defaults: A4 pages, TOC
// and title page enabled (the title page still requires a title).
func DefaultConfig() *Config {
	return &Config{
		TOC:       TOCConfig{Enabled: true},
		TitlePage: TitlePageConfig{Enabled: true},
	}
}

// configSearchDirs lists where named configs are looked up, in order.
func configSearchDirs() []string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "nb2pdf"))
	}
	return dirs
}

// LoadConfig loads a config by path or name. A value containing a path
// separator or .yaml/.yml suffix is treated as a direct path; otherwise
// the name is searched in the working directory and ~/.config/nb2pdf/.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, fmt.Errorf("%w: empty config name", ErrConfigNotFound)
	}

	path, err := resolvePath(nameOrPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePath maps a config name or path to a file path.
func resolvePath(nameOrPath string) (string, error) {
	if strings.ContainsAny(nameOrPath, "/\\") || hasYAMLExt(nameOrPath) {
		return nameOrPath, nil
	}

	for _, dir := range configSearchDirs() {
		for _, ext := range []string{".yaml", ".yml"} {
			candidate := filepath.Join(dir, nameOrPath+ext)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %q", ErrConfigNotFound, nameOrPath)
}

func hasYAMLExt(s string) bool {
	return strings.HasSuffix(s, ".yaml") || strings.HasSuffix(s, ".yml")
}

// Validate checks field lengths.
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value string
		max   int
	}{
		{"document.title", c.Document.Title, MaxTitleLength},
		{"document.subtitle", c.Document.Subtitle, MaxSubtitleLength},
		{"document.accentColor", c.Document.AccentColor, MaxColorLength},
		{"toc.title", c.TOC.Title, MaxTOCTitleLength},
		{"style.name", c.Style.Name, MaxStyleLength},
	}

	for _, check := range checks {
		if len(check.value) > check.max {
			return fmt.Errorf("%w: %s (%d > %d)", ErrFieldTooLong, check.name, len(check.value), check.max)
		}
	}
	return nil
}
