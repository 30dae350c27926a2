// Package assets provides the embedded stylesheet and HTML templates
// used for document composition. Assets are addressed by name so custom
// styles can later come from other loaders without touching callers.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for asset loading.
var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetName = errors.New("invalid asset name")
)

// Default asset names.
const (
	DefaultStyleName     = "notebook"
	TitlePageTemplateRef = "titlepage"
)

//go:embed styles/*
var styles embed.FS

//go:embed templates/*
var templates embed.FS

// LoadStyle loads an embedded CSS style by name (without extension).
func LoadStyle(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	content, err := styles.ReadFile("styles/" + name + ".css")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrStyleNotFound, name)
	}
	return string(content), nil
}

// LoadTemplate loads an embedded HTML template by name (without extension).
func LoadTemplate(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	content, err := templates.ReadFile("templates/" + name + ".html")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrTemplateNotFound, name)
	}
	return string(content), nil
}

// validateName rejects names that could escape the asset directories.
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
