package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alnah/go-nb2pdf/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	assert.True(t, cfg.TOC.Enabled)
	assert.True(t, cfg.TitlePage.Enabled)
	assert.Empty(t, cfg.Document.Title)
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
document:
  title: Analysis Report
  subtitle: Q3
  accentColor: "#336699"
page:
  size: letter
  margin: 0.75
toc:
  enabled: true
  title: Contents
  depth: 3
titlePage:
  enabled: true
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Analysis Report", cfg.Document.Title)
	assert.Equal(t, "#336699", cfg.Document.AccentColor)
	assert.Equal(t, "letter", cfg.Page.Size)
	assert.Equal(t, 0.75, cfg.Page.Margin)
	assert.Equal(t, 3, cfg.TOC.Depth)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	// A config naming only a title keeps the TOC default on.
	path := writeConfig(t, "document:\n  title: X\n")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.TOC.Enabled)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, config.ErrConfigNotFound)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		_, err := config.LoadConfig("")
		assert.ErrorIs(t, err, config.ErrConfigNotFound)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "bogus: true\n")
		_, err := config.LoadConfig(path)
		assert.ErrorIs(t, err, config.ErrConfigParse)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "document: [unclosed\n")
		_, err := config.LoadConfig(path)
		assert.ErrorIs(t, err, config.ErrConfigParse)
	})

	t.Run("field too long", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "document:\n  title: "+strings.Repeat("x", config.MaxTitleLength+1)+"\n")
		_, err := config.LoadConfig(path)
		assert.ErrorIs(t, err, config.ErrFieldTooLong)
	})
}
