package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"
	"golang.org/x/exp/slices"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "clinvoice.toml")
	err := os.WriteFile(path, []byte(content), 0o644)
	assert.NoError(t, err)
	return path
}

func TestLoadExplicitFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[contract]
hourly_rate = 100.0
payment_days = 30
`)

	cfg, err := Load(path, "")
	assert.NoError(t, err)
	assert.Equal(t, path, cfg.Path())
	assert.Equal(t, 100.0, cfg.Float64Or("contract.hourly_rate", 0))
	assert.Equal(t, 30, cfg.IntOr("contract.payment_days", 0))
}

func TestLoadExplicitFileMissing(t *testing.T) {
	_, err := Load("/non/existent/clinvoice.toml", "")
	assert.Error(t, err)
}

func TestLoadInvalidToml(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[contract\nhourly_rate = 100.0\n")

	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestLoadFromDataDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `project = "My Project"`)

	cfg, err := Load("", dir)
	assert.NoError(t, err)
	assert.Equal(t, "My Project", cfg.String("project"))
}

func TestTypedGetters(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
name = "clinvoice"
rate = 80
tax = 19.0

[generator.txt]
template = "invoice.tmpl"
`)

	cfg, err := Load(path, "")
	assert.NoError(t, err)

	assert.True(t, cfg.Has("generator.txt.template"))
	assert.False(t, cfg.Has("generator.pdf.template"))

	// Integers convert to floats on request.
	assert.Equal(t, 80.0, cfg.Float64Or("rate", 0))
	assert.Equal(t, 19.0, cfg.Float64Or("tax", 0))

	// Defaults apply only when the key is absent.
	assert.Equal(t, 7.5, cfg.Float64Or("missing", 7.5))
	assert.Equal(t, "fallback", cfg.StringOr("missing", "fallback"))
	assert.Equal(t, "clinvoice", cfg.StringOr("name", "fallback"))
	assert.Equal(t, 14, cfg.IntOr("missing", 14))
}

func TestKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[generator.txt]
template = "a.tmpl"
output = "a.txt"

[generator.tex]
template = "b.tmpl"
`)

	cfg, err := Load(path, "")
	assert.NoError(t, err)

	keys := cfg.Keys("generator")
	assert.True(t, slices.Contains(keys, "txt.template"))
	assert.True(t, slices.Contains(keys, "txt.output"))
	assert.True(t, slices.Contains(keys, "tex.template"))
}

func TestFlatten(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
key1 = "value1"

[section1]
key2 = "value2"

[section1.subsection]
key3 = "value3"

[section2]
key4 = 123
`)

	cfg, err := Load(path, "")
	assert.NoError(t, err)

	flat := cfg.Flatten()
	assert.Equal(t, "value1", flat["key1"].(string))
	assert.Equal(t, "value2", flat["section1.key2"].(string))
	assert.Equal(t, "value3", flat["section1.subsection.key3"].(string))
	assert.Equal(t, int64(123), flat["section2.key4"].(int64))
}
