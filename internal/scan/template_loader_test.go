package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaniidev/jshunt/internal/core"
)

const templateYAML = `name: internal
version: "1.0"
patterns:
  - id: acme-api-key
    name: Acme API Key
    regex: 'acme_live_[A-Za-z0-9]{24}'
    severity: HIGH
  - id: acme-session
    name: Acme Session
    regex: '[a-f0-9]{32}'
    keywords: ["sessionSecret"]
    entropy_check: true
    min_entropy: 3.5
  - id: broken
    name: Broken
    regex: '([unclosed'
`

func writeTemplate(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadTemplatesFile(t *testing.T) {
	path := writeTemplate(t, t.TempDir(), "acme.yaml", templateYAML)

	patterns, err := LoadTemplates(path)
	require.Error(t, err, "broken pattern is reported")
	assert.Contains(t, err.Error(), "broken")
	require.Len(t, patterns, 2)

	assert.Equal(t, "acme-api-key", patterns[0].ID)
	assert.Equal(t, core.SeverityHigh, patterns[0].Severity)
	assert.Equal(t, []string{"acme_live_"}, patterns[0].Keywords)
	assert.Equal(t, []string{"sessionSecret"}, patterns[1].Keywords)
	assert.Equal(t, core.SeverityMedium, patterns[1].Severity)
}

func TestLoadTemplatesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "a.yaml", "patterns:\n  - id: a\n    name: A Key\n    regex: 'akey_[0-9]{6}'\n")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0o755))
	writeTemplate(t, filepath.Join(dir, "nested"), "b.yml", "patterns:\n  - id: b\n    name: B\n    regex: 'bkey_[0-9]{6}'\n")
	writeTemplate(t, dir, "notes.txt", "ignored")

	patterns, err := LoadTemplates(dir)
	require.NoError(t, err)
	assert.Len(t, patterns, 2)

	_, err = LoadTemplates(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestTemplateScanner(t *testing.T) {
	patterns, _ := LoadTemplates(writeTemplate(t, t.TempDir(), "acme.yaml", templateYAML))
	require.Len(t, patterns, 2)

	apiKey := TemplateScanner(patterns[0])
	assert.Equal(t, "AcmeAPIKey", apiKey.Name)

	content := []byte(`const k = "acme_live_abcdefghijklmnopqrstuvwx"; sessionSecret = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"; sessionSecret2 = "0123456789abcdef0123456789abcdef";`)
	engine := NewEngine(append(BuiltinScanners(), TemplateScanner(patterns[0]), TemplateScanner(patterns[1])))
	findings := engine.Scan(content, src)

	require.Equal(t, []string{"AcmeAPIKey", "AcmeSession"}, kinds(findings))
	assert.Equal(t, "acme_live_abcdefghijklmnopqrstuvwx", findings[0].Data["matched_string"])
	assert.Equal(t, "acme-api-key", findings[0].Data["template"])
	assert.Equal(t, "0123456789abcdef0123456789abcdef", findings[1].Data["matched_string"], "low entropy match filtered")
}

func TestExtractKeyword(t *testing.T) {
	tests := map[string]string{
		`acme_live_[A-Za-z0-9]{24}`: "acme_live_",
		`xox[baprs]-[0-9]{10,13}`:   "xox",
		`(?i)stripe_[a-z]+`:         "",
		`[a-f0-9]{32}`:              "",
		`([unclosed`:                "",
		`AKIA[0-9A-Z]{16}`:          "AKIA",
	}
	for re, want := range tests {
		assert.Equal(t, want, ExtractKeyword(re), re)
	}
}

func TestIsValidKeyword(t *testing.T) {
	assert.True(t, IsValidKeyword("acme_live_"))
	assert.True(t, IsValidKeyword("AKIA"))
	assert.False(t, IsValidKeyword("xox"))
	assert.False(t, IsValidKeyword("token"))
	assert.False(t, IsValidKeyword("AAAAAA"))
}
