package discovery

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSeeds(t *testing.T) {
	input := "https://example.com/app.js\n\n   \nhttps://example.org/\r\nhttps://example.com/app.js\n  https://example.net/main.js  \n"
	seeds, err := ReadSeeds(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://example.com/app.js",
		"https://example.org/",
		"https://example.net/main.js",
	}, seeds)
}

func TestReadSeedsEmpty(t *testing.T) {
	seeds, err := ReadSeeds(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Empty(t, seeds)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, IsHTML("text/html; charset=utf-8", nil))
	assert.True(t, IsHTML("", []byte("  <!DOCTYPE html><html></html>")))
	assert.True(t, IsHTML("text/plain", []byte("<html><body></body></html>")))
	assert.False(t, IsHTML("application/javascript", []byte("<html>")))
	assert.False(t, IsHTML("", []byte("var a = 1;")))
}

func TestScriptSources(t *testing.T) {
	page := `<!doctype html>
<html><head>
  <script src="/static/js/main.4f2a.js"></script>
  <link rel="modulepreload" href="//cdn.example.com/vendor.js">
  <link rel="preload" as="script" href="chunk.js">
  <link rel="preload" as="style" href="site.css">
  <link rel="stylesheet" href="site.css">
</head><body>
  <script>var inline = true;</script>
  <script src="/static/js/main.4f2a.js"></script>
  <script src="data:text/javascript,alert(1)"></script>
</body></html>`

	sources, err := ScriptSources([]byte(page))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/static/js/main.4f2a.js",
		"//cdn.example.com/vendor.js",
		"chunk.js",
	}, sources)
}
