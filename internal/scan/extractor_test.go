package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSluiceExtract(t *testing.T) {
	bin := writeFakeTool(t, `
[ "$2" = "-R" ] || exit 2
case "$1" in
urls)    echo '{"url":"/api/users","queryParams":["id"]}'; echo; echo '{"url":"'$3'/x"}' ;;
secrets) echo '{"kind":"AWSAccessKey","data":{"key":"AKIA"},"filename":"'$4'","severity":"high"}' ;;
*)       exit 3 ;;
esac
`)
	j := NewJSluice(bin)

	lines, err := j.Extract(context.Background(), ModeURLs, "/tmp/scratch.js", "https://example.com/app.js")
	require.NoError(t, err)
	assert.Equal(t, []string{
		`{"url":"/api/users","queryParams":["id"]}`,
		`{"url":"https://example.com/app.js/x"}`,
	}, lines)

	lines, err = j.Extract(context.Background(), ModeSecrets, "/tmp/scratch.js", "https://example.com/app.js")
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"filename":"/tmp/scratch.js"`)
}

func TestJSluiceMissingBinary(t *testing.T) {
	j := NewJSluice(filepath.Join(t.TempDir(), "does-not-exist"))
	lines, err := j.Extract(context.Background(), ModeURLs, "/tmp/x.js", "https://example.com/app.js")
	assert.Nil(t, lines)

	var ae *AdapterError
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, "jsluice", ae.Tool)
	assert.Equal(t, "urls", ae.Mode)
}

func TestWithScratchRemovesFile(t *testing.T) {
	var seen string
	err := WithScratch("jshunt-test-*.js", []byte("var a = 1;"), func(path string) error {
		seen = path
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "var a = 1;", string(data))
		return nil
	})
	require.NoError(t, err)
	_, statErr := os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))

	boom := errors.New("extractor crashed")
	err = WithScratch("jshunt-test-*.js", []byte("x"), func(path string) error {
		seen = path
		return boom
	})
	assert.ErrorIs(t, err, boom)
	_, statErr = os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))

	assert.Panics(t, func() {
		WithScratch("jshunt-test-*.js", []byte("x"), func(path string) error {
			seen = path
			panic("boom")
		})
	})
	_, statErr = os.Stat(seen)
	assert.True(t, os.IsNotExist(statErr))
}
