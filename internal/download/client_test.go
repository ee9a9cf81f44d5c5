package download

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient() *Client {
	return NewClient(Options{Timeout: 2 * time.Second, Retries: 2, Backoff: time.Millisecond})
}

func TestFetchPlain(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip, deflate, br", r.Header.Get("Accept-Encoding"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla/5.0")
		w.Header().Set("Content-Type", "application/javascript")
		w.Write([]byte(`fetch("/api/users")`))
	}))
	defer srv.Close()

	asset, err := testClient().Fetch(context.Background(), srv.URL+"/app.js")
	require.NoError(t, err)
	assert.Equal(t, `fetch("/api/users")`, string(asset.Body))
	assert.Equal(t, http.StatusOK, asset.StatusCode)
	assert.Equal(t, "application/javascript", asset.ContentType)
}

func TestFetchDecodesContentEncoding(t *testing.T) {
	const js = `var endpoint = "/v1/orders";`

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	gw.Write([]byte(js))
	gw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	bw.Write([]byte(js))
	bw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gzip.js":
			w.Header().Set("Content-Encoding", "gzip")
			w.Write(gz.Bytes())
		case "/br.js":
			w.Header().Set("Content-Encoding", "br")
			w.Write(br.Bytes())
		}
	}))
	defer srv.Close()

	for _, p := range []string{"/gzip.js", "/br.js"} {
		t.Run(p, func(t *testing.T) {
			asset, err := testClient().Fetch(context.Background(), srv.URL+p)
			require.NoError(t, err)
			assert.Equal(t, js, string(asset.Body))
		})
	}
}

func TestFetchNon2xx(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testClient().Fetch(context.Background(), srv.URL+"/missing.js")
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, "fetch "+srv.URL+"/missing.js: HTTP 404", fe.Error())
	assert.Equal(t, int32(1), hits.Load(), "404 is not retried")
}

func TestFetchRetriesTransientStatus(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	asset, err := testClient().Fetch(context.Background(), srv.URL+"/flaky.js")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(asset.Body))
	assert.Equal(t, int32(3), hits.Load())
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := NewClient(Options{Timeout: time.Second, Retries: 0}).Fetch(context.Background(), addr+"/app.js")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Zero(t, fe.StatusCode)
	assert.NotNil(t, fe.Unwrap())
}

func TestFetchBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("a", 2048)))
	}))
	defer srv.Close()

	c := NewClient(Options{MaxBodyBytes: 1024})
	_, err := c.Fetch(context.Background(), srv.URL+"/big.js")
	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Error(), "HTTP 200: body exceeds 1.0KB")
}

func TestScratchPattern(t *testing.T) {
	assert.Equal(t, "jshunt-cdn_example_com-lib-*.js", ScratchPattern("https://cdn.example.com/static/lib.js?v=2"))
	assert.Equal(t, "jshunt-example_com-index-*.js", ScratchPattern("https://example.com/"))
	assert.True(t, strings.HasPrefix(ScratchPattern("::bad"), "jshunt-"))
	assert.NotContains(t, ScratchPattern("https://example.com/a b:c.js"), " ")
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512B", FormatSize(512))
	assert.Equal(t, "1.5KB", FormatSize(1536))
	assert.Equal(t, "2.0MB", FormatSize(2<<20))
}
