package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devserve/config"
)

func newGzipServer(t *testing.T) (*Server, string) {
	t.Helper()
	return newTestServer(t, func(cfg *config.Config) {
		cfg.Gzip.Enabled = true
	})
}

func doGzip(srv *Server, method, path string, acceptGzip bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if acceptGzip {
		req.Header.Set("Accept-Encoding", "gzip")
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestGzipCompressesLargeTextFile(t *testing.T) {
	srv, root := newGzipServer(t)
	content := strings.Repeat("dividend dashboard rows\n", 200)
	writeFile(t, root, "data.txt", content)

	w := doGzip(srv, http.MethodGet, "/data.txt", true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Empty(t, w.Header().Get("Content-Length"))

	zr, err := pgzip.NewReader(w.Body)
	require.NoError(t, err)
	decoded, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, content, string(decoded))
}

func TestGzipSkipsSmallFiles(t *testing.T) {
	srv, root := newGzipServer(t)
	content := "tiny"
	writeFile(t, root, "tiny.txt", content)

	w := doGzip(srv, http.MethodGet, "/tiny.txt", true)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, strconv.Itoa(len(content)), w.Header().Get("Content-Length"))
	assert.Equal(t, content, w.Body.String())
}

func TestGzipSkipsWithoutAcceptEncoding(t *testing.T) {
	srv, root := newGzipServer(t)
	content := strings.Repeat("x", 4096)
	writeFile(t, root, "data.txt", content)

	w := doGzip(srv, http.MethodGet, "/data.txt", false)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, content, w.Body.String())
}

func TestGzipLeavesErrorPagesAlone(t *testing.T) {
	srv, _ := newGzipServer(t)

	w := doGzip(srv, http.MethodGet, "/missing.txt", true)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Contains(t, w.Body.String(), "404 Not Found")
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
