package server

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devserve/config"
)

func newReloadServer(t *testing.T) (*Server, string) {
	t.Helper()
	return newTestServer(t, func(cfg *config.Config) {
		cfg.LiveReload.Enabled = true
		cfg.LiveReload.PollInterval = "10ms"
	})
}

func dialReload(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/_devserve/reload"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestReloadBroadcast(t *testing.T) {
	srv, _ := newReloadServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialReload(t, ts)
	defer conn.Close()

	srv.reload.broadcast("reload")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "reload", string(msg))
}

func TestScanTracksNewestModTime(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	hub := newReloadHub(root, 10*time.Millisecond)
	first := hub.scan()

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	assert.True(t, hub.scan().After(first))
}

func TestWatchNotifiesOnChange(t *testing.T) {
	srv, root := newReloadServer(t)
	path := filepath.Join(root, "page.html")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialReload(t, ts)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.reload.watch(ctx)

	// Let the watcher take its baseline scan, then bump the mtime.
	time.Sleep(50 * time.Millisecond)
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "reload", string(msg))
}

func TestClosedClientIsRemoved(t *testing.T) {
	srv, _ := newReloadServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn := dialReload(t, ts)
	require.NoError(t, conn.Close())

	require.Eventually(t, func() bool {
		srv.reload.mu.Lock()
		defer srv.reload.mu.Unlock()
		return len(srv.reload.clients) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestReloadRouteAbsentWhenDisabled(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	w := do(srv, "GET", "/_devserve/reload")

	// Falls through to the file server: no such file.
	assert.Equal(t, 404, w.Code)
}
