package server

import (
	"context"
	"io/fs"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"devserve/logger"
)

// reloadHub tracks websocket clients and tells them to reload when any
// file under the root changes. Changes are detected by polling the newest
// modification time.
type reloadHub struct {
	root     string
	interval time.Duration
	upgrader websocket.Upgrader
	log      *logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func newReloadHub(root string, interval time.Duration) *reloadHub {
	return &reloadHub{
		root:     root,
		interval: interval,
		upgrader: websocket.Upgrader{
			// Local development tool; any page may subscribe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		log:     logger.L(),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

func (h *reloadHub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Websocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	h.log.Debug("Reload client connected", map[string]interface{}{
		"remote": conn.RemoteAddr().String(),
	})

	go h.readLoop(conn)
}

// readLoop drains incoming frames so close frames are processed; on read
// error the client is dropped immediately instead of lingering until a
// broadcast write fails.
func (h *reloadHub) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.drop(conn)
			return
		}
	}
}

func (h *reloadHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn.Close()
	delete(h.clients, conn)
}

// watch polls the root until ctx is cancelled.
func (h *reloadHub) watch(ctx context.Context) {
	last := h.scan()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			if newest := h.scan(); newest.After(last) {
				last = newest
				h.broadcast("reload")
			}
		}
	}
}

// scan returns the newest modification time under the root.
func (h *reloadHub) scan() time.Time {
	var newest time.Time
	filepath.WalkDir(h.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && (d.Name() == ".git" || d.Name() == "node_modules") {
			return filepath.SkipDir
		}
		if info, err := d.Info(); err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}

func (h *reloadHub) broadcast(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *reloadHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
