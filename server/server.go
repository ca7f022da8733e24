package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"devserve/config"
	"devserve/logger"
)

// Version is reported in the Server response header.
const Version = "1.0.0"

// Server serves static files from a root directory with CORS headers on
// every response.
type Server struct {
	router *mux.Router
	server *http.Server
	cfg    *config.Config
	log    *logger.Logger
	reload *reloadHub
}

// NewServer builds a server from the given configuration.
func NewServer(cfg *config.Config) *Server {
	s := &Server{
		router: mux.NewRouter(),
		cfg:    cfg,
		log:    logger.L(),
	}
	// Dirty paths ("..", "//") must reach the middleware instead of mux's
	// 301 cleaner, or the redirect leaves without CORS headers. The file
	// server cleans the path itself and http.Dir cannot escape the root.
	s.router.SkipClean(true)
	if cfg.LiveReload.Enabled {
		s.reload = newReloadHub(cfg.Server.RootDir, cfg.LiveReload.PollIntervalDuration())
	}
	s.setupRoutes()
	return s
}

// Handler exposes the routing tree, middleware included.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listener and begins serving. The bind happens
// synchronously so a held port surfaces as an immediate error; serving
// itself runs on a goroutine until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Server.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: s.cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  s.cfg.Server.IdleTimeoutDuration(),
	}

	go func() {
		s.log.Info("Serving files", map[string]interface{}{
			"port": s.cfg.Server.Port,
			"root": s.cfg.Server.RootDir,
		})
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	if s.reload != nil {
		go s.reload.watch(ctx)
	}

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown stops accepting connections and gives in-flight requests a
// short grace period. Safe to call more than once.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
	}
	return nil
}
