package server

// setupRoutes wires the middleware chain and the file-serving routes.
// Order matters: CORS runs outermost so that every status code, including
// 404 and 501, leaves with the CORS headers, and so OPTIONS preflights are
// answered before routing can reject them.
func (s *Server) setupRoutes() {
	s.router.Use(s.CORSMiddleware)
	s.router.Use(s.ServerHeaderMiddleware)
	s.router.Use(s.LoggingMiddleware)
	s.router.Use(s.MethodFilterMiddleware)
	if s.cfg.Gzip.Enabled {
		s.router.Use(s.GzipMiddleware)
	}

	if s.reload != nil {
		s.router.HandleFunc("/_devserve/reload", s.reload.handleWS)
	}

	// Everything else is a file path under the root.
	s.router.PathPrefix("/").Handler(s.staticHandler())
}
