package server

import (
	"fmt"
	"io"
	"net/http"
)

// staticHandler serves files rooted at the configured directory. Path
// resolution, MIME inference, directory listings and index.html handling
// come from net/http's file server; http.Dir guarantees ".." segments
// cannot escape the root. Error bodies are swapped for small HTML pages.
func (s *Server) staticHandler() http.Handler {
	fs := http.FileServer(http.Dir(s.cfg.Server.RootDir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(&errorPageWriter{ResponseWriter: w}, r)
	})
}

// errorPageWriter replaces the stock plain-text error bodies of the file
// server with an HTML page, keeping the status code intact.
type errorPageWriter struct {
	http.ResponseWriter
	intercepted bool
}

func (w *errorPageWriter) WriteHeader(code int) {
	if code == http.StatusNotFound || code == http.StatusForbidden || code == http.StatusBadRequest {
		w.intercepted = true
		serveErrorPage(w.ResponseWriter, code)
		return
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *errorPageWriter) Write(b []byte) (int, error) {
	if w.intercepted {
		// Discard the plain-text body; the HTML page is already written.
		return len(b), nil
	}
	return w.ResponseWriter.Write(b)
}

// serveErrorPage writes a short HTML error response.
func serveErrorPage(w http.ResponseWriter, code int) {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	io.WriteString(w, errorPage(code))
}

func errorPage(code int) string {
	text := http.StatusText(code)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>%d %s</title></head>
<body><h1>%d %s</h1></body>
</html>
`, code, text, code, text)
}
