package http

import (
	"io/fs"
	"net/http"
	"path"
	"strings"

	dashboard "github.com/fabiorvs/fake-requests/ui/dashboard"
)

// dashboardHandler serves the embedded dashboard. Unknown paths fall back to index.html.
func (s *Server) dashboardHandler() http.HandlerFunc {
	dist, err := fs.Sub(dashboard.DistFS, "dist")
	if err != nil {
		s.logger.Error("dashboard assets unavailable", "error", err)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if dist == nil {
			http.Error(w, "dashboard not available", http.StatusNotFound)
			return
		}

		filePath := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/__ui"), "/")
		if filePath == "" {
			filePath = "index.html"
		}

		data, err := fs.ReadFile(dist, filePath)
		if err != nil {
			filePath = "index.html"
			data, err = fs.ReadFile(dist, filePath)
			if err != nil {
				http.Error(w, "dashboard not available", http.StatusNotFound)
				return
			}
		}

		w.Header().Set("Content-Type", dashboardContentType(filePath))
		w.Header().Set("Cache-Control", "no-cache")
		if _, err := w.Write(data); err != nil {
			s.logger.Debug("failed to write dashboard asset", "file", filePath, "error", err)
		}
	}
}

func dashboardContentType(name string) string {
	switch path.Ext(name) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "application/javascript; charset=utf-8"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
