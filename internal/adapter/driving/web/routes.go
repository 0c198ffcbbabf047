package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Dashboard)
	mux.HandleFunc("GET /charts", h.Charts)
	mux.HandleFunc("GET /export.csv", h.ExportCSV)

	// Form posts; all require a valid CSRF token.
	mux.HandleFunc("POST /analyze", h.Analyze)
	mux.HandleFunc("POST /filter", h.Filter)
	mux.HandleFunc("POST /reset", h.Reset)
}
