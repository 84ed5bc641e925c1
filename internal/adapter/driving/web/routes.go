package web

import "net/http"

// RegisterRoutes registers the web routes on the provided mux. Only the exact
// root path is served, so unknown paths still 404.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /{$}", h.Landing)
}
