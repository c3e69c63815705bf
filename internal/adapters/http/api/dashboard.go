package api

import (
	"net/http"
)

// monitorHandler serves the admin monitor page.
type monitorHandler struct{}

func newMonitorHandler() *monitorHandler {
	return &monitorHandler{}
}

// HandleMonitor handles GET /monitor requests. The page asks for an admin
// token and follows /ws/monitor.
func (h *monitorHandler) HandleMonitor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, monitorFS, "monitor.html")
}
