package api

import "net/http"

// ConfigHandler exposes the public configuration to the browser client.
type ConfigHandler struct {
	settings Settings
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(st Settings) *ConfigHandler {
	return &ConfigHandler{settings: st}
}

type rateLimitInfo struct {
	Enabled       bool `json:"enabled"`
	MaxCalls      int  `json:"max_calls"`
	WindowSeconds int  `json:"window_seconds"`
}

type configResponse struct {
	AppName          string        `json:"app_name"`
	Version          string        `json:"version"`
	MaxFileSizeMB    int           `json:"max_file_size_mb"`
	AllowedFileTypes []string      `json:"allowed_file_types"`
	MaxCVLength      int           `json:"max_cv_length"`
	MaxJobLength     int           `json:"max_job_length"`
	RateLimit        rateLimitInfo `json:"rate_limit"`
	Features         Features      `json:"features"`
}

// HandleConfig handles GET /api/config requests.
func (h *ConfigHandler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	st := h.settings
	writeJSON(w, http.StatusOK, configResponse{
		AppName:          st.AppName,
		Version:          st.Version,
		MaxFileSizeMB:    st.MaxFileSizeMB,
		AllowedFileTypes: st.AllowedFileTypes,
		MaxCVLength:      st.MaxCVLength,
		MaxJobLength:     st.MaxJobLength,
		RateLimit: rateLimitInfo{
			Enabled:       st.Features.RateLimiting,
			MaxCalls:      st.RateLimitCalls,
			WindowSeconds: int(st.RateLimitWindow.Seconds()),
		},
		Features: st.Features,
	})
}
