package api

import "time"

// Settings are the request limits and feature flags the handlers enforce.
type Settings struct {
	AppName           string
	Version           string
	MaxCVLength       int
	MaxJobLength      int
	MaxFileSizeMB     int
	AllowedFileTypes  []string
	MaxShortlistLimit int
	RateLimitCalls    int
	RateLimitWindow   time.Duration
	CORSOrigins       []string
	TrustedProxies    []string
	Features          Features
}

// Features toggles optional endpoints.
type Features struct {
	EnhancedAnalysis bool `json:"enhanced_analysis"`
	Realtime         bool `json:"realtime_analysis"`
	LLMParsing       bool `json:"llm_parsing"`
	LLMChat          bool `json:"llm_chat"`
	RateLimiting     bool `json:"rate_limiting"`
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		AppName:           "cvscreen",
		Version:           "dev",
		MaxCVLength:       50_000,
		MaxJobLength:      10_000,
		MaxFileSizeMB:     10,
		AllowedFileTypes:  []string{"pdf", "docx", "txt", "html"},
		MaxShortlistLimit: 100,
		RateLimitCalls:    5,
		RateLimitWindow:   24 * time.Hour,
		CORSOrigins:       []string{"*"},
		TrustedProxies:    []string{"127.0.0.1", "::1"},
		Features: Features{
			EnhancedAnalysis: true,
			Realtime:         true,
			RateLimiting:     true,
		},
	}
}
