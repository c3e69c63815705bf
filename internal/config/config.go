// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and environment variables on top of the defaults.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"
	"runtime"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogEncoding selects the log format: console or json.
	LogEncoding string `koanf:"log_encoding"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory real-time analysis queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of analysis workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds the in-flight submission fingerprint set.
	DedupeSize int `koanf:"dedupe_size"`

	// ShortlistSize caps the number of stored analyses.
	ShortlistSize int `koanf:"shortlist_size"`

	// MaxShortlistLimit caps GET /api/shortlist?limit.
	MaxShortlistLimit int `koanf:"max_shortlist_limit"`

	// GeminiAPIKey enables LLM CV parsing when non-empty. Falls back to GEMINI_API_KEY.
	GeminiAPIKey string `koanf:"gemini_api_key"`

	// GeminiModel is the model used for CV parsing.
	GeminiModel string `koanf:"gemini_model"`

	// EnhancedTimeout bounds the enhanced analysis path including the LLM call.
	EnhancedTimeout time.Duration `koanf:"enhanced_timeout"`

	// MaxCVLength and MaxJobLength bound the analyze request bodies, in characters.
	MaxCVLength  int `koanf:"max_cv_length"`
	MaxJobLength int `koanf:"max_job_length"`

	// MaxFileSizeMB bounds uploads.
	MaxFileSizeMB int `koanf:"max_file_size_mb"`

	// AllowedFileTypes lists upload extensions without the dot.
	AllowedFileTypes []string `koanf:"allowed_file_types"`

	// RateLimitCalls per RateLimitWindow per client IP.
	RateLimitCalls  int           `koanf:"rate_limit_calls"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// SecretKey signs admin monitor tokens.
	SecretKey string `koanf:"secret_key"`

	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `koanf:"cors_origins"`

	// SessionQueueTTL drops progress messages for sessions that never connect.
	SessionQueueTTL time.Duration `koanf:"session_queue_ttl"`

	// TrustedProxies are addresses or CIDR ranges whose X-Forwarded-For and
	// X-Real-IP headers identify the client for rate limiting.
	TrustedProxies []string `koanf:"trusted_proxies"`

	// ChatHistory is the number of turns kept per chat session; ChatSessions
	// caps the sessions held in memory.
	ChatHistory  int `koanf:"chat_history"`
	ChatSessions int `koanf:"chat_sessions"`

	// TaxonomyFile optionally replaces the built-in domain taxonomy.
	TaxonomyFile string `koanf:"taxonomy_file"`

	Features Features `koanf:"features"`
	Scoring  Scoring  `koanf:"scoring"`
}

// Features toggles optional surfaces.
type Features struct {
	EnhancedAnalysis bool `koanf:"enhanced_analysis"`
	Realtime         bool `koanf:"realtime"`
	LLMParsing       bool `koanf:"llm_parsing"`
	LLMChat          bool `koanf:"llm_chat"`
	RateLimiting     bool `koanf:"rate_limiting"`
}

// Scoring holds the engine thresholds.
type Scoring struct {
	JobDomainMinScore       int     `koanf:"job_domain_min_score"`
	CandidateDomainMinScore int     `koanf:"candidate_domain_min_score"`
	SkillGapRatio           float64 `koanf:"skill_gap_ratio"`
	ExperienceGapRatio      float64 `koanf:"experience_gap_ratio"`
	JobHoppingMinRoles      int     `koanf:"job_hopping_min_roles"`
	JobHoppingMaxTenure     float64 `koanf:"job_hopping_max_tenure"`
	PenaltyPerFlag          float64 `koanf:"penalty_per_flag"`
}

// New creates a Config with defaults. Context is accepted first to satisfy the
// project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:          "info",
		LogEncoding:       "console",
		Addr:              ":8000",
		QueueSize:         1_000,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        10_000,
		ShortlistSize:     50_000,
		MaxShortlistLimit: 100,
		GeminiModel:       "gemini-2.5-flash",
		EnhancedTimeout:   60 * time.Second,
		MaxCVLength:       50_000,
		MaxJobLength:      10_000,
		MaxFileSizeMB:     10,
		AllowedFileTypes:  []string{"pdf", "docx", "txt", "html"},
		RateLimitCalls:    5,
		RateLimitWindow:   24 * time.Hour,
		SecretKey:         "change-me-in-production",
		CORSOrigins:       []string{"*"},
		TrustedProxies:    []string{"127.0.0.1", "::1"},
		SessionQueueTTL:   30 * time.Minute,
		ChatHistory:       10,
		ChatSessions:      10_000,
		Features: Features{
			EnhancedAnalysis: true,
			Realtime:         true,
			LLMParsing:       true,
			LLMChat:          true,
			RateLimiting:     true,
		},
		Scoring: Scoring{
			JobDomainMinScore:       3,
			CandidateDomainMinScore: 3,
			SkillGapRatio:           0.5,
			ExperienceGapRatio:      0.7,
			JobHoppingMinRoles:      4,
			JobHoppingMaxTenure:     1.0,
			PenaltyPerFlag:          10,
		},
	}
}
