package config

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "CVSCREEN_"
	envConfigPath = "CVSCREEN_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if CVSCREEN_CONFIG is set
//  3. env (prefix CVSCREEN_, "__" separates nested keys: CVSCREEN_SCORING__SKILL_GAP_RATIO)
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfigPath); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Lists replace the defaults instead of being merged element-wise.
	cfg.AllowedFileTypes = stringList(k, "allowed_file_types", base.AllowedFileTypes)
	cfg.CORSOrigins = stringList(k, "cors_origins", base.CORSOrigins)
	cfg.TrustedProxies = stringList(k, "trusted_proxies", base.TrustedProxies)

	if cfg.GeminiAPIKey == "" {
		cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the service relies on.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.MaxFileSizeMB <= 0:
		return fmt.Errorf("%w: max_file_size_mb must be positive", ErrInvalidConfig)
	case c.MaxCVLength <= 0 || c.MaxJobLength <= 0:
		return fmt.Errorf("%w: max_cv_length and max_job_length must be positive", ErrInvalidConfig)
	case c.SessionQueueTTL <= 0:
		return fmt.Errorf("%w: session_queue_ttl must be positive", ErrInvalidConfig)
	case c.ChatHistory <= 0 || c.ChatSessions <= 0:
		return fmt.Errorf("%w: chat_history and chat_sessions must be positive", ErrInvalidConfig)
	case c.RateLimitCalls < 0:
		return fmt.Errorf("%w: rate_limit_calls must not be negative", ErrInvalidConfig)
	case c.Scoring.SkillGapRatio <= 0 || c.Scoring.SkillGapRatio > 1:
		return fmt.Errorf("%w: skill_gap_ratio must be in (0,1]", ErrInvalidScoring)
	case c.Scoring.ExperienceGapRatio <= 0 || c.Scoring.ExperienceGapRatio > 1:
		return fmt.Errorf("%w: experience_gap_ratio must be in (0,1]", ErrInvalidScoring)
	}
	for _, p := range c.TrustedProxies {
		if !validProxy(p) {
			return fmt.Errorf("%w: trusted_proxies entry %q is not an address or CIDR", ErrInvalidConfig, p)
		}
	}
	return nil
}

func validProxy(s string) bool {
	s = strings.TrimSpace(s)
	if _, err := netip.ParsePrefix(s); err == nil {
		return true
	}
	_, err := netip.ParseAddr(s)
	return err == nil
}

func stringList(k *koanf.Koanf, key string, def []string) []string {
	if !k.Exists(key) {
		return def
	}
	var raw []string
	switch v := k.Get(key).(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []interface{}:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	}
	var out []string
	for _, part := range raw {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
