package app

import (
	"os"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = os.Getenv("LLM_MODEL")
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	}

	if cfg.CacheDir == "" || cfg.CacheDir == CacheDirDefault {
		if v := os.Getenv("CACHE_DIR"); v != "" {
			cfg.CacheDir = v
		}
	}
	if cfg.CacheMaxAge == 0 {
		if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				cfg.CacheMaxAge = d
			}
		}
	}
}
