package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested
// sections map naturally to flag groups and env variables.
type FileConfig struct {
	Output struct {
		Path   string `yaml:"path" json:"path"`
		Format string `yaml:"format" json:"format"`
	} `yaml:"output" json:"output"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Transform struct {
		Multiplier    *float64 `yaml:"multiplier" json:"multiplier"`
		Decimals      *int     `yaml:"decimals" json:"decimals"`
		ForceNegative *bool    `yaml:"forceNegative" json:"forceNegative"`
		TitleCase     *bool    `yaml:"titleCase" json:"titleCase"`
		Instruction   string   `yaml:"instruction" json:"instruction"`
	} `yaml:"transform" json:"transform"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// Defaults the flag layer uses; ApplyFileConfig treats a field still at its
// default as overridable by file config so explicit flags keep precedence.
const (
	FormatDefault   = "tsv"
	CacheDirDefault = ".gotabular-cache"
)

// ApplyFileConfig overlays file values into cfg for fields the flags left at
// their defaults. Precedence stays flags > env > file.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = fc.Output.Path
	}
	if cfg.Format == FormatDefault && fc.Output.Format != "" {
		cfg.Format = fc.Output.Format
	}
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.Multiplier == 1 && fc.Transform.Multiplier != nil && *fc.Transform.Multiplier > 0 {
		cfg.Multiplier = *fc.Transform.Multiplier
	}
	if cfg.DecimalPlaces < 0 && fc.Transform.Decimals != nil {
		cfg.DecimalPlaces = *fc.Transform.Decimals
	}
	if !cfg.ForceNegative && fc.Transform.ForceNegative != nil {
		cfg.ForceNegative = *fc.Transform.ForceNegative
	}
	if !cfg.TitleCase && fc.Transform.TitleCase != nil {
		cfg.TitleCase = *fc.Transform.TitleCase
	}
	if cfg.Instruction == "" {
		cfg.Instruction = fc.Transform.Instruction
	}
	if cfg.CacheDir == CacheDirDefault && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheMaxAge == 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if !cfg.CacheClear {
		cfg.CacheClear = fc.Cache.Clear
	}
	if !cfg.CacheStrictPerms {
		cfg.CacheStrictPerms = fc.Cache.StrictPerms
	}
	if !cfg.Verbose {
		cfg.Verbose = fc.Verbose
	}
}
