package app

import "time"

// Config holds runtime configuration for the application.
type Config struct {
	// Inputs
	ImagePaths []string
	PastePath  string

	// Output
	OutputPath string
	Format     string // tsv, csv, xlsx or pdf

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Formatting
	Multiplier    float64
	DecimalPlaces int
	ForceNegative bool
	TitleCase     bool
	Instruction   string

	// Selection / export scope
	ActiveTable int
	Cells       string // "row:col,row:col" selection to copy instead of the full table

	// Cache
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool
	CacheOnly        bool

	Verbose bool
}
