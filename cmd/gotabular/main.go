package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gotabular/internal/app"
	"github.com/hyperifyio/gotabular/internal/normalize"
)

// stringList collects a repeatable flag value.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error {
	if v = strings.TrimSpace(v); v != "" {
		*s = append(*s, v)
	}
	return nil
}

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		images      stringList
		pastePath   string
		outputPath  string
		format      string
		configPath  string
		llmBaseURL  string
		llmModel    string
		llmKey      string
		multiplier  float64
		decimals    int
		forceNeg    bool
		titleCase   bool
		instruction string
		activeTable int
		cells       string
		cacheDir    string
		cacheMaxAge time.Duration
		cacheClear  bool
		cacheStrict bool
		cacheOnly   bool
		verbose     bool
	)

	flag.Var(&images, "image", "Path to an input image (repeatable)")
	flag.StringVar(&pastePath, "paste", "", "Path to raw pasted text/HTML, or '-' for stdin")
	flag.StringVar(&outputPath, "out", "", "Output path (default: stdout for tsv/csv)")
	flag.StringVar(&format, "format", app.FormatDefault, "Output format: tsv, csv, xlsx or pdf")
	flag.StringVar(&configPath, "config", "", "Path to YAML/JSON config file")
	flag.StringVar(&llmBaseURL, "llm.base", "", "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", "", "Vision model name")
	flag.StringVar(&llmKey, "llm.key", "", "API key for OpenAI-compatible server")
	flag.Float64Var(&multiplier, "multiplier", 1, "Scale every numeric value (e.g. 0.001 to show thousands)")
	flag.IntVar(&decimals, "decimals", normalize.FullPrecision, "Fixed fractional digits; -1 keeps full precision")
	flag.BoolVar(&forceNeg, "force-negative", false, "Coerce non-zero numeric values to negative")
	flag.BoolVar(&titleCase, "title-case", false, "Title-case headers and text cells")
	flag.StringVar(&instruction, "instruction", "", "Extra instruction passed to the extraction model verbatim")
	flag.IntVar(&activeTable, "table", 0, "Index of the table to export")
	flag.StringVar(&cells, "cells", "", "Copy only these cells, e.g. '0:0,1:3' (row:col)")
	flag.StringVar(&cacheDir, "cache.dir", app.CacheDirDefault, "Cache directory path")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for cache entries before purge (e.g. 24h); 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear cache directory before run")
	flag.BoolVar(&cacheStrict, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.BoolVar(&cacheOnly, "cache.only", false, "Serve extraction from cache only; fail fast on miss")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		ImagePaths:       images,
		PastePath:        pastePath,
		OutputPath:       outputPath,
		Format:           format,
		LLMBaseURL:       llmBaseURL,
		LLMModel:         llmModel,
		LLMAPIKey:        llmKey,
		Multiplier:       multiplier,
		DecimalPlaces:    decimals,
		ForceNegative:    forceNeg,
		TitleCase:        titleCase,
		Instruction:      instruction,
		ActiveTable:      activeTable,
		Cells:            cells,
		CacheDir:         cacheDir,
		CacheMaxAge:      cacheMaxAge,
		CacheClear:       cacheClear,
		CacheStrictPerms: cacheStrict,
		CacheOnly:        cacheOnly,
		Verbose:          verbose,
	}

	app.ApplyEnvToConfig(&cfg)
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("config", configPath).Msg("load config file")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if cfg.Multiplier <= 0 {
		log.Error().Float64("multiplier", cfg.Multiplier).Msg("multiplier must be positive")
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		// Exit code policy: 2 when extraction found nothing, 1 otherwise.
		if err == app.ErrNoTables {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
