package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gotabular/internal/cache"
	"github.com/hyperifyio/gotabular/internal/export"
	"github.com/hyperifyio/gotabular/internal/extractor"
	"github.com/hyperifyio/gotabular/internal/llm"
	"github.com/hyperifyio/gotabular/internal/normalize"
	"github.com/hyperifyio/gotabular/internal/paste"
	"github.com/hyperifyio/gotabular/internal/selection"
	"github.com/hyperifyio/gotabular/internal/table"
)

// ErrNoTables is returned when extraction produced zero tables. Per the exit
// code policy this condition maps to a non-zero process exit.
var ErrNoTables = errors.New("no tables extracted")

type App struct {
	cfg    Config
	ai     llm.Client
	cache  *cache.ResponseCache
	sel    *selection.Model
	result table.Result
}

func New(ctx context.Context, cfg Config) (*App, error) {
	a := &App{cfg: cfg, sel: selection.New()}

	if len(cfg.ImagePaths) > 0 || cfg.LLMModel != "" {
		transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
		if cfg.LLMBaseURL != "" {
			transportCfg.BaseURL = cfg.LLMBaseURL
		}
		a.ai = &llm.OpenAIProvider{Inner: openai.NewClientWithConfig(transportCfg)}
	}

	if cfg.CacheDir != "" {
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if cfg.CacheMaxAge > 0 {
			// Purge by age; ignore errors to avoid failing startup
			_, _ = cache.PurgeByAge(cfg.CacheDir, cfg.CacheMaxAge)
		}
		a.cache = &cache.ResponseCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}

	// Quick connectivity check by listing models. Best-effort: warn and
	// continue so the extraction call surfaces the real error if any.
	if lister, ok := a.ai.(llm.ModelLister); ok && len(cfg.ImagePaths) > 0 {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		models, err := lister.ListModels(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("LLM model list failed; continuing")
		} else if len(models.Models) == 0 {
			log.Warn().Msg("LLM returned zero models")
		} else {
			log.Info().Int("count", len(models.Models)).Msg("LLM models available")
		}
	}

	return a, nil
}

func (a *App) Close() {
	// nothing yet
}

// Options converts the formatting portion of the config into a pipeline
// snapshot.
func (a *App) Options() normalize.Options {
	return normalize.Options{
		Multiplier:        a.cfg.Multiplier,
		DecimalPlaces:     a.cfg.DecimalPlaces,
		ForceNegative:     a.cfg.ForceNegative,
		TitleCase:         a.cfg.TitleCase,
		CustomInstruction: a.cfg.Instruction,
	}
}

func (a *App) Run(ctx context.Context) error {
	res, err := a.extract(ctx)
	if err != nil {
		return err
	}
	// New extraction replaces the previous result wholesale: selection
	// cleared, active table back to 0.
	a.result = res
	a.sel.Reset()
	if len(res.Tables) == 0 {
		return ErrNoTables
	}
	log.Info().Int("tables", len(res.Tables)).Msg("extraction complete")

	a.sel.SetActive(a.cfg.ActiveTable)
	if a.cfg.ActiveTable < 0 || a.cfg.ActiveTable >= len(res.Tables) {
		// Absent active table: export operations are no-ops, not errors.
		log.Warn().Int("table", a.cfg.ActiveTable).Int("have", len(res.Tables)).Msg("active table out of range; nothing to export")
		return nil
	}
	active := &res.Tables[a.sel.Active()]
	opts := a.Options()

	if strings.TrimSpace(a.cfg.Cells) != "" {
		cells, err := parseCells(a.cfg.Cells)
		if err != nil {
			return err
		}
		for _, c := range cells {
			a.sel.Toggle(c.Row, c.Col)
		}
		return a.writeText(ctx, export.SelectionText(active, a.sel.Sorted(), opts))
	}

	switch a.cfg.Format {
	case "", "tsv":
		return a.writeText(ctx, export.TableText(active, opts))
	case "csv":
		out, closeFn, err := a.openOutput()
		if err != nil {
			return err
		}
		defer closeFn()
		return export.WriteCSV(out, active, opts)
	case "xlsx":
		if a.cfg.OutputPath == "" {
			return errors.New("xlsx output requires -out")
		}
		return export.WriteXLSX(a.cfg.OutputPath, res.Tables, opts)
	case "pdf":
		if a.cfg.OutputPath == "" {
			return errors.New("pdf output requires -out")
		}
		return export.WritePDF(a.cfg.OutputPath, res.Tables, opts)
	default:
		return fmt.Errorf("unknown format %q", a.cfg.Format)
	}
}

// Result returns the last extraction, for callers embedding the app.
func (a *App) Result() table.Result { return a.result }

// extract gathers the configured inputs and produces tables: images (plus
// optional pasted text) go through the vision model, text-only input is
// parsed locally without any network call.
func (a *App) extract(ctx context.Context) (table.Result, error) {
	pasted, err := a.readPaste()
	if err != nil {
		return table.Result{}, err
	}

	if len(a.cfg.ImagePaths) == 0 {
		if strings.TrimSpace(pasted) == "" {
			return table.Result{}, errors.New("no input: provide -image and/or -paste")
		}
		return paste.Parse(pasted), nil
	}

	images := make([][]byte, 0, len(a.cfg.ImagePaths))
	for _, p := range a.cfg.ImagePaths {
		b, err := os.ReadFile(p)
		if err != nil {
			return table.Result{}, fmt.Errorf("read image %s: %w", p, err)
		}
		images = append(images, b)
	}
	ex := &extractor.Extractor{
		Client:    a.ai,
		Model:     a.cfg.LLMModel,
		Cache:     a.cache,
		CacheOnly: a.cfg.CacheOnly,
		Verbose:   a.cfg.Verbose,
	}
	res, err := ex.Extract(ctx, extractor.Request{
		Images:      images,
		Text:        pasted,
		Instruction: a.cfg.Instruction,
	})
	if err != nil {
		return table.Result{}, fmt.Errorf("extract: %w", err)
	}
	return res, nil
}

func (a *App) readPaste() (string, error) {
	switch a.cfg.PastePath {
	case "":
		return "", nil
	case "-":
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	default:
		b, err := os.ReadFile(a.cfg.PastePath)
		if err != nil {
			return "", fmt.Errorf("read paste file: %w", err)
		}
		return string(b), nil
	}
}

// writeText hands copy-style text to the configured sink: the output file
// when set, otherwise the stdout clipboard collaborator.
func (a *App) writeText(ctx context.Context, text string) error {
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	if a.cfg.OutputPath != "" {
		if err := os.WriteFile(a.cfg.OutputPath, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		log.Info().Str("out", a.cfg.OutputPath).Msg("wrote output")
		return nil
	}
	var clip export.Clipboard = export.WriterClipboard{W: os.Stdout}
	return clip.Write(ctx, text)
}

func (a *App) openOutput() (*os.File, func(), error) {
	if a.cfg.OutputPath == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(a.cfg.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// parseCells parses the "row:col,row:col" selection syntax.
func parseCells(s string) ([]selection.Cell, error) {
	parts := strings.Split(s, ",")
	out := make([]selection.Cell, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		rc := strings.SplitN(p, ":", 2)
		if len(rc) != 2 {
			return nil, fmt.Errorf("bad cell %q: want row:col", p)
		}
		row, err := strconv.Atoi(strings.TrimSpace(rc[0]))
		if err != nil {
			return nil, fmt.Errorf("bad cell %q: %w", p, err)
		}
		col, err := strconv.Atoi(strings.TrimSpace(rc[1]))
		if err != nil {
			return nil, fmt.Errorf("bad cell %q: %w", p, err)
		}
		out = append(out, selection.Cell{Row: row, Col: col})
	}
	return out, nil
}
