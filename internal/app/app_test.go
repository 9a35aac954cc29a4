package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperifyio/gotabular/internal/normalize"
)

func TestRun_PasteToTSV(t *testing.T) {
	dir := t.TempDir()
	pastePath := filepath.Join(dir, "paste.txt")
	outPath := filepath.Join(dir, "out.tsv")
	if err := os.WriteFile(pastePath, []byte("Item\tAmount\nRevenue\t(1,234.50)\n"), 0o644); err != nil {
		t.Fatalf("write paste: %v", err)
	}
	cfg := Config{
		PastePath:     pastePath,
		OutputPath:    outPath,
		Format:        "tsv",
		Multiplier:    1,
		DecimalPlaces: 2,
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("read out: %v", err)
	}
	want := "Item\tAmount\nRevenue\t-1234.50\n"
	if string(b) != want {
		t.Fatalf("got %q, want %q", string(b), want)
	}
}

func TestRun_SelectionExport(t *testing.T) {
	dir := t.TempDir()
	pastePath := filepath.Join(dir, "paste.txt")
	outPath := filepath.Join(dir, "out.txt")
	paste := "A\tB\tC\tD\n00\t01\t02\t03\n10\t11\t12\t13\n20\t21\t22\t23\n"
	if err := os.WriteFile(pastePath, []byte(paste), 0o644); err != nil {
		t.Fatalf("write paste: %v", err)
	}
	cfg := Config{
		PastePath:     pastePath,
		OutputPath:    outPath,
		Multiplier:    1,
		DecimalPlaces: 0,
		Cells:         "2:1, 0:0, 1:3",
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, _ := os.ReadFile(outPath)
	if got := string(b); got != "0\n13\n21\n" {
		t.Fatalf("selection must export in reading order, got %q", got)
	}
}

func TestRun_NoTables(t *testing.T) {
	dir := t.TempDir()
	pastePath := filepath.Join(dir, "paste.txt")
	if err := os.WriteFile(pastePath, []byte("   \n"), 0o644); err != nil {
		t.Fatalf("write paste: %v", err)
	}
	a, err := New(context.Background(), Config{PastePath: pastePath, Multiplier: 1, DecimalPlaces: normalize.FullPrecision})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Run(context.Background()); err != ErrNoTables {
		t.Fatalf("expected ErrNoTables, got %v", err)
	}
}

func TestRun_ImageExtractionAgainstStub(t *testing.T) {
	payload := map[string]any{
		"tables": []map[string]any{{
			"title":   "Summary",
			"headers": []string{"Item", "Amount"},
			"rows":    [][]string{{"Revenue", "1,000"}},
		}},
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		b, _ := json.Marshal(payload)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": string(b)}},
			},
		})
	}))
	defer ts.Close()

	dir := t.TempDir()
	imgPath := filepath.Join(dir, "page.png")
	outPath := filepath.Join(dir, "out.tsv")
	if err := os.WriteFile(imgPath, []byte("\x89PNG\r\n\x1a\nfake"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	cfg := Config{
		ImagePaths:    []string{imgPath},
		OutputPath:    outPath,
		LLMBaseURL:    ts.URL + "/v1",
		LLMModel:      "test-model",
		LLMAPIKey:     "sk-test",
		Multiplier:    1,
		DecimalPlaces: 2,
		ForceNegative: true,
	}
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	b, _ := os.ReadFile(outPath)
	want := "Item\tAmount\nRevenue\t-1000.00\n"
	if string(b) != want {
		t.Fatalf("got %q, want %q", string(b), want)
	}
}

func TestParseCells(t *testing.T) {
	cells, err := parseCells("0:0, 1:3 ,2:1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cells) != 3 || cells[1].Row != 1 || cells[1].Col != 3 {
		t.Fatalf("bad cells %+v", cells)
	}
	if _, err := parseCells("nonsense"); err == nil {
		t.Fatal("expected error for malformed cells")
	}
}

func TestApplyFileConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
output:
  path: from-file.tsv
llm:
  model: file-model
transform:
  multiplier: 0.001
  decimals: 2
  titleCase: true
cache:
  dir: /tmp/file-cache
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Flags left at defaults: file values flow in.
	cfg := Config{Multiplier: 1, DecimalPlaces: normalize.FullPrecision, Format: FormatDefault, CacheDir: CacheDirDefault}
	ApplyFileConfig(&cfg, fc)
	if cfg.OutputPath != "from-file.tsv" || cfg.LLMModel != "file-model" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Multiplier != 0.001 || cfg.DecimalPlaces != 2 || !cfg.TitleCase {
		t.Fatalf("transform values not applied: %+v", cfg)
	}
	if cfg.CacheDir != "/tmp/file-cache" {
		t.Fatalf("cache dir not applied: %+v", cfg)
	}

	// Explicit flag values win over the file.
	cfg = Config{Multiplier: 0.5, DecimalPlaces: 4, Format: FormatDefault, CacheDir: "explicit", LLMModel: "flag-model", OutputPath: "flag.tsv"}
	ApplyFileConfig(&cfg, fc)
	if cfg.Multiplier != 0.5 || cfg.DecimalPlaces != 4 || cfg.LLMModel != "flag-model" || cfg.OutputPath != "flag.tsv" || cfg.CacheDir != "explicit" {
		t.Fatalf("explicit values must win: %+v", cfg)
	}
}

func TestApplyEnvToConfig(t *testing.T) {
	t.Setenv("LLM_BASE_URL", "http://env:1234/v1")
	t.Setenv("LLM_MODEL", "env-model")
	cfg := Config{}
	ApplyEnvToConfig(&cfg)
	if cfg.LLMBaseURL != "http://env:1234/v1" || cfg.LLMModel != "env-model" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	cfg = Config{LLMModel: "explicit"}
	ApplyEnvToConfig(&cfg)
	if cfg.LLMModel != "explicit" {
		t.Fatalf("explicit value must win over env: %+v", cfg)
	}
}
