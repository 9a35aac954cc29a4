// Package extractor is the boundary to the external vision model. It sends
// images and optional pasted text with a strict JSON-only contract and adapts
// the positional payload into keyed tables. The formatting core never sees a
// failed extraction: errors surface here and stop the pipeline.
package extractor

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gotabular/internal/cache"
	"github.com/hyperifyio/gotabular/internal/llm"
	"github.com/hyperifyio/gotabular/internal/table"
	"github.com/rs/zerolog/log"
)

// Extractor calls an OpenAI-compatible endpoint and enforces a JSON-only
// contract for the table payload.
type Extractor struct {
	Client llm.Client
	Model  string
	Cache  *cache.ResponseCache
	// CacheOnly, when true, returns from cache and fails fast if missing.
	CacheOnly bool
	Verbose   bool
}

// Request carries everything one extraction needs: raw image bytes and/or
// pasted text, plus the user's free-text instruction which is forwarded
// verbatim and never interpreted locally.
type Request struct {
	Images      [][]byte
	Text        string
	Instruction string
}

const systemMessage = "You are a data extraction assistant. Respond with strict JSON only, no narration. The JSON schema is {\"tables\": [{\"title\": string, \"summary\": string, \"headers\": string[], \"rows\": string[][]}]}. Each row must align positionally with headers; use \"\" for unreadable cells. Copy values exactly as they appear in the source, including parentheses, minus signs and thousands separators. Extract every distinct table."

// payload mirrors the wire schema. Rows are positional relative to headers.
type payload struct {
	Tables []struct {
		Title   string     `json:"title"`
		Summary string     `json:"summary"`
		Headers []string   `json:"headers"`
		Rows    [][]string `json:"rows"`
	} `json:"tables"`
}

// Extract performs one extraction call. Results are cached by model, prompt
// and image digests; a hit skips the network entirely.
func (e *Extractor) Extract(ctx context.Context, req Request) (table.Result, error) {
	if e.Client == nil || e.Model == "" {
		return table.Result{}, errors.New("extractor not configured")
	}
	if len(req.Images) == 0 && strings.TrimSpace(req.Text) == "" {
		return table.Result{}, errors.New("nothing to extract")
	}

	user := buildUserPrompt(req)
	key := cache.KeyFrom(e.Model, systemMessage+"\n\n"+user, req.Images...)
	if e.Cache != nil {
		if raw, ok, _ := e.Cache.Get(ctx, key); ok {
			if res, err := decodePayload(raw); err == nil {
				return res, nil
			}
		}
	}
	if e.CacheOnly {
		return table.Result{}, errors.New("extractor cache-only: not found")
	}
	if e.Verbose {
		// Log shape only; image bytes and cell values stay out of the logs
		log.Debug().Str("stage", "extract").Str("model", e.Model).Int("images", len(req.Images)).Int("user_len", len(user)).Msg("extraction prompt")
	}

	resp, err := e.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.Model,
		Messages:    buildMessages(user, req.Images),
		Temperature: 0.0,
		N:           1,
	})
	if err != nil {
		return table.Result{}, fmt.Errorf("extraction call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return table.Result{}, errors.New("no choices")
	}
	raw := []byte(stripFences(resp.Choices[0].Message.Content))
	res, err := decodePayload(raw)
	if err != nil {
		return table.Result{}, fmt.Errorf("parse extraction json: %w", err)
	}
	if e.Cache != nil {
		_ = e.Cache.Save(ctx, key, raw)
	}
	return res, nil
}

func buildUserPrompt(req Request) string {
	var sb strings.Builder
	sb.WriteString("Extract all tables from the attached input.")
	if s := strings.TrimSpace(req.Instruction); s != "" {
		sb.WriteString("\nAdditional instructions: ")
		sb.WriteString(s)
	}
	if s := strings.TrimSpace(req.Text); s != "" {
		sb.WriteString("\n\nRaw text:\n")
		sb.WriteString(s)
	}
	return sb.String()
}

// buildMessages assembles the chat messages. With images attached the user
// turn becomes a multi-part message of one text part plus one data-URL image
// part per attachment.
func buildMessages(user string, images [][]byte) []openai.ChatCompletionMessage {
	msgs := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
	}
	if len(images) == 0 {
		return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: user})
	}
	parts := make([]openai.ChatMessagePart, 0, len(images)+1)
	parts = append(parts, openai.ChatMessagePart{Type: openai.ChatMessagePartTypeText, Text: user})
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(img),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}
	return append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, MultiContent: parts})
}

func dataURL(img []byte) string {
	mime := http.DetectContentType(img)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img)
}

// stripFences tolerates models that wrap the JSON in a markdown code fence
// despite the contract.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// decodePayload parses the wire schema and adapts positional rows into keyed
// tables. Tables without headers are dropped rather than erroring; a payload
// with zero usable tables is still a valid (empty) result.
func decodePayload(raw []byte) (table.Result, error) {
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return table.Result{}, err
	}
	var res table.Result
	for _, t := range p.Tables {
		if len(t.Headers) == 0 {
			continue
		}
		res.Tables = append(res.Tables, table.FromPositional(t.Title, t.Summary, t.Headers, t.Rows))
	}
	return res, nil
}
