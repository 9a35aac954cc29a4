// vision-stub is a fake OpenAI-compatible server for integration tests and
// offline development. It answers the extraction contract with a small canned
// financial table payload.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		sys := ""
		if len(req.Messages) > 0 {
			// System content is always a plain string; user content may be
			// multi-part, which we do not need to inspect here.
			_ = json.Unmarshal(req.Messages[0].Content, &sys)
		}
		if !strings.Contains(sys, "strict JSON only") || !strings.Contains(sys, "tables") {
			http.Error(w, "unexpected system", http.StatusBadRequest)
			return
		}
		payload := map[string]any{
			"tables": []map[string]any{
				{
					"title":   "Income Statement",
					"summary": "Quarterly results in thousands.",
					"headers": []string{"Line Item", "Q1", "Q2"},
					"rows": [][]string{
						{"Revenue", "1,234.50", "1,480.00"},
						{"cost of goods", "(350.25)", "(401.75)"},
						{"Net Income", "884.25", "1,078.25"},
					},
				},
			},
		}
		b, _ := json.Marshal(payload)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": string(b)}},
			},
		})
	})

	log.Printf("vision-stub listening on %s (model=%s)", addr, model)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
