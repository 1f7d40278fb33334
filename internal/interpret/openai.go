// Package interpret asks a language model for a short reading of a
// mini-check result. It is best-effort: callers treat every error as
// "no interpretation available".
package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lucera/minicheck/internal/model"
)

// ErrDisabled is returned when no API key is configured.
var ErrDisabled = errors.New("interpret: no API key configured")

var (
	errEmptyReply    = errors.New("interpret: empty reply")
	errMalformedJSON = errors.New("interpret: reply is not valid JSON")
)

const systemPrompt = "Reply with JSON only. Do not use Markdown."

// Input is what the model is allowed to know about a page.
type Input struct {
	URL      string
	FinalURL string
	Score    int
	Checks   []model.Check
}

// Config configures the OpenAI chat-completions client.
type Config struct {
	APIKey string
	APIURL string
	Model  string
}

// OpenAI interprets reports with the chat-completions API.
type OpenAI struct {
	client *http.Client
	apiKey string
	apiURL string
	model  string
}

// NewOpenAI returns an OpenAI interpreter. An empty API key yields an
// interpreter that always returns ErrDisabled.
func NewOpenAI(cfg Config) *OpenAI {
	apiURL := strings.TrimRight(cfg.APIURL, "/")
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1"
	}
	return &OpenAI{
		client: &http.Client{Timeout: 60 * time.Second},
		apiKey: cfg.APIKey,
		apiURL: apiURL,
		model:  cfg.Model,
	}
}

// Enabled reports whether an API key is configured.
func (o *OpenAI) Enabled() bool {
	return o.apiKey != ""
}

// Interpret asks the model for a summary, risks and quick wins.
func (o *OpenAI) Interpret(ctx context.Context, in Input) (*model.Interpretation, error) {
	if !o.Enabled() {
		return nil, ErrDisabled
	}

	payload, err := json.Marshal(chatRequest{
		Model:       o.model,
		Temperature: 0.2,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(in)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("interpret: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.apiURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("interpret: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("interpret: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("interpret: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var reply chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, fmt.Errorf("interpret: decode response: %w", err)
	}
	if len(reply.Choices) == 0 || strings.TrimSpace(reply.Choices[0].Message.Content) == "" {
		return nil, errEmptyReply
	}

	var out model.Interpretation
	if err := json.Unmarshal([]byte(reply.Choices[0].Message.Content), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedJSON, err)
	}
	return &out, nil
}

func buildPrompt(in Input) string {
	var b strings.Builder
	b.WriteString("You audit how well AI assistants and search engines understand medical clinic websites. ")
	b.WriteString("You are given mini-check facts about one page. ")
	b.WriteString(`Do not invent facts that are not in the input. If there is not enough data, say "not found". `)
	b.WriteString("Answer briefly and concretely.\n\n")

	fmt.Fprintf(&b, "URL: %s\nFinal URL: %s\nScore: %d\n\nCHECKS:\n", in.URL, in.FinalURL, in.Score)
	for _, c := range in.Checks {
		fmt.Fprintf(&b, "- %s: %s (%s)\n", c.Label, strings.ToUpper(string(c.Status)), c.Detail)
	}

	b.WriteString("\nReturn ONLY valid JSON with these fields:\n")
	b.WriteString(`{
  "summary": "one sentence: what an AI will most likely understand about this page",
  "top_risks": ["3 short points"],
  "quick_wins": ["3 short points"],
  "confidence": "low|medium|high"
}`)
	b.WriteString("\n")

	return b.String()
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
