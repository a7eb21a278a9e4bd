// Package claude calls the Anthropic messages API for shortlist re-ranking
// and intent classification.
package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"invest-assistant/internal/interfaces"
	"invest-assistant/internal/llm/prompts"
	"invest-assistant/internal/store"
	"invest-assistant/internal/trace"
	"invest-assistant/internal/types"
)

const defaultEndpoint = "https://api.anthropic.com/v1/messages"

type Client struct {
	cfg      *store.Config
	endpoint string
}

var (
	_ interfaces.Ranker           = (*Client)(nil)
	_ interfaces.IntentClassifier = (*Client)(nil)
)

// New builds a Claude client. Set CLAUDE_API_ENDPOINT to route through a
// proxy or a cloud-hosted deployment.
func New(cfg *store.Config) *Client {
	endpoint := defaultEndpoint
	if ep := os.Getenv("CLAUDE_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &Client{cfg: cfg, endpoint: endpoint}
}

// Rank asks the model to pick the best shortlist candidate for the query.
func (c *Client) Rank(ctx context.Context, query string, keyTokens []string, bankMode bool, shortlist []types.Instrument) (types.RankChoice, error) {
	ctx, span := trace.StartSpan(ctx, "claude-rank")
	defer span.End()

	user, err := prompts.RankUser(query, keyTokens, bankMode, shortlist)
	if err != nil {
		return types.RankChoice{}, err
	}
	out, err := c.message(ctx, c.cfg.LLM.RerankModel, prompts.RankSystem, user)
	if err != nil {
		return types.RankChoice{}, err
	}

	var choice types.RankChoice
	if err := json.Unmarshal([]byte(prompts.ExtractJSON(out)), &choice); err != nil {
		return types.RankChoice{}, fmt.Errorf("unparseable rank response: %w", err)
	}
	prompts.NormalizeChoice(&choice)
	return choice, nil
}

// Classify maps a user prompt to one routing intent.
func (c *Client) Classify(ctx context.Context, prompt string) (types.IntentClassification, error) {
	ctx, span := trace.StartSpan(ctx, "claude-classify")
	defer span.End()

	out, err := c.message(ctx, c.cfg.LLM.Model, prompts.ClassifySystem, prompt)
	if err != nil {
		return types.IntentClassification{}, err
	}

	var ic types.IntentClassification
	if err := json.Unmarshal([]byte(prompts.ExtractJSON(out)), &ic); err != nil {
		return types.IntentClassification{}, fmt.Errorf("unparseable intent response: %w", err)
	}
	prompts.NormalizeIntent(&ic)
	return ic, nil
}

func (c *Client) message(ctx context.Context, model, system, user string) (string, error) {
	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return "", errors.New("CLAUDE_API_KEY missing")
	}

	body := map[string]any{
		"model":       model,
		"system":      system,
		"max_tokens":  c.cfg.LLM.MaxTokens,
		"temperature": c.cfg.LLM.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": user},
		},
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(bb))
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("claude http %d: %s", resp.StatusCode, string(raw))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var r struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &r); err == nil {
		var b strings.Builder
		for _, block := range r.Content {
			if block.Type == "" || block.Type == "text" {
				b.WriteString(block.Text)
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			return s, nil
		}
	}
	// Older proxies return other shapes; hand the raw body to the JSON
	// extractor and let the caller decide.
	return string(raw), nil
}
