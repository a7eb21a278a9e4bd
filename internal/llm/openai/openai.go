// Package openai calls the OpenAI chat completions API for shortlist
// re-ranking and intent classification. Responses are expected to be a
// single JSON object; anything else is an error the caller treats as no
// opinion.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"invest-assistant/internal/interfaces"
	"invest-assistant/internal/llm/prompts"
	"invest-assistant/internal/store"
	"invest-assistant/internal/trace"
	"invest-assistant/internal/types"
)

const endpoint = "https://api.openai.com/v1/chat/completions"

type Client struct {
	cfg *store.Config
}

var (
	_ interfaces.Ranker           = (*Client)(nil)
	_ interfaces.IntentClassifier = (*Client)(nil)
)

func New(cfg *store.Config) *Client {
	return &Client{cfg: cfg}
}

// Rank asks the model to pick the best shortlist candidate for the query.
func (c *Client) Rank(ctx context.Context, query string, keyTokens []string, bankMode bool, shortlist []types.Instrument) (types.RankChoice, error) {
	ctx, span := trace.StartSpan(ctx, "openai-rank")
	defer span.End()

	user, err := prompts.RankUser(query, keyTokens, bankMode, shortlist)
	if err != nil {
		return types.RankChoice{}, err
	}
	out, err := c.chat(ctx, c.cfg.LLM.RerankModel, prompts.RankSystem, user)
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
	ctx, span := trace.StartSpan(ctx, "openai-classify")
	defer span.End()

	out, err := c.chat(ctx, c.cfg.LLM.Model, prompts.ClassifySystem, prompt)
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

func (c *Client) chat(ctx context.Context, model, system, user string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", errors.New("OPENAI_API_KEY missing")
	}

	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": c.cfg.LLM.Temperature,
		"max_tokens":  c.cfg.LLM.MaxTokens,
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(bb))
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai http %d", resp.StatusCode)
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}
	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}
