package news

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"invest-assistant/internal/llm/prompts"
	"invest-assistant/internal/logger"
	"invest-assistant/internal/store"
	"invest-assistant/internal/trace"
	"invest-assistant/internal/types"
)

// maxItems caps the risks and catalysts lists in a brief.
const maxItems = 3

// BriefAnalyzer distills scraped coverage into investment risks and
// catalysts using the configured LLM.
type BriefAnalyzer struct {
	cfg      *store.Config
	provider string // "OPENAI" or "CLAUDE"
}

// NewBriefAnalyzer creates a brief analyzer.
func NewBriefAnalyzer(cfg *store.Config) *BriefAnalyzer {
	return &BriefAnalyzer{
		cfg:      cfg,
		provider: cfg.LLM.Provider,
	}
}

// BuildBrief condenses the articles into at most three risks and three
// catalysts for the given ticker. Empty input yields an empty brief.
func (a *BriefAnalyzer) BuildBrief(ctx context.Context, ticker string, articles []types.NewsArticle) (types.NewsBrief, error) {
	ctx, span := trace.StartSpan(ctx, "build-news-brief")
	defer span.End()

	brief := types.NewsBrief{
		Ticker:       ticker,
		ArticleCount: len(articles),
		Timestamp:    time.Now().Unix(),
	}
	if len(articles) == 0 {
		return brief, nil
	}

	prompt := a.buildBriefPrompt(ticker, articles)

	var out string
	var err error
	switch strings.ToUpper(a.provider) {
	case "OPENAI":
		out, err = a.completeWithOpenAI(ctx, prompt)
	case "CLAUDE":
		out, err = a.completeWithClaude(ctx, prompt)
	default:
		return brief, fmt.Errorf("unsupported LLM provider: %s", a.provider)
	}
	if err != nil {
		return brief, err
	}

	var parsed struct {
		Risks     []string `json:"risks"`
		Catalysts []string `json:"catalysts"`
	}
	if err := json.Unmarshal([]byte(prompts.ExtractJSON(out)), &parsed); err != nil {
		return brief, fmt.Errorf("invalid brief response: %w", err)
	}

	brief.Risks = clampItems(parsed.Risks)
	brief.Catalysts = clampItems(parsed.Catalysts)

	logger.Info(ctx, "News brief built", "ticker", ticker,
		"risks", len(brief.Risks), "catalysts", len(brief.Catalysts))
	return brief, nil
}

// clampItems drops empty entries and caps the list length.
func clampItems(items []string) []string {
	out := make([]string, 0, maxItems)
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		out = append(out, it)
		if len(out) == maxItems {
			break
		}
	}
	return out
}

func (a *BriefAnalyzer) buildBriefPrompt(ticker string, articles []types.NewsArticle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recent news coverage of %s:\n\n", ticker)
	for i, art := range articles {
		content := art.Content
		if len(content) > 800 {
			content = content[:800] + "..."
		}
		fmt.Fprintf(&b, "Article %d (%s): %s\n%s\n\n", i+1, art.Source, art.Title, content)
	}
	b.WriteString(`From this coverage, identify the most material investment risks and positive catalysts for the company.

Respond ONLY with valid JSON matching this schema:
{
  "risks": ["...", "..."],
  "catalysts": ["...", "..."]
}

At most three of each, one short sentence per item. Omit anything not supported by the articles.`)
	return b.String()
}

const briefSystemPrompt = "You are an equity analyst summarizing news coverage into investment risks and catalysts. Respond ONLY with valid JSON."

func (a *BriefAnalyzer) completeWithOpenAI(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", errors.New("OPENAI_API_KEY missing")
	}

	body := map[string]any{
		"model": a.cfg.LLM.Model,
		"messages": []map[string]string{
			{"role": "system", "content": briefSystemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.1,
		"max_tokens":  500,
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.openai.com/v1/chat/completions", bytes.NewReader(bb))
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

func (a *BriefAnalyzer) completeWithClaude(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("CLAUDE_API_KEY")
	if apiKey == "" {
		return "", errors.New("CLAUDE_API_KEY missing")
	}

	body := map[string]any{
		"model":      a.cfg.LLM.Model,
		"max_tokens": 500,
		"system":     briefSystemPrompt,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	bb, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(ctx, "POST", "https://api.anthropic.com/v1/messages", bytes.NewReader(bb))
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("claude http %d", resp.StatusCode)
	}

	var r struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return "", err
	}
	if len(r.Content) == 0 {
		return "", errors.New("no content")
	}
	return strings.TrimSpace(r.Content[0].Text), nil
}
