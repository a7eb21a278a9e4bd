// Package prompts holds the prompt templates and response plumbing shared by
// the LLM providers.
package prompts

import (
	"encoding/json"
	"strings"

	"invest-assistant/internal/types"
)

// RankSystem instructs the model for shortlist re-ranking.
const RankSystem = "You are a Nordic equities analyst. You receive a user query and a " +
	"shortlist of candidate instruments. Pick the single candidate the user most " +
	"likely means. Respond ONLY with compact JSON: " +
	`{"ticker":"...","name":"...","confidence":0.0,"why":"..."}. ` +
	"confidence is your certainty in [0,1]. The ticker MUST come from the shortlist."

// ClassifySystem instructs the model for intent routing.
const ClassifySystem = "Classify the user's investment prompt into exactly one intent: " +
	"screening, single_stock_analysis, portfolio_analysis, general_investment_advice or none. " +
	"Respond ONLY with compact JSON: " +
	`{"intent":"...","confidence":0.0,"reasoning":"..."}.`

type rankCandidate struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

type rankRequest struct {
	Query     string          `json:"query"`
	KeyTokens []string        `json:"key_tokens,omitempty"`
	BankMode  bool            `json:"bank_mode"`
	Shortlist []rankCandidate `json:"shortlist"`
}

// RankUser renders the re-ranking user message as JSON state.
func RankUser(query string, keyTokens []string, bankMode bool, shortlist []types.Instrument) (string, error) {
	req := rankRequest{
		Query:     query,
		KeyTokens: keyTokens,
		BankMode:  bankMode,
		Shortlist: make([]rankCandidate, len(shortlist)),
	}
	for i, inst := range shortlist {
		req.Shortlist[i] = rankCandidate{Ticker: inst.Ticker, Name: inst.Name}
	}
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ExtractJSON returns the first top-level JSON object embedded in text, or
// the trimmed text itself when no braces are found. Models often wrap the
// object in prose or code fences.
func ExtractJSON(text string) string {
	t := strings.TrimSpace(text)
	start := strings.Index(t, "{")
	end := strings.LastIndex(t, "}")
	if start >= 0 && end > start {
		return t[start : end+1]
	}
	return t
}

// NormalizeChoice clamps an out-of-range confidence to zero and trims the
// ticker into comparable form.
func NormalizeChoice(c *types.RankChoice) {
	c.Ticker = strings.ToUpper(strings.TrimSpace(c.Ticker))
	if c.Confidence < 0 || c.Confidence > 1 {
		c.Confidence = 0
	}
}

// NormalizeIntent maps unknown labels to none and clamps confidence.
func NormalizeIntent(ic *types.IntentClassification) {
	ic.Intent = strings.ToLower(strings.TrimSpace(ic.Intent))
	switch ic.Intent {
	case types.IntentScreening, types.IntentStockAnalysis, types.IntentPortfolio, types.IntentGeneralAdvice:
	default:
		ic.Intent = types.IntentNone
	}
	if ic.Confidence < 0 || ic.Confidence > 1 {
		ic.Confidence = 0
	}
}
