// Package llm selects the configured provider and wraps it with
// observability middleware.
package llm

import (
	"invest-assistant/internal/interfaces"
	"invest-assistant/internal/llm/claude"
	"invest-assistant/internal/llm/llmobs"
	"invest-assistant/internal/llm/noop"
	"invest-assistant/internal/llm/openai"
	"invest-assistant/internal/store"
)

// NewRanker returns the configured shortlist ranker.
func NewRanker(cfg *store.Config) interfaces.Ranker {
	switch cfg.LLM.Provider {
	case "OPENAI":
		return llmobs.WrapRanker(openai.New(cfg))
	case "CLAUDE":
		return llmobs.WrapRanker(claude.New(cfg))
	default:
		return llmobs.WrapRanker(noop.New())
	}
}

// NewClassifier returns the configured intent classifier.
func NewClassifier(cfg *store.Config) interfaces.IntentClassifier {
	switch cfg.LLM.Provider {
	case "OPENAI":
		return llmobs.WrapClassifier(openai.New(cfg))
	case "CLAUDE":
		return llmobs.WrapClassifier(claude.New(cfg))
	default:
		return llmobs.WrapClassifier(noop.New())
	}
}
