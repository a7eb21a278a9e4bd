// Package noop provides LLM stand-ins used when no provider is configured.
package noop

import (
	"context"

	"invest-assistant/internal/interfaces"
	"invest-assistant/internal/logger"
	"invest-assistant/internal/types"
)

type Client struct{}

var (
	_ interfaces.Ranker           = (*Client)(nil)
	_ interfaces.IntentClassifier = (*Client)(nil)
)

func New() *Client {
	return &Client{}
}

// Rank always reports no opinion; the deterministic chain takes over.
func (c *Client) Rank(ctx context.Context, query string, _ []string, _ bool, _ []types.Instrument) (types.RankChoice, error) {
	logger.Debug(ctx, "Noop ranker called, no opinion", "query", query)
	return types.RankChoice{Confidence: 0}, nil
}

// Classify always reports none with zero confidence.
func (c *Client) Classify(ctx context.Context, _ string) (types.IntentClassification, error) {
	logger.Debug(ctx, "Noop classifier called")
	return types.IntentClassification{Intent: types.IntentNone, Confidence: 0}, nil
}
