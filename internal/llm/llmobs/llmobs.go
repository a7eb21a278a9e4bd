// Package llmobs wraps the LLM collaborators with logging and tracing
// middleware.
package llmobs

import (
	"context"

	"invest-assistant/internal/interfaces"
	"invest-assistant/internal/logger"
	"invest-assistant/internal/trace"
	"invest-assistant/internal/types"
)

type observableRanker struct {
	ranker interfaces.Ranker
}

var _ interfaces.Ranker = (*observableRanker)(nil)

// WrapRanker wraps a ranker with observability middleware.
func WrapRanker(ranker interfaces.Ranker) interfaces.Ranker {
	return &observableRanker{ranker: ranker}
}

func (or *observableRanker) Rank(ctx context.Context, query string, keyTokens []string, bankMode bool, shortlist []types.Instrument) (types.RankChoice, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Rank")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting shortlist re-rank",
		"query", query,
		"candidates", len(shortlist),
		"bankMode", bankMode,
	)

	choice, err := or.ranker.Rank(ctx, query, keyTokens, bankMode, shortlist)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to re-rank shortlist", err,
			"query", query,
		)
		return types.RankChoice{}, err
	}

	logger.InfoSkip(ctx, 1, "Re-rank choice received",
		"query", query,
		"ticker", choice.Ticker,
		"confidence", choice.Confidence,
	)
	return choice, nil
}

type observableClassifier struct {
	classifier interfaces.IntentClassifier
}

var _ interfaces.IntentClassifier = (*observableClassifier)(nil)

// WrapClassifier wraps an intent classifier with observability middleware.
func WrapClassifier(classifier interfaces.IntentClassifier) interfaces.IntentClassifier {
	return &observableClassifier{classifier: classifier}
}

func (oc *observableClassifier) Classify(ctx context.Context, prompt string) (types.IntentClassification, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Classify")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Requesting intent classification", "promptLen", len(prompt))

	ic, err := oc.classifier.Classify(ctx, prompt)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to classify intent", err)
		return types.IntentClassification{}, err
	}

	logger.InfoSkip(ctx, 1, "Intent classified",
		"intent", ic.Intent,
		"confidence", ic.Confidence,
	)
	return ic, nil
}
