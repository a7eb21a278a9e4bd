package interfaces

import (
	"context"

	"invest-assistant/internal/types"
)

// IntentClassifier maps a free-text user prompt to one of the routing intents.
type IntentClassifier interface {
	Classify(ctx context.Context, prompt string) (types.IntentClassification, error)
}
