package interfaces

import (
	"context"

	"invest-assistant/internal/types"
)

// Ranker picks one candidate from a resolver shortlist. Implementations are
// best-effort: any error is treated as "no opinion" by the caller, never as
// a resolution failure.
type Ranker interface {
	Rank(ctx context.Context, query string, keyTokens []string, bankMode bool, shortlist []types.Instrument) (types.RankChoice, error)
}
