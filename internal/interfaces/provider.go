package interfaces

import (
	"context"

	"invest-assistant/internal/types"
)

// MetricsProvider assembles a Metrics snapshot for one resolved instrument.
type MetricsProvider interface {
	Snapshot(ctx context.Context, ticker string) (types.Metrics, error)
}
