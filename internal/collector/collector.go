// Package collector fetches historical market data from upstream providers.
package collector

import (
	"context"
	"time"

	"github.com/fedetic/stockies/internal/core"
)

// Provider fetches historical OHLCV bars for one symbol. Implementations
// must return bars sorted by ascending date.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// FetchHistory returns the daily or weekly bars covering [start, end].
	FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error)
}
