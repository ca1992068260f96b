// Package backend loads price history for the chart from the network, local
// files and an on-disk cache, and delivers it to the UI.
package backend

import (
	"context"
	"errors"
	"strings"
	"time"

	"git.sr.ht/~whereswaldon/stockchart/plot"
)

var (
	ErrUnknownPeriod = errors.New("unknown period")
	ErrNoSymbol      = errors.New("no symbol given")
	ErrNoData        = errors.New("no data returned")
	ErrNotCached     = errors.New("quote not cached")
)

// Quote is the price history of one symbol.
type Quote struct {
	Symbol string
	// Name is the human readable name of the instrument, used as the
	// window title.
	Name   string
	Period Period
	Series plot.Series
	// Stale is set when the history was served from the cache because the
	// source could not be reached.
	Stale     bool
	FetchedAt time.Time
}

// Title returns the best available display name for q.
func (q Quote) Title() string {
	if q.Name != "" {
		return q.Name
	}
	return q.Symbol
}

// Source provides the price history for a symbol.
type Source interface {
	Fetch(ctx context.Context, symbol string, period Period) (Quote, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, symbol string, period Period) (Quote, error)

func (f SourceFunc) Fetch(ctx context.Context, symbol string, period Period) (Quote, error) {
	return f(ctx, symbol, period)
}

// normalizeSymbol trims and upper-cases a ticker symbol.
func normalizeSymbol(symbol string) (string, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return "", ErrNoSymbol
	}
	return symbol, nil
}
