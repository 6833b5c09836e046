// Package pricestore persists fetched bar history so repeated backtests over
// the same symbol and range do not hit the upstream provider again. The
// document layer sits on a pluggable byte backend so local disk and
// S3-compatible object stores interchange freely.
package pricestore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fedetic/stockies/internal/core"
)

// Backend is a flat byte store addressed by slash-separated keys.
type Backend interface {
	Write(ctx context.Context, key string, data []byte) error
	Read(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	Delete(ctx context.Context, key string) error
}

// Document is one stored history slice with its fetch timestamp, used by
// callers to decide freshness.
type Document struct {
	Symbol    string     `json:"symbol"`
	Interval  string     `json:"interval"`
	Start     time.Time  `json:"start"`
	End       time.Time  `json:"end"`
	FetchedAt time.Time  `json:"fetched_at"`
	Bars      []core.Bar `json:"bars"`
}

// Store reads and writes history documents on a Backend.
type Store struct {
	backend Backend
}

// NewStore wraps a backend with the history document layer.
func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Key builds the canonical document key:
// history/<symbol>/<interval>/<start>_<end>.json
func Key(symbol string, interval core.Interval, start, end time.Time) string {
	return fmt.Sprintf("history/%s/%s/%s_%s.json",
		symbol, interval, core.Date(start), core.Date(end))
}

// Save writes the bars under the canonical key, stamped with the current time.
func (s *Store) Save(ctx context.Context, symbol string, interval core.Interval, start, end time.Time, bars []core.Bar) error {
	doc := Document{
		Symbol:    symbol,
		Interval:  string(interval),
		Start:     start,
		End:       end,
		FetchedAt: time.Now().UTC(),
		Bars:      bars,
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	if err := s.backend.Write(ctx, Key(symbol, interval, start, end), data); err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	return nil
}

// Load reads the document for the exact symbol, interval and range. The
// boolean is false when no document exists.
func (s *Store) Load(ctx context.Context, symbol string, interval core.Interval, start, end time.Time) (*Document, bool, error) {
	key := Key(symbol, interval, start, end)

	ok, err := s.backend.Exists(ctx, key)
	if err != nil {
		return nil, false, core.WrapError(core.ErrStorageFailed, err)
	}
	if !ok {
		return nil, false, nil
	}

	data, err := s.backend.Read(ctx, key)
	if err != nil {
		return nil, false, core.WrapError(core.ErrStorageFailed, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, core.WrapError(core.ErrStorageFailed, err)
	}
	return &doc, true, nil
}

// Symbols lists the symbols with at least one stored document.
func (s *Store) Symbols(ctx context.Context) ([]string, error) {
	keys, err := s.backend.List(ctx, "history/")
	if err != nil {
		return nil, core.WrapError(core.ErrStorageFailed, err)
	}

	seen := make(map[string]bool)
	var symbols []string
	for _, key := range keys {
		parts := strings.Split(key, "/")
		if len(parts) < 2 || parts[0] != "history" || parts[1] == "" {
			continue
		}
		if !seen[parts[1]] {
			seen[parts[1]] = true
			symbols = append(symbols, parts[1])
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// Purge deletes every stored document for a symbol.
func (s *Store) Purge(ctx context.Context, symbol string) error {
	keys, err := s.backend.List(ctx, "history/"+symbol+"/")
	if err != nil {
		return core.WrapError(core.ErrStorageFailed, err)
	}
	for _, key := range keys {
		if err := s.backend.Delete(ctx, key); err != nil {
			return core.WrapError(core.ErrStorageFailed, err)
		}
	}
	return nil
}
