// Package corpus produces the candidate snapshot corpus for similarity
// search: a lazy, per-symbol-chronological sequence of normalized state
// snapshots bounded by a history cap and a sampling cadence.
package corpus

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/data"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/snapshot"
)

// Config bounds the corpus. The history cap trades recall for latency on a
// fundamentally exhaustive scan; callers pick it deliberately.
type Config struct {
	Symbols        []string
	Timeframe      string
	WindowDays     int
	MaxHistoryDays int
	// Step is the sampling cadence in bars; 0 defaults to one sample per day.
	Step int
	// Now anchors the history cap; zero value means time.Now()
	Now time.Time
}

// DefaultMaxHistoryDays caps the scanned history when the caller does not
const DefaultMaxHistoryDays = 365

// Iterator yields snapshots one at a time in the database/sql Rows style:
//
//	for it.Next(ctx) {
//	    s := it.Snapshot()
//	    ...
//	}
//	if err := it.Err(); err != nil { ... }
//
// Ordering across symbols follows the configured symbol list; ordering
// within a symbol is chronological. Symbols whose data cannot be loaded are
// logged and skipped so one bad symbol never aborts the scan.
type Iterator struct {
	prices  data.PriceProvider
	attn    data.AttentionProvider
	cache   *snapshot.SeriesCache
	builder *snapshot.Builder
	cfg     Config

	symIdx  int
	pending []*model.StateSnapshot
	current *model.StateSnapshot
	err     error
}

// New creates an iterator over the configured symbols. The cache may be nil.
func New(prices data.PriceProvider, attn data.AttentionProvider, cache *snapshot.SeriesCache, cfg Config) (*Iterator, error) {
	if cfg.WindowDays <= 0 {
		cfg.WindowDays = snapshot.DefaultWindowDays
	}
	if cfg.MaxHistoryDays <= 0 {
		cfg.MaxHistoryDays = DefaultMaxHistoryDays
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now().UTC()
	}
	if cfg.Step <= 0 {
		cfg.Step = model.BarsPerDay(cfg.Timeframe)
	}

	builder, err := snapshot.NewBuilder(cfg.Timeframe, cfg.WindowDays)
	if err != nil {
		return nil, fmt.Errorf("corpus config: %w", err)
	}

	return &Iterator{
		prices:  prices,
		attn:    attn,
		cache:   cache,
		builder: builder,
		cfg:     cfg,
	}, nil
}

// Next advances to the next snapshot, loading the next symbol's history when
// the current one is exhausted. Returns false when the corpus is exhausted or
// the context is done.
func (it *Iterator) Next(ctx context.Context) bool {
	for {
		if err := ctx.Err(); err != nil {
			it.err = err
			return false
		}

		if len(it.pending) > 0 {
			it.current = it.pending[0]
			it.pending = it.pending[1:]
			return true
		}

		if it.symIdx >= len(it.cfg.Symbols) {
			return false
		}

		symbol := it.cfg.Symbols[it.symIdx]
		it.symIdx++
		it.pending = it.loadSymbol(ctx, symbol)
	}
}

// Snapshot returns the snapshot positioned by the last successful Next
func (it *Iterator) Snapshot() *model.StateSnapshot {
	return it.current
}

// Err returns the first terminal error (context cancellation); per-symbol
// load failures are absorbed.
func (it *Iterator) Err() error {
	return it.err
}

func (it *Iterator) loadSymbol(ctx context.Context, symbol string) []*model.StateSnapshot {
	corpusStart := it.cfg.Now.AddDate(0, 0, -it.cfg.MaxHistoryDays)

	series := it.buildSeries(ctx, symbol, corpusStart)
	if len(series) == 0 {
		return nil
	}

	// Sample at the configured cadence, oldest first, dropping the
	// normalization warmup that precedes the corpus window.
	var out []*model.StateSnapshot
	sinceLast := it.cfg.Step
	for _, s := range series {
		if s == nil || s.AsOf.Before(corpusStart) || s.AsOf.After(it.cfg.Now) {
			continue
		}
		if sinceLast < it.cfg.Step {
			sinceLast++
			continue
		}
		sinceLast = 1
		out = append(out, s)
	}
	return out
}

func (it *Iterator) buildSeries(ctx context.Context, symbol string, corpusStart time.Time) []*model.StateSnapshot {
	// Load extra trailing history so rolling statistics are warm at the
	// corpus start: window + 2x-window standardization lookback.
	loadStart := corpusStart.AddDate(0, 0, -3*it.cfg.WindowDays)

	bars, err := it.prices.Bars(ctx, symbol, it.cfg.Timeframe, loadStart, it.cfg.Now)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to load bars, skipping symbol")
		return nil
	}
	if len(bars) == 0 {
		return nil
	}

	key := snapshot.SeriesKey(symbol, it.cfg.Timeframe, it.cfg.WindowDays, bars[len(bars)-1].Timestamp)
	if cached, ok := it.cache.Get(key); ok {
		return cached
	}

	rows, err := it.attn.Attention(ctx, symbol, it.cfg.Timeframe, loadStart, it.cfg.Now)
	if err != nil {
		// Degraded mode: snapshots still build with neutral attention
		log.Warn().Err(err).Str("symbol", symbol).Msg("failed to load attention rows, degrading to price-only features")
		rows = nil
	}

	series := it.builder.BuildSeries(bars, rows)
	it.cache.Put(key, series)
	return series
}
