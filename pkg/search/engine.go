// Package search implements the exact K-nearest scan over the snapshot
// corpus: embargoed in time around the target, optionally excluding the
// target's own symbol, and hard-capped in the number of candidates examined.
package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/corpus"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/data"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/snapshot"
)

// Options configure one similarity query. The caps are resource controls on
// a fundamentally exhaustive scan and are treated as hard stopping
// conditions.
type Options struct {
	// CandidateSymbols defaults to the full catalog
	CandidateSymbols []string

	// MaxCandidates is a hard cap on candidates examined; when the corpus is
	// larger the result is a sample, not exhaustive.
	MaxCandidates int

	TopK           int
	MaxHistoryDays int

	// ExclusionDays is the embargo half-width around the target's as-of
	ExclusionDays int

	Metric            Metric
	IncludeSameSymbol bool

	// Now anchors the history cap; zero value means time.Now()
	Now time.Time
}

// DefaultOptions returns the standard query configuration
func DefaultOptions() Options {
	return Options{
		MaxCandidates:  20000,
		TopK:           20,
		MaxHistoryDays: corpus.DefaultMaxHistoryDays,
		ExclusionDays:  7,
		Metric:         MetricEuclidean,
	}
}

func (o *Options) validate() error {
	if _, err := ParseMetric(string(o.Metric)); err != nil {
		return err
	}
	if o.TopK <= 0 {
		return fmt.Errorf("top K must be positive, got %d", o.TopK)
	}
	if o.MaxCandidates <= 0 {
		return fmt.Errorf("max candidates must be positive, got %d", o.MaxCandidates)
	}
	if o.ExclusionDays < 0 {
		return fmt.Errorf("exclusion days must be non-negative, got %d", o.ExclusionDays)
	}
	return nil
}

// Engine scans candidate snapshots for the nearest historical analogs of a
// target state. Stateless between calls.
type Engine struct {
	prices  data.PriceProvider
	attn    data.AttentionProvider
	catalog data.Catalog
	cache   *snapshot.SeriesCache
}

// NewEngine creates a search engine over the given collaborators. The cache
// may be nil to disable series caching.
func NewEngine(prices data.PriceProvider, attn data.AttentionProvider, catalog data.Catalog, cache *snapshot.SeriesCache) *Engine {
	return &Engine{prices: prices, attn: attn, catalog: catalog, cache: cache}
}

// FindSimilar returns up to TopK nearest neighbors of the target, ascending
// by distance with ties broken by earlier timestamp. A target with an
// all-zero feature vector has no usable signal and yields no matches.
func (e *Engine) FindSimilar(ctx context.Context, target *model.StateSnapshot, opts Options) ([]model.SimilarState, error) {
	if target == nil {
		return nil, fmt.Errorf("target snapshot is nil")
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if target.Features.IsZero() {
		return nil, nil
	}

	symbols := opts.CandidateSymbols
	if len(symbols) == 0 {
		all, err := e.catalog.Symbols(ctx)
		if err != nil {
			return nil, fmt.Errorf("list candidate symbols: %w", err)
		}
		symbols = all
	}

	it, err := corpus.New(e.prices, e.attn, e.cache, corpus.Config{
		Symbols:        symbols,
		Timeframe:      target.Timeframe,
		WindowDays:     target.WindowDays,
		MaxHistoryDays: opts.MaxHistoryDays,
		Now:            opts.Now,
	})
	if err != nil {
		return nil, err
	}

	targetVec := target.Vector()
	embargo := time.Duration(opts.ExclusionDays) * 24 * time.Hour

	type scored struct {
		snap     *model.StateSnapshot
		distance float64
	}
	var matches []scored

	examined := 0
	for it.Next(ctx) {
		if examined >= opts.MaxCandidates {
			log.Debug().Int("examined", examined).Msg("candidate cap reached, stopping scan")
			break
		}
		examined++

		cand := it.Snapshot()

		if !opts.IncludeSameSymbol && cand.Symbol == target.Symbol {
			continue
		}

		// Embargo: candidates too close in time to the target leak
		// near-future information into "what happened after states like this"
		delta := cand.AsOf.Sub(target.AsOf)
		if delta < 0 {
			delta = -delta
		}
		if delta <= embargo {
			continue
		}

		matches = append(matches, scored{
			snap:     cand,
			distance: opts.Metric.Distance(targetVec, cand.Vector()),
		})
	}
	if err := it.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].distance != matches[j].distance {
			return matches[i].distance < matches[j].distance
		}
		return matches[i].snap.AsOf.Before(matches[j].snap.AsOf)
	})
	if len(matches) > opts.TopK {
		matches = matches[:opts.TopK]
	}

	results := make([]model.SimilarState, 0, len(matches))
	for _, m := range matches {
		results = append(results, model.SimilarState{
			Symbol:          m.snap.Symbol,
			Datetime:        m.snap.AsOf,
			Timeframe:       m.snap.Timeframe,
			Distance:        m.distance,
			Similarity:      opts.Metric.Similarity(m.distance),
			SnapshotSummary: m.snap.DisplaySummary(),
		})
	}
	return results, nil
}
