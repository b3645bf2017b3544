package data

import (
	"context"
	"sort"
	"time"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// PriceProvider defines the interface for fetching historical price bars.
// Bars are returned ordered by time (oldest first).
type PriceProvider interface {
	Bars(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]model.PriceBar, error)
}

// AttentionProvider defines the interface for fetching the pre-computed
// attention feature series. Rows are returned ordered by time (oldest first).
type AttentionProvider interface {
	Attention(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]model.AttentionRow, error)
}

// Catalog lists the symbols available as a search corpus
type Catalog interface {
	Symbols(ctx context.Context) ([]string, error)
}

// MemoryProvider implements PriceProvider, AttentionProvider and Catalog with
// in-memory storage. Used by tests and examples.
type MemoryProvider struct {
	bars      map[string][]model.PriceBar
	attention map[string][]model.AttentionRow
	symbols   []string
}

// NewMemoryProvider creates an empty in-memory provider
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{
		bars:      make(map[string][]model.PriceBar),
		attention: make(map[string][]model.AttentionRow),
	}
}

func seriesKey(symbol, timeframe string) string {
	return symbol + "|" + timeframe
}

// AddBars adds price bars, keeping each series sorted by timestamp
func (p *MemoryProvider) AddBars(bars []model.PriceBar) {
	touched := make(map[string]bool)
	for _, b := range bars {
		key := seriesKey(b.Symbol, b.Timeframe)
		if len(p.bars[key]) == 0 {
			p.addSymbol(b.Symbol)
		}
		p.bars[key] = append(p.bars[key], b)
		touched[key] = true
	}
	for key := range touched {
		series := p.bars[key]
		sort.Slice(series, func(i, j int) bool {
			return series[i].Timestamp.Before(series[j].Timestamp)
		})
	}
}

// AddAttention adds attention rows, keeping each series sorted by timestamp
func (p *MemoryProvider) AddAttention(rows []model.AttentionRow) {
	touched := make(map[string]bool)
	for _, r := range rows {
		key := seriesKey(r.Symbol, r.Timeframe)
		p.attention[key] = append(p.attention[key], r)
		touched[key] = true
	}
	for key := range touched {
		series := p.attention[key]
		sort.Slice(series, func(i, j int) bool {
			return series[i].Timestamp.Before(series[j].Timestamp)
		})
	}
}

func (p *MemoryProvider) addSymbol(symbol string) {
	for _, s := range p.symbols {
		if s == symbol {
			return
		}
	}
	p.symbols = append(p.symbols, symbol)
}

// Bars retrieves bars within the time range (inclusive)
func (p *MemoryProvider) Bars(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]model.PriceBar, error) {
	var result []model.PriceBar
	for _, b := range p.bars[seriesKey(symbol, timeframe)] {
		if b.Timestamp.Before(start) || b.Timestamp.After(end) {
			continue
		}
		result = append(result, b)
	}
	return result, nil
}

// Attention retrieves attention rows within the time range (inclusive)
func (p *MemoryProvider) Attention(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]model.AttentionRow, error) {
	var result []model.AttentionRow
	for _, r := range p.attention[seriesKey(symbol, timeframe)] {
		if r.Timestamp.Before(start) || r.Timestamp.After(end) {
			continue
		}
		result = append(result, r)
	}
	return result, nil
}

// Symbols lists all known symbols in insertion order
func (p *MemoryProvider) Symbols(ctx context.Context) ([]string, error) {
	out := make([]string, len(p.symbols))
	copy(out, p.symbols)
	return out, nil
}
