package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/data"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// Service computes state snapshots on demand from storage collaborators
type Service struct {
	prices data.PriceProvider
	attn   data.AttentionProvider
}

// NewService creates a snapshot service over the given providers
func NewService(prices data.PriceProvider, attn data.AttentionProvider) *Service {
	return &Service{prices: prices, attn: attn}
}

// ComputeStateSnapshot builds the normalized state snapshot for a symbol at
// asOf. Returns (nil, nil) when the symbol has no price data at or before
// asOf; configuration errors fail fast.
func (s *Service) ComputeStateSnapshot(ctx context.Context, symbol string, asOf time.Time, timeframe string, windowDays int) (*model.StateSnapshot, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	builder, err := NewBuilder(timeframe, windowDays)
	if err != nil {
		return nil, err
	}

	// Window plus the 2x-window standardization lookback
	loadStart := asOf.AddDate(0, 0, -3*windowDays)

	bars, err := s.prices.Bars(ctx, symbol, timeframe, loadStart, asOf)
	if err != nil {
		return nil, fmt.Errorf("load bars for %s: %w", symbol, err)
	}

	rows, err := s.attn.Attention(ctx, symbol, timeframe, loadStart, asOf)
	if err != nil {
		return nil, fmt.Errorf("load attention for %s: %w", symbol, err)
	}

	return builder.Build(bars, rows, asOf), nil
}
