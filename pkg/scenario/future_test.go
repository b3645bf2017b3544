package scenario

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/data"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

var anchorTime = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// seedForward stores an anchor bar at close 100 followed by daily closes
func seedForward(provider *data.MemoryProvider, symbol string, closes []float64) {
	bars := []model.PriceBar{{
		Symbol: symbol, Timeframe: "1d", Timestamp: anchorTime,
		Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000,
	}}
	for i, c := range closes {
		bars = append(bars, model.PriceBar{
			Symbol: symbol, Timeframe: "1d",
			Timestamp: anchorTime.AddDate(0, 0, i+1),
			Open:      c, High: c, Low: c, Close: c, Volume: 1000,
		})
	}
	provider.AddBars(bars)
}

func matchAt(symbol string) model.SimilarState {
	return model.SimilarState{Symbol: symbol, Datetime: anchorTime, Timeframe: "1d"}
}

func TestFuturePerformanceReturns(t *testing.T) {
	provider := data.NewMemoryProvider()

	// Close at day i is 100+i, so the horizon-h return is log((100+h)/100)
	closes := make([]float64, 35)
	for i := range closes {
		closes[i] = 100 + float64(i+1)
	}
	seedForward(provider, "ETHUSDT", closes)

	p := futurePerformance(context.Background(), provider, matchAt("ETHUSDT"), []int{1, 3, 7, 14, 30})
	require.NotNil(t, p)

	for _, h := range []int{1, 3, 7, 14, 30} {
		ret, ok := p.Return(h)
		require.True(t, ok, "horizon %d", h)
		assert.InDelta(t, math.Log((100+float64(h))/100), ret, 1e-9, "horizon %d", h)

		dd, ok := p.MaxDrawdown(h)
		require.True(t, ok, "horizon %d", h)
		assert.Equal(t, 0.0, dd, "a rising path never draws down")
	}

	// The path is capped at the longest horizon
	require.Len(t, p.PricePath, 30)
	assert.InDelta(t, 0.01, p.PricePath[0], 1e-9)
	assert.InDelta(t, 0.30, p.PricePath[29], 1e-9)
}

func TestFuturePerformanceDrawdown(t *testing.T) {
	provider := data.NewMemoryProvider()
	seedForward(provider, "ETHUSDT", []float64{110, 90, 95})

	p := futurePerformance(context.Background(), provider, matchAt("ETHUSDT"), []int{1, 3})
	require.NotNil(t, p)

	ret1, ok := p.Return(1)
	require.True(t, ok)
	assert.InDelta(t, math.Log(1.10), ret1, 1e-9)

	ret3, ok := p.Return(3)
	require.True(t, ok)
	assert.InDelta(t, math.Log(0.95), ret3, 1e-9)

	// Worst decline is from the 110 peak down to 90
	dd3, ok := p.MaxDrawdown(3)
	require.True(t, ok)
	assert.InDelta(t, (90.0-110.0)/110.0, dd3, 1e-9)

	dd1, ok := p.MaxDrawdown(1)
	require.True(t, ok)
	assert.Equal(t, 0.0, dd1)
}

func TestFuturePerformanceTooFewPoints(t *testing.T) {
	provider := data.NewMemoryProvider()
	seedForward(provider, "ETHUSDT", []float64{101})

	p := futurePerformance(context.Background(), provider, matchAt("ETHUSDT"), []int{1, 3})
	assert.Nil(t, p, "fewer than 2 future points drops the sample")
}

func TestFuturePerformanceNoAnchorBar(t *testing.T) {
	provider := data.NewMemoryProvider()
	// Bars exist only after the anchor
	provider.AddBars([]model.PriceBar{
		{Symbol: "ETHUSDT", Timeframe: "1d", Timestamp: anchorTime.AddDate(0, 0, 2), Close: 100},
		{Symbol: "ETHUSDT", Timeframe: "1d", Timestamp: anchorTime.AddDate(0, 0, 3), Close: 101},
	})

	p := futurePerformance(context.Background(), provider, matchAt("ETHUSDT"), []int{1, 3})
	assert.Nil(t, p)
}

func TestFuturePerformancePartialHorizons(t *testing.T) {
	provider := data.NewMemoryProvider()
	// Only 4 days of forward data: horizons past day 4 keep the last
	// observation, since it is the last one at or before their deadline
	seedForward(provider, "ETHUSDT", []float64{102, 104, 103, 105})

	p := futurePerformance(context.Background(), provider, matchAt("ETHUSDT"), []int{1, 3, 7, 30})
	require.NotNil(t, p)

	ret1, ok := p.Return(1)
	require.True(t, ok)
	assert.InDelta(t, math.Log(1.02), ret1, 1e-9)

	ret7, ok := p.Return(7)
	require.True(t, ok)
	assert.InDelta(t, math.Log(1.05), ret7, 1e-9)

	ret30, ok := p.Return(30)
	require.True(t, ok)
	assert.InDelta(t, math.Log(1.05), ret30, 1e-9)
}

func TestFuturePerformanceEmptyHorizons(t *testing.T) {
	provider := data.NewMemoryProvider()
	seedForward(provider, "ETHUSDT", []float64{101, 102, 103})

	assert.Nil(t, futurePerformance(context.Background(), provider, matchAt("ETHUSDT"), nil))
}
