package corpus

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/data"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/snapshot"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seedBars(symbol string, n int) []model.PriceBar {
	bars := make([]model.PriceBar, 0, n)
	price := 100.0
	for i := 0; i < n; i++ {
		price *= 1 + 0.01*math.Sin(float64(i)/5)
		bars = append(bars, model.PriceBar{
			Symbol:    symbol,
			Timeframe: "1d",
			Timestamp: testStart.AddDate(0, 0, i),
			Open:      price, High: price, Low: price, Close: price,
			Volume: 1000,
		})
	}
	return bars
}

func collect(t *testing.T, it *Iterator) []*model.StateSnapshot {
	t.Helper()
	var out []*model.StateSnapshot
	for it.Next(context.Background()) {
		out = append(out, it.Snapshot())
	}
	require.NoError(t, it.Err())
	return out
}

func testConfig(symbols ...string) Config {
	return Config{
		Symbols:    symbols,
		Timeframe:  "1d",
		WindowDays: 7,
		Now:        testStart.AddDate(0, 0, 99),
	}
}

func TestIteratorChronologicalPerSymbol(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.AddBars(seedBars("BTCUSDT", 100))
	provider.AddBars(seedBars("ETHUSDT", 100))

	it, err := New(provider, provider, nil, testConfig("BTCUSDT", "ETHUSDT"))
	require.NoError(t, err)

	snaps := collect(t, it)
	require.NotEmpty(t, snaps)

	// Symbols appear in configured order, chronological within each
	lastPerSymbol := make(map[string]time.Time)
	sawSecond := false
	for _, s := range snaps {
		if s.Symbol == "ETHUSDT" {
			sawSecond = true
		}
		if sawSecond {
			assert.NotEqual(t, "BTCUSDT", s.Symbol, "symbols must not interleave")
		}
		if prev, ok := lastPerSymbol[s.Symbol]; ok {
			assert.True(t, s.AsOf.After(prev), "snapshots must advance in time")
		}
		lastPerSymbol[s.Symbol] = s.AsOf
	}
	assert.True(t, sawSecond)
}

func TestIteratorHistoryCap(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.AddBars(seedBars("BTCUSDT", 100))

	cfg := testConfig("BTCUSDT")
	cfg.MaxHistoryDays = 10

	it, err := New(provider, provider, nil, cfg)
	require.NoError(t, err)

	snaps := collect(t, it)
	require.NotEmpty(t, snaps)

	corpusStart := cfg.Now.AddDate(0, 0, -10)
	for _, s := range snaps {
		assert.False(t, s.AsOf.Before(corpusStart))
		assert.False(t, s.AsOf.After(cfg.Now))
	}
	assert.LessOrEqual(t, len(snaps), 11)
}

func TestIteratorSamplingCadence(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.AddBars(seedBars("BTCUSDT", 100))

	daily, err := New(provider, provider, nil, testConfig("BTCUSDT"))
	require.NoError(t, err)
	dailySnaps := collect(t, daily)

	cfg := testConfig("BTCUSDT")
	cfg.Step = 5
	sparse, err := New(provider, provider, nil, cfg)
	require.NoError(t, err)
	sparseSnaps := collect(t, sparse)

	require.NotEmpty(t, sparseSnaps)
	assert.Less(t, len(sparseSnaps), len(dailySnaps))

	// Consecutive samples are exactly Step bars apart
	for i := 1; i < len(sparseSnaps); i++ {
		gap := sparseSnaps[i].AsOf.Sub(sparseSnaps[i-1].AsOf)
		assert.Equal(t, 5*24*time.Hour, gap)
	}
}

func TestIteratorSkipsEmptySymbols(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.AddBars(seedBars("ETHUSDT", 100))

	it, err := New(provider, provider, nil, testConfig("MISSING", "ETHUSDT"))
	require.NoError(t, err)

	snaps := collect(t, it)
	require.NotEmpty(t, snaps)
	for _, s := range snaps {
		assert.Equal(t, "ETHUSDT", s.Symbol)
	}
}

func TestIteratorPopulatesCache(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.AddBars(seedBars("BTCUSDT", 100))
	provider.AddBars(seedBars("ETHUSDT", 100))

	cache := snapshot.NewSeriesCache()
	it, err := New(provider, provider, cache, testConfig("BTCUSDT", "ETHUSDT"))
	require.NoError(t, err)

	first := collect(t, it)
	assert.Equal(t, 2, cache.Len())

	// A second pass over the warm cache yields the same corpus
	it2, err := New(provider, provider, cache, testConfig("BTCUSDT", "ETHUSDT"))
	require.NoError(t, err)
	second := collect(t, it2)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, cache.Len())
}

func TestIteratorContextCancellation(t *testing.T) {
	provider := data.NewMemoryProvider()
	provider.AddBars(seedBars("BTCUSDT", 100))

	it, err := New(provider, provider, nil, testConfig("BTCUSDT"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.True(t, it.Next(ctx))

	cancel()
	assert.False(t, it.Next(ctx))
	require.Error(t, it.Err())
}

func TestIteratorInvalidTimeframe(t *testing.T) {
	provider := data.NewMemoryProvider()

	cfg := testConfig("BTCUSDT")
	cfg.Timeframe = "15m"

	_, err := New(provider, provider, nil, cfg)
	require.Error(t, err)
}
