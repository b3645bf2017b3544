package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func bar(symbol string, offset int, close float64) model.PriceBar {
	return model.PriceBar{
		Symbol:    symbol,
		Timeframe: "1d",
		Timestamp: day.AddDate(0, 0, offset),
		Close:     close,
	}
}

func TestMemoryProviderBarsSortedAndFiltered(t *testing.T) {
	p := NewMemoryProvider()
	// Out of order on purpose
	p.AddBars([]model.PriceBar{
		bar("BTCUSDT", 3, 103),
		bar("BTCUSDT", 1, 101),
		bar("BTCUSDT", 2, 102),
		bar("BTCUSDT", 5, 105),
	})

	bars, err := p.Bars(context.Background(), "BTCUSDT", "1d", day.AddDate(0, 0, 1), day.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.Len(t, bars, 3)

	// Range is inclusive on both ends, results ascending
	assert.Equal(t, 101.0, bars[0].Close)
	assert.Equal(t, 102.0, bars[1].Close)
	assert.Equal(t, 103.0, bars[2].Close)
}

func TestMemoryProviderSeparatesTimeframes(t *testing.T) {
	p := NewMemoryProvider()
	p.AddBars([]model.PriceBar{bar("BTCUSDT", 0, 100)})

	bars, err := p.Bars(context.Background(), "BTCUSDT", "4h", day, day.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestMemoryProviderAttention(t *testing.T) {
	p := NewMemoryProvider()
	p.AddAttention([]model.AttentionRow{
		{Symbol: "BTCUSDT", Timeframe: "1d", Timestamp: day.AddDate(0, 0, 2), CompositeScore: 60},
		{Symbol: "BTCUSDT", Timeframe: "1d", Timestamp: day, CompositeScore: 40},
	})

	rows, err := p.Attention(context.Background(), "BTCUSDT", "1d", day, day.AddDate(0, 0, 5))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 40.0, rows[0].CompositeScore)
	assert.Equal(t, 60.0, rows[1].CompositeScore)
}

func TestMemoryProviderSymbols(t *testing.T) {
	p := NewMemoryProvider()
	p.AddBars([]model.PriceBar{
		bar("BTCUSDT", 0, 100),
		bar("ETHUSDT", 0, 10),
		bar("BTCUSDT", 1, 101),
	})

	symbols, err := p.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, symbols)
}

func TestMemoryProviderUnknownSymbol(t *testing.T) {
	p := NewMemoryProvider()

	bars, err := p.Bars(context.Background(), "NOPE", "1d", day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, bars)
}
