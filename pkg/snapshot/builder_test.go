package snapshot

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// genBars produces a deterministic daily price series with enough variation
// to keep every rolling statistic away from zero variance.
func genBars(symbol string, start time.Time, n int) []model.PriceBar {
	bars := make([]model.PriceBar, 0, n)
	price := 100.0
	for i := 0; i < n; i++ {
		drift := 0.01*math.Sin(float64(i)/5) + 0.002*float64(i%7) - 0.005
		price *= 1 + drift
		bars = append(bars, model.PriceBar{
			Symbol:    symbol,
			Timeframe: "1d",
			Timestamp: start.AddDate(0, 0, i),
			Open:      price * 0.995,
			High:      price * 1.02,
			Low:       price * 0.98,
			Close:     price,
			Volume:    1000 + 300*math.Sin(float64(i)/3) + 20*float64(i%11),
		})
	}
	return bars
}

func genAttention(symbol string, start time.Time, n int) []model.AttentionRow {
	rows := make([]model.AttentionRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, model.AttentionRow{
			Symbol:           symbol,
			Timeframe:        "1d",
			Timestamp:        start.AddDate(0, 0, i),
			CompositeScore:   50 + 20*math.Sin(float64(i)/4),
			CompositeZScore:  math.Sin(float64(i) / 4),
			NewsZScore:       0.5 * math.Cos(float64(i)/6),
			SearchZScore:     0.8 * math.Sin(float64(i)/7),
			SocialZScore:     0.3 * math.Cos(float64(i)/3),
			BullishAttention: 0.5 + 0.2*math.Sin(float64(i)/5),
			BearishAttention: 0.4 + 0.1*math.Cos(float64(i)/5),
		})
	}
	return rows
}

func TestNewBuilderValidation(t *testing.T) {
	_, err := NewBuilder("15m", 30)
	require.Error(t, err)

	_, err = NewBuilder("1d", 0)
	require.Error(t, err)

	_, err = NewBuilder("1d", -7)
	require.Error(t, err)

	b, err := NewBuilder("4h", 14)
	require.NoError(t, err)
	assert.Equal(t, "4h", b.Timeframe())
	assert.Equal(t, 14, b.WindowDays())
}

func TestBuildDeterministic(t *testing.T) {
	b, err := NewBuilder("1d", 7)
	require.NoError(t, err)

	bars := genBars("BTCUSDT", testStart, 60)
	rows := genAttention("BTCUSDT", testStart, 60)
	asOf := bars[len(bars)-1].Timestamp

	first := b.Build(bars, rows, asOf)
	second := b.Build(bars, rows, asOf)
	require.NotNil(t, first)
	assert.Equal(t, first, second)
}

func TestBuildNoPriceData(t *testing.T) {
	b, err := NewBuilder("1d", 7)
	require.NoError(t, err)

	assert.Nil(t, b.Build(nil, nil, testStart))

	// Bars exist, but all after asOf
	bars := genBars("BTCUSDT", testStart, 10)
	assert.Nil(t, b.Build(bars, nil, testStart.AddDate(0, 0, -1)))
}

func TestBuildFeatureCompleteness(t *testing.T) {
	b, err := NewBuilder("1d", 7)
	require.NoError(t, err)

	bars := genBars("BTCUSDT", testStart, 60)
	rows := genAttention("BTCUSDT", testStart, 60)

	snap := b.Build(bars, rows, bars[len(bars)-1].Timestamp)
	require.NotNil(t, snap)

	vec := snap.Vector()
	require.Len(t, vec, model.FeatureDim)
	for i, v := range vec {
		assert.False(t, math.IsNaN(v), "feature %s is NaN", model.FeatureKeys[i])
		assert.False(t, math.IsInf(v, 0), "feature %s is Inf", model.FeatureKeys[i])
	}

	assert.Equal(t, "BTCUSDT", snap.Symbol)
	assert.Equal(t, "1d", snap.Timeframe)
	assert.Equal(t, 7, snap.WindowDays)
	assert.Equal(t, bars[len(bars)-1].Timestamp, snap.AsOf)
	assert.Equal(t, bars[len(bars)-1].Close, snap.RawStats["close"])
}

func TestBuildIgnoresFutureBars(t *testing.T) {
	b, err := NewBuilder("1d", 7)
	require.NoError(t, err)

	bars := genBars("BTCUSDT", testStart, 60)
	rows := genAttention("BTCUSDT", testStart, 60)
	asOf := bars[40].Timestamp

	snap := b.Build(bars, rows, asOf)
	require.NotNil(t, snap)
	assert.Equal(t, bars[40].Timestamp, snap.AsOf)
	assert.Equal(t, bars[40].Close, snap.RawStats["close"])

	// Identical to building from the truncated history
	truncated := b.Build(bars[:41], rows[:41], asOf)
	assert.Equal(t, truncated, snap)
}

func TestBuildNeutralAttentionWithoutRows(t *testing.T) {
	b, err := NewBuilder("1d", 7)
	require.NoError(t, err)

	bars := genBars("BTCUSDT", testStart, 60)
	snap := b.Build(bars, nil, bars[len(bars)-1].Timestamp)
	require.NotNil(t, snap)

	f := snap.Features
	assert.Equal(t, 0.0, f.AttnComposite)
	assert.Equal(t, 0.0, f.AttnNews)
	assert.Equal(t, 0.0, f.AttnSearch)
	assert.Equal(t, 0.0, f.AttnSocial)
	assert.Equal(t, 0.0, f.AttnSlopeZ)
	assert.Equal(t, 0.0, f.SentimentZ)
	assert.InDelta(t, 1.0/3, f.ShareNews, 1e-12)
	assert.InDelta(t, 1.0/3, f.ShareSearch, 1e-12)
	assert.InDelta(t, 1.0/3, f.ShareSocial, 1e-12)

	// Price-side features still compute
	assert.False(t, snap.Features.IsZero())
	_, hasComposite := snap.RawStats["composite_score"]
	assert.False(t, hasComposite)
}

func TestChannelSharesSumToOne(t *testing.T) {
	cases := []struct {
		name                string
		news, search, social float64
	}{
		{"mixed signs", 1.2, -0.4, 0.3},
		{"one dominant", 5, 0.001, 0.001},
		{"all negative", -1, -2, -3},
		{"all zero", 0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n, s, o := channelShares(tc.news, tc.search, tc.social)
			assert.InDelta(t, 1.0, n+s+o, 1e-9)
			assert.GreaterOrEqual(t, n, 0.0)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.GreaterOrEqual(t, o, 0.0)
		})
	}

	n, s, o := channelShares(0, 0, 0)
	assert.InDelta(t, 1.0/3, n, 1e-12)
	assert.InDelta(t, 1.0/3, s, 1e-12)
	assert.InDelta(t, 1.0/3, o, 1e-12)
}

func TestBuildSeriesMatchesBuild(t *testing.T) {
	b, err := NewBuilder("1d", 7)
	require.NoError(t, err)

	bars := genBars("BTCUSDT", testStart, 80)
	rows := genAttention("BTCUSDT", testStart, 80)

	series := b.BuildSeries(bars, rows)
	require.Len(t, series, len(bars))

	for _, i := range []int{0, 5, 20, 41, 79} {
		single := b.Build(bars, rows, bars[i].Timestamp)
		require.NotNil(t, single, "index %d", i)
		assert.Equal(t, single, series[i], "index %d", i)
	}
}

func TestBuildSeriesEmpty(t *testing.T) {
	b, err := NewBuilder("1d", 7)
	require.NoError(t, err)
	assert.Nil(t, b.BuildSeries(nil, nil))
}

func TestBuildEarlyHistoryStaysNeutral(t *testing.T) {
	b, err := NewBuilder("1d", 7)
	require.NoError(t, err)

	// With only 3 bars the rolling statistics have no warmup
	bars := genBars("BTCUSDT", testStart, 3)
	snap := b.Build(bars, nil, bars[2].Timestamp)
	require.NotNil(t, snap)

	assert.Equal(t, 0.0, snap.Features.ReturnZ)
	assert.Equal(t, 0.0, snap.Features.VolatilityZ)
	_, hasRet := snap.RawStats["window_return"]
	assert.False(t, hasRet, "undefined raw stats stay absent")
	_, hasVol := snap.RawStats["volatility"]
	assert.False(t, hasVol)
}
