package snapshot

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// DefaultWindowDays is the default trailing window for state features
const DefaultWindowDays = 30

// shareFloor guards the channel-share denominator against division by zero
const shareFloor = 1e-9

// Builder turns one symbol's raw price and attention series into normalized
// state snapshots. A builder is immutable after construction and safe to
// share across goroutines.
type Builder struct {
	timeframe  string
	windowDays int
	windowBars int
	sevenDays  int
}

// NewBuilder creates a builder for a timeframe and window. Unsupported
// timeframes and non-positive windows are caller contract violations and
// fail fast.
func NewBuilder(timeframe string, windowDays int) (*Builder, error) {
	bpd := model.BarsPerDay(timeframe)
	if bpd == 0 {
		return nil, fmt.Errorf("unsupported timeframe %q", timeframe)
	}
	if windowDays <= 0 {
		return nil, fmt.Errorf("window days must be positive, got %d", windowDays)
	}

	return &Builder{
		timeframe:  timeframe,
		windowDays: windowDays,
		windowBars: windowDays * bpd,
		sevenDays:  7 * bpd,
	}, nil
}

// Timeframe returns the builder's timeframe
func (b *Builder) Timeframe() string { return b.timeframe }

// WindowDays returns the builder's window length in days
func (b *Builder) WindowDays() int { return b.windowDays }

// Build computes the state snapshot at asOf from a symbol's series. Bars and
// attention rows after asOf are ignored. Returns nil when no price data
// exists at or before asOf; missing attention data degrades to neutral
// attention features instead of failing.
func (b *Builder) Build(bars []model.PriceBar, rows []model.AttentionRow, asOf time.Time) *model.StateSnapshot {
	bars = truncateBars(bars, asOf)
	if len(bars) == 0 {
		return nil
	}
	rows = truncateRows(rows, asOf)

	series := b.prepare(bars, rows)
	return series.at(len(bars) - 1)
}

// BuildSeries computes a snapshot for every bar of a symbol's history in one
// vectorized pass, sharing the rolling arrays across indices. The result at
// index i is identical to Build with asOf at bar i's timestamp.
func (b *Builder) BuildSeries(bars []model.PriceBar, rows []model.AttentionRow) []*model.StateSnapshot {
	if len(bars) == 0 {
		return nil
	}

	series := b.prepare(bars, rows)
	out := make([]*model.StateSnapshot, 0, len(bars))
	for i := range bars {
		out = append(out, series.at(i))
	}
	return out
}

// preparedSeries holds the rolling arrays shared by all as-of indices of one
// symbol's history.
type preparedSeries struct {
	builder *Builder
	bars    []model.PriceBar
	rows    []model.AttentionRow
	attIdx  []int // last attention row at or before bar i, -1 if none

	winRet  []float64 // trailing window log return, NaN where undefined
	winRetZ []float64
	vol     []float64 // window std of 1-bar log returns, NaN where undefined
	volZ    []float64
	volumeZ []float64
	vol7    []float64 // trailing 7-day mean volume

	slopeZ    []float64 // indexed by attention row
	sentiment []float64 // raw window mean of bullish-bearish, by attention row
	sentZ     []float64
}

func (b *Builder) prepare(bars []model.PriceBar, rows []model.AttentionRow) *preparedSeries {
	n := len(bars)
	w := b.windowBars

	closes := make([]float64, n)
	volumes := make([]float64, n)
	for i, bar := range bars {
		closes[i] = bar.Close
		volumes[i] = bar.Volume
	}

	// 1-bar log returns
	logRet := make([]float64, n)
	for i := 1; i < n; i++ {
		if closes[i-1] > 0 && closes[i] > 0 {
			logRet[i] = math.Log(closes[i] / closes[i-1])
		}
	}

	// Trailing window log return
	winRet := make([]float64, n)
	for i := range winRet {
		winRet[i] = math.NaN()
		if i >= w && closes[i-w] > 0 && closes[i] > 0 {
			winRet[i] = math.Log(closes[i] / closes[i-w])
		}
	}

	// Window volatility
	vol := make([]float64, n)
	for i := range vol {
		vol[i] = math.NaN()
		if i >= w {
			_, std := meanStd(logRet[i-w+1 : i+1])
			vol[i] = std
		}
	}

	// Standardize against the 2x-window rolling history of the same statistic.
	// Fewer than 3 lookback samples would give a biased estimate, so those
	// indices stay neutral.
	winRetZ := rollingZ(winRet, 2*w, 3)
	volZ := rollingZ(vol, 2*w, 3)

	// Volume: 7-day mean volume z-scored against the window's volume
	// distribution.
	vol7 := make([]float64, n)
	volumeZ := make([]float64, n)
	for i := range bars {
		start7 := i - b.sevenDays + 1
		if start7 < 0 {
			start7 = 0
		}
		m7, _ := meanStd(volumes[start7 : i+1])
		vol7[i] = m7

		if i >= w-1 {
			mean, std := meanStd(volumes[i-w+1 : i+1])
			volumeZ[i] = zScore(m7, mean, std)
		}
	}

	// Attention-side series, indexed by attention row
	scores := make([]float64, len(rows))
	diffs := make([]float64, len(rows))
	for j, r := range rows {
		scores[j] = r.CompositeScore
		diffs[j] = r.SentimentSpread()
	}

	slopeZ := rollingStdScale(regressionSlope7(scores), w, 2)

	sentiment := make([]float64, len(rows))
	sentZ := make([]float64, len(rows))
	for j := range rows {
		start := j - w + 1
		if start < 0 {
			start = 0
		}
		mean, std := meanStd(diffs[start : j+1])
		sentiment[j] = mean
		if std > 0 {
			z := mean / std
			if !math.IsNaN(z) && !math.IsInf(z, 0) {
				sentZ[j] = z
			}
		}
	}

	// Join attention rows to bars by timestamp (last row at or before bar)
	attIdx := make([]int, n)
	j := -1
	for i, bar := range bars {
		for j+1 < len(rows) && !rows[j+1].Timestamp.After(bar.Timestamp) {
			j++
		}
		attIdx[i] = j
	}

	return &preparedSeries{
		builder:   b,
		bars:      bars,
		rows:      rows,
		attIdx:    attIdx,
		winRet:    winRet,
		winRetZ:   winRetZ,
		vol:       vol,
		volZ:      volZ,
		volumeZ:   volumeZ,
		vol7:      vol7,
		slopeZ:    slopeZ,
		sentiment: sentiment,
		sentZ:     sentZ,
	}
}

// at assembles the snapshot for bar index i
func (s *preparedSeries) at(i int) *model.StateSnapshot {
	bar := s.bars[i]

	features := model.FeatureVec{
		ReturnZ:     s.winRetZ[i],
		VolatilityZ: s.volZ[i],
		VolumeZ:     s.volumeZ[i],
	}

	raw := map[string]float64{
		"close":          bar.Close,
		"volume_7d_mean": s.vol7[i],
	}
	if !math.IsNaN(s.winRet[i]) {
		raw["window_return"] = s.winRet[i]
	}
	if !math.IsNaN(s.vol[i]) {
		raw["volatility"] = s.vol[i]
	}

	if j := s.attIdx[i]; j >= 0 {
		row := s.rows[j]
		features.AttnComposite = row.CompositeZScore
		features.AttnNews = row.NewsZScore
		features.AttnSearch = row.SearchZScore
		features.AttnSocial = row.SocialZScore
		features.AttnSlopeZ = s.slopeZ[j]
		features.SentimentZ = s.sentZ[j]
		features.ShareNews, features.ShareSearch, features.ShareSocial =
			channelShares(row.NewsZScore, row.SearchZScore, row.SocialZScore)

		raw["composite_score"] = row.CompositeScore
		raw["news_score"] = row.NewsZScore
		raw["search_score"] = row.SearchZScore
		raw["social_score"] = row.SocialZScore
		raw["sentiment_mean"] = s.sentiment[j]
	} else {
		// Degraded mode: no attention data at or before this bar
		features.ShareNews, features.ShareSearch, features.ShareSocial =
			neutralShares()
		log.Debug().
			Str("symbol", bar.Symbol).
			Time("as_of", bar.Timestamp).
			Msg("no attention data, using neutral attention features")
	}

	return &model.StateSnapshot{
		Symbol:     bar.Symbol,
		AsOf:       bar.Timestamp,
		Timeframe:  s.builder.timeframe,
		WindowDays: s.builder.windowDays,
		Features:   features.Sanitize(),
		RawStats:   raw,
	}
}

// channelShares splits attention among channels by |z| magnitude. The shares
// always sum to 1; an all-zero channel set degrades to equal thirds.
func channelShares(news, search, social float64) (float64, float64, float64) {
	an, as, ao := math.Abs(news), math.Abs(search), math.Abs(social)
	sum := an + as + ao
	if sum < shareFloor {
		return neutralShares()
	}
	return an / sum, as / sum, ao / sum
}

func neutralShares() (float64, float64, float64) {
	return 1.0 / 3, 1.0 / 3, 1.0 / 3
}

func truncateBars(bars []model.PriceBar, asOf time.Time) []model.PriceBar {
	cut := len(bars)
	for cut > 0 && bars[cut-1].Timestamp.After(asOf) {
		cut--
	}
	return bars[:cut]
}

func truncateRows(rows []model.AttentionRow, asOf time.Time) []model.AttentionRow {
	cut := len(rows)
	for cut > 0 && rows[cut-1].Timestamp.After(asOf) {
		cut--
	}
	return rows[:cut]
}
