package scenario

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/data"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// forwardBufferDays pads the forward fetch past the longest horizon so the
// last horizon still finds an observation near its deadline
const forwardBufferDays = 5

// futurePerformance measures the forward price behavior of one matched
// analog. Returns nil when the neighbor has fewer than 2 future price
// points; horizons with no forward observation are simply absent.
func futurePerformance(ctx context.Context, prices data.PriceProvider, match model.SimilarState, horizons []int) *model.FuturePerformance {
	if len(horizons) == 0 {
		return nil
	}
	maxHorizon := horizons[len(horizons)-1]

	anchor := match.Datetime
	end := anchor.AddDate(0, 0, maxHorizon+forwardBufferDays)

	// Fetch from just before the anchor so the anchor close itself is present
	bars, err := prices.Bars(ctx, match.Symbol, match.Timeframe, anchor.AddDate(0, 0, -1), end)
	if err != nil {
		log.Warn().Err(err).Str("symbol", match.Symbol).Time("anchor", anchor).
			Msg("failed to load forward bars, dropping sample")
		return nil
	}

	// Anchor price: last observation at or before the anchor
	anchorIdx := -1
	for i := range bars {
		if bars[i].Timestamp.After(anchor) {
			break
		}
		anchorIdx = i
	}
	if anchorIdx < 0 || bars[anchorIdx].Close <= 0 {
		return nil
	}
	anchorClose := bars[anchorIdx].Close

	future := bars[anchorIdx+1:]
	if len(future) < 2 {
		return nil
	}

	perf := &model.FuturePerformance{
		Symbol:       match.Symbol,
		Anchor:       anchor,
		Returns:      make(map[int]float64),
		MaxDrawdowns: make(map[int]float64),
	}

	maxDeadline := anchor.AddDate(0, 0, maxHorizon)
	runningMax := anchorClose
	worstDD := 0.0
	hIdx := 0

	for _, bar := range future {
		if bar.Timestamp.After(maxDeadline) {
			break
		}
		if bar.Close <= 0 {
			continue
		}

		// Close out every horizon whose deadline precedes this observation
		for hIdx < len(horizons) && bar.Timestamp.After(anchor.AddDate(0, 0, horizons[hIdx])) {
			hIdx++
		}

		if bar.Close > runningMax {
			runningMax = bar.Close
		}
		dd := (bar.Close - runningMax) / runningMax
		if dd < worstDD {
			worstDD = dd
		}

		ret := math.Log(bar.Close / anchorClose)
		for h := hIdx; h < len(horizons); h++ {
			// Last observation at or before each still-open deadline wins
			perf.Returns[horizons[h]] = ret
			perf.MaxDrawdowns[horizons[h]] = worstDD
		}

		perf.PricePath = append(perf.PricePath, bar.Close/anchorClose-1)
	}

	if len(perf.Returns) == 0 {
		return nil
	}
	return perf
}
