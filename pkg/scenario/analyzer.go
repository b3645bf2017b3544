// Package scenario turns a list of matched historical analogs into a
// probability distribution over named future-outcome scenarios.
package scenario

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/data"
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// DefaultLookaheadDays bounds the forward measurement when the caller does
// not specify one
const DefaultLookaheadDays = 30

// defaultHorizons are the measurement points in days; the classifier relies
// on the 3, 7 and 30 day entries.
var defaultHorizons = []int{1, 3, 7, 14, 30}

// Analyzer aggregates the forward behavior of matched analogs into scenario
// summaries. Stateless between calls.
type Analyzer struct {
	prices data.PriceProvider
}

// NewAnalyzer creates an analyzer over the given price collaborator
func NewAnalyzer(prices data.PriceProvider) *Analyzer {
	return &Analyzer{prices: prices}
}

// Horizons returns the ascending horizon list capped at lookaheadDays
func Horizons(lookaheadDays int) []int {
	if lookaheadDays <= 0 {
		lookaheadDays = DefaultLookaheadDays
	}

	var out []int
	for _, h := range defaultHorizons {
		if h <= lookaheadDays {
			out = append(out, h)
		}
	}
	if len(out) == 0 || out[len(out)-1] != lookaheadDays {
		out = append(out, lookaheadDays)
	}
	return out
}

// Analyze classifies each matched analog's subsequent price path and
// aggregates the labels into probability-weighted scenario summaries, sorted
// by probability descending. Zero neighbors with valid forward data yields
// an empty list: a legitimate low-confidence outcome, not an error.
func (a *Analyzer) Analyze(ctx context.Context, target *model.StateSnapshot, matches []model.SimilarState, lookaheadDays int, includeSampleDetails bool) ([]model.ScenarioSummary, error) {
	horizons := Horizons(lookaheadDays)

	var samples []model.FuturePerformance
	for _, m := range matches {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		perf := futurePerformance(ctx, a.prices, m, horizons)
		if perf == nil {
			continue
		}
		perf.Label = Classify(perf)
		samples = append(samples, *perf)
	}

	if len(samples) == 0 {
		if target != nil {
			log.Debug().Str("symbol", target.Symbol).Int("matches", len(matches)).
				Msg("no matched analog had valid forward data")
		}
		return nil, nil
	}

	return aggregate(samples, horizons, includeSampleDetails), nil
}

func aggregate(samples []model.FuturePerformance, horizons []int, includeSamples bool) []model.ScenarioSummary {
	byLabel := make(map[model.ScenarioLabel][]model.FuturePerformance)
	for _, s := range samples {
		byLabel[s.Label] = append(byLabel[s.Label], s)
	}

	total := float64(len(samples))
	summaries := make([]model.ScenarioSummary, 0, len(byLabel))

	for label, members := range byLabel {
		summary := model.ScenarioSummary{
			Label:           label,
			Description:     model.ScenarioDescriptions[label],
			SampleCount:     len(members),
			Probability:     float64(len(members)) / total,
			AvgReturns:      make(map[int]float64),
			AvgMaxDrawdowns: make(map[int]float64),
			AvgPath:         averagePath(members),
		}

		for _, h := range horizons {
			if avg, ok := horizonMean(members, h, (*model.FuturePerformance).Return); ok {
				summary.AvgReturns[h] = avg
			}
			if avg, ok := horizonMean(members, h, (*model.FuturePerformance).MaxDrawdown); ok {
				summary.AvgMaxDrawdowns[h] = avg
			}
		}

		if includeSamples {
			summary.Samples = members
		}

		summaries = append(summaries, summary)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Probability != summaries[j].Probability {
			return summaries[i].Probability > summaries[j].Probability
		}
		return summaries[i].Label < summaries[j].Label
	})

	return summaries
}

// horizonMean averages a per-horizon statistic over the members that have it
func horizonMean(members []model.FuturePerformance, horizon int, stat func(*model.FuturePerformance, int) (float64, bool)) (float64, bool) {
	sum := 0.0
	count := 0
	for i := range members {
		if v, ok := stat(&members[i], horizon); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// averagePath is the element-wise mean of member price paths, truncated to
// the shortest member so the array stays rectangular
func averagePath(members []model.FuturePerformance) []float64 {
	shortest := -1
	for _, m := range members {
		if len(m.PricePath) == 0 {
			continue
		}
		if shortest < 0 || len(m.PricePath) < shortest {
			shortest = len(m.PricePath)
		}
	}
	if shortest <= 0 {
		return nil
	}

	avg := make([]float64, shortest)
	count := 0
	for _, m := range members {
		if len(m.PricePath) == 0 {
			continue
		}
		count++
		for i := 0; i < shortest; i++ {
			avg[i] += m.PricePath[i]
		}
	}
	for i := range avg {
		avg[i] /= float64(count)
	}
	return avg
}
