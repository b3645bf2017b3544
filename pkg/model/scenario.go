package model

import "time"

// ScenarioLabel is one of the fixed qualitative future-outcome labels
type ScenarioLabel string

const (
	ScenarioCrash          ScenarioLabel = "crash"
	ScenarioTrendUp        ScenarioLabel = "trend_up"
	ScenarioSpikeAndRevert ScenarioLabel = "spike_and_revert"
	ScenarioTrendDown      ScenarioLabel = "trend_down"
	ScenarioSideways       ScenarioLabel = "sideways"
)

// ScenarioDescriptions maps each label to its display description
var ScenarioDescriptions = map[ScenarioLabel]string{
	ScenarioCrash:          "severe drawdown within the first month",
	ScenarioTrendUp:        "sustained upward move with shallow pullbacks",
	ScenarioSpikeAndRevert: "early pop that fades within a week",
	ScenarioTrendDown:      "sustained downward move",
	ScenarioSideways:       "no decisive direction",
}

// FuturePerformance captures the forward price behavior of one matched
// analog, measured from its anchor date.
type FuturePerformance struct {
	Symbol string    `json:"symbol"`
	Anchor time.Time `json:"anchor"`

	// Returns maps horizon (days) to cumulative log return. A horizon with no
	// forward data is simply absent; values are never fabricated.
	Returns map[int]float64 `json:"returns"`

	// MaxDrawdowns maps horizon (days) to the worst peak-to-trough decline
	// observed within that horizon (non-positive).
	MaxDrawdowns map[int]float64 `json:"max_drawdowns"`

	// PricePath is the percent-change-from-anchor trajectory, capped at the
	// longest horizon. Visualization only.
	PricePath []float64 `json:"price_path,omitempty"`

	// Label is assigned by the classifier before aggregation
	Label ScenarioLabel `json:"scenario_label,omitempty"`
}

// Return reports the cumulative log return at a horizon, if present
func (p *FuturePerformance) Return(horizon int) (float64, bool) {
	v, ok := p.Returns[horizon]
	return v, ok
}

// MaxDrawdown reports the max drawdown at a horizon, if present
func (p *FuturePerformance) MaxDrawdown(horizon int) (float64, bool) {
	v, ok := p.MaxDrawdowns[horizon]
	return v, ok
}

// ScenarioSummary is one probability-weighted outcome bucket. Probabilities
// across all buckets of one analysis sum to 1 whenever any sample had valid
// forward data.
type ScenarioSummary struct {
	Label       ScenarioLabel `json:"label"`
	Description string        `json:"description"`
	SampleCount int           `json:"sample_count"`
	Probability float64       `json:"probability"`

	// AvgReturns / AvgMaxDrawdowns average only over members that have the
	// horizon; an absent key means no member did.
	AvgReturns      map[int]float64 `json:"avg_returns"`
	AvgMaxDrawdowns map[int]float64 `json:"avg_max_drawdowns"`

	// AvgPath is the element-wise mean of member price paths, truncated to
	// the shortest member path.
	AvgPath []float64 `json:"avg_path,omitempty"`

	// Samples holds per-member detail when requested
	Samples []FuturePerformance `json:"samples,omitempty"`
}
