package scenario

import (
	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// Classification thresholds. All comparisons are strict, so a sample sitting
// exactly on a boundary does not trigger the rule.
const (
	crashDrawdown     = -0.15
	trendUpReturn7d   = 0.05
	trendUpDrawdown7d = -0.05
	spikeReturn3d     = 0.03
	spikeFadeReturn7d = 0.02
	trendDownReturn7d = -0.05
)

// Rule pairs a scenario label with its trigger predicate
type Rule struct {
	Label model.ScenarioLabel
	Match func(p *model.FuturePerformance) bool
}

// Rules is the classification rule set in priority order; the first match
// wins and sideways is the fallback. Crash leads because severe downside
// must never be masked by a positive early return window, and
// spike_and_revert precedes trend_down because a pop-then-fade is a
// different regime even when its 7-day number is mildly negative.
var Rules = []Rule{
	{
		Label: model.ScenarioCrash,
		Match: func(p *model.FuturePerformance) bool {
			if dd, ok := p.MaxDrawdown(7); ok && dd < crashDrawdown {
				return true
			}
			if dd, ok := p.MaxDrawdown(30); ok && dd < crashDrawdown {
				return true
			}
			return false
		},
	},
	{
		Label: model.ScenarioTrendUp,
		Match: func(p *model.FuturePerformance) bool {
			ret, retOK := p.Return(7)
			dd, ddOK := p.MaxDrawdown(7)
			return retOK && ddOK && ret > trendUpReturn7d && dd > trendUpDrawdown7d
		},
	},
	{
		Label: model.ScenarioSpikeAndRevert,
		Match: func(p *model.FuturePerformance) bool {
			ret3, ok3 := p.Return(3)
			ret7, ok7 := p.Return(7)
			return ok3 && ok7 && ret3 > spikeReturn3d && ret7 < spikeFadeReturn7d
		},
	},
	{
		Label: model.ScenarioTrendDown,
		Match: func(p *model.FuturePerformance) bool {
			ret, ok := p.Return(7)
			return ok && ret < trendDownReturn7d
		},
	},
}

// Classify assigns exactly one scenario label to a sample
func Classify(p *model.FuturePerformance) model.ScenarioLabel {
	for _, rule := range Rules {
		if rule.Match(p) {
			return rule.Label
		}
	}
	return model.ScenarioSideways
}
