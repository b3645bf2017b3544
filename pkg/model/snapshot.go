package model

import (
	"math"
	"time"
)

// FeatureVec is the fixed feature schema of a state snapshot. Every field is
// dimensionless and normalized against the symbol's own trailing
// distribution. The set of fields is shared between the normalizer and the
// search engine, so vectors from different symbols are always comparable.
type FeatureVec struct {
	AttnComposite float64 `json:"attn_composite"`
	AttnNews      float64 `json:"attn_news"`
	AttnSearch    float64 `json:"attn_search"`
	AttnSlopeZ    float64 `json:"attn_slope_z"`
	AttnSocial    float64 `json:"attn_social"`
	ReturnZ       float64 `json:"return_z"`
	SentimentZ    float64 `json:"sentiment_z"`
	ShareNews     float64 `json:"share_news"`
	ShareSearch   float64 `json:"share_search"`
	ShareSocial   float64 `json:"share_social"`
	VolatilityZ   float64 `json:"volatility_z"`
	VolumeZ       float64 `json:"volume_z"`
}

// FeatureDim is the dimensionality of a feature vector
const FeatureDim = 12

// FeatureKeys lists the feature names in canonical (sorted) order, aligned
// with Vector().
var FeatureKeys = []string{
	"attn_composite",
	"attn_news",
	"attn_search",
	"attn_slope_z",
	"attn_social",
	"return_z",
	"sentiment_z",
	"share_news",
	"share_search",
	"share_social",
	"volatility_z",
	"volume_z",
}

// Vector returns the feature values in canonical key order
func (f FeatureVec) Vector() []float64 {
	return []float64{
		f.AttnComposite,
		f.AttnNews,
		f.AttnSearch,
		f.AttnSlopeZ,
		f.AttnSocial,
		f.ReturnZ,
		f.SentimentZ,
		f.ShareNews,
		f.ShareSearch,
		f.ShareSocial,
		f.VolatilityZ,
		f.VolumeZ,
	}
}

// IsZero reports whether every feature equals zero. An all-zero vector means
// there is no usable signal to match on.
func (f FeatureVec) IsZero() bool {
	for _, v := range f.Vector() {
		if v != 0 {
			return false
		}
	}
	return true
}

// Sanitize replaces any NaN or Inf component with zero. The normalizer guards
// its intermediates, so this is an invariant check rather than a routine path.
func (f FeatureVec) Sanitize() FeatureVec {
	vals := f.Vector()
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			vals[i] = 0
		}
	}
	return FeatureVec{
		AttnComposite: vals[0],
		AttnNews:      vals[1],
		AttnSearch:    vals[2],
		AttnSlopeZ:    vals[3],
		AttnSocial:    vals[4],
		ReturnZ:       vals[5],
		SentimentZ:    vals[6],
		ShareNews:     vals[7],
		ShareSearch:   vals[8],
		ShareSocial:   vals[9],
		VolatilityZ:   vals[10],
		VolumeZ:       vals[11],
	}
}

// StateSnapshot summarizes one symbol's market condition at one instant.
// Snapshots are immutable values: created on demand, never mutated.
type StateSnapshot struct {
	Symbol     string     `json:"symbol"`
	AsOf       time.Time  `json:"as_of"`
	Timeframe  string     `json:"timeframe"`
	WindowDays int        `json:"window_days"`
	Features   FeatureVec `json:"features"`

	// RawStats holds un-normalized counterparts for display only; they are
	// never used in distance computation.
	RawStats map[string]float64 `json:"raw_stats,omitempty"`
}

// Vector returns the snapshot's feature vector in canonical key order
func (s *StateSnapshot) Vector() []float64 {
	return s.Features.Vector()
}

// SummaryStatKeys is the curated subset of raw stats carried into search
// results for display.
var SummaryStatKeys = []string{
	"close",
	"window_return",
	"volatility",
	"volume_7d_mean",
	"composite_score",
	"sentiment_mean",
}

// DisplaySummary extracts the curated raw-stat subset for a search result
func (s *StateSnapshot) DisplaySummary() map[string]float64 {
	out := make(map[string]float64, len(SummaryStatKeys))
	for _, k := range SummaryStatKeys {
		if v, ok := s.RawStats[k]; ok {
			out[k] = v
		}
	}
	return out
}
