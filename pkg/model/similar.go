package model

import "time"

// SimilarState is one result of a similarity query: a historical snapshot
// matched against a target, with its distance under the chosen metric.
type SimilarState struct {
	Symbol    string    `json:"symbol"`
	Datetime  time.Time `json:"datetime"`
	Timeframe string    `json:"timeframe"`

	// Distance is the raw metric value; lower is more similar. Ranking is by
	// distance, ascending.
	Distance float64 `json:"distance"`

	// Similarity maps distance into (0, 1] for display. It never affects
	// ranking.
	Similarity float64 `json:"similarity"`

	// SnapshotSummary is a curated subset of the matched snapshot's raw stats
	SnapshotSummary map[string]float64 `json:"snapshot_summary,omitempty"`
}
