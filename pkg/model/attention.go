package model

import "time"

// AttentionRow is one observation of the upstream composite-attention
// calculator for a symbol. Channel z-scores arrive pre-normalized; this
// subsystem consumes them as-is.
type AttentionRow struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`

	CompositeScore  float64 `json:"composite_attention_score"`
	CompositeZScore float64 `json:"composite_attention_zscore"`
	NewsZScore      float64 `json:"news_channel_score"`
	SearchZScore    float64 `json:"google_trend_zscore"`
	SocialZScore    float64 `json:"twitter_volume_zscore"`

	BullishAttention float64 `json:"bullish_attention"`
	BearishAttention float64 `json:"bearish_attention"`
}

// SentimentSpread returns bullish minus bearish attention
func (a *AttentionRow) SentimentSpread() float64 {
	return a.BullishAttention - a.BearishAttention
}
