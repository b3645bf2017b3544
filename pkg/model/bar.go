package model

import (
	"math"
	"time"
)

// PriceBar represents a single OHLCV data point
type PriceBar struct {
	Symbol    string    `json:"symbol"`
	Timeframe string    `json:"timeframe"`
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// LogReturn calculates the log return of this bar's close against a previous close
func (b *PriceBar) LogReturn(prevClose float64) float64 {
	if prevClose <= 0 || b.Close <= 0 {
		return 0
	}
	return math.Log(b.Close / prevClose)
}

// Range calculates the high-low range as a fraction of the open
func (b *PriceBar) Range() float64 {
	if b.Open == 0 {
		return 0
	}
	return (b.High - b.Low) / b.Open
}

// IsBullish returns true if close > open
func (b *PriceBar) IsBullish() bool {
	return b.Close > b.Open
}

// IsBearish returns true if close < open
func (b *PriceBar) IsBearish() bool {
	return b.Close < b.Open
}

// BarsPerDay returns the number of bars per calendar day for a timeframe.
// Supported timeframes are "1d" and "4h"; anything else returns 0.
func BarsPerDay(timeframe string) int {
	switch timeframe {
	case "1d":
		return 1
	case "4h":
		return 6
	default:
		return 0
	}
}
