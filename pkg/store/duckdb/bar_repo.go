package duckdb

import (
	"context"
	"fmt"
	"time"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// BarRepo handles price bar persistence and implements data.PriceProvider
type BarRepo struct {
	client *Client
}

// NewBarRepo creates a new bar repository
func NewBarRepo(client *Client) *BarRepo {
	return &BarRepo{client: client}
}

const upsertBar = `
	INSERT INTO bars (symbol, timeframe, ts, open, high, low, close, volume)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (symbol, timeframe, ts) DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume
`

// Insert inserts a single bar
func (r *BarRepo) Insert(ctx context.Context, b *model.PriceBar) error {
	return r.client.Exec(upsertBar,
		b.Symbol, b.Timeframe, b.Timestamp,
		b.Open, b.High, b.Low, b.Close, b.Volume,
	)
}

// InsertBatch inserts multiple bars in a transaction
func (r *BarRepo) InsertBatch(ctx context.Context, bars []model.PriceBar) error {
	tx, err := r.client.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertBar)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, b := range bars {
		_, err := stmt.Exec(
			b.Symbol, b.Timeframe, b.Timestamp,
			b.Open, b.High, b.Low, b.Close, b.Volume,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bar: %w", err)
		}
	}

	return tx.Commit()
}

// Bars retrieves bars within a time range, oldest first
func (r *BarRepo) Bars(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]model.PriceBar, error) {
	query := `
		SELECT symbol, timeframe, ts, open, high, low, close, volume
		FROM bars
		WHERE symbol = ? AND timeframe = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`

	rows, err := r.client.Query(query, symbol, timeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query bars: %w", err)
	}
	defer rows.Close()

	var bars []model.PriceBar
	for rows.Next() {
		var b model.PriceBar
		err := rows.Scan(
			&b.Symbol, &b.Timeframe, &b.Timestamp,
			&b.Open, &b.High, &b.Low, &b.Close, &b.Volume,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bar: %w", err)
		}
		bars = append(bars, b)
	}

	return bars, rows.Err()
}

// Count returns the total number of bars for a symbol/timeframe
func (r *BarRepo) Count(ctx context.Context, symbol, timeframe string) (int64, error) {
	var count int64
	row := r.client.QueryRow(
		"SELECT COUNT(*) FROM bars WHERE symbol = ? AND timeframe = ?",
		symbol, timeframe,
	)
	err := row.Scan(&count)
	return count, err
}
