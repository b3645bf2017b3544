package duckdb

import (
	"context"
	"fmt"
	"time"

	"github.com/Bachopin/crypto-attention-lab-sub000/pkg/model"
)

// AttentionRepo handles attention feature persistence and implements
// data.AttentionProvider
type AttentionRepo struct {
	client *Client
}

// NewAttentionRepo creates a new attention repository
func NewAttentionRepo(client *Client) *AttentionRepo {
	return &AttentionRepo{client: client}
}

const upsertAttention = `
	INSERT INTO attention (
		symbol, timeframe, ts, composite_score, composite_zscore,
		news_zscore, search_zscore, social_zscore, bullish, bearish
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (symbol, timeframe, ts) DO UPDATE SET
		composite_score = EXCLUDED.composite_score,
		composite_zscore = EXCLUDED.composite_zscore,
		news_zscore = EXCLUDED.news_zscore,
		search_zscore = EXCLUDED.search_zscore,
		social_zscore = EXCLUDED.social_zscore,
		bullish = EXCLUDED.bullish,
		bearish = EXCLUDED.bearish
`

// Insert inserts a single attention row
func (r *AttentionRepo) Insert(ctx context.Context, a *model.AttentionRow) error {
	return r.client.Exec(upsertAttention,
		a.Symbol, a.Timeframe, a.Timestamp,
		a.CompositeScore, a.CompositeZScore,
		a.NewsZScore, a.SearchZScore, a.SocialZScore,
		a.BullishAttention, a.BearishAttention,
	)
}

// InsertBatch inserts multiple attention rows in a transaction
func (r *AttentionRepo) InsertBatch(ctx context.Context, rows []model.AttentionRow) error {
	tx, err := r.client.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(upsertAttention)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, a := range rows {
		_, err := stmt.Exec(
			a.Symbol, a.Timeframe, a.Timestamp,
			a.CompositeScore, a.CompositeZScore,
			a.NewsZScore, a.SearchZScore, a.SocialZScore,
			a.BullishAttention, a.BearishAttention,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attention row: %w", err)
		}
	}

	return tx.Commit()
}

// Attention retrieves attention rows within a time range, oldest first
func (r *AttentionRepo) Attention(ctx context.Context, symbol, timeframe string, start, end time.Time) ([]model.AttentionRow, error) {
	query := `
		SELECT symbol, timeframe, ts, composite_score, composite_zscore,
			   news_zscore, search_zscore, social_zscore, bullish, bearish
		FROM attention
		WHERE symbol = ? AND timeframe = ? AND ts >= ? AND ts <= ?
		ORDER BY ts ASC
	`

	rows, err := r.client.Query(query, symbol, timeframe, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query attention rows: %w", err)
	}
	defer rows.Close()

	var result []model.AttentionRow
	for rows.Next() {
		var a model.AttentionRow
		err := rows.Scan(
			&a.Symbol, &a.Timeframe, &a.Timestamp,
			&a.CompositeScore, &a.CompositeZScore,
			&a.NewsZScore, &a.SearchZScore, &a.SocialZScore,
			&a.BullishAttention, &a.BearishAttention,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attention row: %w", err)
		}
		result = append(result, a)
	}

	return result, rows.Err()
}
