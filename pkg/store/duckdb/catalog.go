package duckdb

import (
	"context"
	"fmt"
)

// CatalogRepo handles the symbol catalog and implements data.Catalog
type CatalogRepo struct {
	client *Client
}

// NewCatalogRepo creates a new catalog repository
func NewCatalogRepo(client *Client) *CatalogRepo {
	return &CatalogRepo{client: client}
}

// Add registers a symbol in the catalog
func (r *CatalogRepo) Add(ctx context.Context, symbol string) error {
	return r.client.Exec(
		"INSERT INTO symbols (symbol) VALUES (?) ON CONFLICT (symbol) DO NOTHING",
		symbol,
	)
}

// Symbols lists all catalog symbols in lexical order
func (r *CatalogRepo) Symbols(ctx context.Context) ([]string, error) {
	rows, err := r.client.Query("SELECT symbol FROM symbols ORDER BY symbol ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, s)
	}

	return symbols, rows.Err()
}
