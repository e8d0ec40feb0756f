// Package store provides data persistence and loading for price series and
// the knowledge index.
package store

import (
	"context"

	"stock-advisor/internal/models"
)

// PriceStore provides read access to the fixed universe of price series.
// Lookup accepts display name or code, case-insensitively, with substring
// fallback matching when no exact key matches.
type PriceStore interface {
	// GetSeries returns the full price series for a stock key, or
	// errors.ErrStockNotFound when no series matches.
	GetSeries(ctx context.Context, stock string) (*models.Series, error)
	// GetLatest returns the most recent bar for a stock key.
	GetLatest(ctx context.Context, stock string) (*models.Bar, error)
	// ListStocks lists every available stock.
	ListStocks(ctx context.Context) ([]models.StockInfo, error)
}
