package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "stock-advisor/internal/errors"
	"stock-advisor/internal/models"
)

// SQLiteStore implements PriceStore using SQLite with a read-through
// in-memory series cache. Series are immutable between imports, so cached
// entries are only dropped when their stock is re-imported.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	series map[string]*models.Series // keyed by code
	stocks []models.StockInfo        // nil until first lookup
}

// NewSQLiteStore creates a new SQLite-based price store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{
		db:     db,
		series: make(map[string]*models.Series),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Stock universe: display name to code mapping
	CREATE TABLE IF NOT EXISTS stocks (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL
	);

	-- Daily bars per stock
	CREATE TABLE IF NOT EXISTS bars (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL,
		date DATETIME NOT NULL,
		open REAL NOT NULL,
		high REAL NOT NULL,
		low REAL NOT NULL,
		close REAL NOT NULL,
		volume INTEGER NOT NULL,
		change_pct REAL,
		turnover REAL,
		UNIQUE(code, date)
	);

	CREATE INDEX IF NOT EXISTS idx_bars_code_date ON bars(code, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ListStocks lists every stock with bars in the store.
func (s *SQLiteStore) ListStocks(ctx context.Context) ([]models.StockInfo, error) {
	s.mu.RLock()
	if s.stocks != nil {
		cached := s.stocks
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT code, name FROM stocks ORDER BY code`)
	if err != nil {
		return nil, apperrors.Wrap(err, "listing stocks")
	}
	defer rows.Close()

	var stocks []models.StockInfo
	for rows.Next() {
		var info models.StockInfo
		if err := rows.Scan(&info.Code, &info.Name); err != nil {
			return nil, apperrors.Wrap(err, "scanning stock row")
		}
		stocks = append(stocks, info)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "iterating stock rows")
	}

	s.mu.Lock()
	s.stocks = stocks
	s.mu.Unlock()

	return stocks, nil
}

// resolve maps a user-supplied stock key to a known stock. Exact name or
// code matches win (case-insensitive); otherwise the first substring match
// in either direction is used.
func (s *SQLiteStore) resolve(ctx context.Context, stock string) (*models.StockInfo, error) {
	key := strings.ToLower(strings.TrimSpace(stock))
	if key == "" {
		return nil, apperrors.ErrStockNotFound
	}

	stocks, err := s.ListStocks(ctx)
	if err != nil {
		return nil, err
	}

	for i := range stocks {
		if strings.ToLower(stocks[i].Name) == key || strings.ToLower(stocks[i].Code) == key {
			return &stocks[i], nil
		}
	}

	for i := range stocks {
		name := strings.ToLower(stocks[i].Name)
		code := strings.ToLower(stocks[i].Code)
		if strings.Contains(name, key) || strings.Contains(key, name) ||
			strings.Contains(code, key) || strings.Contains(key, code) {
			return &stocks[i], nil
		}
	}

	return nil, apperrors.ErrStockNotFound
}

// GetSeries returns the full ordered series for a stock key.
func (s *SQLiteStore) GetSeries(ctx context.Context, stock string) (*models.Series, error) {
	info, err := s.resolve(ctx, stock)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	if cached, ok := s.series[info.Code]; ok {
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, volume, change_pct, turnover
		FROM bars WHERE code = ? ORDER BY date ASC`, info.Code)
	if err != nil {
		return nil, apperrors.Wrapf(err, "loading bars for %s", info.Code)
	}
	defer rows.Close()

	series := &models.Series{Name: info.Name, Code: info.Code}
	for rows.Next() {
		var bar models.Bar
		var changePct, turnover sql.NullFloat64
		if err := rows.Scan(&bar.Date, &bar.Open, &bar.High, &bar.Low,
			&bar.Close, &bar.Volume, &changePct, &turnover); err != nil {
			return nil, apperrors.Wrap(err, "scanning bar row")
		}
		if changePct.Valid {
			v := changePct.Float64
			bar.ChangePct = &v
		}
		if turnover.Valid {
			v := turnover.Float64
			bar.Turnover = &v
		}
		series.Bars = append(series.Bars, bar)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "iterating bar rows")
	}

	if len(series.Bars) == 0 {
		return nil, apperrors.ErrStockNotFound
	}

	s.mu.Lock()
	s.series[info.Code] = series
	s.mu.Unlock()

	return series, nil
}

// GetLatest returns the most recent bar for a stock key.
func (s *SQLiteStore) GetLatest(ctx context.Context, stock string) (*models.Bar, error) {
	series, err := s.GetSeries(ctx, stock)
	if err != nil {
		return nil, err
	}
	latest := series.Latest()
	if latest == nil {
		return nil, apperrors.ErrStockNotFound
	}
	return latest, nil
}

// SaveSeries writes a full series, replacing any existing bars for the stock.
func (s *SQLiteStore) SaveSeries(ctx context.Context, series *models.Series) error {
	if series == nil || series.Code == "" {
		return fmt.Errorf("invalid series")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, "beginning transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO stocks (code, name) VALUES (?, ?)
		 ON CONFLICT(code) DO UPDATE SET name = excluded.name`,
		series.Code, series.Name); err != nil {
		return apperrors.Wrapf(err, "saving stock %s", series.Code)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bars WHERE code = ?`, series.Code); err != nil {
		return apperrors.Wrapf(err, "clearing bars for %s", series.Code)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (code, date, open, high, low, close, volume, change_pct, turnover)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.Wrap(err, "preparing bar insert")
	}
	defer stmt.Close()

	for _, bar := range series.Bars {
		var changePct, turnover interface{}
		if bar.ChangePct != nil {
			changePct = *bar.ChangePct
		}
		if bar.Turnover != nil {
			turnover = *bar.Turnover
		}
		if _, err := stmt.ExecContext(ctx, series.Code, bar.Date, bar.Open,
			bar.High, bar.Low, bar.Close, bar.Volume, changePct, turnover); err != nil {
			return apperrors.Wrapf(err, "inserting bar for %s", series.Code)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, "committing series")
	}

	s.mu.Lock()
	delete(s.series, series.Code)
	s.stocks = nil
	s.mu.Unlock()

	return nil
}
