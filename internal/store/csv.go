package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	apperrors "stock-advisor/internal/errors"
	"stock-advisor/internal/models"
)

// barRecord is the CSV row shape for imported bar files.
type barRecord struct {
	Date      string   `csv:"date"`
	Open      float64  `csv:"open"`
	High      float64  `csv:"high"`
	Low       float64  `csv:"low"`
	Close     float64  `csv:"close"`
	Volume    int64    `csv:"volume"`
	ChangePct *float64 `csv:"change_pct"`
	Turnover  *float64 `csv:"turnover"`
}

// ImportCSVDir imports every <name>_<code>.csv file in dir into the store.
// Returns the number of stocks imported. Files that fail to parse are
// skipped with a warning so one bad file cannot abort a bulk import.
func ImportCSVDir(ctx context.Context, s *SQLiteStore, dir string, logger zerolog.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, apperrors.Wrapf(err, "reading data dir %s", dir)
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}

		series, err := loadCSVFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping csv file")
			continue
		}

		if err := s.SaveSeries(ctx, series); err != nil {
			logger.Warn().Err(err).Str("stock", series.Code).Msg("failed to save series")
			continue
		}

		logger.Info().
			Str("stock", series.Name).
			Str("code", series.Code).
			Int("bars", len(series.Bars)).
			Msg("imported series")
		imported++
	}

	return imported, nil
}

// loadCSVFile parses one bar file. The file stem carries the stock identity
// as <name>_<code>; the code is everything after the last underscore.
func loadCSVFile(path string) (*models.Series, error) {
	stem := strings.TrimSuffix(filepath.Base(path), ".csv")
	idx := strings.LastIndex(stem, "_")
	if idx <= 0 || idx == len(stem)-1 {
		return nil, fmt.Errorf("file name %q is not <name>_<code>.csv", filepath.Base(path))
	}
	name, code := stem[:idx], stem[idx+1:]

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	var records []*barRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, apperrors.Wrapf(err, "parsing %s", path)
	}

	series := &models.Series{Name: name, Code: code}
	for _, rec := range records {
		date, err := time.Parse("2006-01-02", rec.Date)
		if err != nil {
			return nil, apperrors.Wrapf(err, "parsing date %q in %s", rec.Date, path)
		}
		series.Bars = append(series.Bars, models.Bar{
			Date:      date,
			Open:      rec.Open,
			High:      rec.High,
			Low:       rec.Low,
			Close:     rec.Close,
			Volume:    rec.Volume,
			ChangePct: rec.ChangePct,
			Turnover:  rec.Turnover,
		})
	}

	sort.Slice(series.Bars, func(i, j int) bool {
		return series.Bars[i].Date.Before(series.Bars[j].Date)
	})

	return series, nil
}
