package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

const sampleCSV = `date,open,high,low,close,volume,change_pct,turnover
2024-01-03,101,103,100,102,60000,1.2,6120000
2024-01-02,100,102,99,101,55000,0.5,5555000
2024-01-04,102,105,101,104,70000,2.0,7280000
`

func writeDataFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
}

func TestImportCSVDir(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	writeDataFile(t, dir, "比亚迪_002594.csv", sampleCSV)

	count, err := ImportCSVDir(context.Background(), s, dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("ImportCSVDir failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("imported = %d, want 1", count)
	}

	series, err := s.GetSeries(context.Background(), "比亚迪")
	if err != nil {
		t.Fatalf("GetSeries failed: %v", err)
	}
	if series.Code != "002594" {
		t.Errorf("Code = %q, want 002594", series.Code)
	}
	if series.Len() != 3 {
		t.Fatalf("Len = %d, want 3", series.Len())
	}

	// Rows arrive out of order in the file and must come back sorted.
	for i := 1; i < series.Len(); i++ {
		if !series.Bars[i-1].Date.Before(series.Bars[i].Date) {
			t.Errorf("bars not sorted at index %d", i)
		}
	}
	if series.Bars[0].Close != 101 || series.Bars[2].Close != 104 {
		t.Errorf("unexpected closes: %v, %v", series.Bars[0].Close, series.Bars[2].Close)
	}
}

func TestImportCSVDirSkipsBadFiles(t *testing.T) {
	s := newTestStore(t)
	dir := t.TempDir()
	writeDataFile(t, dir, "比亚迪_002594.csv", sampleCSV)
	writeDataFile(t, dir, "badname.csv", sampleCSV)
	writeDataFile(t, dir, "坏数据_000001.csv", "date,open\nnot-a-date,xyz\n")
	writeDataFile(t, dir, "notes.txt", "not a csv")

	count, err := ImportCSVDir(context.Background(), s, dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("ImportCSVDir failed: %v", err)
	}
	if count != 1 {
		t.Errorf("imported = %d, want 1 (bad files skipped)", count)
	}
}

func TestImportCSVDirMissingDir(t *testing.T) {
	s := newTestStore(t)

	if _, err := ImportCSVDir(context.Background(), s, "/no/such/dir", zerolog.Nop()); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestLoadKnowledgeIndex(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "knowledge_index.json")
	content := `[
		{"content": "MACD指标由DIF和DEA组成。", "title": "MACD", "keywords": ["MACD"]},
		{"content": "RSI衡量动量。", "title": "RSI"}
	]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing index: %v", err)
	}

	docs := LoadKnowledgeIndex(path, zerolog.Nop())
	if len(docs) != 2 {
		t.Fatalf("len = %d, want 2", len(docs))
	}
	if docs[0].Title != "MACD" || len(docs[0].Keywords) != 1 {
		t.Errorf("docs[0] = %+v", docs[0])
	}
}

func TestLoadKnowledgeIndexFailuresAreNonFatal(t *testing.T) {
	if docs := LoadKnowledgeIndex("/no/such/index.json", zerolog.Nop()); docs != nil {
		t.Errorf("missing file: docs = %v, want nil", docs)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing broken index: %v", err)
	}
	if docs := LoadKnowledgeIndex(path, zerolog.Nop()); docs != nil {
		t.Errorf("broken file: docs = %v, want nil", docs)
	}
}
