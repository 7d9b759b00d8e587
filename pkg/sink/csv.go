// Package sink persists tables at stage boundaries: CSV files in the data
// directory and, optionally, a SQLite mirror.
package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Sternrassler/yt-channel-pipeline/pkg/logging"
	"github.com/Sternrassler/yt-channel-pipeline/pkg/record"
	"github.com/rs/zerolog"
)

// TimestampLayout is the suffix format of snapshot files.
const TimestampLayout = "20060102_150405"

// Sink stores a table under a name prefix and returns where it went.
type Sink interface {
	Save(t record.Table, prefix string) (string, error)
}

// CSV writes tables as comma-separated files with a header row.
type CSV struct {
	Dir string
	// Now is the clock used for snapshot names.
	Now    func() time.Time
	logger zerolog.Logger
}

// NewCSV creates a CSV sink rooted at dir.
func NewCSV(dir string) *CSV {
	return &CSV{
		Dir:    dir,
		Now:    time.Now,
		logger: logging.NewLogger("sink"),
	}
}

// Save writes t to {prefix}_{YYYYMMDD_HHMMSS}.csv. Two saves with the same
// prefix within the same second write the same file; the later one wins.
func (s *CSV) Save(t record.Table, prefix string) (string, error) {
	name := fmt.Sprintf("%s_%s.csv", prefix, s.Now().Format(TimestampLayout))
	return s.WriteFile(name, t)
}

// WriteFile writes t to name inside Dir, creating Dir if needed.
func (s *CSV) WriteFile(name string, t record.Table) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create sink dir: %w", err)
	}

	path := filepath.Join(s.Dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		f.Close()
		return "", fmt.Errorf("write header %s: %w", path, err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		f.Close()
		return "", fmt.Errorf("write rows %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	s.logger.Info().Str("path", path).Int("count", t.Len()).Msg("Data saved")
	return path, nil
}

// ReadFile reads a file written by WriteFile.
func (s *CSV) ReadFile(name string) (record.Table, error) {
	path := filepath.Join(s.Dir, name)
	f, err := os.Open(path)
	if err != nil {
		return record.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return record.Table{}, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return record.Table{}, fmt.Errorf("read %s: missing header", path)
	}

	return record.Table{Header: rows[0], Rows: rows[1:]}, nil
}
