package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMissingColumn is returned when a table lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Table is the tabular form of a record collection.
type Table struct {
	Header []string
	Rows   [][]string
}

// Len returns the number of data rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Index returns the position of column name, or -1.
func (t Table) Index(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// columns resolves names to positions. Required names must exist; optional
// ones map to -1 when absent.
func (t Table) columns(required []string, optional ...string) (map[string]int, error) {
	idx := make(map[string]int, len(required)+len(optional))
	for _, name := range required {
		i := t.Index(name)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		idx[name] = i
	}
	for _, name := range optional {
		idx[name] = t.Index(name)
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatInt(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func parseInt(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// encodeList writes a list as a JSON array cell; nil stays null.
func encodeList(items []string) string {
	if items == nil {
		return ""
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func decodeList(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	items := []string{}
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err
	}
	return items, nil
}
