// Package featurecsv reads batches of named geometries from CSV. The header must name an input
// column; name, family, encoding and metadata (a JSON object) are optional. Column order is
// free and a UTF-8 BOM on the header is ignored.
package featurecsv

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/samirrijal/geokit/internal/core/domain"
)

// Row is one parsed record and its 1-based line number.
type Row struct {
	Line    int
	Message domain.IngestMessage
}

// Reader yields rows from a CSV stream.
type Reader struct {
	r    *csv.Reader
	cols map[string]int
}

// NewReader reads and indexes the header.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	if _, ok := cols["input"]; !ok {
		return nil, errors.New("header has no input column")
	}
	return &Reader{r: cr, cols: cols}, nil
}

// Next returns the next row, or io.EOF. Rows with an empty input are skipped.
func (r *Reader) Next() (Row, error) {
	for {
		record, err := r.r.Read()
		if err != nil {
			return Row{}, err
		}
		line, _ := r.r.FieldPos(0)

		input := getField(record, r.cols, "input")
		if input == "" {
			continue
		}
		row := Row{Line: line, Message: domain.IngestMessage{
			Name:     getField(record, r.cols, "name"),
			Family:   getField(record, r.cols, "family"),
			Encoding: getField(record, r.cols, "encoding"),
			Input:    input,
		}}
		if row.Message.Name == "" {
			row.Message.Name = fmt.Sprintf("row %d", line)
		}
		if meta := getField(record, r.cols, "metadata"); meta != "" {
			if err := json.Unmarshal([]byte(meta), &row.Message.Metadata); err != nil {
				return Row{}, fmt.Errorf("line %d: metadata: %w", line, err)
			}
		}
		return row, nil
	}
}

// ReadAll parses every row.
func ReadAll(r io.Reader) ([]domain.IngestMessage, error) {
	cr, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	var out []domain.IngestMessage
	for {
		row, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row.Message)
	}
}

func indexColumns(header []string) map[string]int {
	m := make(map[string]int, len(header))
	for i, col := range header {
		col = strings.TrimPrefix(col, "\xef\xbb\xbf")
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

func getField(record []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
