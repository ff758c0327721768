// Package csvfile reads the tabular patient dataset into raw records for
// the mapper. The reader validates the expected column set up front:
// a dataset missing columns is a fatal precondition failure, reported
// before any batch work begins.
package csvfile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/carelake/patientload/internal/patient"
)

// MaxFileSize is the maximum allowed dataset size (100MB).
var MaxFileSize int64 = 100 * 1024 * 1024

// MaxHeaderSearchRows is the maximum number of leading rows scanned for
// the header. Exported sources sometimes prepend title or export-date rows.
var MaxHeaderSearchRows = 20

// Read loads the dataset at path and returns one RawRecord per data row.
func Read(path string) ([]patient.RawRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat dataset: %w", err)
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("dataset %s exceeds %dMB limit", path, MaxFileSize/(1024*1024))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	records, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", path, err)
	}
	return records, nil
}

// Parse converts raw CSV bytes into RawRecords. Cells are cleaned of
// common CSV artifacts; empty cells become absent values so downstream
// normalization treats them as missing rather than as empty strings.
func Parse(data []byte) ([]patient.RawRecord, error) {
	rows, err := parseCSV(sanitizeUTF8(data))
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	headerIdx, header, err := findHeader(rows)
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(CleanCell(h))] = i
	}

	var out []patient.RawRecord
	for _, row := range rows[headerIdx+1:] {
		if isEmptyRow(row) {
			continue
		}

		record := make(patient.RawRecord, len(patient.ExpectedColumns))
		for _, col := range patient.ExpectedColumns {
			pos, ok := index[strings.ToLower(col)]
			if !ok || pos >= len(row) {
				record[col] = nil
				continue
			}
			cell := CleanCell(row[pos])
			if cell == "" {
				record[col] = nil
				continue
			}
			record[col] = cell
		}
		out = append(out, record)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no data rows after header")
	}
	return out, nil
}

// findHeader locates the header row within the first MaxHeaderSearchRows
// rows: the first row containing every expected column. When no row
// qualifies, the error names the columns missing from the best candidate.
func findHeader(rows [][]string) (int, []string, error) {
	maxRows := MaxHeaderSearchRows
	if len(rows) < maxRows {
		maxRows = len(rows)
	}

	bestIdx, bestMissing := 0, patient.ExpectedColumns
	for i := 0; i < maxRows; i++ {
		missing := missingColumns(rows[i])
		if len(missing) == 0 {
			return i, rows[i], nil
		}
		if len(missing) < len(bestMissing) {
			bestIdx, bestMissing = i, missing
		}
	}

	return 0, nil, fmt.Errorf("missing expected columns: %s (row %d matched best; found: %s)",
		strings.Join(bestMissing, ", "), bestIdx+1, strings.Join(rows[bestIdx], ", "))
}

// missingColumns returns the expected columns absent from a candidate
// header row, matched case-insensitively after cell cleanup.
func missingColumns(row []string) []string {
	present := make(map[string]bool, len(row))
	for _, cell := range row {
		present[strings.ToLower(CleanCell(cell))] = true
	}

	var missing []string
	for _, col := range patient.ExpectedColumns {
		if !present[strings.ToLower(col)] {
			missing = append(missing, col)
		}
	}
	return missing
}

// CleanCell removes common CSV artifacts from a cell value:
// trims whitespace, strips the Excel formula prefix (="..."), and removes
// surrounding quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}

func parseCSV(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// a single bad export byte does not poison the whole file.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
