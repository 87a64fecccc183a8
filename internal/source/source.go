// Package source decodes issue-tracker exports into typed tables.
package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/starford/gantt/internal/apperr"
	"github.com/starford/gantt/internal/models"
)

// Extensions lists the export formats Decode understands.
var Extensions = []string{".csv", ".xlsx"}

// Supported reports whether name has a readable export extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Decode reads an export. The format is chosen from the extension of name.
func Decode(name string, data []byte) (*models.Table, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		records, err = readCSV(bytes.NewReader(data))
	case ".xlsx":
		records, err = readXLSX(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", apperr.ErrUnsupportedFormat, filepath.Ext(name))
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return build(name, records)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// readXLSX returns the rows of the first sheet.
func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func build(name string, records [][]string) (*models.Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("decode %s: missing header row", name)
	}

	columns := headerColumns(records[0])
	table := &models.Table{
		Source:  name,
		Columns: columns,
		Rows:    make([]models.Row, 0, len(records)-1),
	}
	body := records[1:]
	numeric := numericColumns(len(columns), body)
	for _, record := range body {
		if blank(record) {
			continue
		}
		row := make(models.Row, len(columns))
		for i, cell := range record {
			if i >= len(columns) || cell == "" {
				continue
			}
			if numeric[i] {
				n, _ := parseNumber(cell)
				row[columns[i]] = models.Number(n)
				continue
			}
			row[columns[i]] = models.String(cell)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// numericColumns reports, per column, whether every non-empty cell parses as
// a number. A column with no values stays textual.
func numericColumns(n int, records [][]string) []bool {
	numeric := make([]bool, n)
	seen := make([]bool, n)
	for i := range numeric {
		numeric[i] = true
	}
	for _, record := range records {
		for i, cell := range record {
			if i >= n || cell == "" || !numeric[i] {
				continue
			}
			seen[i] = true
			if _, ok := parseNumber(cell); !ok {
				numeric[i] = false
			}
		}
	}
	for i := range numeric {
		numeric[i] = numeric[i] && seen[i]
	}
	return numeric
}

// headerColumns trims header names and disambiguates repeated ones as
// "Name.1", "Name.2" in order of appearance.
func headerColumns(header []string) []string {
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		h = strings.TrimSpace(h)
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			columns[i] = h + "." + strconv.Itoa(n+1)
			continue
		}
		seen[h] = 0
		columns[i] = h
	}
	return columns
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseNumber parses an integer or finite decimal cell.
func parseNumber(s string) (float64, bool) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f, true
	}
	return 0, false
}
