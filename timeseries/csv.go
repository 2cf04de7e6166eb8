package timeseries

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	DateColumn   string   // Column name for dates (optional)
	ValueColumns []string // Columns to load as components (default: "y"/"value", else every other column)
	IDColumn     string   // Column name for series ID (optional, for filtering)
	IDFilter     string   // Value to filter by ID column
	DateFormat   string   // Date format (default: "2006-01-02")
	HasHeader    bool     // Whether CSV has header row (default: true)
	Delimiter    rune     // Field delimiter (default: ',')
	SkipRows     int      // Number of rows to skip at start
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		DateFormat: "2006-01-02",
		HasHeader:  true,
		Delimiter:  ',',
	}
}

// LoadCSV loads a time series from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Series, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVColumn loads a specific column from a CSV file as a univariate series.
func LoadCSVColumn(filename string, column string) (*Series, error) {
	opts := DefaultCSVOptions()
	opts.ValueColumns = []string{column}
	return LoadCSV(filename, opts)
}

// LoadCSVFiltered loads the rows whose idColumn equals idValue.
func LoadCSVFiltered(filename string, idColumn, idValue string, valueColumns ...string) (*Series, error) {
	opts := DefaultCSVOptions()
	opts.IDColumn = idColumn
	opts.IDFilter = idValue
	opts.ValueColumns = valueColumns
	return LoadCSV(filename, opts)
}

// LoadCSVFromReader loads a time series from an io.Reader. Rows with a
// missing or non-numeric value in any selected column are skipped.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Series, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	dateIdx, idIdx := -1, -1
	var valueIdx []int
	var names []string

	if opts.HasHeader {
		header, err := reader.Read()
		if err != nil {
			return nil, err
		}
		dateIdx, idIdx, valueIdx, names, err = resolveHeader(header, opts)
		if err != nil {
			return nil, err
		}
	} else {
		// No header: first column is the date, the rest are values.
		dateIdx = 0
	}

	var timestamps []time.Time
	var rows [][]float64
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		if !opts.HasHeader && valueIdx == nil {
			for i := 1; i < len(record); i++ {
				valueIdx = append(valueIdx, i)
			}
			names = ordinalNames(len(valueIdx))
		}

		if opts.IDFilter != "" && idIdx >= 0 && idIdx < len(record) {
			if clean(record[idIdx]) != opts.IDFilter {
				continue
			}
		}

		row, ok := parseRow(record, valueIdx)
		if !ok {
			continue
		}

		if dateIdx >= 0 && dateIdx < len(record) {
			ts, err := parseDate(clean(record[dateIdx]), opts.DateFormat)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", line, err)
			}
			timestamps = append(timestamps, ts)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, errors.New("no valid data found in CSV")
	}

	if timestamps == nil {
		timestamps = New(make([]float64, len(rows))).Timestamps()
	}
	return FromRows(timestamps, rows, names)
}

func resolveHeader(header []string, opts *CSVOptions) (dateIdx, idIdx int, valueIdx []int, names []string, err error) {
	dateIdx, idIdx = -1, -1
	position := make(map[string]int, len(header))

	for i, h := range header {
		h = clean(h)
		position[h] = i
		switch {
		case opts.DateColumn != "" && h == opts.DateColumn:
			dateIdx = i
		case opts.DateColumn == "" && dateIdx == -1 && isDateHeader(h):
			dateIdx = i
		case opts.IDColumn != "" && h == opts.IDColumn:
			idIdx = i
		case opts.IDColumn == "" && idIdx == -1 && (h == "unique_id" || h == "id" || h == "ID"):
			idIdx = i
		}
	}

	if len(opts.ValueColumns) > 0 {
		for _, name := range opts.ValueColumns {
			i, ok := position[name]
			if !ok {
				return 0, 0, nil, nil, fmt.Errorf("value column %q: %w", name, ErrUnknownComponent)
			}
			valueIdx = append(valueIdx, i)
			names = append(names, name)
		}
		return dateIdx, idIdx, valueIdx, names, nil
	}

	for _, preferred := range []string{"y", "value", "Value"} {
		if i, ok := position[preferred]; ok {
			return dateIdx, idIdx, []int{i}, []string{preferred}, nil
		}
	}

	for i, h := range header {
		if i == dateIdx || i == idIdx {
			continue
		}
		valueIdx = append(valueIdx, i)
		names = append(names, clean(h))
	}
	if len(valueIdx) == 0 {
		return 0, 0, nil, nil, errors.New("no value columns found in CSV header")
	}
	return dateIdx, idIdx, valueIdx, names, nil
}

func isDateHeader(h string) bool {
	switch h {
	case "ds", "date", "Date", "time", "timestamp", "Month", "Year":
		return true
	}
	return false
}

func parseRow(record []string, valueIdx []int) ([]float64, bool) {
	row := make([]float64, len(valueIdx))
	for i, idx := range valueIdx {
		if idx >= len(record) {
			return nil, false
		}
		s := clean(record[idx])
		if s == "" || s == "NA" || s == "NaN" || s == "null" {
			return nil, false
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, false
		}
		row[i] = v
	}
	return row, true
}

func parseDate(s, preferred string) (time.Time, error) {
	formats := []string{
		preferred,
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006/01/02",
		"01/02/2006",
		"02-Jan-2006",
		"2006-01",
		"2006",
	}
	for _, layout := range formats {
		if layout == "" {
			continue
		}
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func clean(s string) string {
	return strings.TrimSpace(strings.Trim(s, "\""))
}

// SaveCSV saves a time series to a CSV file.
func SaveCSV(series *Series, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteCSV(file, series)
}

// WriteCSV writes the series with a "ds" column followed by one column per component.
func WriteCSV(w io.Writer, series *Series) error {
	writer := bufio.NewWriter(w)

	writer.WriteString("ds")
	for _, name := range series.components {
		writer.WriteString(",")
		writer.WriteString(name)
	}
	writer.WriteString("\n")

	for r, t := range series.times {
		writer.WriteString(t.Format(time.RFC3339))
		for c := 0; c < series.width; c++ {
			writer.WriteString(",")
			writer.WriteString(strconv.FormatFloat(series.At(r, c), 'f', -1, 64))
		}
		writer.WriteString("\n")
	}

	return writer.Flush()
}
