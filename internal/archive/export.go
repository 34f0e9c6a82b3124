package archive

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"

	"optflow/internal/model"
)

// Exporter dumps a partition's records to a secondary format for inspection.
// Parquet stays the archive format; exports are one-way.
type Exporter interface {
	Export(rows []model.Record, path string) error
	Extension() string
}

// NewExporter creates an implementation by format (csv, json).
// Returns nil if format not supported.
func NewExporter(format string) Exporter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return CSVExporter{}
	case "json":
		return JSONExporter{}
	default:
		return nil
	}
}

// CSVExporter writes records with a sorted header built from the column
// union, so sparse optional columns still line up.
type CSVExporter struct{}

func (CSVExporter) Extension() string { return "csv" }

func (CSVExporter) Export(rows []model.Record, path string) error {
	cols := make(map[string]bool)
	for _, r := range rows {
		for c := range r {
			cols[c] = true
		}
	}
	header := make([]string, 0, len(cols))
	for c := range cols {
		header = append(header, c)
	}
	sort.Strings(header)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		fields := make([]string, len(header))
		for i, c := range header {
			fields[i] = cellString(r[c])
		}
		if err := w.Write(fields); err != nil {
			return err
		}
	}
	return nil
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

// JSONExporter writes records as an indented JSON array.
type JSONExporter struct{}

func (JSONExporter) Extension() string { return "json" }

func (JSONExporter) Export(rows []model.Record, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
