package archive

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"optflow/internal/model"
)

func exportRows() []model.Record {
	return []model.Record{
		{"symbol": "XYZ", "t": int64(1704153600000), "c": 10.5},
		{"symbol": "XYZ", "t": int64(1704240000000), "c": 11.25, "vw": 11.0},
	}
}

func TestNewExporter(t *testing.T) {
	if NewExporter("csv") == nil || NewExporter(" JSON ") == nil {
		t.Error("known formats must resolve")
	}
	if NewExporter("parquet") != nil {
		t.Error("parquet is the archive format, not an export format")
	}
}

func TestCSVExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := (CSVExporter{}).Export(exportRows(), path); err != nil {
		t.Fatalf("Export: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows", len(recs))
	}

	header := recs[0]
	want := []string{"c", "symbol", "t", "vw"}
	if len(header) != len(want) {
		t.Fatalf("header = %v, want %v", header, want)
	}
	for i := range want {
		if header[i] != want[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], want[i])
		}
	}
	// first row has no vw, cell must be empty, not dropped
	if recs[1][3] != "" {
		t.Errorf("sparse column cell = %q, want empty", recs[1][3])
	}
	if recs[2][0] != "11.25" {
		t.Errorf("close cell = %q, want 11.25", recs[2][0])
	}
}

func TestJSONExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	if err := (JSONExporter{}).Export(exportRows(), path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var back []map[string]any
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back) != 2 {
		t.Fatalf("got %d rows, want 2", len(back))
	}
	if back[0]["symbol"] != "XYZ" {
		t.Errorf("symbol = %v", back[0]["symbol"])
	}
}
