package validate

import (
	"errors"
	"testing"

	"optflow/internal/model"
)

func cleanRows() []model.Record {
	return []model.Record{
		{"symbol": "AAPL", "t": int64(1), "o": 10.0, "h": 11.0, "l": 9.5, "c": 10.5, "v": int64(100)},
		{"symbol": "AAPL", "t": int64(2), "o": 10.5, "h": 12.0, "l": 10.0, "c": 11.8, "v": int64(200)},
		{"symbol": "AAPL", "t": int64(3), "o": 11.8, "h": 11.9, "l": 11.0, "c": 11.2, "v": int64(150)},
	}
}

func barSpec() Spec {
	return Spec{
		Required:     []string{"symbol", "t", "o", "h", "l", "c", "v"},
		NonNull:      []string{"symbol", "t", "o", "h", "l", "c", "v"},
		DuplicateKey: []string{"symbol", "t"},
		NonNegative:  []string{"v"},
		Price:        PriceColumns{Open: "o", High: "h", Low: "l", Close: "c"},
	}
}

func TestCleanBatchPasses(t *testing.T) {
	report := Run(cleanRows(), barSpec())
	if !report.Passed() {
		t.Fatalf("clean batch failed: %v", report.Err())
	}
	if err := report.Err(); err != nil {
		t.Errorf("Err() = %v on passing report", err)
	}
}

// Injecting a single null must flip exactly the null rule.
func TestSingleNullFlipsOnlyNullRule(t *testing.T) {
	rows := cleanRows()
	rows[1]["c"] = nil
	report := Run(rows, barSpec())

	if report.Passed() {
		t.Fatal("report passed with a null close")
	}
	if !report.SchemaOK() || !report.DuplicatesOK() || !report.PricesOK() || !report.NonNegativeOK() {
		t.Errorf("unrelated rules flipped: %+v", report)
	}
	if report.NullCounts["c"] != 1 {
		t.Errorf("NullCounts[c] = %d, want 1", report.NullCounts["c"])
	}
	if !errors.Is(report.Err(), ErrValidation) {
		t.Errorf("Err() = %v, want ErrValidation", report.Err())
	}
}

func TestMissingColumn(t *testing.T) {
	rows := []model.Record{
		{"symbol": "AAPL", "t": int64(1), "o": 10.0, "h": 11.0, "l": 9.5, "v": int64(100)},
	}
	report := Run(rows, barSpec())
	if report.SchemaOK() {
		t.Fatal("schema rule passed with missing close column")
	}
	if len(report.MissingColumns) != 1 || report.MissingColumns[0] != "c" {
		t.Errorf("MissingColumns = %v, want [c]", report.MissingColumns)
	}
}

// A column that exists but holds only nils is a null finding, not a schema
// finding; one defect must fire one rule.
func TestAllNilColumnFiresOnlyNullRule(t *testing.T) {
	rows := cleanRows()
	for i := range rows {
		rows[i]["c"] = nil
	}
	report := Run(rows, barSpec())

	if !report.SchemaOK() {
		t.Errorf("schema rule flagged an all-nil column: %v", report.MissingColumns)
	}
	if report.NullCounts["c"] != len(rows) {
		t.Errorf("NullCounts[c] = %d, want %d", report.NullCounts["c"], len(rows))
	}
}

func TestDuplicateRows(t *testing.T) {
	rows := cleanRows()
	dup := model.Record{"symbol": "AAPL", "t": int64(2), "o": 1.0, "h": 2.0, "l": 0.5, "c": 1.5, "v": int64(1)}
	rows = append(rows, dup, dup)
	report := Run(rows, barSpec())
	if report.DuplicateCount != 2 {
		t.Errorf("DuplicateCount = %d, want 2", report.DuplicateCount)
	}
}

func TestPriceToleranceBand(t *testing.T) {
	rows := []model.Record{
		{"symbol": "X", "t": int64(1), "o": 9.995, "h": 9.99, "l": 10.00, "c": 9.99, "v": int64(1)},
	}
	spec := barSpec()

	spec.Tolerance = 0.0
	if report := Run(rows, spec); report.PricesOK() {
		t.Error("low=10.00 high=9.99 passed with zero tolerance")
	}

	spec.Tolerance = 0.02
	if report := Run(rows, spec); !report.PricesOK() {
		t.Errorf("sub-tolerance inversion rejected: %+v", report.PriceSample)
	}
}

func TestPriceClausesDecomposed(t *testing.T) {
	rows := cleanRows()
	// low above both high and close.
	rows = append(rows, model.Record{
		"symbol": "AAPL", "t": int64(9), "o": 12.0, "h": 10.0, "l": 11.0, "c": 10.5, "v": int64(1),
	})
	report := Run(rows, barSpec())
	if report.BadPriceRows != 1 {
		t.Fatalf("BadPriceRows = %d, want 1", report.BadPriceRows)
	}
	if len(report.PriceSample) != 1 {
		t.Fatalf("PriceSample size = %d, want 1", len(report.PriceSample))
	}
	v := report.PriceSample[0]
	if v.Key != "AAPL|9" {
		t.Errorf("violation key = %q, want AAPL|9", v.Key)
	}
	// One row can break several clauses; operators need each of them.
	want := map[string]bool{"low>high": true, "open>high": true, "low>close": true, "close>high": true}
	if len(v.Clauses) != len(want) {
		t.Fatalf("clauses = %v, want %v", v.Clauses, want)
	}
	for _, c := range v.Clauses {
		if !want[c] {
			t.Errorf("unexpected clause %q", c)
		}
	}
}

func TestPriceSampleBounded(t *testing.T) {
	var rows []model.Record
	for i := 0; i < 30; i++ {
		rows = append(rows, model.Record{
			"symbol": "X", "t": int64(i), "o": 10.0, "h": 9.0, "l": 10.0, "c": 9.5, "v": int64(1),
		})
	}
	spec := barSpec()
	spec.SampleLimit = 5
	report := Run(rows, spec)
	if report.BadPriceRows != 30 {
		t.Errorf("BadPriceRows = %d, want 30", report.BadPriceRows)
	}
	if len(report.PriceSample) != 5 {
		t.Errorf("PriceSample size = %d, want 5", len(report.PriceSample))
	}
}

func TestNegativeValues(t *testing.T) {
	rows := cleanRows()
	rows[0]["v"] = int64(-5)
	rows[2]["v"] = -1.0
	report := Run(rows, barSpec())
	if report.NonNegativeOK() {
		t.Fatal("non-negative rule passed with negative volumes")
	}
	if report.NegativeCounts["v"] != 2 {
		t.Errorf("NegativeCounts[v] = %d, want 2", report.NegativeCounts["v"])
	}
}

func TestRunDoesNotMutateInput(t *testing.T) {
	rows := cleanRows()
	rows[1]["c"] = nil
	Run(rows, barSpec())
	if rows[1]["c"] != nil {
		t.Error("Run mutated input rows")
	}
	if len(rows[0]) != 7 {
		t.Errorf("Run changed row width: %d", len(rows[0]))
	}
}
