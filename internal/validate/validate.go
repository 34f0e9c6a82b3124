// Package validate enforces data-quality invariants on row batches before
// they are accepted into the processed store: schema completeness, null
// freedom, duplicate freedom, OHLC price relations and non-negativity.
//
// One Run call applies every rule and aggregates every violation, so a
// single report carries the complete failure picture instead of stopping at
// the first broken rule.
package validate

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"optflow/internal/model"
)

// ErrValidation is the class of all rule failures.
var ErrValidation = errors.New("validation failed")

// DefaultSampleLimit bounds the offending-row sample in reports.
const DefaultSampleLimit = 10

// PriceColumns names the four OHLC columns checked for price relations.
type PriceColumns struct {
	Open  string
	High  string
	Low   string
	Close string
}

// Spec declares the invariant set a row batch must satisfy.
type Spec struct {
	// Required columns must be present (non-nil) in every row.
	Required []string
	// NonNull columns must have zero missing values.
	NonNull []string
	// DuplicateKey columns jointly identify a row; no two rows may agree
	// on all of them. Also used to render row keys in reports.
	DuplicateKey []string
	// NonNegative columns must hold no negative values.
	NonNegative []string
	// Price, when all four names are set, enables the OHLC relation check.
	Price PriceColumns
	// Tolerance absorbs sub-cent OHLC inversions caused by the vendor
	// rounding each field independently. Strict inequality would reject
	// otherwise-usable rows.
	Tolerance float64
	// SampleLimit bounds the offending-row sample (0 means default).
	SampleLimit int
}

func (s Spec) hasPriceCheck() bool {
	return s.Price.Open != "" && s.Price.High != "" && s.Price.Low != "" && s.Price.Close != ""
}

// PriceViolation records one row that broke the OHLC relations and which
// clauses fired. The clause decomposition lets an operator tell feed
// corruption (low above high) from rounding noise (close a hair above high).
type PriceViolation struct {
	Key     string
	Clauses []string
}

// Report is the outcome of one Run. It is created per call and consumed
// immediately; it is never persisted.
type Report struct {
	Rows int

	// MissingColumns lists required columns absent from every row.
	MissingColumns []string
	// NullCounts maps non-null columns to their missing-value counts.
	NullCounts map[string]int
	// DuplicateCount is the number of rows beyond the first occurrence of
	// each duplicate key.
	DuplicateCount int
	// BadPriceRows is the total number of rows violating any OHLC clause.
	BadPriceRows int
	// PriceSample is a bounded sample of the violating rows.
	PriceSample []PriceViolation
	// NegativeCounts maps non-negative columns to their negative-value counts.
	NegativeCounts map[string]int
}

// SchemaOK reports whether the schema completeness rule passed.
func (r Report) SchemaOK() bool { return len(r.MissingColumns) == 0 }

// NullsOK reports whether the null-freedom rule passed.
func (r Report) NullsOK() bool { return len(r.NullCounts) == 0 }

// DuplicatesOK reports whether the duplicate-freedom rule passed.
func (r Report) DuplicatesOK() bool { return r.DuplicateCount == 0 }

// PricesOK reports whether the OHLC relation rule passed.
func (r Report) PricesOK() bool { return r.BadPriceRows == 0 }

// NonNegativeOK reports whether the non-negativity rule passed.
func (r Report) NonNegativeOK() bool { return len(r.NegativeCounts) == 0 }

// Passed reports whether every rule passed.
func (r Report) Passed() bool {
	return r.SchemaOK() && r.NullsOK() && r.DuplicatesOK() && r.PricesOK() && r.NonNegativeOK()
}

// Err returns nil when the report passed, or an ErrValidation-wrapped
// summary of the failed rules.
func (r Report) Err() error {
	if r.Passed() {
		return nil
	}
	var parts []string
	if !r.SchemaOK() {
		parts = append(parts, fmt.Sprintf("missing columns %v", r.MissingColumns))
	}
	if !r.NullsOK() {
		parts = append(parts, fmt.Sprintf("null values %v", r.NullCounts))
	}
	if !r.DuplicatesOK() {
		parts = append(parts, fmt.Sprintf("%d duplicate rows", r.DuplicateCount))
	}
	if !r.PricesOK() {
		parts = append(parts, fmt.Sprintf("%d rows with inconsistent prices", r.BadPriceRows))
	}
	if !r.NonNegativeOK() {
		parts = append(parts, fmt.Sprintf("negative values %v", r.NegativeCounts))
	}
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(parts, "; "))
}

// Log surfaces the per-rule outcomes; failures are never swallowed silently.
func (r Report) Log(log *slog.Logger) {
	if r.Passed() {
		log.Info("validation passed", "rows", r.Rows)
		return
	}
	if !r.SchemaOK() {
		log.Error("schema incomplete", "missing", r.MissingColumns)
	}
	for col, n := range r.NullCounts {
		log.Error("null values", "column", col, "count", n)
	}
	if !r.DuplicatesOK() {
		log.Error("duplicate rows", "count", r.DuplicateCount)
	}
	for _, v := range r.PriceSample {
		log.Error("inconsistent prices", "key", v.Key, "clauses", strings.Join(v.Clauses, ","))
	}
	if !r.PricesOK() {
		log.Error("price check failed", "bad_rows", r.BadPriceRows, "sampled", len(r.PriceSample))
	}
	for col, n := range r.NegativeCounts {
		log.Error("negative values", "column", col, "count", n)
	}
}

// Run checks rows against spec. Rules run in a fixed order (schema, nulls,
// duplicates, prices, non-negativity) and the input is never mutated.
func Run(rows []model.Record, spec Spec) Report {
	report := Report{
		Rows:           len(rows),
		NullCounts:     map[string]int{},
		NegativeCounts: map[string]int{},
	}
	sampleLimit := spec.SampleLimit
	if sampleLimit <= 0 {
		sampleLimit = DefaultSampleLimit
	}

	checkSchema(rows, spec, &report)
	checkNulls(rows, spec, &report)
	checkDuplicates(rows, spec, &report)
	checkPrices(rows, spec, sampleLimit, &report)
	checkNonNegative(rows, spec, &report)
	return report
}

// checkSchema flags required columns present in no row at all. Presence is
// key presence, not non-nilness; a column that exists but holds only nils is
// the null rule's finding, not a schema defect.
func checkSchema(rows []model.Record, spec Spec, report *Report) {
	for _, col := range spec.Required {
		found := false
		for _, row := range rows {
			if _, ok := row[col]; ok {
				found = true
				break
			}
		}
		if !found {
			report.MissingColumns = append(report.MissingColumns, col)
		}
	}
}

func checkNulls(rows []model.Record, spec Spec, report *Report) {
	for _, col := range spec.NonNull {
		n := 0
		for _, row := range rows {
			if !row.Has(col) {
				n++
			}
		}
		if n > 0 {
			report.NullCounts[col] = n
		}
	}
}

func checkDuplicates(rows []model.Record, spec Spec, report *Report) {
	if len(spec.DuplicateKey) == 0 {
		return
	}
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		key := rowKey(row, spec.DuplicateKey, 0)
		if seen[key] {
			report.DuplicateCount++
		}
		seen[key] = true
	}
}

func checkPrices(rows []model.Record, spec Spec, sampleLimit int, report *Report) {
	if !spec.hasPriceCheck() {
		return
	}
	tol := spec.Tolerance
	for i, row := range rows {
		open, okO := row.Float(spec.Price.Open)
		high, okH := row.Float(spec.Price.High)
		low, okL := row.Float(spec.Price.Low)
		closep, okC := row.Float(spec.Price.Close)
		if !okO || !okH || !okL || !okC {
			// Missing prices are the null rule's business.
			continue
		}
		var clauses []string
		if low > high+tol {
			clauses = append(clauses, "low>high")
		}
		if low > open+tol {
			clauses = append(clauses, "low>open")
		}
		if open > high+tol {
			clauses = append(clauses, "open>high")
		}
		if low > closep+tol {
			clauses = append(clauses, "low>close")
		}
		if closep > high+tol {
			clauses = append(clauses, "close>high")
		}
		if len(clauses) == 0 {
			continue
		}
		report.BadPriceRows++
		if len(report.PriceSample) < sampleLimit {
			report.PriceSample = append(report.PriceSample, PriceViolation{
				Key:     rowKey(row, spec.DuplicateKey, i),
				Clauses: clauses,
			})
		}
	}
}

func checkNonNegative(rows []model.Record, spec Spec, report *Report) {
	for _, col := range spec.NonNegative {
		n := 0
		for _, row := range rows {
			if v, ok := row.Float(col); ok && v < 0 {
				n++
			}
		}
		if n > 0 {
			report.NegativeCounts[col] = n
		}
	}
}

// rowKey renders a row's identity from the duplicate-key columns, falling
// back to the row index.
func rowKey(row model.Record, keyCols []string, idx int) string {
	if len(keyCols) == 0 {
		return fmt.Sprintf("#%d", idx)
	}
	parts := make([]string, 0, len(keyCols))
	for _, col := range keyCols {
		parts = append(parts, fmt.Sprintf("%v", row[col]))
	}
	return strings.Join(parts, "|")
}
