package model

// Record is one flattened row as a column-name → scalar mapping. Fetchers
// produce Records from the vendor's nested snapshot shape and the validator
// checks them without knowing which dataset they came from.
type Record map[string]any

// Has reports whether the column is present with a non-nil value.
func (r Record) Has(column string) bool {
	v, ok := r[column]
	return ok && v != nil
}

// Float returns the column as a float64 when it holds any numeric scalar.
func (r Record) Float(column string) (float64, bool) {
	switch v := r[column].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// String returns the column rendered as a string for report keys.
func (r Record) String(column string) (string, bool) {
	if v, ok := r[column].(string); ok {
		return v, true
	}
	return "", false
}
