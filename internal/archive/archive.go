// Package archive persists row batches as partitioned parquet tables. A
// partition is uniquely keyed by (source, symbol, label) and maps to one
// file; writing a key again replaces the prior content. There are no append
// semantics and no cross-partition transactions. Writers to different
// partitions may run concurrently; writers to the same partition must be
// serialized by the caller.
package archive

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"
)

// ErrNotFound is returned when a partition does not exist.
var ErrNotFound = errors.New("archive: partition not found")

// Key identifies one partition.
type Key struct {
	Source string // vendor name, e.g. "massive"
	Symbol string // ticker or underlying
	Label  string // as-of date or from_to range
}

// DateLabel renders an as-of date partition label.
func DateLabel(d time.Time) string {
	return d.Format("2006-01-02")
}

// RangeLabel renders a from/to partition label.
func RangeLabel(from, to time.Time) string {
	return from.Format("2006-01-02") + "_to_" + to.Format("2006-01-02")
}

// Store is one archive layer rooted at a directory. The raw and processed
// stores are two Stores with different roots.
type Store struct {
	Root string
}

// Path returns the partition's file path under the store root.
func (s Store) Path(k Key) string {
	return filepath.Join(s.Root, k.Source, k.Symbol, k.Label+".parquet")
}

// Write persists rows to the partition, replacing any prior content.
func Write[T any](s Store, k Key, rows []T) error {
	path := s.Path(k)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("archive: create partition dir: %w", err)
	}
	if err := parquet.WriteFile(path, rows); err != nil {
		return fmt.Errorf("archive: write %s: %w", path, err)
	}
	return nil
}

// Read retrieves the partition's rows, or ErrNotFound when absent.
func Read[T any](s Store, k Key) ([]T, error) {
	path := s.Path(k)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("archive: stat %s: %w", path, err)
	}
	rows, err := parquet.ReadFile[T](path)
	if err != nil {
		return nil, fmt.Errorf("archive: read %s: %w", path, err)
	}
	return rows, nil
}
