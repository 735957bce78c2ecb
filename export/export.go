// Package export renders accepted records to tabular output.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/hazyhaar/listcrawl/crawl"
)

// WriteCSV writes records as CSV with a header row. The declared fields
// come first in the given order; any extra fields the extraction
// produced follow, sorted by name. Missing and null values render as
// empty cells.
func WriteCSV(w io.Writer, fields []string, records []crawl.Record) error {
	columns := columnsFor(fields, records)

	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}
	row := make([]string, len(columns))
	for i, rec := range records {
		for j, col := range columns {
			row[j] = cellString(rec[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("export: write record %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

// columnsFor returns the declared fields followed by the sorted extra
// keys present in any record.
func columnsFor(fields []string, records []crawl.Record) []string {
	columns := append([]string(nil), fields...)
	declared := make(map[string]bool, len(fields))
	for _, f := range fields {
		declared[f] = true
	}
	extraSet := make(map[string]bool)
	for _, rec := range records {
		for k := range rec {
			if !declared[k] && !extraSet[k] {
				extraSet[k] = true
			}
		}
	}
	extras := make([]string, 0, len(extraSet))
	for k := range extraSet {
		extras = append(extras, k)
	}
	sort.Strings(extras)
	return append(columns, extras...)
}

// cellString renders one extracted value for a CSV cell. JSON numbers
// arrive as float64; integral values must not pick up a decimal tail.
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
