// Package report renders aggregates as console tables, a Markdown report,
// CSV files and bar charts.
package report

import (
	"sort"
	"strconv"
	"strings"

	"apdados/internal/aggregate"
)

// Options controls how an aggregate is presented.
type Options struct {
	// SortDesc orders entries by value, highest first. Ties keep insertion order.
	SortDesc bool
	// SortKeys orders entries by key, ascending, comparing numeric keys as numbers.
	// It is ignored when SortDesc is set.
	SortKeys bool
	// Top keeps the first Top entries after sorting. Zero keeps all.
	Top int
}

// Apply returns the entries of agg sorted and truncated per opts.
// agg itself is not modified.
func Apply(agg *aggregate.Aggregate, opts Options) []aggregate.Entry {
	entries := agg.Entries()

	switch {
	case opts.SortDesc:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Value > entries[j].Value
		})
	case opts.SortKeys:
		sort.SliceStable(entries, func(i, j int) bool {
			return keyLess(entries[i].Key, entries[j].Key)
		})
	}

	if opts.Top > 0 && len(entries) > opts.Top {
		entries = entries[:opts.Top]
	}

	return entries
}

func keyLess(a, b string) bool {
	na, errA := strconv.Atoi(a)
	nb, errB := strconv.Atoi(b)

	switch {
	case errA == nil && errB == nil:
		return na < nb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}

	return strings.Compare(a, b) < 0
}

// FormatValue renders a tally: counts as integers, amounts with two decimals.
func FormatValue(kind aggregate.Kind, v float64) string {
	if kind == aggregate.Amount {
		return strconv.FormatFloat(v, 'f', 2, 64)
	}

	return strconv.FormatFloat(v, 'f', 0, 64)
}
