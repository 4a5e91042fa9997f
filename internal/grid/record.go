package grid

import (
	"fmt"
	"sort"

	"github.com/tiendc/go-deepcopy"
)

// Record is one table row keyed by column name. Values are display strings and
// an empty string means "no value". A key absent from the map reads as "".
type Record map[string]string

// Get returns the value of column, or "" when the record has no such key.
func (r Record) Get(column string) string {
	return r[column]
}

// Values returns the record's values in column order.
func (r Record) Values(columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = r[col]
	}
	return out
}

// with returns a copy of r with column set to value. r itself is untouched.
func (r Record) with(column, value string) Record {
	next := make(Record, len(r))
	for k, v := range r {
		next[k] = v
	}
	next[column] = value
	return next
}

// blankRecord returns a record holding every column set to "".
func blankRecord(columns []string) Record {
	r := make(Record, len(columns))
	for _, col := range columns {
		r[col] = ""
	}
	return r
}

// conform builds a record with exactly the given columns, reading values from
// src. Keys outside the schema are dropped.
func conform(src Record, columns []string) Record {
	r := make(Record, len(columns))
	for _, col := range columns {
		r[col] = src[col]
	}
	return r
}

// ColumnsOf returns the keys of a record in sorted order. Callers that know the
// source order should pass it to [Store.Load] instead.
func ColumnsOf(r Record) []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// cloneRecords returns a deep copy of rows that shares no maps with the input.
func cloneRecords(rows []Record) []Record {
	out := make([]Record, 0, len(rows))
	if len(rows) == 0 {
		return out
	}
	if err := deepcopy.Copy(&out, rows); err != nil {
		panic(fmt.Sprintf("grid: copy records: %v", err))
	}
	return out
}
