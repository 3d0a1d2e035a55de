package frame

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
)

// Kind is the storage type of a value column. Values are held as float64
// in memory regardless of kind; the kind controls domain truncation and
// CSV rendering after casting.
type Kind uint8

const (
	Float64 Kind = iota
	Float32
	Int64
	Uint16
	Uint32
	Uint64
)

// Column is one named value series. A missing value is NaN.
type Column struct {
	Name   string
	Kind   Kind
	Values []float64
}

// Frame is a table keyed by an unsigned ElapsedTime column plus zero or
// more value columns. Time may be nil for a freshly extracted table that
// has not been normalized yet; all value columns always share one length.
type Frame struct {
	Time    []uint64
	Columns []Column
}

func New() *Frame { return &Frame{} }

// Rows returns the row count. The key column wins when present.
func (f *Frame) Rows() int {
	if f.Time != nil {
		return len(f.Time)
	}
	if len(f.Columns) > 0 {
		return len(f.Columns[0].Values)
	}
	return 0
}

func (f *Frame) IsEmpty() bool { return f.Rows() == 0 }

// Width returns the number of value columns (the key column excluded).
func (f *Frame) Width() int { return len(f.Columns) }

// AddColumn appends a value column. The caller guarantees the length
// matches the frame's row count.
func (f *Frame) AddColumn(name string, values []float64) {
	f.Columns = append(f.Columns, Column{Name: name, Values: values})
}

// SetColumn replaces the column by name, or appends it when absent.
func (f *Frame) SetColumn(name string, values []float64) {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			f.Columns[i].Values = values
			f.Columns[i].Kind = Float64
			return
		}
	}
	f.AddColumn(name, values)
}

// RemoveColumn drops the named value column if present.
func (f *Frame) RemoveColumn(name string) {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			f.Columns = append(f.Columns[:i], f.Columns[i+1:]...)
			return
		}
	}
}

// Column returns the values of the named column.
func (f *Frame) Column(name string) ([]float64, bool) {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			return f.Columns[i].Values, true
		}
	}
	return nil, false
}

func (f *Frame) HasColumn(name string) bool {
	_, ok := f.Column(name)
	return ok
}

// ColumnNames returns value column names in frame order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		names[i] = c.Name
	}
	return names
}

// SetKind marks the storage kind of the named column.
func (f *Frame) SetKind(name string, kind Kind) {
	for i := range f.Columns {
		if f.Columns[i].Name == name {
			f.Columns[i].Kind = kind
			return
		}
	}
}

// SortByTime stable-sorts all rows by the key column.
func (f *Frame) SortByTime() {
	f.applyOrder(f.sortedOrder(func(i, j int) bool { return f.Time[i] < f.Time[j] }))
}

// SortByColumn stable-sorts all rows by a value column, missing values
// first (matching the original pipeline's null-first sort).
func (f *Frame) SortByColumn(name string) error {
	vals, ok := f.Column(name)
	if !ok {
		return fmt.Errorf("no such column: %s", name)
	}
	f.applyOrder(f.sortedOrder(func(i, j int) bool {
		vi, vj := vals[i], vals[j]
		ni, nj := math.IsNaN(vi), math.IsNaN(vj)
		switch {
		case ni && nj:
			return false
		case ni:
			return true
		case nj:
			return false
		default:
			return vi < vj
		}
	}))
	return nil
}

func (f *Frame) sortedOrder(less func(i, j int) bool) []int {
	order := make([]int, f.Rows())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return less(order[a], order[b]) })
	return order
}

func (f *Frame) applyOrder(order []int) {
	if f.Time != nil {
		newTime := make([]uint64, len(order))
		for i, r := range order {
			newTime[i] = f.Time[r]
		}
		f.Time = newTime
	}
	for ci := range f.Columns {
		old := f.Columns[ci].Values
		vals := make([]float64, len(order))
		for i, r := range order {
			vals[i] = old[r]
		}
		f.Columns[ci].Values = vals
	}
}

// WriteCSV writes the frame with ElapsedTime first, missing values as
// empty cells, integer-kind columns without a fractional part.
func (f *Frame) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := make([]string, 0, 1+len(f.Columns))
	if f.Time != nil {
		header = append(header, "ElapsedTime")
	}
	header = append(header, f.ColumnNames()...)
	if err := w.Write(header); err != nil {
		return err
	}

	rows := f.Rows()
	record := make([]string, 0, len(header))
	for r := 0; r < rows; r++ {
		record = record[:0]
		if f.Time != nil {
			record = append(record, strconv.FormatUint(f.Time[r], 10))
		}
		for ci := range f.Columns {
			record = append(record, formatValue(f.Columns[ci].Values[r], f.Columns[ci].Kind))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}

func formatValue(v float64, kind Kind) string {
	if math.IsNaN(v) {
		return ""
	}
	switch kind {
	case Int64:
		return strconv.FormatInt(int64(v), 10)
	case Uint16, Uint32, Uint64:
		return strconv.FormatUint(uint64(v), 10)
	case Float32:
		return strconv.FormatFloat(float64(float32(v)), 'f', -1, 32)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
