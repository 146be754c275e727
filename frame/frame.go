package frame

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind identifies the value type of a Column.
type Kind int

const (
	Float Kind = iota
	Int
	Bool
	String
	Time
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

// Column is a single named, typed column with a per-cell null mask.
// Only the value slice matching Kind is populated.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Ints    []int64
	Bools   []bool
	Strings []string
	Times   []time.Time
	Null    []bool
}

func NewFloatColumn(name string, values []float64, null []bool) *Column {
	return &Column{Name: name, Kind: Float, Floats: values, Null: normalizeNull(null, len(values))}
}

func NewIntColumn(name string, values []int64, null []bool) *Column {
	return &Column{Name: name, Kind: Int, Ints: values, Null: normalizeNull(null, len(values))}
}

func NewBoolColumn(name string, values []bool, null []bool) *Column {
	return &Column{Name: name, Kind: Bool, Bools: values, Null: normalizeNull(null, len(values))}
}

func NewStringColumn(name string, values []string, null []bool) *Column {
	return &Column{Name: name, Kind: String, Strings: values, Null: normalizeNull(null, len(values))}
}

func NewTimeColumn(name string, values []time.Time, null []bool) *Column {
	return &Column{Name: name, Kind: Time, Times: values, Null: normalizeNull(null, len(values))}
}

func normalizeNull(null []bool, n int) []bool {
	if null == nil {
		return make([]bool, n)
	}
	return null
}

// Len returns the number of cells in the column.
func (c *Column) Len() int {
	switch c.Kind {
	case Float:
		return len(c.Floats)
	case Int:
		return len(c.Ints)
	case Bool:
		return len(c.Bools)
	case String:
		return len(c.Strings)
	case Time:
		return len(c.Times)
	default:
		return 0
	}
}

// IsNull reports whether cell i is missing.
func (c *Column) IsNull(i int) bool {
	return c.Null[i]
}

// CellString formats cell i for CSV output and row keys.
// Null cells format as the empty string.
func (c *Column) CellString(i int) string {
	if c.Null[i] {
		return ""
	}
	switch c.Kind {
	case Float:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	case Int:
		return strconv.FormatInt(c.Ints[i], 10)
	case Bool:
		if c.Bools[i] {
			return "True"
		}
		return "False"
	case String:
		return c.Strings[i]
	case Time:
		return c.Times[i].Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// clone returns a deep copy of the column.
func (c *Column) clone() *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Null: append([]bool(nil), c.Null...)}
	switch c.Kind {
	case Float:
		out.Floats = append([]float64(nil), c.Floats...)
	case Int:
		out.Ints = append([]int64(nil), c.Ints...)
	case Bool:
		out.Bools = append([]bool(nil), c.Bools...)
	case String:
		out.Strings = append([]string(nil), c.Strings...)
	case Time:
		out.Times = append([]time.Time(nil), c.Times...)
	}
	return out
}

// take returns a copy of the column restricted to the given row indices.
func (c *Column) take(indices []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind, Null: make([]bool, len(indices))}
	switch c.Kind {
	case Float:
		out.Floats = make([]float64, len(indices))
		for j, i := range indices {
			out.Floats[j] = c.Floats[i]
		}
	case Int:
		out.Ints = make([]int64, len(indices))
		for j, i := range indices {
			out.Ints[j] = c.Ints[i]
		}
	case Bool:
		out.Bools = make([]bool, len(indices))
		for j, i := range indices {
			out.Bools[j] = c.Bools[i]
		}
	case String:
		out.Strings = make([]string, len(indices))
		for j, i := range indices {
			out.Strings[j] = c.Strings[i]
		}
	case Time:
		out.Times = make([]time.Time, len(indices))
		for j, i := range indices {
			out.Times[j] = c.Times[i]
		}
	}
	for j, i := range indices {
		out.Null[j] = c.Null[i]
	}
	return out
}

// Table is an ordered collection of equal-length columns.
type Table struct {
	cols  []*Column
	index map[string]int
}

// New builds a table from columns, validating lengths and name uniqueness.
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int)}
	for _, c := range cols {
		if err := t.AddColumn(c); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// NumRows returns the row count. An empty table has zero rows.
func (t *Table) NumRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return t.cols[0].Len()
}

// NumCols returns the column count.
func (t *Table) NumCols() int {
	return len(t.cols)
}

// ColumnNames returns column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column.
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AddColumn appends a column. The column length must match the table.
func (t *Table) AddColumn(c *Column) error {
	if _, exists := t.index[c.Name]; exists {
		return fmt.Errorf("column %q already exists", c.Name)
	}
	if len(t.cols) > 0 && c.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.NumRows())
	}
	if len(c.Null) != c.Len() {
		return fmt.Errorf("column %q null mask has %d entries, want %d", c.Name, len(c.Null), c.Len())
	}
	t.index[c.Name] = len(t.cols)
	t.cols = append(t.cols, c)
	return nil
}

// Replace swaps the named column in place, keeping its position.
func (t *Table) Replace(name string, c *Column) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("column %q not found", name)
	}
	if c.Len() != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, c.Len(), t.NumRows())
	}
	if c.Name != name {
		if _, exists := t.index[c.Name]; exists {
			return fmt.Errorf("column %q already exists", c.Name)
		}
		delete(t.index, name)
		t.index[c.Name] = i
	}
	t.cols[i] = c
	return nil
}

// Drop returns a new table without the named columns.
// A name that does not exist is an error.
func (t *Table) Drop(names ...string) (*Table, error) {
	dropped := make(map[string]bool, len(names))
	for _, name := range names {
		if !t.HasColumn(name) {
			return nil, fmt.Errorf("column %q not found", name)
		}
		dropped[name] = true
	}
	out := &Table{index: make(map[string]int)}
	for _, c := range t.cols {
		if dropped[c.Name] {
			continue
		}
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out, nil
}

// DropIfPresent drops the named columns that exist, ignoring the rest.
func (t *Table) DropIfPresent(names ...string) *Table {
	var present []string
	for _, name := range names {
		if t.HasColumn(name) {
			present = append(present, name)
		}
	}
	out, _ := t.Drop(present...)
	return out
}

// Filter returns a new table containing rows where keep[i] is true.
func (t *Table) Filter(keep []bool) *Table {
	var indices []int
	for i, k := range keep {
		if k {
			indices = append(indices, i)
		}
	}
	return t.Take(indices)
}

// Take returns a new table restricted to the given row indices, in order.
func (t *Table) Take(indices []int) *Table {
	out := &Table{index: make(map[string]int)}
	for _, c := range t.cols {
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.take(indices))
	}
	return out
}

// rowKey serializes row i across all columns for duplicate detection.
func (t *Table) rowKey(i int) string {
	var b strings.Builder
	for _, c := range t.cols {
		if c.Null[i] {
			b.WriteByte(0x00)
		} else {
			b.WriteString(c.CellString(i))
		}
		b.WriteByte(0x1f)
	}
	return b.String()
}

// DropDuplicates removes exact full-row duplicates, keeping the first
// occurrence in row order.
func (t *Table) DropDuplicates() *Table {
	seen := make(map[string]struct{}, t.NumRows())
	var indices []int
	for i := 0; i < t.NumRows(); i++ {
		key := t.rowKey(i)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		indices = append(indices, i)
	}
	return t.Take(indices)
}

// NUnique returns the count of distinct non-null values in a column.
func (t *Table) NUnique(name string) (int, error) {
	c, ok := t.Column(name)
	if !ok {
		return 0, fmt.Errorf("column %q not found", name)
	}
	seen := make(map[string]struct{})
	for i := 0; i < c.Len(); i++ {
		if c.Null[i] {
			continue
		}
		seen[c.CellString(i)] = struct{}{}
	}
	return len(seen), nil
}

// MissingFraction returns the fraction of null cells in a column.
func (t *Table) MissingFraction(name string) (float64, error) {
	c, ok := t.Column(name)
	if !ok {
		return 0, fmt.Errorf("column %q not found", name)
	}
	if c.Len() == 0 {
		return 0, nil
	}
	missing := 0
	for i := 0; i < c.Len(); i++ {
		if c.Null[i] {
			missing++
		}
	}
	return float64(missing) / float64(c.Len()), nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{index: make(map[string]int, len(t.index))}
	for _, c := range t.cols {
		out.index[c.Name] = len(out.cols)
		out.cols = append(out.cols, c.clone())
	}
	return out
}

// Concat appends the rows of b to a. Both tables must have identical
// schemas in identical order.
func Concat(a, b *Table) (*Table, error) {
	if a.NumCols() != b.NumCols() {
		return nil, fmt.Errorf("schema mismatch: %d vs %d columns", a.NumCols(), b.NumCols())
	}
	out := &Table{index: make(map[string]int)}
	for i, ca := range a.cols {
		cb := b.cols[i]
		if ca.Name != cb.Name || ca.Kind != cb.Kind {
			return nil, fmt.Errorf("schema mismatch at column %d: %s/%s vs %s/%s",
				i, ca.Name, ca.Kind, cb.Name, cb.Kind)
		}
		merged := ca.clone()
		switch ca.Kind {
		case Float:
			merged.Floats = append(merged.Floats, cb.Floats...)
		case Int:
			merged.Ints = append(merged.Ints, cb.Ints...)
		case Bool:
			merged.Bools = append(merged.Bools, cb.Bools...)
		case String:
			merged.Strings = append(merged.Strings, cb.Strings...)
		case Time:
			merged.Times = append(merged.Times, cb.Times...)
		}
		merged.Null = append(merged.Null, cb.Null...)
		out.index[merged.Name] = len(out.cols)
		out.cols = append(out.cols, merged)
	}
	return out, nil
}
