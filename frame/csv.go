package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// nullTokens are the cell values treated as missing on load.
var nullTokens = map[string]bool{
	"":    true,
	"NA":  true,
	"NaN": true,
}

// IsNullToken reports whether a raw CSV cell represents a missing value.
func IsNullToken(s string) bool {
	return nullTokens[s]
}

// ReadCSV loads a delimited file into a Table, inferring a type per
// column: int, then float, then bool, falling back to string. A UTF-8
// byte order mark is tolerated.
func ReadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(transform.NewReader(file, unicode.UTF8BOM.NewDecoder()))
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	raw := make([][]string, len(header))
	nulls := make([][]bool, len(header))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		for i, cell := range record {
			raw[i] = append(raw[i], cell)
			nulls[i] = append(nulls[i], IsNullToken(cell))
		}
	}

	table := &Table{index: make(map[string]int)}
	for i, name := range header {
		col := inferColumn(name, raw[i], nulls[i])
		if err := table.AddColumn(col); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// inferColumn types a raw string column by trying int, float and bool
// parses over all non-null cells.
func inferColumn(name string, raw []string, null []bool) *Column {
	isInt, isFloat, isBool := true, true, true
	nonNull := 0
	for i, cell := range raw {
		if null[i] {
			continue
		}
		nonNull++
		if isInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			if _, err := strconv.ParseBool(cell); err != nil {
				isBool = false
			}
		}
	}
	if nonNull == 0 {
		// All-null columns stay string typed.
		isInt, isFloat, isBool = false, false, false
	}

	switch {
	case isInt:
		values := make([]int64, len(raw))
		for i, cell := range raw {
			if !null[i] {
				values[i], _ = strconv.ParseInt(cell, 10, 64)
			}
		}
		return NewIntColumn(name, values, null)
	case isFloat:
		values := make([]float64, len(raw))
		for i, cell := range raw {
			if !null[i] {
				values[i], _ = strconv.ParseFloat(cell, 64)
			}
		}
		return NewFloatColumn(name, values, null)
	case isBool:
		values := make([]bool, len(raw))
		for i, cell := range raw {
			if !null[i] {
				values[i], _ = strconv.ParseBool(cell)
			}
		}
		return NewBoolColumn(name, values, null)
	default:
		return NewStringColumn(name, append([]string(nil), raw...), null)
	}
}

// WriteCSV writes the table to path. Null cells become empty fields.
func (t *Table) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(t.ColumnNames()); err != nil {
		return err
	}
	record := make([]string, t.NumCols())
	for i := 0; i < t.NumRows(); i++ {
		for j, c := range t.cols {
			record[j] = c.CellString(i)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
