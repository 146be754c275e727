package frame

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics for one numeric column.
type Summary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
}

// Describe computes count, mean, standard deviation, min and max over
// the non-null cells of every numeric column, in table order.
func (t *Table) Describe() []Summary {
	var out []Summary
	for _, c := range t.cols {
		if c.Kind != Float && c.Kind != Int {
			continue
		}
		var values []float64
		for i := 0; i < c.Len(); i++ {
			if c.Null[i] {
				continue
			}
			if c.Kind == Float {
				values = append(values, c.Floats[i])
			} else {
				values = append(values, float64(c.Ints[i]))
			}
		}
		s := Summary{Column: c.Name, Count: len(values)}
		if len(values) > 0 {
			s.Mean = stat.Mean(values, nil)
			s.Std = stat.StdDev(values, nil)
			s.Min = floats.Min(values)
			s.Max = floats.Max(values)
		}
		out = append(out, s)
	}
	return out
}
