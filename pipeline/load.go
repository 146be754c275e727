package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"accidentprep/frame"
)

// LoadConfig controls the CSV loader.
type LoadConfig struct {
	Path        string   `yaml:"path"`
	TimeColumns []string `yaml:"time_columns"`
}

// DefaultLoadConfig matches the accident dataset's three timestamp
// columns.
func DefaultLoadConfig(path string) LoadConfig {
	return LoadConfig{
		Path:        path,
		TimeColumns: []string{"Start_Time", "End_Time", "Weather_Timestamp"},
	}
}

// Load reads the CSV and re-types the declared timestamp columns from
// string to time. A non-null cell that fails every layout is fatal:
// an unparseable declared column signals a corrupt file. Null cells
// stay null.
func Load(cfg LoadConfig, log *zap.SugaredLogger) (*frame.Table, error) {
	table, err := frame.ReadCSV(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.Path, err)
	}

	parser := frame.NewTimeParser()
	for _, name := range cfg.TimeColumns {
		col, ok := table.Column(name)
		if !ok {
			return nil, fmt.Errorf("timestamp column %q not found", name)
		}
		if col.Kind != frame.String {
			return nil, fmt.Errorf("timestamp column %q is %s, want string", name, col.Kind)
		}
		parsed, err := parseTimeColumn(parser, col)
		if err != nil {
			return nil, err
		}
		if err := table.Replace(name, parsed); err != nil {
			return nil, err
		}
	}

	log.Infow("loaded dataset", "path", cfg.Path,
		"rows", table.NumRows(), "cols", table.NumCols())
	return table, nil
}

func parseTimeColumn(parser *frame.TimeParser, col *frame.Column) (*frame.Column, error) {
	values := make([]time.Time, col.Len())
	null := make([]bool, col.Len())
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			null[i] = true
			continue
		}
		parsed, err := parser.Parse(col.Strings[i])
		if err != nil {
			return nil, fmt.Errorf("column %q row %d: %w", col.Name, i, err)
		}
		values[i] = parsed
	}
	return frame.NewTimeColumn(col.Name, values, null), nil
}
