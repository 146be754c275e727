package pipeline

import (
	"context"

	"go.uber.org/zap"

	"accidentprep/frame"
)

// PruneConfig names the columns removed before modelling.
type PruneConfig struct {
	// Leakage columns carry no pre-outcome signal (identifier, free
	// text) or can only be known after the accident has concluded.
	Leakage []string `yaml:"leakage"`
	// AlwaysDrop columns are removed unconditionally: the dataset is
	// single-country and Turning_Loop is false throughout.
	AlwaysDrop []string `yaml:"always_drop"`
}

func DefaultPruneConfig() PruneConfig {
	return PruneConfig{
		Leakage:    []string{"ID", "Description", "Distance(mi)", "End_Time", "End_Lat", "End_Lng"},
		AlwaysDrop: []string{"Country", "Turning_Loop"},
	}
}

// Pruner removes leakage columns, the unconditional drops, and any
// remaining column with a single distinct non-null value.
type Pruner struct {
	cfg PruneConfig
	log *zap.SugaredLogger
}

func NewPruner(cfg PruneConfig, log *zap.SugaredLogger) *Pruner {
	return &Pruner{cfg: cfg, log: log}
}

func (p *Pruner) Name() string { return "prune" }

func (p *Pruner) Apply(ctx context.Context, t *frame.Table) (*frame.Table, error) {
	out, err := t.Drop(p.cfg.Leakage...)
	if err != nil {
		return nil, err
	}
	out, err = out.Drop(p.cfg.AlwaysDrop...)
	if err != nil {
		return nil, err
	}

	if out.NumRows() == 0 {
		return out, nil
	}
	var constant []string
	for _, name := range out.ColumnNames() {
		n, err := out.NUnique(name)
		if err != nil {
			return nil, err
		}
		if n == 1 {
			constant = append(constant, name)
		}
	}
	if len(constant) > 0 {
		p.log.Infow("dropping constant columns", "columns", constant)
		out, err = out.Drop(constant...)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
