package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"accidentprep/frame"
)

// Stage is one pure Table -> Table transformation. Stages must not
// mutate the table they receive.
type Stage interface {
	Name() string
	Apply(ctx context.Context, t *frame.Table) (*frame.Table, error)
}

// Pipeline composes stages in order. The pipeline owns sequencing;
// stages know nothing about each other.
type Pipeline struct {
	stages []Stage
	log    *zap.SugaredLogger
}

func New(log *zap.SugaredLogger, stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages, log: log}
}

// Add appends a stage.
func (p *Pipeline) Add(s Stage) *Pipeline {
	p.stages = append(p.stages, s)
	return p
}

func columnMissing(name string) error {
	return fmt.Errorf("column %q not found", name)
}

func columnKindMismatch(name string, got, want frame.Kind) error {
	return fmt.Errorf("column %q is %s, want %s", name, got, want)
}

// Run threads the table through every stage, logging row and column
// deltas. The first stage error aborts the run.
func (p *Pipeline) Run(ctx context.Context, t *frame.Table) (*frame.Table, error) {
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, cols := t.NumRows(), t.NumCols()
		start := time.Now()
		next, err := stage.Apply(ctx, t)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.Name(), err)
		}
		p.log.Infow("stage complete",
			"stage", stage.Name(),
			"rows", fmt.Sprintf("%d -> %d", rows, next.NumRows()),
			"cols", fmt.Sprintf("%d -> %d", cols, next.NumCols()),
			"elapsed", time.Since(start),
		)
		t = next
	}
	return t, nil
}
