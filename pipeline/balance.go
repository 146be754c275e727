package pipeline

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"

	"accidentprep/frame"
)

// BalanceConfig controls target binarization and class balancing.
type BalanceConfig struct {
	SeverityColumn string `yaml:"severity_column"`
	LabelColumn    string `yaml:"label_column"`
	// SeriousLevel is the severity value mapped to label 1.
	SeriousLevel int64 `yaml:"serious_level"`
	// Cap bounds the per-class row count of the balanced sample.
	Cap int `yaml:"cap"`
	// Random switches from head-truncation to seeded uniform sampling.
	// Truncation is the reference behavior and positionally biased
	// toward earlier records.
	Random bool  `yaml:"random"`
	Seed   int64 `yaml:"seed"`
}

func DefaultBalanceConfig() BalanceConfig {
	return BalanceConfig{
		SeverityColumn: "Severity",
		LabelColumn:    "Severity4",
		SeriousLevel:   4,
		Cap:            110000,
	}
}

// Balancer collapses the four-level severity into a binary label and
// emits a class-balanced sample: N rows of each class where N is the
// smaller class count, capped.
type Balancer struct {
	cfg BalanceConfig
	log *zap.SugaredLogger
}

func NewBalancer(cfg BalanceConfig, log *zap.SugaredLogger) *Balancer {
	return &Balancer{cfg: cfg, log: log}
}

func (b *Balancer) Name() string { return "balance" }

func (b *Balancer) Apply(ctx context.Context, t *frame.Table) (*frame.Table, error) {
	severity, ok := t.Column(b.cfg.SeverityColumn)
	if !ok {
		return nil, columnMissing(b.cfg.SeverityColumn)
	}

	labels := make([]int64, severity.Len())
	for i := 0; i < severity.Len(); i++ {
		if severity.IsNull(i) {
			return nil, fmt.Errorf("null %s at row %d", b.cfg.SeverityColumn, i)
		}
		level, err := severityLevel(severity, i)
		if err != nil {
			return nil, err
		}
		if level == b.cfg.SeriousLevel {
			labels[i] = 1
		}
	}

	out, err := t.Drop(b.cfg.SeverityColumn)
	if err != nil {
		return nil, err
	}
	if err := out.AddColumn(frame.NewIntColumn(b.cfg.LabelColumn, labels, nil)); err != nil {
		return nil, err
	}

	var normal, serious []int
	for i, label := range labels {
		if label == 1 {
			serious = append(serious, i)
		} else {
			normal = append(normal, i)
		}
	}
	n := min(len(normal), len(serious))
	if b.cfg.Cap > 0 && n > b.cfg.Cap {
		n = b.cfg.Cap
	}
	b.log.Infow("balanced classes",
		"per_class", n, "normal_available", len(normal), "serious_available", len(serious))

	normal = b.selectRows(normal, n)
	serious = b.selectRows(serious, n)

	balanced, err := frame.Concat(out.Take(normal), out.Take(serious))
	if err != nil {
		return nil, err
	}
	return balanced, nil
}

// selectRows picks n indices per the configured strategy, returned in
// original row order.
func (b *Balancer) selectRows(indices []int, n int) []int {
	if !b.cfg.Random {
		return indices[:n]
	}
	shuffled := append([]int(nil), indices...)
	rng := rand.New(rand.NewSource(b.cfg.Seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	picked := shuffled[:n]
	sort.Ints(picked)
	return picked
}

func severityLevel(c *frame.Column, i int) (int64, error) {
	switch c.Kind {
	case frame.Int:
		return c.Ints[i], nil
	case frame.Float:
		return int64(c.Floats[i]), nil
	default:
		return 0, columnKindMismatch(c.Name, c.Kind, frame.Int)
	}
}
