package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"accidentprep/db"
	"accidentprep/frame"
	"accidentprep/logging"
	"accidentprep/pipeline"
	"accidentprep/report"
)

type Config struct {
	Input  string `yaml:"input"`
	Output struct {
		CleanCSV    string `yaml:"clean_csv"`
		BalancedCSV string `yaml:"balanced_csv"`
		Database    string `yaml:"database"`
		Plots       string `yaml:"plots"`
	} `yaml:"output"`
	Log     logging.Config `yaml:"log"`
	Resolve struct {
		LowMissingThreshold float64 `yaml:"low_missing_threshold"`
	} `yaml:"resolve"`
	Balance struct {
		Cap    int   `yaml:"cap"`
		Random bool  `yaml:"random"`
		Seed   int64 `yaml:"seed"`
	} `yaml:"balance"`
	Temporal struct {
		LeapAware bool `yaml:"leap_aware"`
	} `yaml:"temporal"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	input := flag.String("input", "", "input CSV path (overrides config)")
	cleanOut := flag.String("clean_out", "", "cleaned CSV output path (overrides config)")
	balancedOut := flag.String("balanced_out", "", "balanced CSV output path (overrides config)")
	balanceCap := flag.Int("cap", 0, "per-class balancing cap (overrides config)")
	lowMissing := flag.Float64("low_missing", 0, "low-missingness row-drop threshold (overrides config)")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyOverrides(config, *input, *cleanOut, *balancedOut, *balanceCap, *lowMissing)
	if config.Input == "" {
		log.Fatal("input CSV path is required (config `input` or -input)")
	}

	logger, err := logging.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	table, err := pipeline.Load(pipeline.DefaultLoadConfig(config.Input), logger)
	if err != nil {
		log.Fatalf("Load failed: %v", err)
	}

	resolveCfg := pipeline.DefaultResolveConfig()
	if config.Resolve.LowMissingThreshold > 0 {
		resolveCfg.LowMissingThreshold = config.Resolve.LowMissingThreshold
	}
	temporalCfg := pipeline.DefaultTemporalConfig()
	temporalCfg.LeapAware = config.Temporal.LeapAware

	cleaning := pipeline.New(logger,
		pipeline.NewPruner(pipeline.DefaultPruneConfig(), logger),
		pipeline.NewWeatherNormalizer(pipeline.DefaultWeatherConfig(), logger),
		pipeline.NewTemporalExtractor(temporalCfg, logger),
		pipeline.NewResolver(resolveCfg, logger),
	)
	cleaned, err := cleaning.Run(ctx, table)
	if err != nil {
		log.Fatalf("Cleaning failed: %v", err)
	}
	for _, s := range cleaned.Describe() {
		logger.Debugw("column summary", "column", s.Column,
			"count", s.Count, "mean", s.Mean, "std", s.Std, "min", s.Min, "max", s.Max)
	}

	balanceCfg := pipeline.DefaultBalanceConfig()
	if config.Balance.Cap > 0 {
		balanceCfg.Cap = config.Balance.Cap
	}
	balanceCfg.Random = config.Balance.Random
	balanceCfg.Seed = config.Balance.Seed

	balancer := pipeline.NewBalancer(balanceCfg, logger)
	balanced, err := balancer.Apply(ctx, cleaned)
	if err != nil {
		log.Fatalf("Balancing failed: %v", err)
	}

	if err := writeOutputs(config, cleaned, balanced); err != nil {
		log.Fatalf("Writing outputs failed: %v", err)
	}

	if config.Output.Plots != "" {
		reporter := report.NewReporter(report.DefaultConfig(config.Output.Plots), logger)
		if err := reporter.Render(balanced); err != nil {
			log.Fatalf("Plot rendering failed: %v", err)
		}
	}

	logger.Infow("done",
		"cleaned_rows", cleaned.NumRows(), "balanced_rows", balanced.NumRows())
}

func writeOutputs(config *Config, cleaned, balanced *frame.Table) error {
	for _, out := range []struct {
		path  string
		table *frame.Table
	}{
		{config.Output.CleanCSV, cleaned},
		{config.Output.BalancedCSV, balanced},
	} {
		if out.path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(out.path), 0o755); err != nil {
			return err
		}
		if err := out.table.WriteCSV(out.path); err != nil {
			return err
		}
	}

	if config.Output.Database != "" {
		if err := db.InitDB(config.Output.Database); err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveTable("accidents_clean", cleaned); err != nil {
			return err
		}
		if err := db.SaveTable("accidents_balanced", balanced); err != nil {
			return err
		}
	}
	return nil
}

func applyOverrides(config *Config, input, cleanOut, balancedOut string, balanceCap int, lowMissing float64) {
	if input != "" {
		config.Input = input
	}
	if cleanOut != "" {
		config.Output.CleanCSV = cleanOut
	}
	if balancedOut != "" {
		config.Output.BalancedCSV = balancedOut
	}
	if balanceCap > 0 {
		config.Balance.Cap = balanceCap
	}
	if lowMissing > 0 {
		config.Resolve.LowMissingThreshold = lowMissing
	}
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file: run on defaults and flags alone.
			return &Config{}, nil
		}
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
