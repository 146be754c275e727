package pipeline

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"accidentprep/frame"
)

// windCanonical collapses the raw wind labels onto an 8-point compass
// plus CALM and VAR. Exact, case-sensitive equality; anything not in
// the table (including the already-canonical intermediate points such
// as NE or SW) passes through unchanged.
var windCanonical = map[string]string{
	"Calm":     "CALM",
	"West":     "W",
	"WSW":      "W",
	"WNW":      "W",
	"South":    "S",
	"SSW":      "S",
	"SSE":      "S",
	"North":    "N",
	"NNW":      "N",
	"NNE":      "N",
	"East":     "E",
	"ESE":      "E",
	"ENE":      "E",
	"Variable": "VAR",
}

// IndicatorRule derives one binary weather flag from the free-text
// condition: the flag is set when the text contains any keyword,
// case-insensitively. Rules are evaluated independently, so one row
// may set several flags.
type IndicatorRule struct {
	Name     string
	Keywords []string
}

// DefaultIndicatorRules covers the conditions most associated with
// weather-related crashes: wet pavement, winter conditions and fog.
func DefaultIndicatorRules() []IndicatorRule {
	return []IndicatorRule{
		{Name: "Clear", Keywords: []string{"clear"}},
		{Name: "Cloud", Keywords: []string{"cloud", "overcast"}},
		{Name: "Rain", Keywords: []string{"rain", "storm"}},
		{Name: "Heavy_Rain", Keywords: []string{"heavy rain", "rain shower", "heavy t-storm", "heavy thunderstorms"}},
		{Name: "Snow", Keywords: []string{"snow", "sleet", "ice"}},
		{Name: "Heavy_Snow", Keywords: []string{"heavy snow", "heavy sleet", "heavy ice pellets", "snow showers", "squalls"}},
		{Name: "Fog", Keywords: []string{"fog"}},
	}
}

// Matches reports whether the rule fires for the given condition text.
func (r IndicatorRule) Matches(condition string) bool {
	lower := strings.ToLower(condition)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// WeatherConfig controls the categorical normalizer.
type WeatherConfig struct {
	WindColumn   string `yaml:"wind_column"`
	SourceColumn string `yaml:"source_column"`
	DropSource   bool   `yaml:"drop_source"`
}

func DefaultWeatherConfig() WeatherConfig {
	return WeatherConfig{
		WindColumn:   "Wind_Direction",
		SourceColumn: "Weather_Condition",
		DropSource:   true,
	}
}

// WeatherNormalizer canonicalizes wind direction and derives the
// indicator flags from the free-text weather condition. Where the
// source text is missing the derived flags are missing too: unrecorded
// weather is not clear weather.
type WeatherNormalizer struct {
	cfg   WeatherConfig
	rules []IndicatorRule
	log   *zap.SugaredLogger
}

func NewWeatherNormalizer(cfg WeatherConfig, log *zap.SugaredLogger) *WeatherNormalizer {
	return &WeatherNormalizer{cfg: cfg, rules: DefaultIndicatorRules(), log: log}
}

func (w *WeatherNormalizer) Name() string { return "weather" }

func (w *WeatherNormalizer) Apply(ctx context.Context, t *frame.Table) (*frame.Table, error) {
	out := t.DropIfPresent() // shallow rebuild keeps the input untouched

	wind, ok := out.Column(w.cfg.WindColumn)
	if !ok {
		return nil, columnMissing(w.cfg.WindColumn)
	}
	if wind.Kind != frame.String {
		return nil, columnKindMismatch(w.cfg.WindColumn, wind.Kind, frame.String)
	}
	mapped := make([]string, wind.Len())
	null := make([]bool, wind.Len())
	for i := 0; i < wind.Len(); i++ {
		if wind.IsNull(i) {
			null[i] = true
			continue
		}
		value := wind.Strings[i]
		if canonical, ok := windCanonical[value]; ok {
			value = canonical
		}
		mapped[i] = value
	}
	if err := out.Replace(w.cfg.WindColumn, frame.NewStringColumn(w.cfg.WindColumn, mapped, null)); err != nil {
		return nil, err
	}

	source, ok := out.Column(w.cfg.SourceColumn)
	if !ok {
		return nil, columnMissing(w.cfg.SourceColumn)
	}
	if source.Kind != frame.String {
		return nil, columnKindMismatch(w.cfg.SourceColumn, source.Kind, frame.String)
	}
	for _, rule := range w.rules {
		values := make([]float64, source.Len())
		flagNull := make([]bool, source.Len())
		for i := 0; i < source.Len(); i++ {
			if source.IsNull(i) {
				flagNull[i] = true
				continue
			}
			if rule.Matches(source.Strings[i]) {
				values[i] = 1
			}
		}
		if err := out.AddColumn(frame.NewFloatColumn(rule.Name, values, flagNull)); err != nil {
			return nil, err
		}
	}

	if w.cfg.DropSource {
		var err error
		out, err = out.Drop(w.cfg.SourceColumn)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
