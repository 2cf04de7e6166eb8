package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/timeseries"
)

// settings is the resolved configuration of a backtest run.
type settings struct {
	File       string   `mapstructure:"file"`
	DateColumn string   `mapstructure:"date-column"`
	DateFormat string   `mapstructure:"date-format"`
	Columns    []string `mapstructure:"columns"`

	Model         string   `mapstructure:"model"`
	Models        []string `mapstructure:"models"`
	RankBy        string   `mapstructure:"rank-by"`
	Targets       []string `mapstructure:"targets"`
	Period        int      `mapstructure:"period"`
	Order         string   `mapstructure:"order"`
	SeasonalOrder string   `mapstructure:"seasonal-order"`
	InputLength   int      `mapstructure:"input-length"`
	OutputLength  int      `mapstructure:"output-length"`
	Epochs        int      `mapstructure:"epochs"`
	Seed          uint64   `mapstructure:"seed"`

	Horizon    int      `mapstructure:"horizon"`
	Start      string   `mapstructure:"start"`
	Stride     int      `mapstructure:"stride"`
	LastPoints bool     `mapstructure:"last-points"`
	Metrics    []string `mapstructure:"metrics"`
	Verbose    bool     `mapstructure:"verbose"`

	Output          string `mapstructure:"output"`
	MetricsTextfile string `mapstructure:"metrics-textfile"`

	LogLevel string `mapstructure:"log-level"`
	Dev      bool   `mapstructure:"dev"`
}

func loadSettings(v *viper.Viper) (*settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	s.Targets = splitList(s.Targets)
	s.Columns = splitList(s.Columns)
	s.Metrics = splitList(s.Metrics)
	s.Models = splitList(s.Models)
	if s.File == "" {
		return nil, fmt.Errorf("no input file: %w", forecasting.ErrConfiguration)
	}
	return &s, nil
}

// splitList flattens comma separated entries, which is how lists arrive
// from environment variables and single flag values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// componentIDs turns target names into identifiers. Names that are
// not components of series but parse as integers are taken as ordinals.
func componentIDs(series *timeseries.Series, names []string) []timeseries.ComponentID {
	known := make(map[string]bool, series.Width())
	for _, c := range series.Components() {
		known[c] = true
	}
	ids := make([]timeseries.ComponentID, len(names))
	for i, name := range names {
		if idx, err := strconv.Atoi(name); err == nil && !known[name] {
			ids[i] = timeseries.Index(idx)
			continue
		}
		ids[i] = timeseries.Name(name)
	}
	return ids
}

// applyStart reads --start as a fraction of the series in (0, 1) or as a
// timestamp.
func applyStart(cfg *forecasting.Config, start string) error {
	if start == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(start, 64); err == nil {
		cfg.StartFraction = f
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, start); err == nil {
			cfg.Start = t
			return nil
		}
	}
	return fmt.Errorf("start %q is neither a fraction nor a timestamp: %w", start, forecasting.ErrConfiguration)
}

// parseInts reads a comma separated list of exactly n integers.
func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("%q needs %d comma separated values: %w", s, n, forecasting.ErrConfiguration)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", s, forecasting.ErrConfiguration)
		}
		out[i] = v
	}
	return out, nil
}
