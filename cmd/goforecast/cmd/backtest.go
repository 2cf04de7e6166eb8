package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sartorproj/goforecast/forecasting"
	"github.com/sartorproj/goforecast/internal/logging"
	"github.com/sartorproj/goforecast/metrics"
	"github.com/sartorproj/goforecast/timeseries"
)

func newBacktestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Backtest a model on a CSV file",
		Example: `  goforecast backtest --file sales.csv --model naive-drift --horizon 3 --start 0.6
  goforecast backtest --file load.csv --model window-model --targets load --horizon 6 --metrics mae,rmse`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := newViper(cmd)
			if err != nil {
				return err
			}
			s, err := loadSettings(v)
			if err != nil {
				return err
			}
			return runBacktest(cmd.OutOrStdout(), s)
		},
	}

	addBacktestFlags(cmd)
	cmd.Flags().String("model", "naive-drift", "model to backtest (see goforecast models)")
	cmd.Flags().String("output", "text", "report format: text, json or csv")
	cmd.Flags().String("metrics-textfile", "", "write Prometheus metrics of the run to this file")
	return cmd
}

// addBacktestFlags registers the data, model and backtest flags shared by
// backtest and compare.
func addBacktestFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("file", "", "CSV file to load")
	f.String("date-column", "", "date column (default: detected)")
	f.String("date-format", "2006-01-02", "layout of the date column")
	f.StringSlice("columns", nil, "value columns to load (default: all)")

	f.StringSlice("targets", nil, "target components, by name or ordinal")
	f.Int("period", 0, "seasonal period")
	f.String("order", "1,1,0", "ARIMA order p,d,q")
	f.String("seasonal-order", "1,1,0,12", "seasonal order P,D,Q,m")
	f.Int("input-length", 0, "window model input length")
	f.Int("output-length", 0, "window model output length")
	f.Int("epochs", 0, "window model training epochs")
	f.Uint64("seed", 0, "window model seed")

	f.Int("horizon", 1, "steps forecast per window")
	f.String("start", "0.5", "first split: fraction of the series or timestamp")
	f.Int("stride", 0, "distance between split points")
	f.Bool("last-points", false, "keep only the last step of every window")
	f.StringSlice("metrics", []string{"r2", "mae"}, "metrics to report")
	f.Bool("verbose", false, "log every window")
}

func runBacktest(w io.Writer, s *settings) error {
	logger, series, err := prepare(s)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	model, err := buildModel(s.Model, modelParams{
		settings: s,
		targets:  componentIDs(series, s.Targets),
		width:    series.Width(),
		logger:   logger,
	})
	if err != nil {
		return err
	}

	cfg, err := backtestConfig(s, logger)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	cfg.Instrumentation = forecasting.NewInstrumentation(reg)

	result, err := forecasting.Backtest(model, series, nil, cfg)
	if err != nil {
		return err
	}

	if s.MetricsTextfile != "" {
		if err := prometheus.WriteToTextfile(s.MetricsTextfile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return report(w, s.Output, result)
}

// prepare builds the logger and loads the input series.
func prepare(s *settings) (*zap.Logger, *timeseries.Series, error) {
	logger, err := logging.New(s.LogLevel, s.Dev)
	if err != nil {
		return nil, nil, err
	}

	opts := timeseries.DefaultCSVOptions()
	opts.DateColumn = s.DateColumn
	opts.ValueColumns = s.Columns
	if s.DateFormat != "" {
		opts.DateFormat = s.DateFormat
	}
	series, err := timeseries.LoadCSV(s.File, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", s.File, err)
	}
	logger.Debug("series loaded",
		zap.String("file", s.File),
		zap.Int("rows", series.Len()),
		zap.Strings("components", series.Components()))
	return logger, series, nil
}

func backtestConfig(s *settings, logger *zap.Logger) (*forecasting.Config, error) {
	cfg := forecasting.DefaultConfig()
	cfg.Horizon = s.Horizon
	cfg.Stride = s.Stride
	cfg.LastPointsOnly = s.LastPoints
	cfg.Verbose = s.Verbose
	cfg.Logger = logger
	if err := applyStart(cfg, s.Start); err != nil {
		return nil, err
	}
	if len(s.Metrics) > 0 {
		var err error
		if cfg.Metrics, err = metrics.Parse(s.Metrics...); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// jsonReport is the document written by --output json.
type jsonReport struct {
	RunID    string             `json:"run_id"`
	Model    string             `json:"model"`
	Scores   map[string]float64 `json:"scores"`
	Windows  int                `json:"windows"`
	Forecast []forecastRow      `json:"forecast"`
}

type forecastRow struct {
	Time     time.Time `json:"time"`
	Forecast []float64 `json:"forecast"`
	Actual   []float64 `json:"actual"`
}

func report(w io.Writer, format string, r *forecasting.Result) error {
	switch format {
	case "", "text":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "model\t%s\n", r.Model)
		fmt.Fprintf(tw, "run\t%s\n", r.RunID)
		fmt.Fprintf(tw, "windows\t%d\n", len(r.Windows))
		fmt.Fprintf(tw, "points\t%d\n", r.Forecast.Len())
		names := make([]string, 0, len(r.Scores))
		for name := range r.Scores {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(tw, "%s\t%.6g\n", name, r.Scores[name])
		}
		return tw.Flush()

	case "json":
		doc := jsonReport{
			RunID:   r.RunID,
			Model:   r.Model,
			Scores:  r.Scores,
			Windows: len(r.Windows),
		}
		for i, t := range r.Forecast.Timestamps() {
			doc.Forecast = append(doc.Forecast, forecastRow{
				Time:     t,
				Forecast: r.Forecast.Row(i),
				Actual:   r.Truth.Row(i),
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)

	case "csv":
		return timeseries.WriteCSV(w, r.Forecast)

	default:
		return fmt.Errorf("unknown output format %q: %w", format, forecasting.ErrConfiguration)
	}
}
