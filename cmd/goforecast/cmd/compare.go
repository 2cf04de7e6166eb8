package cmd

import (
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sartorproj/goforecast/forecasting"
)

func newCompareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Backtest several models on the same data and rank them",
		Example: `  goforecast compare --file sales.csv --models naive-drift,arima,theta --horizon 3 --metrics rmse,mae,mape --rank-by mape`,
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
			return runCompare(cmd.OutOrStdout(), s)
		},
	}

	addBacktestFlags(cmd)
	cmd.Flags().StringSlice("models",
		[]string{"naive-mean", "naive-drift", "arima", "auto-arima", "exponential-smoothing", "theta"},
		"models to compare")
	cmd.Flags().String("rank-by", "mae", "metric used to order the table")
	return cmd
}

type comparison struct {
	model  string
	result *forecasting.Result
	err    error
}

func runCompare(w io.Writer, s *settings) error {
	if len(s.Models) == 0 {
		return fmt.Errorf("no models to compare: %w", forecasting.ErrConfiguration)
	}
	if !slices.Contains(s.Metrics, s.RankBy) {
		return fmt.Errorf("rank metric %q is not one of %v: %w", s.RankBy, s.Metrics, forecasting.ErrConfiguration)
	}

	logger, series, err := prepare(s)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	targets := componentIDs(series, s.Targets)
	rows := make([]comparison, 0, len(s.Models))
	for _, name := range s.Models {
		model, err := buildModel(name, modelParams{settings: s, targets: targets, width: series.Width(), logger: logger})
		if err != nil {
			return err
		}
		cfg, err := backtestConfig(s, logger)
		if err != nil {
			return err
		}
		result, err := forecasting.Backtest(model, series, nil, cfg)
		if err != nil {
			logger.Warn("backtest failed", zap.String("model", name), zap.Error(err))
		}
		rows = append(rows, comparison{model: name, result: result, err: err})
	}

	// Failed models go last; r2 ranks descending, error metrics ascending.
	higherIsBetter := s.RankBy == "r2"
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.err == nil) != (b.err == nil) {
			return a.err == nil
		}
		if a.err != nil {
			return false
		}
		if higherIsBetter {
			return a.result.Scores[s.RankBy] > b.result.Scores[s.RankBy]
		}
		return a.result.Scores[s.RankBy] < b.result.Scores[s.RankBy]
	})

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "model\twindows\t%s\n", strings.Join(s.Metrics, "\t"))
	for _, row := range rows {
		if row.err != nil {
			fmt.Fprintf(tw, "%s\t-\terror: %v\n", row.model, row.err)
			continue
		}
		scores := make([]string, len(s.Metrics))
		for i, metric := range s.Metrics {
			scores[i] = fmt.Sprintf("%.6g", row.result.Scores[metric])
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\n", row.result.Model, len(row.result.Windows), strings.Join(scores, "\t"))
	}
	return tw.Flush()
}
