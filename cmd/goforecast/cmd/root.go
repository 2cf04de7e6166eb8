package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix prefixes environment variables overriding flags, so that
// --horizon can be set with GOFORECAST_HORIZON.
const envPrefix = "GOFORECAST"

// NewRootCommand builds the command tree. Each call returns an
// independent tree with its own configuration.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "goforecast",
		Short:         "Backtest forecasting models",
		Long:          `Fit forecasting models on CSV time series and evaluate them by rolling-origin backtesting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "YAML config file")
	root.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	root.PersistentFlags().Bool("dev", false, "human readable logs")

	root.AddCommand(newBacktestCommand())
	root.AddCommand(newCompareCommand())
	root.AddCommand(newModelsCommand())
	return root
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newViper layers flags over GOFORECAST_* variables over the config file
// named by --config.
func newViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return v, nil
}
