package cmd

import (
	"github.com/spf13/cobra"

	"github.com/jsphweid/hlayout/config"
	"github.com/jsphweid/hlayout/constants"
	"github.com/jsphweid/hlayout/file"
	"github.com/jsphweid/hlayout/logging"
	"github.com/jsphweid/hlayout/score"
)

var (
	metricsPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:     "hlayout",
	Short:   "Horizontal notation layout",
	Long:    `hlayout works out bar widths and element positions for multi-staff scores and exports them to LilyPond.`,
	Version: constants.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Verbose = verbose
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&metricsPath, "metrics", constants.GetMetricsPath(), "YAML file with rendering metrics")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func loadMetrics() config.Metrics {
	m, err := config.LoadMetrics(metricsPath)
	cobra.CheckErr(err)
	return m
}

func loadComposition(path string) *score.Composition {
	comp, err := file.Load(path, loadMetrics())
	cobra.CheckErr(err)
	return comp
}
