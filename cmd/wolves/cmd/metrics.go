package cmd

import (
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/metrics"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/sysinfo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Print the host snapshot in Prometheus text format",
	Long: `Takes one host snapshot and writes it in the Prometheus exposition format,
suitable for the node_exporter textfile collector.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := prometheus.NewRegistry()
		reg.MustRegister(metrics.NewHostCollector(sysinfo.NewHostProvider(), viper.GetDuration("snapshot_timeout")))
		return metrics.WriteText(cmd.OutOrStdout(), reg)
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}
