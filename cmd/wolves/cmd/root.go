package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/logging"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/verbose"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wolves",
	Short: "Host snapshots, named timers and styled status output",
	Long: `wolves is a small helper for scripts and benchmarks: it reports host
information, times commands with named timers and derives throughput rates,
and prints styled, timestamped status lines.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.wolves/config.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")
	flags.Bool("no-color", false, "disable coloured output")
	flags.StringP("output", "o", "text", "output format: text, json, yaml or table")
	flags.Int("width", 0, "separator width (default: terminal width)")

	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_format", flags.Lookup("log-format"))
	viper.BindPFlag("no_color", flags.Lookup("no-color"))
	viper.BindPFlag("output", flags.Lookup("output"))
	viper.BindPFlag("width", flags.Lookup("width"))

	viper.SetDefault("listen", ":9400")
	viper.SetDefault("snapshot_timeout", "10s")
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		// Search config in home directory with name ".wolves/config" (without extension)
		viper.AddConfigPath(filepath.Join(home, ".wolves"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("wolves")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Running without a config file is fine
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config: %v\n", err)
			os.Exit(1)
		}
	}
}

// ConfigFileUsed returns the config file that was loaded, if any
func ConfigFileUsed() string {
	if f := viper.ConfigFileUsed(); f != "" {
		return f
	}
	return "none"
}

// OutputFormat returns the requested output format
func OutputFormat() string {
	return strings.ToLower(viper.GetString("output"))
}

func newLogger() *logging.Logger {
	return logging.NewLogger(
		logging.ParseLevel(viper.GetString("log_level")),
		viper.GetString("log_format") == "json",
	)
}

func newPrinter() *verbose.Printer {
	opts := []verbose.Option{verbose.WithWidth(viper.GetInt("width"))}
	if viper.GetBool("no_color") {
		opts = append(opts, verbose.WithColor(false))
	}
	return verbose.New(rootCmd.OutOrStdout(), opts...)
}
