package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/sysinfo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var announceCmd = &cobra.Command{
	Use:   "announce [key=value ...]",
	Short: "Print host information framed by separator lines",
	Long: `Takes a host snapshot and prints it as aligned key/value lines between
two separator rules. Extra key=value pairs are printed alongside; host values
win when a key collides.`,
	RunE: runAnnounce,
}

func init() {
	rootCmd.AddCommand(announceCmd)
}

func runAnnounce(cmd *cobra.Command, args []string) error {
	preload, err := parsePairs(args)
	if err != nil {
		return err
	}
	preload["Using config file"] = ConfigFileUsed()

	ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("snapshot_timeout"))
	defer cancel()

	info, err := sysinfo.NewHostProvider().Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read system info: %w", err)
	}

	return newPrinter().Announce(info.ToMap(), preload)
}

func parsePairs(args []string) (map[string]string, error) {
	pairs := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid pair %q: expected key=value", arg)
		}
		pairs[k] = v
	}
	return pairs, nil
}
