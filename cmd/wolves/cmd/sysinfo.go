package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/sysinfo"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Show a host snapshot",
	Long: `Reports host name, OS and kernel versions, CPU core counts, memory, swap
and mounted disks. Use --output to choose text, json, yaml or table.`,
	RunE: runSysinfo,
}

func init() {
	rootCmd.AddCommand(sysinfoCmd)
	sysinfoCmd.Flags().Bool("all-partitions", false, "include pseudo and duplicate filesystems")
}

func runSysinfo(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all-partitions")

	ctx, cancel := context.WithTimeout(cmd.Context(), viper.GetDuration("snapshot_timeout"))
	defer cancel()

	provider := &sysinfo.HostProvider{AllPartitions: all}
	info, err := provider.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read system info: %w", err)
	}

	out := cmd.OutOrStdout()
	format := OutputFormat()
	if ok, err := writeStructured(out, format, info); ok {
		return err
	}
	if format == "table" {
		return renderSysinfoTable(out, info)
	}
	return newPrinter().HeaderLines(info.ToMap())
}

func renderSysinfoTable(w io.Writer, info *sysinfo.SystemInfo) error {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")
	table.Append("System Name", info.SystemName)
	table.Append("Kernel Version", info.KernelVersion)
	table.Append("OS Version", info.OSVersion)
	table.Append("Hostname", info.Hostname)
	table.Append("CPU Cores", strconv.Itoa(info.CPUCores))
	table.Append("CPU Virtual Cores", strconv.Itoa(info.CPUVirtualCores))
	table.Append("Memory", fmt.Sprintf("%s / %s", humanize.IBytes(info.UsedMemory), humanize.IBytes(info.TotalMemory)))
	table.Append("Swap", fmt.Sprintf("%s / %s", humanize.IBytes(info.UsedSwap), humanize.IBytes(info.TotalSwap)))
	if err := table.Render(); err != nil {
		return err
	}

	if len(info.Disks) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	disks := tablewriter.NewWriter(w)
	disks.Header("Mountpoint", "Device", "Type", "File System", "Free")
	for _, d := range info.Disks {
		disks.Append(d.Mountpoint, d.Device, d.Kind, d.FileSystem, humanize.IBytes(d.AvailableBytes))
	}
	return disks.Render()
}
