package cmd

import (
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/logging"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/timers"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var (
	timeName     string
	timeQuantity int64
	timeRepeat   int
)

var timeCmd = &cobra.Command{
	Use:   "time [flags] -- <command> [args...]",
	Short: "Time a command and report its throughput",
	Long: `Runs a command under a named timer and reports how long it took. With
--repeat the command runs several times, each run under its own timer, and
the total is reported as well. The rate is --quantity per second; it
defaults to the number of runs.`,
	Example: `  wolves time --name import --quantity 5000 -- ./import.sh data.csv
  wolves time --repeat 10 -o table -- curl -s http://localhost:8080/health`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTime,
}

func init() {
	rootCmd.AddCommand(timeCmd)

	timeCmd.Flags().StringVarP(&timeName, "name", "n", "command", "timer name")
	timeCmd.Flags().Int64VarP(&timeQuantity, "quantity", "q", 0, "units of work done (default: number of runs)")
	timeCmd.Flags().IntVarP(&timeRepeat, "repeat", "r", 1, "number of runs")
}

// TimeReport is the result of a timed command
type TimeReport struct {
	Command    []string      `json:"command" yaml:"command"`
	Runs       int           `json:"runs" yaml:"runs"`
	Quantity   int64         `json:"quantity" yaml:"quantity"`
	DurationMS int64         `json:"duration_ms" yaml:"duration_ms"`
	Rate       int64         `json:"rate" yaml:"rate"`
	Timers     []timers.Stat `json:"timers" yaml:"timers"`
	Error      string        `json:"error,omitempty" yaml:"error,omitempty"`

	// rate of each individual run, keyed by timer name
	perRun map[string]int64
}

func runTime(cmd *cobra.Command, args []string) error {
	if timeRepeat < 1 {
		return fmt.Errorf("--repeat must be at least 1, got %d", timeRepeat)
	}
	if _, err := timers.RateOf(timeQuantity, 1); err != nil {
		return fmt.Errorf("--quantity: %w", err)
	}

	logger := newLogger().WithField("timer", timeName)
	format := OutputFormat()

	// keep stdout clean for structured reports
	childOut := cmd.OutOrStdout()
	if format == "json" || format == "yaml" {
		childOut = cmd.ErrOrStderr()
	}

	reg := timers.NewRegistry(timeName)
	runs, runErr := timeRuns(cmd, reg, args, childOut, logger)

	report, err := buildReport(reg, args, runs)
	if err != nil {
		return err
	}
	if runErr != nil {
		report.Error = runErr.Error()
	}

	if err := writeTimeReport(cmd.OutOrStdout(), format, report); err != nil {
		return err
	}
	return runErr
}

// timeRuns executes the command up to timeRepeat times, stopping at the
// first failure. Each run gets its own timer when repeating.
func timeRuns(cmd *cobra.Command, reg *timers.Registry, args []string, out io.Writer, logger *logging.Logger) (int, error) {
	runs := 0
	for i := 1; i <= timeRepeat; i++ {
		run := runTimerName(timeName, i)
		if timeRepeat > 1 {
			reg.Add(run)
		}

		logger.Debug("Running command", logging.Fields{"run": i, "command": strings.Join(args, " ")})
		c := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
		c.Stdin = cmd.InOrStdin()
		c.Stdout = out
		c.Stderr = cmd.ErrOrStderr()
		err := c.Run()

		runs++
		if timeRepeat > 1 {
			ms, _ := reg.End(run)
			logger.Debug("Run finished", logging.Fields{"run": i, "duration_ms": ms})
		}
		if err != nil {
			logger.Warn("Command failed", logging.Fields{"run": i, "error": err.Error()})
			return runs, fmt.Errorf("run %d failed: %w", i, err)
		}
	}
	return runs, nil
}

func runTimerName(name string, run int) string {
	if timeRepeat == 1 {
		return name
	}
	return name + "#" + strconv.Itoa(run)
}

func buildReport(reg *timers.Registry, args []string, runs int) (*TimeReport, error) {
	total, err := reg.End(timeName)
	if err != nil {
		return nil, err
	}

	quantity := timeQuantity
	if quantity == 0 {
		quantity = int64(runs)
	}
	rate, err := reg.Rate(timeName, quantity)
	if err != nil {
		return nil, err
	}

	report := &TimeReport{
		Command:    args,
		Runs:       runs,
		Quantity:   quantity,
		DurationMS: total,
		Rate:       rate,
		Timers:     reg.Stats(),
		perRun:     make(map[string]int64),
	}
	if runs > 1 {
		per := quantity / int64(runs)
		for i := 1; i <= runs; i++ {
			name := runTimerName(timeName, i)
			report.perRun[name] = timers.OrUnknown(reg.Rate(name, per))
		}
	}
	return report, nil
}

func writeTimeReport(w io.Writer, format string, report *TimeReport) error {
	if ok, err := writeStructured(w, format, report); ok {
		return err
	}

	if format == "table" {
		table := tablewriter.NewWriter(w)
		table.Header("Timer", "Duration (ms)", "Rate (/s)", "State")
		for _, st := range report.Timers {
			rate := report.Rate
			if st.Name != timeName {
				rate = report.perRun[st.Name]
			}
			state := "ended"
			if st.Running {
				state = "running"
			}
			table.Append(st.Name, strconv.FormatInt(st.DurationMS, 10), strconv.FormatInt(rate, 10), state)
		}
		return table.Render()
	}

	return newPrinter().Sayf("%s: %d run(s) in %d ms, %d/s (quantity %d)",
		timeName, report.Runs, report.DurationMS, report.Rate, report.Quantity)
}
