package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/timers"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func requireBinary(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestParsePairs(t *testing.T) {
	pairs, err := parsePairs([]string{"Job=import", "Rows=5000", "Empty="})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pairs["Job"] != "import" || pairs["Rows"] != "5000" || pairs["Empty"] != "" {
		t.Errorf("Unexpected pairs: %v", pairs)
	}

	for _, bad := range []string{"novalue", "=value"} {
		if _, err := parsePairs([]string{bad}); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestWriteStructured(t *testing.T) {
	v := map[string]int{"runs": 3}

	var buf bytes.Buffer
	ok, err := writeStructured(&buf, "json", v)
	if !ok || err != nil {
		t.Fatalf("json: ok=%v err=%v", ok, err)
	}
	if !strings.Contains(buf.String(), `"runs": 3`) {
		t.Errorf("Unexpected JSON: %s", buf.String())
	}

	buf.Reset()
	ok, err = writeStructured(&buf, "yaml", v)
	if !ok || err != nil {
		t.Fatalf("yaml: ok=%v err=%v", ok, err)
	}
	if buf.String() != "runs: 3\n" {
		t.Errorf("Unexpected YAML: %q", buf.String())
	}

	buf.Reset()
	ok, _ = writeStructured(&buf, "text", v)
	if ok || buf.Len() != 0 {
		t.Error("Expected text format to be left to the caller")
	}
}

func TestSayCommand(t *testing.T) {
	out, err := execute(t, "say", "--no-color", "-o", "text", "deploy", "done")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "[ ") || !strings.HasSuffix(out, "] :: deploy done\n") {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestTimeCommandJSON(t *testing.T) {
	requireBinary(t, "true")

	out, err := execute(t, "time", "-o", "json", "--name", "noop", "--repeat", "1", "--quantity", "0", "--", "true")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var report TimeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Failed to parse report: %v\n%s", err, out)
	}
	if report.Runs != 1 || report.Quantity != 1 {
		t.Errorf("Expected 1 run with quantity 1, got %+v", report)
	}
	if len(report.Timers) != 1 || report.Timers[0].Name != "noop" || report.Timers[0].Running {
		t.Errorf("Expected one ended timer named noop, got %+v", report.Timers)
	}
	if report.Rate != timeRateFor(report.Quantity, report.DurationMS) {
		t.Errorf("Rate %d does not match duration %d", report.Rate, report.DurationMS)
	}
}

func TestTimeCommandRepeatYAML(t *testing.T) {
	requireBinary(t, "true")

	out, err := execute(t, "time", "-o", "yaml", "--name", "loop", "--repeat", "3", "--quantity", "30", "--", "true")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	var report TimeReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Failed to parse report: %v\n%s", err, out)
	}
	if report.Runs != 3 || report.Quantity != 30 {
		t.Errorf("Expected 3 runs with quantity 30, got %+v", report)
	}

	names := make([]string, 0, len(report.Timers))
	for _, st := range report.Timers {
		names = append(names, st.Name)
	}
	if strings.Join(names, ",") != "loop,loop#1,loop#2,loop#3" {
		t.Errorf("Unexpected timers: %v", names)
	}
}

func TestTimeCommandFailure(t *testing.T) {
	requireBinary(t, "false")

	out, err := execute(t, "time", "-o", "json", "--name", "fails", "--repeat", "2", "--quantity", "0", "--", "false")
	if err == nil {
		t.Fatal("Expected error from failing command")
	}

	var report TimeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Failed to parse report: %v\n%s", err, out)
	}
	if report.Runs != 1 || report.Error == "" {
		t.Errorf("Expected a single failed run in report, got %+v", report)
	}
}

func TestTimeCommandRejectsBadRepeat(t *testing.T) {
	if _, err := execute(t, "time", "--repeat", "0", "--", "true"); err == nil {
		t.Error("Expected error for --repeat 0")
	}
}

func TestTimeCommandRejectsOversizedQuantity(t *testing.T) {
	_, err := execute(t, "time", "--repeat", "1", "--quantity", "9223372036854775807", "--", "true")
	if !errors.Is(err, timers.ErrQuantityTooLarge) {
		t.Errorf("Expected ErrQuantityTooLarge, got %v", err)
	}
}

func timeRateFor(quantity, ms int64) int64 {
	if ms == 0 {
		ms = 1
	}
	return quantity * 1000 / ms
}
