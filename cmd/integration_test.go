package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/mlstart-cli/internal/runs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resetFlags restores every flag of c to its default so state does not leak
// between invocations of the shared root command.
func resetFlags(c *cobra.Command) {
	c.Flags().VisitAll(func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	})
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCLI executes the root command with args and returns stdout.
func execCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := execCLIStderr(t, args...)
	return out, err
}

// execCLIStderr is execCLI that also returns stderr.
func execCLIStderr(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), errOut.String(), err
}

func mustExec(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCLI(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// isolateHome points HOME at a temp dir and drops any cached config.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() {
		os.Setenv("HOME", oldHome)
		cfg = nil
	})
	os.Setenv("HOME", home)
	cfg = nil
	return home
}

func writeIris(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("petal_length,petal_width,colour,species\n")
	for i := 0; i < 30; i++ {
		species, base := "setosa", 1.0
		if i%2 == 1 {
			species, base = "virginica", 5.0
		}
		fmt.Fprintf(&b, "%.1f,%.2f,%s,%s\n", base+float64(i%5)*0.1, base/3+float64(i)*0.01, []string{"pale", "deep"}[i%2], species)
	}
	p := filepath.Join(dir, "iris.csv")
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return p
}

func TestCLI_Run_SavesReportAndRecordsRun(t *testing.T) {
	home := isolateHome(t)
	data := writeIris(t, home)

	out := mustExec(t, "run", data, "--target", "species")
	if !strings.Contains(out, "Model Performance Report (Classification Task)") {
		t.Fatalf("report not printed:\n%s", out)
	}

	reportPath := filepath.Join(home, ".mlstart", "reports", "model_report_classification_iris.txt")
	b, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report not saved: %v", err)
	}
	if !strings.Contains(string(b), "Best Model:") {
		t.Fatalf("saved report incomplete")
	}

	recs, err := runs.NewStore(filepath.Join(home, ".mlstart", "runs")).List()
	if err != nil || len(recs) != 1 {
		t.Fatalf("expected one recorded run, got %d (%v)", len(recs), err)
	}
	if recs[0].ReportPath != reportPath {
		t.Fatalf("report path = %s", recs[0].ReportPath)
	}

	list := mustExec(t, "runs", "list")
	if !strings.Contains(list, recs[0].ShortID()) || !strings.Contains(list, "iris.csv") {
		t.Fatalf("runs list missing run:\n%s", list)
	}
	show := mustExec(t, "runs", "show", recs[0].ShortID())
	if !strings.Contains(show, "target: species") || !strings.Contains(show, "*Best*") {
		t.Fatalf("runs show incomplete:\n%s", show)
	}
}

func TestCLI_Run_JSONFormatAndNoSave(t *testing.T) {
	home := isolateHome(t)
	data := writeIris(t, home)
	outPath := filepath.Join(home, "out", "report.json")

	out := mustExec(t, "run", data, "-t", "species", "--format", "json", "-o", outPath)
	if !strings.Contains(out, `"best_model"`) {
		t.Fatalf("json not printed:\n%s", out)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Fatalf("json report not written: %v", err)
	}

	mustExec(t, "run", data, "-t", "species", "--no-save", "--quiet")
	if _, err := os.Stat(filepath.Join(home, ".mlstart", "reports")); !os.IsNotExist(err) {
		t.Fatalf("reports dir should not exist with --no-save")
	}
}

func TestCLI_Run_QuietSilencesOutput(t *testing.T) {
	home := isolateHome(t)
	data := writeIris(t, home)

	out, errOut, err := execCLIStderr(t, "run", data, "-t", "species", "--quiet")
	if err != nil {
		t.Fatalf("run --quiet failed: %v", err)
	}
	if out != "" || errOut != "" {
		t.Fatalf("expected no output with --quiet, got stdout %q stderr %q", out, errOut)
	}
	if _, err := os.Stat(filepath.Join(home, ".mlstart", "reports", "model_report_classification_iris.txt")); err != nil {
		t.Fatalf("report should still be saved: %v", err)
	}

	_, errOut, err = execCLIStderr(t, "run", data, "-t", "species")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(errOut, "✓ Saved report to") || !strings.Contains(errOut, "✓ Best model:") {
		t.Fatalf("progress lines missing from stderr:\n%s", errOut)
	}
}

func TestCLI_Run_Errors(t *testing.T) {
	home := isolateHome(t)
	data := writeIris(t, home)

	if _, err := execCLI(t, "run", data); err == nil {
		t.Fatalf("expected error without --target")
	}
	if _, err := execCLI(t, "run", data, "-t", "nope"); err == nil {
		t.Fatalf("expected error for unknown target")
	}
	if _, err := execCLI(t, "run", data, "-t", "species", "--format", "xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestCLI_Inspect(t *testing.T) {
	home := isolateHome(t)
	data := writeIris(t, home)

	out := mustExec(t, "inspect", data, "--target", "species")
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 30", "- colour: categorical", "Inferred task: classification"} {
		if !strings.Contains(out, want) {
			t.Fatalf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := isolateHome(t)

	mustExec(t, "config", "set", "max_classes", "5")
	b, err := os.ReadFile(filepath.Join(home, ".mlstart", "config.yaml"))
	if err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	if !strings.Contains(string(b), "max_classes: 5") {
		t.Fatalf("unexpected config file:\n%s", b)
	}

	cfg = nil
	out := mustExec(t, "config", "show")
	if !strings.Contains(out, "max_classes: 5") {
		t.Fatalf("show does not reflect saved value:\n%s", out)
	}

	if _, err := execCLI(t, "config", "set", "test_size", "2"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := execCLI(t, "config", "set", "bogus", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
