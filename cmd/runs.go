package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/mlstart-cli/internal/report"
	"github.com/KaramelBytes/mlstart-cli/internal/runs"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded pipeline runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		recs, err := runs.NewStore(c.RunsDir).List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(recs) == 0 {
			fmt.Fprintln(out, "(no runs)")
			return nil
		}
		if runsLimit > 0 && len(recs) > runsLimit {
			recs = recs[:runsLimit]
		}
		for _, r := range recs {
			task, best := "", ""
			if r.Summary != nil {
				task, best = r.Summary.Task, r.Summary.BestModel
			}
			fmt.Fprintf(out, "- %s  %s  %s  %s  best: %s\n",
				r.ShortID(), r.CreatedAt.Local().Format("2006-01-02 15:04"),
				runewidth.FillRight(runewidth.Truncate(filepath.Base(r.Dataset), 24, "…"), 24),
				runewidth.FillRight(task, 14), best)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one run (full id or unique prefix)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		r, err := runs.NewStore(c.RunsDir).Load(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "id: %s\n", r.ID)
		fmt.Fprintf(out, "created_at: %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "dataset: %s\n", r.Dataset)
		fmt.Fprintf(out, "target: %s\n", r.Target)
		fmt.Fprintf(out, "rows: %d (train %d, test %d)\n", r.Rows, r.TrainRows, r.TestRows)
		fmt.Fprintf(out, "features: %s\n", strings.Join(r.Features, ", "))
		if r.ReportPath != "" {
			fmt.Fprintf(out, "report: %s\n", r.ReportPath)
		}
		if r.Summary == nil {
			return nil
		}
		fmt.Fprintf(out, "task: %s\n", r.Summary.Task)
		fmt.Fprintf(out, "best_model: %s\n\n", r.Summary.BestModel)
		header := runewidth.FillRight("Model", 25)
		for _, m := range r.Summary.Metrics {
			header += runewidth.FillRight(m, 12)
		}
		fmt.Fprintln(out, header+"Average Rank")
		for _, m := range r.Summary.Models {
			row := runewidth.FillRight(m.Name, 25)
			for _, name := range r.Summary.Metrics {
				v, _ := m.Scores.Get(name)
				row += runewidth.FillRight(report.FormatValue(v), 12)
			}
			row += fmt.Sprintf("%.2f", m.AverageRank)
			if m.Best {
				row += " *Best*"
			}
			fmt.Fprintln(out, row)
		}
		for _, w := range r.Warnings {
			fmt.Fprintf(out, "⚠ %s\n", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsListCmd.Flags().IntVarP(&runsLimit, "limit", "n", 0, "show at most n runs (0 = all)")
}
