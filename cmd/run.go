package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/KaramelBytes/mlstart-cli/internal/dataset"
	"github.com/KaramelBytes/mlstart-cli/internal/model"
	"github.com/KaramelBytes/mlstart-cli/internal/pipeline"
	"github.com/KaramelBytes/mlstart-cli/internal/report"
	"github.com/KaramelBytes/mlstart-cli/internal/runs"
	"github.com/spf13/cobra"
)

var (
	runTarget        string
	runTask          string
	runTestSize      float64
	runSeed          int64
	runPrimaryMetric string
	runMaxClasses    int
	runDelimiter     string
	runMaxRows       int
	runSheet         string
	runWorkers       int
	runOutputPath    string
	runFormat        string
	runNoSave        bool
	runQuiet         bool
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Train baseline models on a dataset and print a ranked report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}

		opts := pipeline.DefaultOptions(path, runTarget)
		opts.TestSize = c.TestSize
		opts.Seed = c.RandomSeed
		opts.MaxClasses = c.MaxClasses
		opts.PrimaryMetric = c.PrimaryMetric
		opts.Workers = c.TrainWorkers
		opts.Models = model.Options{
			RidgeAlpha:      c.RidgeAlpha,
			KNNNeighbors:    c.KNNNeighbors,
			TreeMaxDepth:    c.TreeMaxDepth,
			LogisticMaxIter: c.LogisticMaxIter,
		}
		delim := c.Delimiter
		format := c.ReportFormat

		// Flags override config
		f := cmd.Flags()
		if f.Changed("task") {
			opts.Task = runTask
		}
		if f.Changed("test-size") {
			opts.TestSize = runTestSize
		}
		if f.Changed("seed") {
			opts.Seed = runSeed
		}
		if f.Changed("primary-metric") {
			opts.PrimaryMetric = runPrimaryMetric
		}
		if f.Changed("max-classes") {
			opts.MaxClasses = runMaxClasses
		}
		if f.Changed("delimiter") {
			delim = runDelimiter
		}
		if f.Changed("max-rows") {
			opts.MaxRows = runMaxRows
		}
		if f.Changed("sheet") {
			opts.Sheet = runSheet
		}
		if f.Changed("workers") {
			opts.Workers = runWorkers
		}
		if f.Changed("format") {
			format = runFormat
		}
		if opts.Delimiter, err = dataset.ParseDelimiter(delim); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		out, err := pipeline.Run(ctx, opts)
		if err != nil {
			return err
		}

		gen, err := report.NewGenerator(out.Task)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := gen.Export(&buf, format, out.Result); err != nil {
			return err
		}

		stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
		if !runQuiet {
			for _, w := range out.Warnings {
				fmt.Fprintf(stderr, "⚠ %s\n", w)
			}
			fmt.Fprintf(stderr, "✓ %s task on %d rows (%d train / %d test), %d features\n",
				out.Task.Title(), out.Rows, out.TrainRows, out.TestRows, len(out.Features))
			fmt.Fprintln(stdout, buf.String())
		}

		rec, err := runs.NewRecord(out, path)
		if err != nil {
			return err
		}
		if !runNoSave {
			reportPath := runOutputPath
			if reportPath == "" {
				reportPath = filepath.Join(c.ReportsDir, report.DefaultFileName(out.Task, path, format))
			}
			if err := report.Save(reportPath, buf.Bytes()); err != nil {
				return err
			}
			rec.ReportPath = reportPath
			if !runQuiet {
				fmt.Fprintf(stderr, "✓ Saved report to %s\n", reportPath)
			}
		}
		if err := runs.NewStore(c.RunsDir).Save(rec); err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		if !runQuiet {
			fmt.Fprintf(stderr, "✓ Best model: %s (run %s)\n", out.Result.BestName, rec.ShortID())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runTarget, "target", "t", "", "target column name (required)")
	_ = runCmd.MarkFlagRequired("target")
	runCmd.Flags().StringVar(&runTask, "task", "", "force task type: classification | regression (inferred if omitted)")
	runCmd.Flags().Float64Var(&runTestSize, "test-size", 0.2, "fraction of rows held out for evaluation")
	runCmd.Flags().Int64Var(&runSeed, "seed", 42, "random seed for the train/test split")
	runCmd.Flags().StringVar(&runPrimaryMetric, "primary-metric", "", "metric used to break exact average-rank ties")
	runCmd.Flags().IntVar(&runMaxClasses, "max-classes", 10, "targets with fewer distinct values are treated as classification")
	runCmd.Flags().StringVar(&runDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	runCmd.Flags().IntVar(&runMaxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	runCmd.Flags().StringVar(&runSheet, "sheet", "", "worksheet to read from an .xlsx file (default first)")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "concurrent model fits (0 = all at once)")
	runCmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "path to write the report (default under reports_dir)")
	runCmd.Flags().StringVar(&runFormat, "format", "text", "report format: text | json | yaml")
	runCmd.Flags().BoolVar(&runNoSave, "no-save", false, "do not write the report file")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "suppress all output; the report is still saved and the run recorded")
}
