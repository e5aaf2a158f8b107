package cmd

import (
	"fmt"

	"github.com/KaramelBytes/mlstart-cli/internal/dataset"
	"github.com/KaramelBytes/mlstart-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	insTarget     string
	insOutputPath string
	insDelimiter  string
	insSampleRows int
	insMaxRows    int
	insMaxClasses int
	insSheet      string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Profile a CSV/TSV/XLSX: column kinds, missing values and the inferred task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		delim, err := dataset.ParseDelimiter(insDelimiter)
		if err != nil {
			return fmt.Errorf("unsupported --delimiter: %s", insDelimiter)
		}
		frame, err := dataset.Load(args[0], dataset.LoadOptions{Delimiter: delim, MaxRows: insMaxRows, Sheet: insSheet})
		if err != nil {
			return err
		}
		prof, err := dataset.NewProfile(frame, dataset.ProfileOptions{
			SampleRows: insSampleRows,
			Target:     insTarget,
			MaxClasses: insMaxClasses,
		})
		if err != nil {
			return err
		}
		md := prof.Markdown()

		if insOutputPath != "" {
			if err := utils.SafeWriteFile(insOutputPath, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", insOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVarP(&insTarget, "target", "t", "", "target column; adds the inferred task")
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "optional path to write the profile (Markdown)")
	inspectCmd.Flags().StringVar(&insDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' | '|'")
	inspectCmd.Flags().StringVar(&insSheet, "sheet", "", "worksheet to read from an .xlsx file (default first)")
	inspectCmd.Flags().IntVar(&insSampleRows, "sample-rows", 5, "number of sample rows to include")
	inspectCmd.Flags().IntVar(&insMaxRows, "max-rows", 100000, "maximum rows to process (0 = unlimited)")
	inspectCmd.Flags().IntVar(&insMaxClasses, "max-classes", 10, "targets with fewer distinct values are treated as classification")
}
