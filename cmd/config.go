package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/mlstart-cli/internal/config"
	"github.com/KaramelBytes/mlstart-cli/internal/dataset"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set MLStart configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "reports_dir: %s\n", c.ReportsDir)
		fmt.Fprintf(out, "runs_dir: %s\n", c.RunsDir)
		fmt.Fprintf(out, "test_size: %.3f\n", c.TestSize)
		fmt.Fprintf(out, "random_seed: %d\n", c.RandomSeed)
		fmt.Fprintf(out, "max_classes: %d\n", c.MaxClasses)
		if c.Delimiter != "" {
			fmt.Fprintf(out, "delimiter: %s\n", c.Delimiter)
		}
		fmt.Fprintf(out, "report_format: %s\n", c.ReportFormat)
		if c.PrimaryMetric != "" {
			fmt.Fprintf(out, "primary_metric: %s\n", c.PrimaryMetric)
		}
		fmt.Fprintf(out, "ridge_alpha: %.3f\n", c.RidgeAlpha)
		fmt.Fprintf(out, "knn_neighbors: %d\n", c.KNNNeighbors)
		fmt.Fprintf(out, "tree_max_depth: %d\n", c.TreeMaxDepth)
		fmt.Fprintf(out, "logistic_max_iter: %d\n", c.LogisticMaxIter)
		fmt.Fprintf(out, "train_workers: %d\n", c.TrainWorkers)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		next := *c
		if err := setKey(&next, key, val); err != nil {
			return err
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		*c = next
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func setKey(c *cfgpkg.Global, key, val string) error {
	parseInt := func() (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	parseFloat := func() (float64, error) {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid float for %s: %v", key, val)
		}
		return f, nil
	}
	var err error
	switch key {
	case "reports_dir":
		c.ReportsDir = val
	case "runs_dir":
		c.RunsDir = val
	case "test_size":
		c.TestSize, err = parseFloat()
	case "random_seed":
		var i int
		i, err = parseInt()
		c.RandomSeed = int64(i)
	case "max_classes":
		c.MaxClasses, err = parseInt()
	case "delimiter":
		if _, err := dataset.ParseDelimiter(val); err != nil {
			return fmt.Errorf("invalid delimiter: %s (use ',', ';', 'tab' or '|')", val)
		}
		c.Delimiter = val
	case "report_format":
		c.ReportFormat = strings.ToLower(val)
	case "primary_metric":
		c.PrimaryMetric = val
	case "ridge_alpha":
		c.RidgeAlpha, err = parseFloat()
	case "knn_neighbors":
		c.KNNNeighbors, err = parseInt()
	case "tree_max_depth":
		c.TreeMaxDepth, err = parseInt()
	case "logistic_max_iter":
		c.LogisticMaxIter, err = parseInt()
	case "train_workers":
		c.TrainWorkers, err = parseInt()
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys(), ", "))
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
