// Package report renders comparison results as text, JSON or YAML.
package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/mlstart-cli/internal/evaluation"
	"github.com/KaramelBytes/mlstart-cli/internal/task"
	"github.com/KaramelBytes/mlstart-cli/internal/utils"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Export.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	// ErrEmptyResult is returned for a nil result or one without models.
	ErrEmptyResult = errors.New("no comparison results to report")
	// ErrUnknownFormat is returned for an unsupported output format.
	ErrUnknownFormat = errors.New("unknown report format")
)

const (
	nameWidth      = 25
	valueWidth     = 15
	rankWidth      = 5
	ruleWidth      = 50
	recommendation = "Based on the evaluation, %s is the top-performing model for your dataset.\n" +
		"We recommend starting with this model for your task as it has the best overall performance."
)

// Generator renders reports for one task type.
type Generator struct {
	task task.Type
}

// NewGenerator returns a generator for a valid task.
func NewGenerator(t task.Type) (*Generator, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %s", task.ErrInvalidTask, t)
	}
	return &Generator{task: t}, nil
}

// FormatValue prints large or tiny magnitudes in scientific notation and
// everything else with four decimals.
func FormatValue(v float64) string {
	if a := math.Abs(v); a >= 10000 || a < 0.001 {
		return fmt.Sprintf("%.3e", v)
	}
	return fmt.Sprintf("%.4f", v)
}

func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// Generate renders the text report: a summary table, one section per metric,
// the overall ranking and the recommendation.
func (g *Generator) Generate(res *evaluation.Result) (string, error) {
	if res == nil || len(res.Models) == 0 {
		return "", ErrEmptyResult
	}
	metrics := res.MetricNames()

	var lines []string
	add := func(s string) { lines = append(lines, strings.TrimRight(s, " ")) }

	add(fmt.Sprintf("Model Performance Report (%s Task)", g.task.Title()))
	add(strings.Repeat("=", ruleWidth))

	add("\nSummary Table (All Metrics at a Glance):")
	header := padRight("Model", nameWidth)
	for _, m := range metrics {
		header += padRight(m, valueWidth)
	}
	header += padRight("Average Rank", valueWidth)
	add(header)
	add(strings.Repeat("-", runewidth.StringWidth(header)))
	for _, m := range res.Models {
		row := padRight(m.Name, nameWidth)
		for _, name := range metrics {
			v, _ := m.Scores.Get(name)
			row += padRight(FormatValue(v), valueWidth)
		}
		row += padRight(fmt.Sprintf("%.2f", m.AverageRank), valueWidth)
		add(row)
	}

	for _, name := range metrics {
		desc := ""
		if def, ok := evaluation.LookupMetric(g.task, name); ok {
			desc = def.Description
		}
		add(fmt.Sprintf("\nMetric: %s (%s)", name, evaluation.DirectionFor(g.task, name)))
		add(desc)
		add(strings.Repeat("-", ruleWidth))
		h := padRight("Model", nameWidth) + " " + padRight(name, valueWidth) + " " + padRight("Rank", rankWidth)
		add(h)
		add(strings.Repeat("-", runewidth.StringWidth(h)))
		for _, m := range res.Models {
			v, _ := m.Scores.Get(name)
			r, _ := m.RankOf(name)
			add(padRight(m.Name, nameWidth) + " " + padRight(FormatValue(v), valueWidth) + " " + padRight(fmt.Sprint(r), rankWidth))
		}
	}

	add("\nOverall Rankings")
	add(strings.Repeat("=", ruleWidth))
	add(padRight("Model", nameWidth) + " " + padRight("Average Rank", valueWidth))
	add(strings.Repeat("-", ruleWidth))
	for _, m := range res.Models {
		row := padRight(m.Name, nameWidth) + " " + padRight(fmt.Sprintf("%.2f", m.AverageRank), valueWidth)
		if m.Name == res.BestName {
			row += " *Best*"
		}
		add(row)
	}

	add(strings.Repeat("=", ruleWidth))
	add(fmt.Sprintf("\nBest Model: %s", res.BestName))
	add(fmt.Sprintf(recommendation, res.BestName))
	return strings.Join(lines, "\n") + "\n", nil
}

// Summary is the serializable form of a comparison.
type Summary struct {
	Task      string         `json:"task" yaml:"task"`
	BestModel string         `json:"best_model" yaml:"best_model"`
	Metrics   []string       `json:"metrics" yaml:"metrics"`
	Models    []ModelSummary `json:"models" yaml:"models"`
}

// ModelSummary is one model's scores and ranks.
type ModelSummary struct {
	Name        string            `json:"name" yaml:"name"`
	Scores      evaluation.Scores `json:"scores" yaml:"scores"`
	Ranks       []evaluation.Rank `json:"ranks" yaml:"ranks"`
	AverageRank float64           `json:"average_rank" yaml:"average_rank"`
	Best        bool              `json:"best,omitempty" yaml:"best,omitempty"`
}

// Summarize converts a comparison result into a Summary.
func Summarize(res *evaluation.Result) (*Summary, error) {
	if res == nil || len(res.Models) == 0 {
		return nil, ErrEmptyResult
	}
	s := &Summary{Task: res.Task.String(), BestModel: res.BestName, Metrics: res.MetricNames()}
	for _, m := range res.Models {
		s.Models = append(s.Models, ModelSummary{
			Name:        m.Name,
			Scores:      m.Scores,
			Ranks:       m.Ranks,
			AverageRank: m.AverageRank,
			Best:        m.Name == res.BestName,
		})
	}
	return s, nil
}

// Export writes res to w in the given format.
func (g *Generator) Export(w io.Writer, format string, res *evaluation.Result) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		text, err := g.Generate(res)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, text)
		return err
	case FormatJSON:
		s, err := Summarize(res)
		if err != nil {
			return err
		}
		b, err := utils.PrettyJSON(s)
		if err != nil {
			return err
		}
		_, err = w.Write(append(b, '\n'))
		return err
	case FormatYAML:
		s, err := Summarize(res)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q (use text, json or yaml)", ErrUnknownFormat, format)
	}
}

// Extension returns the file extension used for a format.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatJSON:
		return ".json"
	case FormatYAML:
		return ".yaml"
	default:
		return ".txt"
	}
}

// DefaultFileName names a report after its task and dataset, for example
// model_report_regression_housing.txt.
func DefaultFileName(t task.Type, dataset, format string) string {
	base := filepath.Base(dataset)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("model_report_%s_%s%s", t, stem, Extension(format))
}

// Save writes content to path, creating parent directories.
func Save(path string, content []byte) error {
	if err := utils.SafeWriteFile(path, content); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
