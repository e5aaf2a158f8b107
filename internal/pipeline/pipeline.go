// Package pipeline runs a dataset end to end: load, clean, split, train,
// compare and report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KaramelBytes/mlstart-cli/internal/dataset"
	"github.com/KaramelBytes/mlstart-cli/internal/evaluation"
	"github.com/KaramelBytes/mlstart-cli/internal/model"
	"github.com/KaramelBytes/mlstart-cli/internal/preprocess"
	"github.com/KaramelBytes/mlstart-cli/internal/report"
	"github.com/KaramelBytes/mlstart-cli/internal/task"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidOptions wraps option validation failures.
	ErrInvalidOptions = errors.New("invalid options")
	// ErrSingleClass is returned when the training split holds a single class.
	ErrSingleClass = errors.New("training data contains only one class; classification requires at least two")
	// ErrNoFeatures is returned when no feature column survives preprocessing.
	ErrNoFeatures = errors.New("no feature columns left after preprocessing")
)

var validate = validator.New()

func init() {
	_ = validate.RegisterValidation("tasktype", func(fl validator.FieldLevel) bool {
		_, err := task.Parse(fl.Field().String())
		return err == nil
	})
}

// Options configures a run. Zero TestSize selects the default 0.2.
type Options struct {
	Path   string `validate:"required"`
	Target string `validate:"required"`
	// Task forces the task type instead of inferring it from the target.
	Task          string  `validate:"omitempty,tasktype"`
	TestSize      float64 `validate:"gt=0,lt=1"`
	Seed          int64
	MaxClasses    int `validate:"gte=0"`
	PrimaryMetric string
	Delimiter     rune
	MaxRows       int `validate:"gte=0"`
	Sheet         string
	Workers       int `validate:"gte=0"`
	Models        model.Options
	Logger        *slog.Logger `validate:"-"`
}

// DefaultOptions returns options with the reproducible 80/20 split.
func DefaultOptions(path, target string) Options {
	return Options{
		Path:       path,
		Target:     target,
		TestSize:   dataset.DefaultTestSize,
		Seed:       dataset.DefaultSeed,
		MaxClasses: task.DefaultMaxClasses,
	}
}

// Validate applies defaults and checks the options.
func (o *Options) Validate() error {
	if o.TestSize == 0 {
		o.TestSize = dataset.DefaultTestSize
	}
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// Outcome is everything a run produced.
type Outcome struct {
	Dataset   string
	Target    string
	Task      task.Type
	Rows      int
	Features  []string
	TrainRows int
	TestRows  int
	Result    *evaluation.Result
	Report    string
	Skipped   []*model.TrainError
	Warnings  []string
	Duration  time.Duration
}

// Run executes the full pipeline. It fails fast: any stage error ends the run.
func Run(ctx context.Context, opts Options) (*Outcome, error) {
	start := time.Now()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	frame, err := dataset.Load(opts.Path, dataset.LoadOptions{Delimiter: opts.Delimiter, MaxRows: opts.MaxRows, Sheet: opts.Sheet})
	if err != nil {
		return nil, err
	}
	logger.Debug("dataset loaded", "file", frame.Name, "rows", len(frame.Records), "columns", len(frame.Header))

	targetValues, err := frame.Values(opts.Target)
	if err != nil {
		return nil, err
	}
	tt, err := resolveTask(opts, targetValues)
	if err != nil {
		return nil, err
	}
	logger.Debug("task identified", "task", tt, "forced", opts.Task != "")
	if opts.PrimaryMetric != "" {
		if _, ok := evaluation.LookupMetric(tt, opts.PrimaryMetric); !ok {
			return nil, fmt.Errorf("%w: %q is not a %s metric", evaluation.ErrUnknownMetric, opts.PrimaryMetric, tt)
		}
	}

	numeric, categorical, err := dataset.IdentifyColumns(frame)
	if err != nil {
		return nil, err
	}
	logger.Debug("columns identified", "numeric", numeric, "categorical", categorical)

	pp := &preprocess.Pipeline{Task: tt, Target: opts.Target, Logger: logger}
	table, warnings, err := pp.Run(dataset.NewTable(frame, numeric))
	if err != nil {
		return nil, fmt.Errorf("preprocess: %w", err)
	}

	X, y, features, err := dataset.Split(table, opts.Target, tt)
	if err != nil {
		return nil, err
	}
	if len(features) == 0 {
		return nil, ErrNoFeatures
	}
	part, err := dataset.TrainTestSplit(X, y, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, err
	}
	logger.Debug("data split", "train", len(part.XTrain), "test", len(part.XTest), "features", len(features))

	if tt == task.Classification && distinctCount(part.YTrain) < 2 {
		return nil, ErrSingleClass
	}

	trainer, err := model.NewTrainer(tt, opts.Models)
	if err != nil {
		return nil, err
	}
	trainer.Workers = opts.Workers
	trainer.Logger = logger
	trained, skipped, err := trainer.Train(ctx, part.XTrain, part.YTrain)
	if err != nil {
		return nil, err
	}

	var copts []evaluation.ComparatorOption
	if opts.PrimaryMetric != "" {
		copts = append(copts, evaluation.WithPrimaryMetric(opts.PrimaryMetric))
	}
	cmp, err := evaluation.NewComparator(tt, copts...)
	if err != nil {
		return nil, err
	}
	res, err := cmp.Compare(trained, part.XTest, part.YTest)
	if err != nil {
		return nil, fmt.Errorf("compare: %w", err)
	}
	logger.Debug("models compared", "best", res.BestName, "models", len(res.Models))

	gen, err := report.NewGenerator(tt)
	if err != nil {
		return nil, err
	}
	text, err := gen.Generate(res)
	if err != nil {
		return nil, err
	}

	for _, s := range skipped {
		warnings = append(warnings, s.Error())
	}
	return &Outcome{
		Dataset:   frame.Name,
		Target:    opts.Target,
		Task:      tt,
		Rows:      table.Len(),
		Features:  features,
		TrainRows: len(part.XTrain),
		TestRows:  len(part.XTest),
		Result:    res,
		Report:    text,
		Skipped:   skipped,
		Warnings:  warnings,
		Duration:  time.Since(start),
	}, nil
}

func resolveTask(opts Options, values []string) (task.Type, error) {
	if opts.Task != "" {
		return task.Parse(opts.Task)
	}
	return task.Identify(values, opts.MaxClasses), nil
}

func distinctCount(y []float64) int {
	seen := make(map[float64]struct{})
	for _, v := range y {
		seen[v] = struct{}{}
	}
	return len(seen)
}
