package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/mlstart-cli/internal/dataset"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "MLSTART"
	dirName   = ".mlstart"
)

// Global configuration structure.
type Global struct {
	ReportsDir string `mapstructure:"reports_dir" yaml:"reports_dir"`
	RunsDir    string `mapstructure:"runs_dir" yaml:"runs_dir"`

	// Split and task inference
	TestSize      float64 `mapstructure:"test_size" yaml:"test_size" validate:"gt=0,lt=1"`
	RandomSeed    int64   `mapstructure:"random_seed" yaml:"random_seed"`
	MaxClasses    int     `mapstructure:"max_classes" yaml:"max_classes" validate:"gte=2"`
	Delimiter     string  `mapstructure:"delimiter" yaml:"delimiter" validate:"delimiter"`
	ReportFormat  string  `mapstructure:"report_format" yaml:"report_format" validate:"oneof=text json yaml"`
	PrimaryMetric string  `mapstructure:"primary_metric" yaml:"primary_metric"`

	// Baseline models
	RidgeAlpha      float64 `mapstructure:"ridge_alpha" yaml:"ridge_alpha" validate:"gt=0"`
	KNNNeighbors    int     `mapstructure:"knn_neighbors" yaml:"knn_neighbors" validate:"gte=1"`
	TreeMaxDepth    int     `mapstructure:"tree_max_depth" yaml:"tree_max_depth" validate:"gte=0"`
	LogisticMaxIter int     `mapstructure:"logistic_max_iter" yaml:"logistic_max_iter" validate:"gte=1"`
	TrainWorkers    int     `mapstructure:"train_workers" yaml:"train_workers" validate:"gte=0"`
}

var validate = validator.New()

func init() {
	_ = validate.RegisterValidation("delimiter", func(fl validator.FieldLevel) bool {
		_, err := dataset.ParseDelimiter(fl.Field().String())
		return err == nil
	})
}

// Validate checks value ranges.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s fails %q (value %v)", fe.Field(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Dir returns ~/.mlstart.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.mlstart/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func defaults(v *viper.Viper) {
	v.SetDefault("test_size", 0.2)
	v.SetDefault("random_seed", 42)
	v.SetDefault("max_classes", 10)
	v.SetDefault("delimiter", "")
	v.SetDefault("report_format", "text")
	v.SetDefault("primary_metric", "")
	v.SetDefault("ridge_alpha", 1.0)
	v.SetDefault("knn_neighbors", 5)
	v.SetDefault("tree_max_depth", 0)
	v.SetDefault("logistic_max_iter", 300)
	v.SetDefault("train_workers", 0)
	v.SetDefault("reports_dir", "")
	v.SetDefault("runs_dir", "")
}

// Keys lists every configuration key, sorted.
func Keys() []string {
	v := viper.New()
	defaults(v)
	keys := v.AllKeys()
	sort.Strings(keys)
	return keys
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	defaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// Resolve directory defaults under ~/.mlstart
	if c.ReportsDir == "" || c.RunsDir == "" {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		if c.ReportsDir == "" {
			c.ReportsDir = filepath.Join(dir, "reports")
		}
		if c.RunsDir == "" {
			c.RunsDir = filepath.Join(dir, "runs")
		}
	}
	return &c, nil
}
