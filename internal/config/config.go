// Package config holds the settings shared by the train and evaluate
// programs. Defaults reproduce the stock behaviour: clean_train_reduced.csv,
// target SalePrice, a 0.2 holdout drawn with seed 42, and the three model
// artifacts in the working directory.
package config

import (
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// Model slots. Each slot owns one artifact file.
const (
	SlotRandomForest = "random_forest"
	SlotDecisionTree = "decision_tree"
	SlotMLP          = "mlp"
)

// Tasks.
const (
	TaskRegression     = "regression"
	TaskClassification = "classification"
)

// Evaluation row selections.
const (
	EvalOnHoldout = "holdout"
	EvalOnFull    = "full"
)

// Slots lists every model slot in training order.
var Slots = []string{SlotRandomForest, SlotDecisionTree, SlotMLP}

// Config is the full configuration of a training or evaluation run.
type Config struct {
	DataPath  string    `yaml:"data_path"`
	Target    string    `yaml:"target"`
	TestSize  float64   `yaml:"test_size"`
	Seed      int64     `yaml:"seed"`
	Task      string    `yaml:"task"`
	Artifacts Artifacts `yaml:"artifacts"`
	Forest    Forest    `yaml:"forest"`
	Tree      Tree      `yaml:"decision_tree"`
	MLP       MLP       `yaml:"mlp"`
	Evaluate  Evaluate  `yaml:"evaluate"`
}

// Artifacts names the output files. Relative names resolve against Dir;
// a ".xz" suffix enables compression.
type Artifacts struct {
	Dir          string `yaml:"dir"`
	RandomForest string `yaml:"random_forest"`
	DecisionTree string `yaml:"decision_tree"`
	MLP          string `yaml:"mlp"`
	Holdout      string `yaml:"holdout"`
}

type Forest struct {
	NEstimators int `yaml:"n_estimators"`
	MaxDepth    int `yaml:"max_depth"`
	NJobs       int `yaml:"n_jobs"`
}

type Tree struct {
	MaxDepth int `yaml:"max_depth"`
}

type MLP struct {
	HiddenLayerSizes []int `yaml:"hidden_layer_sizes"`
	MaxIter          int   `yaml:"max_iter"`
	// ScaleInputs standardises features and stores the scaler in the artifact.
	ScaleInputs bool `yaml:"scale_inputs"`
}

type Evaluate struct {
	On     string   `yaml:"on"`
	Models []string `yaml:"models"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataPath: "clean_train_reduced.csv",
		Target:   "SalePrice",
		TestSize: 0.2,
		Seed:     42,
		Task:     TaskRegression,
		Artifacts: Artifacts{
			Dir:          ".",
			RandomForest: "rf_model.gob",
			DecisionTree: "dt_model.gob",
			MLP:          "ann_model.gob",
			Holdout:      "holdout.json",
		},
		Forest: Forest{NEstimators: 100},
		MLP: MLP{
			HiddenLayerSizes: []int{100, 50},
			MaxIter:          500,
		},
		Evaluate: Evaluate{
			On:     EvalOnHoldout,
			Models: []string{SlotRandomForest},
		},
	}
}

// Load reads a YAML file over the defaults; keys absent from the file keep
// their default values. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.DisallowUnknownField()); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field that the programs rely on.
func (c *Config) Validate() error {
	switch {
	case c.DataPath == "":
		return errors.NewValidationError("data_path", "must not be empty", c.DataPath)
	case c.Target == "":
		return errors.NewValidationError("target", "must not be empty", c.Target)
	case c.TestSize <= 0 || c.TestSize >= 1:
		return errors.NewValidationError("test_size", "must be in (0, 1)", c.TestSize)
	case c.Task != TaskRegression && c.Task != TaskClassification:
		return errors.NewValidationError("task", "must be regression or classification", c.Task)
	case c.Forest.NEstimators < 1:
		return errors.NewValidationError("forest.n_estimators", "must be >= 1", c.Forest.NEstimators)
	case c.Forest.MaxDepth < 0:
		return errors.NewValidationError("forest.max_depth", "must be >= 0", c.Forest.MaxDepth)
	case c.Tree.MaxDepth < 0:
		return errors.NewValidationError("decision_tree.max_depth", "must be >= 0", c.Tree.MaxDepth)
	case len(c.MLP.HiddenLayerSizes) == 0:
		return errors.NewValidationError("mlp.hidden_layer_sizes", "must name at least one layer", c.MLP.HiddenLayerSizes)
	case c.MLP.MaxIter < 1:
		return errors.NewValidationError("mlp.max_iter", "must be >= 1", c.MLP.MaxIter)
	case c.Evaluate.On != EvalOnHoldout && c.Evaluate.On != EvalOnFull:
		return errors.NewValidationError("evaluate.on", "must be holdout or full", c.Evaluate.On)
	case len(c.Evaluate.Models) == 0:
		return errors.NewValidationError("evaluate.models", "must list at least one model", c.Evaluate.Models)
	}
	for _, slot := range Slots {
		if c.artifactName(slot) == "" {
			return errors.NewValidationError("artifacts."+slot, "must not be empty", "")
		}
	}
	if c.Artifacts.Holdout == "" {
		return errors.NewValidationError("artifacts.holdout", "must not be empty", "")
	}
	for _, m := range c.Evaluate.Models {
		if !validSlot(m) {
			return errors.NewValidationError("evaluate.models", "unknown model", m)
		}
	}
	return nil
}

func validSlot(slot string) bool {
	for _, s := range Slots {
		if s == slot {
			return true
		}
	}
	return false
}

func (c *Config) artifactName(slot string) string {
	switch slot {
	case SlotRandomForest:
		return c.Artifacts.RandomForest
	case SlotDecisionTree:
		return c.Artifacts.DecisionTree
	case SlotMLP:
		return c.Artifacts.MLP
	}
	return ""
}

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) || c.Artifacts.Dir == "" {
		return name
	}
	return filepath.Join(c.Artifacts.Dir, name)
}

// ArtifactPath returns the file of a model slot.
func (c *Config) ArtifactPath(slot string) (string, error) {
	name := c.artifactName(slot)
	if name == "" {
		return "", errors.NewValidationError("model", "unknown model slot", slot)
	}
	return c.resolve(name), nil
}

// HoldoutPath returns the file of the holdout manifest.
func (c *Config) HoldoutPath() string {
	return c.resolve(c.Artifacts.Holdout)
}

// DisplayName is the label printed next to a slot's metrics.
func DisplayName(slot string) string {
	switch slot {
	case SlotRandomForest:
		return "Random Forest"
	case SlotDecisionTree:
		return "Decision Tree"
	case SlotMLP:
		return "MLP"
	}
	return slot
}
