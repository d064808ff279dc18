// Package pipeline wires the dataset, splitter, models and artifact store
// into the train and evaluate programs.
package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/internal/config"
	"github.com/YuminosukeSato/pricefit/preprocessing"
	"github.com/YuminosukeSato/pricefit/sklearn/ensemble"
	"github.com/YuminosukeSato/pricefit/sklearn/neural_network"
	"github.com/YuminosukeSato/pricefit/sklearn/tree"
)

type slotModel struct {
	slot string
	est  model.Estimator
}

// newModels builds the unfitted estimators of every slot for cfg.Task.
func newModels(cfg *config.Config) []slotModel {
	forestOpts := []ensemble.Option{
		ensemble.WithNEstimators(cfg.Forest.NEstimators),
		ensemble.WithMaxDepth(cfg.Forest.MaxDepth),
		ensemble.WithNJobs(cfg.Forest.NJobs),
		ensemble.WithRandomState(cfg.Seed),
	}
	treeOpts := []tree.Option{
		tree.WithMaxDepth(cfg.Tree.MaxDepth),
		tree.WithRandomState(cfg.Seed),
	}
	mlpOpts := []neural_network.Option{
		neural_network.WithHiddenLayerSizes(cfg.MLP.HiddenLayerSizes...),
		neural_network.WithMaxIter(cfg.MLP.MaxIter),
		neural_network.WithRandomState(cfg.Seed),
	}

	var forest, dt, mlp model.Estimator
	if cfg.Task == config.TaskClassification {
		forest = ensemble.NewRandomForestClassifier(forestOpts...)
		dt = tree.NewDecisionTreeClassifier(treeOpts...)
		mlp = neural_network.NewMLPClassifier(mlpOpts...)
	} else {
		forest = ensemble.NewRandomForestRegressor(forestOpts...)
		dt = tree.NewDecisionTreeRegressor(treeOpts...)
		mlp = neural_network.NewMLPRegressor(mlpOpts...)
	}
	if cfg.MLP.ScaleInputs {
		mlp = preprocessing.NewScaledEstimator(mlp)
	}

	return []slotModel{
		{config.SlotRandomForest, forest},
		{config.SlotDecisionTree, dt},
		{config.SlotMLP, mlp},
	}
}

// modelType names the concrete estimator, looking through wrappers.
func modelType(est model.Estimator) string {
	name := strings.TrimPrefix(fmt.Sprintf("%T", est), "*")
	if w, ok := est.(interface{ Unwrap() model.Estimator }); ok {
		return name + "(" + modelType(w.Unwrap()) + ")"
	}
	return name
}

// formatMetric renders v the way Python's repr renders a float, so printed
// metrics read the same as those of the stock scripts.
func formatMetric(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	if abs := math.Abs(v); v != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
