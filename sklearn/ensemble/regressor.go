package ensemble

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/metrics"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
	"github.com/YuminosukeSato/pricefit/sklearn/tree"
)

func init() {
	model.Register("pricefit.ensemble.RandomForestRegressor", &RandomForestRegressor{})
}

// RandomForestRegressor is a bagged ensemble of regression trees. The
// prediction is the mean over trees.
//
//	rf := ensemble.NewRandomForestRegressor(ensemble.WithRandomState(42))
//	err := rf.Fit(X, y)
type RandomForestRegressor struct {
	State       *model.StateManager
	Params      Params
	Trees       []*tree.DecisionTreeRegressor
	Importances []float64
}

// NewRandomForestRegressor creates a forest of 100 squared-error trees
// using every feature at each split unless configured otherwise.
func NewRandomForestRegressor(opts ...Option) *RandomForestRegressor {
	return &RandomForestRegressor{
		State:  model.NewStateManager(),
		Params: defaultParams(tree.CriterionSquaredError, opts),
	}
}

// Fit trains every tree on its own bootstrap sample of X.
func (f *RandomForestRegressor) Fit(X, y mat.Matrix) error {
	if err := f.Params.validate(); err != nil {
		return err
	}
	target, err := model.CheckFitInput("RandomForestRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	if f.State == nil {
		f.State = model.NewStateManager()
	}
	f.State.Reset()

	rows, cols := X.Dims()
	dense := asDense(X)
	trees := make([]*tree.DecisionTreeRegressor, f.Params.NEstimators)
	err = fitTrees("ensemble.random_forest_regressor", f.Params, rows, cols, func(i int, seed int64, sample []int) error {
		dt := tree.NewDecisionTreeRegressor(f.Params.treeOptions(seed, f.Params.MaxFeatures)...)
		if err := dt.FitSample(dense, target, sample); err != nil {
			return err
		}
		trees[i] = dt
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to fit random forest")
	}

	per := make([][]float64, len(trees))
	for i, dt := range trees {
		per[i] = dt.Importances
	}
	f.Trees = trees
	f.Importances = averageImportances(per, cols)
	f.State.SetDimensions(cols, rows)
	f.State.SetFitted()
	return nil
}

// Predict returns the mean of the tree predictions as an n×1 matrix.
func (f *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if f.State == nil {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "Predict")
	}
	if err := f.State.CheckPredictInput("RandomForestRegressor", X); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	out := mat.NewDense(rows, 1, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		sum := 0.0
		for _, dt := range f.Trees {
			sum += dt.Tree.Value(row)[0]
		}
		out.Set(i, 0, sum/float64(len(f.Trees)))
	}
	return out, nil
}

// Score returns R² on X and y.
func (f *RandomForestRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := f.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(metrics.ColumnVector(y), metrics.ColumnVector(pred))
}

// IsFitted reports whether Fit has completed.
func (f *RandomForestRegressor) IsFitted() bool {
	return f.State != nil && f.State.IsFitted()
}

// NFeatures returns the number of features seen during Fit.
func (f *RandomForestRegressor) NFeatures() int {
	if f.State == nil {
		return 0
	}
	n, _ := f.State.GetDimensions()
	return n
}

// IsRegressor marks the estimator as a regressor.
func (f *RandomForestRegressor) IsRegressor() {}

// GetParams returns the hyperparameters.
func (f *RandomForestRegressor) GetParams() map[string]interface{} {
	return f.Params.asMap()
}

// FeatureImportances returns the mean impurity-based importance per feature.
func (f *RandomForestRegressor) FeatureImportances() ([]float64, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestRegressor", "FeatureImportances")
	}
	return append([]float64(nil), f.Importances...), nil
}

func asDense(X mat.Matrix) *mat.Dense {
	if d, ok := X.(*mat.Dense); ok {
		return d
	}
	return mat.DenseCopyOf(X)
}
