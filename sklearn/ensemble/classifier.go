package ensemble

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/metrics"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
	"github.com/YuminosukeSato/pricefit/sklearn/tree"
)

func init() {
	model.Register("pricefit.ensemble.RandomForestClassifier", &RandomForestClassifier{})
}

// RandomForestClassifier averages the class distributions of its trees.
// Every distinct target value is its own class.
type RandomForestClassifier struct {
	State       *model.StateManager
	Params      Params
	Trees       []*tree.DecisionTreeClassifier
	Importances []float64
	ClassLabels []float64
}

// NewRandomForestClassifier creates a forest of 100 gini trees examining
// sqrt(n_features) features per split unless configured otherwise.
func NewRandomForestClassifier(opts ...Option) *RandomForestClassifier {
	return &RandomForestClassifier{
		State:  model.NewStateManager(),
		Params: defaultParams(tree.CriterionGini, opts),
	}
}

// Fit trains every tree on its own bootstrap sample. Trees share the class
// set of the full y even when a sample misses some labels.
func (f *RandomForestClassifier) Fit(X, y mat.Matrix) error {
	if err := f.Params.validate(); err != nil {
		return err
	}
	target, err := model.CheckFitInput("RandomForestClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if f.State == nil {
		f.State = model.NewStateManager()
	}
	f.State.Reset()

	rows, cols := X.Dims()
	classes, codes := model.EncodeLabels(target)
	maxFeatures := f.Params.MaxFeatures
	if maxFeatures == 0 {
		maxFeatures = sqrtFeatures(cols)
	}

	dense := asDense(X)
	trees := make([]*tree.DecisionTreeClassifier, f.Params.NEstimators)
	err = fitTrees("ensemble.random_forest_classifier", f.Params, rows, cols, func(i int, seed int64, sample []int) error {
		dt := tree.NewDecisionTreeClassifier(f.Params.treeOptions(seed, maxFeatures)...)
		if err := dt.FitEncoded(dense, codes, classes, sample); err != nil {
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
	f.ClassLabels = classes
	f.Importances = averageImportances(per, cols)
	f.State.SetDimensions(cols, rows)
	f.State.SetFitted()
	return nil
}

// PredictProba returns the mean tree class distribution for each row.
func (f *RandomForestClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if f.State == nil {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "Predict")
	}
	if err := f.State.CheckPredictInput("RandomForestClassifier", X); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	nClasses := len(f.ClassLabels)
	out := mat.NewDense(rows, nClasses, nil)
	row := make([]float64, cols)
	acc := make([]float64, nClasses)
	scale := 1 / float64(len(f.Trees))
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		for k := range acc {
			acc[k] = 0
		}
		for _, dt := range f.Trees {
			for k, p := range dt.Tree.Value(row) {
				acc[k] += p
			}
		}
		for k := range acc {
			acc[k] *= scale
		}
		out.SetRow(i, acc)
	}
	return out, nil
}

// Predict returns the class with the highest mean probability.
func (f *RandomForestClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := f.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return model.ArgmaxLabels(proba, f.ClassLabels), nil
}

// Score returns the mean accuracy on X and y.
func (f *RandomForestClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := f.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

// Classes returns the sorted class labels seen during Fit.
func (f *RandomForestClassifier) Classes() []float64 {
	return append([]float64(nil), f.ClassLabels...)
}

// IsFitted reports whether Fit has completed.
func (f *RandomForestClassifier) IsFitted() bool {
	return f.State != nil && f.State.IsFitted()
}

// NFeatures returns the number of features seen during Fit.
func (f *RandomForestClassifier) NFeatures() int {
	if f.State == nil {
		return 0
	}
	n, _ := f.State.GetDimensions()
	return n
}

// GetParams returns the hyperparameters.
func (f *RandomForestClassifier) GetParams() map[string]interface{} {
	return f.Params.asMap()
}

// FeatureImportances returns the mean impurity-based importance per feature.
func (f *RandomForestClassifier) FeatureImportances() ([]float64, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("RandomForestClassifier", "FeatureImportances")
	}
	return append([]float64(nil), f.Importances...), nil
}
