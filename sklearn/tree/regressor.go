package tree

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/metrics"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

func init() {
	model.Register("pricefit.tree.DecisionTreeRegressor", &DecisionTreeRegressor{})
}

// DecisionTreeRegressor is a CART regression tree minimising squared error.
type DecisionTreeRegressor struct {
	State       *model.StateManager
	Params      Params
	Tree        *Tree
	Importances []float64
}

// NewDecisionTreeRegressor creates a regression tree. The criterion is
// always squared_error.
//
//	dt := tree.NewDecisionTreeRegressor(tree.WithRandomState(42))
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	return &DecisionTreeRegressor{
		State:  model.NewStateManager(),
		Params: defaultParams(CriterionSquaredError, opts),
	}
}

// Fit grows the tree on every row of X.
func (t *DecisionTreeRegressor) Fit(X, y mat.Matrix) error {
	target, err := model.CheckFitInput("DecisionTreeRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	rows, _ := X.Dims()
	return t.FitSample(denseRows(X), target, identity(rows))
}

// FitSample grows the tree on the rows of X listed in sampleIdx. Rows may
// repeat, as in a bootstrap sample.
func (t *DecisionTreeRegressor) FitSample(X *mat.Dense, y []float64, sampleIdx []int) error {
	if err := t.Params.validate(true); err != nil {
		return err
	}
	if len(sampleIdx) == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}
	if t.State == nil {
		t.State = model.NewStateManager()
	}
	t.State.Reset()

	b := newBuilder(X, &squaredError{y: y}, t.Params)
	t.Tree = b.build(sampleIdx)
	t.Importances = t.Tree.importances()

	_, cols := X.Dims()
	t.State.SetDimensions(cols, len(sampleIdx))
	t.State.SetFitted()
	return nil
}

// Predict returns the leaf mean for each row of X as an n×1 matrix.
func (t *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := t.checkPredict(X); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	out := mat.NewDense(rows, 1, nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		out.Set(i, 0, t.Tree.Value(row)[0])
	}
	return out, nil
}

func (t *DecisionTreeRegressor) checkPredict(X mat.Matrix) error {
	if t.State == nil {
		return errors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}
	return t.State.CheckPredictInput("DecisionTreeRegressor", X)
}

// Score returns the coefficient of determination R² of the prediction.
func (t *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := t.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(metrics.ColumnVector(y), metrics.ColumnVector(pred))
}

// IsFitted reports whether Fit has completed.
func (t *DecisionTreeRegressor) IsFitted() bool {
	return t.State != nil && t.State.IsFitted()
}

// NFeatures returns the number of features seen during Fit.
func (t *DecisionTreeRegressor) NFeatures() int {
	if t.State == nil {
		return 0
	}
	n, _ := t.State.GetDimensions()
	return n
}

// IsRegressor marks the estimator as a regressor.
func (t *DecisionTreeRegressor) IsRegressor() {}

// GetParams returns the hyperparameters.
func (t *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return t.Params.asMap()
}

// FeatureImportances returns the normalised impurity decrease per feature.
func (t *DecisionTreeRegressor) FeatureImportances() ([]float64, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "FeatureImportances")
	}
	return append([]float64(nil), t.Importances...), nil
}

// Depth returns the depth of the fitted tree.
func (t *DecisionTreeRegressor) Depth() int {
	if t.Tree == nil {
		return 0
	}
	return t.Tree.MaxDepth
}
