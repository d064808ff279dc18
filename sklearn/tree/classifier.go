package tree

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/metrics"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

func init() {
	model.Register("pricefit.tree.DecisionTreeClassifier", &DecisionTreeClassifier{})
}

// DecisionTreeClassifier is a CART classification tree split on gini or
// entropy. Every distinct target value is its own class.
type DecisionTreeClassifier struct {
	State       *model.StateManager
	Params      Params
	Tree        *Tree
	Importances []float64
	// ClassLabels holds the sorted class labels; leaf values are
	// distributions over this order.
	ClassLabels []float64
}

// NewDecisionTreeClassifier creates a classification tree using gini
// impurity unless WithCriterion says otherwise.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	return &DecisionTreeClassifier{
		State:  model.NewStateManager(),
		Params: defaultParams(CriterionGini, opts),
	}
}

// Fit grows the tree on every row of X.
func (t *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	target, err := model.CheckFitInput("DecisionTreeClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	classes, codes := model.EncodeLabels(target)
	rows, _ := X.Dims()
	return t.FitEncoded(denseRows(X), codes, classes, identity(rows))
}

// FitEncoded grows the tree on the rows listed in sampleIdx. codes index
// into classes, which must cover every label of the full training set even
// if sampleIdx misses some of them.
func (t *DecisionTreeClassifier) FitEncoded(X *mat.Dense, codes []int, classes []float64, sampleIdx []int) error {
	if err := t.Params.validate(false); err != nil {
		return err
	}
	if len(sampleIdx) == 0 || len(classes) == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}
	if t.State == nil {
		t.State = model.NewStateManager()
	}
	t.State.Reset()

	crit := newClassCriterion(codes, len(classes), t.Params.Criterion == CriterionEntropy)
	b := newBuilder(X, crit, t.Params)
	t.Tree = b.build(sampleIdx)
	t.Importances = t.Tree.importances()
	t.ClassLabels = append([]float64(nil), classes...)

	_, cols := X.Dims()
	t.State.SetDimensions(cols, len(sampleIdx))
	t.State.SetFitted()
	return nil
}

// PredictProba returns the leaf class distribution for each row of X, one
// column per entry of Classes.
func (t *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := t.checkPredict(X); err != nil {
		return nil, err
	}
	rows, cols := X.Dims()
	out := mat.NewDense(rows, len(t.ClassLabels), nil)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		out.SetRow(i, t.Tree.Value(row))
	}
	return out, nil
}

// Predict returns the most probable class label for each row of X.
// Ties go to the smallest label.
func (t *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := t.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return model.ArgmaxLabels(proba, t.ClassLabels), nil
}

func (t *DecisionTreeClassifier) checkPredict(X mat.Matrix) error {
	if t.State == nil {
		return errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}
	return t.State.CheckPredictInput("DecisionTreeClassifier", X)
}

// Score returns the mean accuracy on X and y.
func (t *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := t.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

// Classes returns the sorted class labels seen during Fit.
func (t *DecisionTreeClassifier) Classes() []float64 {
	return append([]float64(nil), t.ClassLabels...)
}

// IsFitted reports whether Fit has completed.
func (t *DecisionTreeClassifier) IsFitted() bool {
	return t.State != nil && t.State.IsFitted()
}

// NFeatures returns the number of features seen during Fit.
func (t *DecisionTreeClassifier) NFeatures() int {
	if t.State == nil {
		return 0
	}
	n, _ := t.State.GetDimensions()
	return n
}

// GetParams returns the hyperparameters.
func (t *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return t.Params.asMap()
}

// FeatureImportances returns the normalised impurity decrease per feature.
func (t *DecisionTreeClassifier) FeatureImportances() ([]float64, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "FeatureImportances")
	}
	return append([]float64(nil), t.Importances...), nil
}

// Depth returns the depth of the fitted tree.
func (t *DecisionTreeClassifier) Depth() int {
	if t.Tree == nil {
		return 0
	}
	return t.Tree.MaxDepth
}

// NLeaves returns the number of leaves of the fitted tree.
func (t *DecisionTreeClassifier) NLeaves() int {
	if t.Tree == nil {
		return 0
	}
	return t.Tree.NLeaves()
}
