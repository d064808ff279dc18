package neural_network

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/metrics"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

func init() {
	model.Register("pricefit.neural_network.MLPClassifier", &MLPClassifier{})
}

// MLPClassifier has a softmax output layer over every distinct target
// value and minimises cross-entropy.
type MLPClassifier struct {
	State       *model.StateManager
	Params      Params
	Net         *Network
	ClassLabels []float64
	LossCurve   []float64
	NIter       int
}

// NewMLPClassifier creates a classifier with one hidden layer of 100 units
// unless configured otherwise.
func NewMLPClassifier(opts ...Option) *MLPClassifier {
	return &MLPClassifier{
		State:  model.NewStateManager(),
		Params: defaultParams(opts),
	}
}

// Fit trains the network on one-hot encoded labels.
func (m *MLPClassifier) Fit(X, y mat.Matrix) error {
	if err := m.Params.validate(); err != nil {
		return err
	}
	target, err := model.CheckFitInput("MLPClassifier.Fit", X, y)
	if err != nil {
		return err
	}
	if m.State == nil {
		m.State = model.NewStateManager()
	}
	m.State.Reset()

	rows, cols := X.Dims()
	classes, codes := model.EncodeLabels(target)
	onehot := mat.NewDense(rows, len(classes), nil)
	for i, c := range codes {
		onehot.Set(i, c, 1)
	}

	res, err := fitNetwork("neural_network.mlp_classifier", mat.DenseCopyOf(X), onehot, OutputSoftmax, m.Params)
	if err != nil {
		return err
	}
	m.Net = res.net
	m.ClassLabels = classes
	m.LossCurve = res.lossCurve
	m.NIter = res.nIter
	m.State.SetDimensions(cols, rows)
	m.State.SetFitted()
	return nil
}

// PredictProba returns the softmax output, one column per class.
func (m *MLPClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if m.State == nil {
		return nil, errors.NewNotFittedError("MLPClassifier", "Predict")
	}
	if err := m.State.CheckPredictInput("MLPClassifier", X); err != nil {
		return nil, err
	}
	return m.Net.predict(X), nil
}

// Predict returns the most probable class label for each row.
func (m *MLPClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, err
	}
	return model.ArgmaxLabels(proba, m.ClassLabels), nil
}

// Score returns the mean accuracy on X and y.
func (m *MLPClassifier) Score(X, y mat.Matrix) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.AccuracyMatrix(y, pred)
}

// Classes returns the sorted class labels seen during Fit.
func (m *MLPClassifier) Classes() []float64 {
	return append([]float64(nil), m.ClassLabels...)
}

// IsFitted reports whether Fit has completed.
func (m *MLPClassifier) IsFitted() bool {
	return m.State != nil && m.State.IsFitted()
}

// NFeatures returns the number of features seen during Fit.
func (m *MLPClassifier) NFeatures() int {
	if m.State == nil {
		return 0
	}
	n, _ := m.State.GetDimensions()
	return n
}

// GetParams returns the hyperparameters.
func (m *MLPClassifier) GetParams() map[string]interface{} {
	return m.Params.asMap()
}
