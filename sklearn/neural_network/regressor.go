package neural_network

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/metrics"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

func init() {
	model.Register("pricefit.neural_network.MLPRegressor", &MLPRegressor{})
}

// MLPRegressor is a multi-layer perceptron with an identity output layer
// trained on squared error.
//
//	mlp := neural_network.NewMLPRegressor(
//	    neural_network.WithHiddenLayerSizes(100, 50),
//	    neural_network.WithMaxIter(500),
//	    neural_network.WithRandomState(42),
//	)
type MLPRegressor struct {
	State     *model.StateManager
	Params    Params
	Net       *Network
	LossCurve []float64
	NIter     int
}

// NewMLPRegressor creates a regressor with one hidden layer of 100 units
// unless configured otherwise.
func NewMLPRegressor(opts ...Option) *MLPRegressor {
	return &MLPRegressor{
		State:  model.NewStateManager(),
		Params: defaultParams(opts),
	}
}

// Fit trains the network from a fresh seeded initialisation.
func (m *MLPRegressor) Fit(X, y mat.Matrix) error {
	if err := m.Params.validate(); err != nil {
		return err
	}
	target, err := model.CheckFitInput("MLPRegressor.Fit", X, y)
	if err != nil {
		return err
	}
	if m.State == nil {
		m.State = model.NewStateManager()
	}
	m.State.Reset()

	rows, cols := X.Dims()
	res, err := fitNetwork("neural_network.mlp_regressor", mat.DenseCopyOf(X), mat.NewDense(rows, 1, target), OutputIdentity, m.Params)
	if err != nil {
		return err
	}
	m.Net = res.net
	m.LossCurve = res.lossCurve
	m.NIter = res.nIter
	m.State.SetDimensions(cols, rows)
	m.State.SetFitted()
	return nil
}

// Predict returns the network output for each row of X as an n×1 matrix.
func (m *MLPRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if m.State == nil {
		return nil, errors.NewNotFittedError("MLPRegressor", "Predict")
	}
	if err := m.State.CheckPredictInput("MLPRegressor", X); err != nil {
		return nil, err
	}
	return m.Net.predict(X), nil
}

// Score returns R² on X and y.
func (m *MLPRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(metrics.ColumnVector(y), metrics.ColumnVector(pred))
}

// IsFitted reports whether Fit has completed.
func (m *MLPRegressor) IsFitted() bool {
	return m.State != nil && m.State.IsFitted()
}

// NFeatures returns the number of features seen during Fit.
func (m *MLPRegressor) NFeatures() int {
	if m.State == nil {
		return 0
	}
	n, _ := m.State.GetDimensions()
	return n
}

// IsRegressor marks the estimator as a regressor.
func (m *MLPRegressor) IsRegressor() {}

// GetParams returns the hyperparameters.
func (m *MLPRegressor) GetParams() map[string]interface{} {
	return m.Params.asMap()
}
