package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

func init() {
	model.Register("pricefit.preprocessing.ScaledEstimator", &ScaledEstimator{})
}

// ScaledEstimator standardises features before handing them to Estimator,
// so that one artifact carries both the scaler statistics and the model.
type ScaledEstimator struct {
	Scaler    *StandardScaler
	Estimator model.Estimator
}

// NewScaledEstimator wraps est behind a default StandardScaler.
func NewScaledEstimator(est model.Estimator) *ScaledEstimator {
	return &ScaledEstimator{Scaler: NewStandardScalerDefault(), Estimator: est}
}

// Fit fits the scaler on X, then the estimator on the scaled X.
func (p *ScaledEstimator) Fit(X, y mat.Matrix) error {
	if p.Estimator == nil {
		return errors.NewValueError("ScaledEstimator.Fit", "no estimator to wrap")
	}
	if p.Scaler == nil {
		p.Scaler = NewStandardScalerDefault()
	}
	scaled, err := p.Scaler.FitTransform(X)
	if err != nil {
		return err
	}
	return p.Estimator.Fit(scaled, y)
}

// Predict scales X with the fitted statistics and predicts.
func (p *ScaledEstimator) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("ScaledEstimator", "Predict")
	}
	scaled, err := p.Scaler.Transform(X)
	if err != nil {
		return nil, err
	}
	return p.Estimator.Predict(scaled)
}

// Score delegates to the wrapped estimator when it implements Scorer.
func (p *ScaledEstimator) Score(X, y mat.Matrix) (float64, error) {
	scorer, ok := p.Estimator.(model.Scorer)
	if !ok {
		return 0, errors.NewValueError("ScaledEstimator.Score", "wrapped estimator has no Score method")
	}
	scaled, err := p.Scaler.Transform(X)
	if err != nil {
		return 0, err
	}
	return scorer.Score(scaled, y)
}

// IsFitted reports whether both the scaler and the estimator are fitted.
func (p *ScaledEstimator) IsFitted() bool {
	return p.Scaler != nil && p.Scaler.State != nil && p.Scaler.State.IsFitted() &&
		p.Estimator != nil && p.Estimator.IsFitted()
}

// NFeatures returns the number of raw features seen during Fit.
func (p *ScaledEstimator) NFeatures() int {
	if p.Estimator == nil {
		return 0
	}
	return p.Estimator.NFeatures()
}

// Unwrap returns the wrapped estimator.
func (p *ScaledEstimator) Unwrap() model.Estimator {
	return p.Estimator
}
