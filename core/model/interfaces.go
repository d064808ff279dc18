package model

import (
	"gonum.org/v1/gonum/mat"
)

// Scorer is the interface for models that can compute a score.
// Regressors return R², classifiers return mean accuracy.
type Scorer interface {
	Score(X, y mat.Matrix) (float64, error)
}

// Regressor combines interfaces for regression models.
type Regressor interface {
	Estimator
	Scorer

	// IsRegressor marks the regression capability variant.
	IsRegressor()
}

// Classifier combines interfaces for classification models.
type Classifier interface {
	Estimator
	Scorer

	// PredictProba returns probability estimates for each class, one column
	// per entry of Classes.
	PredictProba(X mat.Matrix) (mat.Matrix, error)

	// Classes returns the sorted class labels seen during fitting.
	Classes() []float64
}

// ParameterGetter is the interface for models that expose their parameters.
type ParameterGetter interface {
	// GetParams returns the model's hyperparameters.
	GetParams() map[string]interface{}
}

// FeatureImportancer is implemented by tree based models.
type FeatureImportancer interface {
	FeatureImportances() ([]float64, error)
}

// Kind returns "regressor" or "classifier" for a fitted estimator, or
// "estimator" when it implements neither capability.
func Kind(e Estimator) string {
	switch e.(type) {
	case Regressor:
		return "regressor"
	case Classifier:
		return "classifier"
	default:
		return "estimator"
	}
}
