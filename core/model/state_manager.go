// Package model provides the estimator contracts, fitted-state tracking and
// artifact persistence shared by every model family.
package model

import (
	"sync"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
// Its exported fields are gob encoded as part of the owning estimator.
type StateManager struct {
	Fitted bool
	mu     sync.RWMutex

	NFeatures int
	NSamples  int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Fitted
}

// SetFitted marks the model as fitted.
func (s *StateManager) SetFitted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = true
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Fitted = false
	s.NFeatures = 0
	s.NSamples = 0
}

// SetDimensions sets the number of features and samples seen during fitting.
func (s *StateManager) SetDimensions(nFeatures, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.NFeatures = nFeatures
	s.NSamples = nSamples
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.NFeatures, s.NSamples
}

// RequireFitted returns a NotFittedError naming modelName and method if the
// model has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// CheckPredictInput verifies that X has the feature count seen during Fit.
func (s *StateManager) CheckPredictInput(modelName string, X interface{ Dims() (int, int) }) error {
	if err := s.RequireFitted(modelName, "Predict"); err != nil {
		return err
	}
	_, c := X.Dims()
	if nFeatures, _ := s.GetDimensions(); c != nFeatures {
		return errors.NewDimensionError(modelName+".Predict", nFeatures, c, 1)
	}
	return nil
}
