// Package neural_network provides multilayer perceptrons trained with Adam.
package neural_network

import (
	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// Params holds the MLP hyperparameters. Exported for gob.
type Params struct {
	HiddenLayerSizes []int
	// Alpha is the L2 penalty.
	Alpha            float64
	LearningRateInit float64
	Beta1            float64
	Beta2            float64
	Epsilon          float64
	// BatchSize of 0 means min(200, n_samples).
	BatchSize     int
	MaxIter       int
	Tol           float64
	NIterNoChange int
	Shuffle       bool
	RandomState   int64
}

// Option configures an MLP.
type Option func(*Params)

// WithHiddenLayerSizes sets the width of each hidden layer.
func WithHiddenLayerSizes(sizes ...int) Option {
	return func(p *Params) { p.HiddenLayerSizes = append([]int(nil), sizes...) }
}

// WithAlpha sets the L2 penalty.
func WithAlpha(alpha float64) Option {
	return func(p *Params) { p.Alpha = alpha }
}

// WithLearningRate sets the initial Adam step size.
func WithLearningRate(lr float64) Option {
	return func(p *Params) { p.LearningRateInit = lr }
}

// WithBatchSize sets the minibatch size (0 for min(200, n)).
func WithBatchSize(n int) Option {
	return func(p *Params) { p.BatchSize = n }
}

// WithMaxIter sets the maximum number of epochs.
func WithMaxIter(n int) Option {
	return func(p *Params) { p.MaxIter = n }
}

// WithTol sets the loss improvement below which an epoch counts as stalled.
func WithTol(tol float64) Option {
	return func(p *Params) { p.Tol = tol }
}

// WithNIterNoChange sets how many stalled epochs end training.
func WithNIterNoChange(n int) Option {
	return func(p *Params) { p.NIterNoChange = n }
}

// WithShuffle toggles reshuffling the samples every epoch.
func WithShuffle(shuffle bool) Option {
	return func(p *Params) { p.Shuffle = shuffle }
}

// WithRandomState seeds weight initialisation and shuffling.
func WithRandomState(seed int64) Option {
	return func(p *Params) { p.RandomState = seed }
}

func defaultParams(opts []Option) Params {
	p := Params{
		HiddenLayerSizes: []int{100},
		Alpha:            1e-4,
		LearningRateInit: 1e-3,
		Beta1:            0.9,
		Beta2:            0.999,
		Epsilon:          1e-8,
		MaxIter:          200,
		Tol:              1e-4,
		NIterNoChange:    10,
		Shuffle:          true,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p Params) validate() error {
	if len(p.HiddenLayerSizes) == 0 {
		return errors.NewValidationError("hidden_layer_sizes", "must name at least one layer", p.HiddenLayerSizes)
	}
	for _, s := range p.HiddenLayerSizes {
		if s < 1 {
			return errors.NewValidationError("hidden_layer_sizes", "layer sizes must be >= 1", p.HiddenLayerSizes)
		}
	}
	switch {
	case p.Alpha < 0:
		return errors.NewValidationError("alpha", "must be >= 0", p.Alpha)
	case p.LearningRateInit <= 0:
		return errors.NewValidationError("learning_rate_init", "must be > 0", p.LearningRateInit)
	case p.Beta1 < 0 || p.Beta1 >= 1:
		return errors.NewValidationError("beta_1", "must be in [0, 1)", p.Beta1)
	case p.Beta2 < 0 || p.Beta2 >= 1:
		return errors.NewValidationError("beta_2", "must be in [0, 1)", p.Beta2)
	case p.Epsilon <= 0:
		return errors.NewValidationError("epsilon", "must be > 0", p.Epsilon)
	case p.BatchSize < 0:
		return errors.NewValidationError("batch_size", "must be >= 0", p.BatchSize)
	case p.MaxIter < 1:
		return errors.NewValidationError("max_iter", "must be >= 1", p.MaxIter)
	case p.Tol < 0:
		return errors.NewValidationError("tol", "must be >= 0", p.Tol)
	case p.NIterNoChange < 1:
		return errors.NewValidationError("n_iter_no_change", "must be >= 1", p.NIterNoChange)
	}
	return nil
}

func (p Params) batchSize(n int) int {
	b := p.BatchSize
	if b == 0 {
		b = 200
	}
	if b > n {
		b = n
	}
	return b
}

func (p Params) asMap() map[string]interface{} {
	return map[string]interface{}{
		"hidden_layer_sizes": append([]int(nil), p.HiddenLayerSizes...),
		"alpha":              p.Alpha,
		"learning_rate_init": p.LearningRateInit,
		"beta_1":             p.Beta1,
		"beta_2":             p.Beta2,
		"epsilon":            p.Epsilon,
		"batch_size":         p.BatchSize,
		"max_iter":           p.MaxIter,
		"tol":                p.Tol,
		"n_iter_no_change":   p.NIterNoChange,
		"shuffle":            p.Shuffle,
		"random_state":       p.RandomState,
	}
}
