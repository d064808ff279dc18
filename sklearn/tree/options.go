package tree

import (
	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// Criterion names accepted by WithCriterion.
const (
	CriterionSquaredError = "squared_error"
	CriterionGini         = "gini"
	CriterionEntropy      = "entropy"
)

// Params holds the hyperparameters shared by both tree variants.
// Exported so that fitted trees round-trip through gob.
type Params struct {
	Criterion string
	// MaxDepth limits the depth of the tree; 0 means unlimited.
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	// MaxFeatures is the number of features examined per split; 0 means all.
	MaxFeatures int
	RandomState int64
}

// Option configures a decision tree.
type Option func(*Params)

// WithCriterion sets the impurity measure.
func WithCriterion(criterion string) Option {
	return func(p *Params) {
		p.Criterion = criterion
	}
}

// WithMaxDepth sets the maximum depth (0 for unlimited).
func WithMaxDepth(depth int) Option {
	return func(p *Params) {
		p.MaxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples needed to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(p *Params) {
		p.MinSamplesSplit = n
	}
}

// WithMinSamplesLeaf sets the minimum number of samples in each leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(p *Params) {
		p.MinSamplesLeaf = n
	}
}

// WithMaxFeatures sets how many features are examined per split (0 for all).
func WithMaxFeatures(n int) Option {
	return func(p *Params) {
		p.MaxFeatures = n
	}
}

// WithRandomState sets the seed of the feature permutation drawn at each node.
func WithRandomState(seed int64) Option {
	return func(p *Params) {
		p.RandomState = seed
	}
}

func defaultParams(criterion string, opts []Option) Params {
	p := Params{
		Criterion:       criterion,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p Params) validate(regression bool) error {
	switch p.Criterion {
	case CriterionSquaredError:
		if !regression {
			return errors.NewValidationError("criterion", "squared_error is a regression criterion", p.Criterion)
		}
	case CriterionGini, CriterionEntropy:
		if regression {
			return errors.NewValidationError("criterion", "classification criterion used for regression", p.Criterion)
		}
	default:
		return errors.NewValidationError("criterion", "unknown criterion", p.Criterion)
	}
	if p.MaxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be >= 0", p.MaxDepth)
	}
	if p.MinSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be >= 2", p.MinSamplesSplit)
	}
	if p.MinSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", p.MinSamplesLeaf)
	}
	if p.MaxFeatures < 0 {
		return errors.NewValidationError("max_features", "must be >= 0", p.MaxFeatures)
	}
	return nil
}

func (p Params) asMap() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         p.Criterion,
		"max_depth":         p.MaxDepth,
		"min_samples_split": p.MinSamplesSplit,
		"min_samples_leaf":  p.MinSamplesLeaf,
		"max_features":      p.MaxFeatures,
		"random_state":      p.RandomState,
	}
}
