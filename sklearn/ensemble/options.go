// Package ensemble provides bagged random forests built from the trees in
// package tree.
package ensemble

import (
	"math"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
	"github.com/YuminosukeSato/pricefit/sklearn/tree"
)

// Params holds forest hyperparameters. Exported for gob.
type Params struct {
	NEstimators int
	Bootstrap   bool
	// MaxFeatures is the number of features examined per split. 0 selects
	// all features for regression and sqrt(n_features) for classification.
	MaxFeatures     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Criterion       string
	RandomState     int64
	// NJobs bounds the number of trees fitted concurrently; <= 0 uses every CPU.
	NJobs int
}

// Option configures a forest.
type Option func(*Params)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) Option {
	return func(p *Params) { p.NEstimators = n }
}

// WithBootstrap toggles sampling rows with replacement for each tree.
func WithBootstrap(b bool) Option {
	return func(p *Params) { p.Bootstrap = b }
}

// WithMaxFeatures sets the features examined per split.
func WithMaxFeatures(n int) Option {
	return func(p *Params) { p.MaxFeatures = n }
}

// WithMaxDepth limits the depth of every tree (0 for unlimited).
func WithMaxDepth(d int) Option {
	return func(p *Params) { p.MaxDepth = d }
}

// WithMinSamplesSplit sets the minimum samples needed to split a node.
func WithMinSamplesSplit(n int) Option {
	return func(p *Params) { p.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples per leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(p *Params) { p.MinSamplesLeaf = n }
}

// WithCriterion sets the split criterion of the classifier trees.
func WithCriterion(c string) Option {
	return func(p *Params) { p.Criterion = c }
}

// WithRandomState seeds tree seeds and bootstrap draws.
func WithRandomState(seed int64) Option {
	return func(p *Params) { p.RandomState = seed }
}

// WithNJobs bounds fitting concurrency.
func WithNJobs(n int) Option {
	return func(p *Params) { p.NJobs = n }
}

func defaultParams(criterion string, opts []Option) Params {
	p := Params{
		NEstimators:     100,
		Bootstrap:       true,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       criterion,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func (p Params) validate() error {
	if p.NEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be >= 1", p.NEstimators)
	}
	if p.MaxFeatures < 0 {
		return errors.NewValidationError("max_features", "must be >= 0", p.MaxFeatures)
	}
	return nil
}

// treeOptions returns the options of one member tree.
func (p Params) treeOptions(seed int64, maxFeatures int) []tree.Option {
	return []tree.Option{
		tree.WithCriterion(p.Criterion),
		tree.WithMaxDepth(p.MaxDepth),
		tree.WithMinSamplesSplit(p.MinSamplesSplit),
		tree.WithMinSamplesLeaf(p.MinSamplesLeaf),
		tree.WithMaxFeatures(maxFeatures),
		tree.WithRandomState(seed),
	}
}

func (p Params) asMap() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":      p.NEstimators,
		"bootstrap":         p.Bootstrap,
		"max_features":      p.MaxFeatures,
		"max_depth":         p.MaxDepth,
		"min_samples_split": p.MinSamplesSplit,
		"min_samples_leaf":  p.MinSamplesLeaf,
		"criterion":         p.Criterion,
		"random_state":      p.RandomState,
		"n_jobs":            p.NJobs,
	}
}

func sqrtFeatures(nFeatures int) int {
	return int(math.Max(1, math.Floor(math.Sqrt(float64(nFeatures)))))
}
