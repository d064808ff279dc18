// Package model_selection partitions samples into training and test sets.
package model_selection

import (
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// Split holds the row indices of each partition.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit draws a seeded permutation of 0..nSamples-1 and assigns the
// first ceil(testSize·n) positions to the test set and the rest to the
// training set. The same (nSamples, testSize, seed) always yields the same
// split.
func TrainTestSplit(nSamples int, testSize float64, seed int64) (Split, error) {
	if nSamples <= 0 {
		return Split{}, errors.NewValidationError("n_samples", "must be positive", nSamples)
	}
	if !(testSize > 0 && testSize < 1) {
		return Split{}, errors.NewValidationError("test_size", "must lie in (0, 1)", testSize)
	}

	nTest := int(math.Ceil(testSize * float64(nSamples)))
	nTrain := nSamples - nTest
	if nTrain <= 0 {
		return Split{}, errors.NewValidationError("test_size",
			"leaves no training samples", testSize)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(nSamples)
	return Split{
		Test:  append([]int(nil), perm[:nTest]...),
		Train: append([]int(nil), perm[nTest:]...),
	}, nil
}

// Validate checks that the partitions are disjoint, in range and cover
// 0..nSamples-1 exactly.
func (s Split) Validate(nSamples int) error {
	if len(s.Train)+len(s.Test) != nSamples {
		return errors.NewDimensionError("Split.Validate", nSamples, len(s.Train)+len(s.Test), 0)
	}
	seen := make([]bool, nSamples)
	for _, part := range [][]int{s.Train, s.Test} {
		for _, i := range part {
			if i < 0 || i >= nSamples {
				return errors.NewValidationError("split.index", "out of range", i)
			}
			if seen[i] {
				return errors.NewValidationError("split.index", "appears more than once", i)
			}
			seen[i] = true
		}
	}
	return nil
}

// Sorted returns a copy of idx in ascending order.
func Sorted(idx []int) []int {
	out := append([]int(nil), idx...)
	sort.Ints(out)
	return out
}

// TakeRows returns the rows of X selected by idx, in idx order.
func TakeRows(X mat.Matrix, idx []int) *mat.Dense {
	_, c := X.Dims()
	out := mat.NewDense(len(idx), c, nil)
	for i, r := range idx {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(r, j))
		}
	}
	return out
}

// TakeVec returns the entries of y selected by idx, in idx order.
func TakeVec(y mat.Vector, idx []int) *mat.VecDense {
	out := mat.NewVecDense(len(idx), nil)
	for i, r := range idx {
		out.SetVec(i, y.AtVec(r))
	}
	return out
}
