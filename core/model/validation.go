package model

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// CheckFitInput validates a training pair and returns y as a flat slice.
// y may be an n×1 matrix or a vector.
func CheckFitInput(op string, X, y mat.Matrix) ([]float64, error) {
	if X == nil || y == nil {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return nil, errors.NewDimensionError(op, 1, yCols, 1)
	}
	if yRows != rows {
		return nil, errors.NewDimensionError(op, rows, yRows, 0)
	}
	if err := errors.CheckMatrix(op, X, rows, cols, -1); err != nil {
		return nil, err
	}
	target := make([]float64, rows)
	for i := range target {
		target[i] = y.At(i, 0)
	}
	if err := errors.CheckNumericalStability(op, target, -1); err != nil {
		return nil, err
	}
	return target, nil
}

// EncodeLabels maps each distinct value of y to its rank among the sorted
// distinct values.
func EncodeLabels(y []float64) (classes []float64, codes []int) {
	seen := make(map[float64]struct{}, len(y))
	for _, v := range y {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			classes = append(classes, v)
		}
	}
	sort.Float64s(classes)
	codes = make([]int, len(y))
	for i, v := range y {
		codes[i] = sort.SearchFloat64s(classes, v)
	}
	return classes, codes
}

// ArgmaxLabels picks, for each row of proba, the label whose column holds
// the largest value. The first maximum wins.
func ArgmaxLabels(proba mat.Matrix, labels []float64) *mat.Dense {
	rows, cols := proba.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		best := 0
		for k := 1; k < cols; k++ {
			if proba.At(i, k) > proba.At(i, best) {
				best = k
			}
		}
		out.Set(i, 0, labels[best])
	}
	return out
}
