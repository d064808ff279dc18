package metrics

import (
	"github.com/YuminosukeSato/pricefit/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// AccuracyScore は正解率（完全一致の割合）を計算する
func AccuracyScore(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("AccuracyScore", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("AccuracyScore", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AccuracyMatrix は n×1 行列に対する AccuracyScore
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columnPair("AccuracyMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return AccuracyScore(t, p)
}
