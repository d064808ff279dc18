package model

import "gonum.org/v1/gonum/mat"

// Fitter は学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う。戻り値は n×1 の行列
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Estimator は学習・予測・保存が可能な教師ありモデル。
type Estimator interface {
	Fitter
	Predictor

	// IsFitted は Fit が正常に完了したかどうかを返す
	IsFitted() bool

	// NFeatures は Fit 時に見た特徴量の列数を返す
	NFeatures() int
}
