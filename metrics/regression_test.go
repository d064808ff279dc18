package metrics

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: mat.NewVecDense(5, []float64{10, 20, 30, 40, 50}),
			yPred: mat.NewVecDense(5, []float64{10, 20, 30, 40, 50}),
			want:  0.0,
		},
		{
			name:  "simple case",
			yTrue: mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0}),
			yPred: mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5}),
			want:  0.25, // (0.25 * 4) / 4
		},
		{
			name:  "larger errors",
			yTrue: mat.NewVecDense(3, []float64{10.0, 20.0, 30.0}),
			yPred: mat.NewVecDense(3, []float64{12.0, 18.0, 33.0}),
			want:  17.0 / 3.0, // (4 + 4 + 9) / 3
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(3, []float64{1.0, 2.0, 3.0}),
			yPred:   mat.NewVecDense(2, []float64{1.0, 2.0}),
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MSE() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("MSE() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMAE(t *testing.T) {
	tests := []struct {
		name    string
		yTrue   *mat.VecDense
		yPred   *mat.VecDense
		want    float64
		wantErr bool
	}{
		{
			name:  "perfect prediction",
			yTrue: mat.NewVecDense(3, []float64{1, 2, 3}),
			yPred: mat.NewVecDense(3, []float64{1, 2, 3}),
			want:  0,
		},
		{
			name:  "mixed signs",
			yTrue: mat.NewVecDense(4, []float64{10, 20, 30, 40}),
			yPred: mat.NewVecDense(4, []float64{12, 18, 33, 40}),
			want:  7.0 / 4.0, // (2 + 2 + 3 + 0) / 4
		},
		{
			name:    "dimension mismatch",
			yTrue:   mat.NewVecDense(2, []float64{1, 2}),
			yPred:   mat.NewVecDense(1, []float64{1}),
			wantErr: true,
		},
		{
			name:    "empty vectors",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MAE(tt.yTrue, tt.yPred)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MAE() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("MAE() = %v, want %v", got, tt.want)
			}
		})
	}
}

// MAE and MSE are non-negative and zero exactly when every prediction matches.
func TestErrorMetricsProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 100; trial++ {
		n := 1 + rng.Intn(20)
		yTrue := mat.NewVecDense(n, nil)
		yPred := mat.NewVecDense(n, nil)
		for i := 0; i < n; i++ {
			v := rng.NormFloat64() * 1000
			yTrue.SetVec(i, v)
			yPred.SetVec(i, v)
		}

		mae, err := MAE(yTrue, yPred)
		if err != nil || mae != 0 {
			t.Fatalf("MAE on identical vectors = %v, %v", mae, err)
		}
		mse, err := MSE(yTrue, yPred)
		if err != nil || mse != 0 {
			t.Fatalf("MSE on identical vectors = %v, %v", mse, err)
		}

		k := rng.Intn(n)
		yPred.SetVec(k, yPred.AtVec(k)+rng.Float64()+0.01)

		mae, _ = MAE(yTrue, yPred)
		mse, _ = MSE(yTrue, yPred)
		if mae <= 0 || mse <= 0 {
			t.Fatalf("trial %d: expected positive errors, got MAE=%v MSE=%v", trial, mae, mse)
		}
	}
}

func TestMatrixVariants(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	yPred := mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5})

	mse, err := MSEMatrix(yTrue, yPred)
	if err != nil || math.Abs(mse-0.25) > 1e-12 {
		t.Errorf("MSEMatrix = %v, %v", mse, err)
	}
	mae, err := MAEMatrix(yTrue, yPred)
	if err != nil || math.Abs(mae-0.5) > 1e-12 {
		t.Errorf("MAEMatrix = %v, %v", mae, err)
	}

	// VecDense satisfies mat.Matrix as an n×1 column.
	mae, err = MAEMatrix(mat.NewVecDense(4, []float64{1, 2, 3, 4}), yPred)
	if err != nil || math.Abs(mae-0.5) > 1e-12 {
		t.Errorf("MAEMatrix(VecDense) = %v, %v", mae, err)
	}

	wide := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if _, err := MSEMatrix(wide, wide); err == nil {
		t.Error("multiple columns should error")
	}
	if _, err := MAEMatrix(yTrue, mat.NewDense(3, 1, nil)); err == nil {
		t.Error("row mismatch should error")
	}
}

func TestRMSEAndR2(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	rmse, err := RMSE(yTrue, mat.NewVecDense(4, []float64{2, 3, 4, 5}))
	if err != nil || math.Abs(rmse-1) > 1e-12 {
		t.Errorf("RMSE = %v, %v", rmse, err)
	}

	r2, err := R2Score(yTrue, mat.NewVecDense(4, []float64{4, 3, 2, 1}))
	if err != nil || math.Abs(r2-(-3)) > 1e-12 {
		t.Errorf("R2Score = %v, %v; want -3", r2, err)
	}
}

func TestR2Score_ConstantTarget(t *testing.T) {
	var warnings []error
	errors.SetWarningHandler(func(w error) { warnings = append(warnings, w) })
	defer errors.SetWarningHandler(func(error) {})

	constant := mat.NewVecDense(3, []float64{3, 3, 3})
	tests := []struct {
		name  string
		yPred *mat.VecDense
		want  float64
	}{
		{"exact", mat.NewVecDense(3, []float64{3, 3, 3}), 1},
		{"off", mat.NewVecDense(3, []float64{1, 2, 3}), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings = nil
			r2, err := R2Score(constant, tt.yPred)
			if err != nil {
				t.Fatalf("R2Score: %v", err)
			}
			if r2 != tt.want {
				t.Errorf("R2Score = %v, want %v", r2, tt.want)
			}
			var umw *errors.UndefinedMetricWarning
			if len(warnings) != 1 || !errors.As(warnings[0], &umw) {
				t.Fatalf("expected one UndefinedMetricWarning, got %v", warnings)
			}
			if umw.Result != tt.want {
				t.Errorf("warning result = %v, want %v", umw.Result, tt.want)
			}
		})
	}
}

func TestAccuracyScore(t *testing.T) {
	acc, err := AccuracyScore(
		mat.NewVecDense(4, []float64{100, 200, 300, 400}),
		mat.NewVecDense(4, []float64{100, 200, 250, 400}),
	)
	if err != nil || acc != 0.75 {
		t.Errorf("AccuracyScore = %v, %v; want 0.75", acc, err)
	}
	if _, err := AccuracyMatrix(mat.NewDense(2, 1, nil), mat.NewDense(1, 1, nil)); err == nil {
		t.Error("row mismatch should error")
	}
}

func BenchmarkMSE(b *testing.B) {
	size := 10000
	yTrue := mat.NewVecDense(size, nil)
	yPred := mat.NewVecDense(size, nil)
	for i := 0; i < size; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.1*float64(i%10))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MSE(yTrue, yPred)
	}
}
