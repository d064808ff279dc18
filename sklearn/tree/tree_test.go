package tree

import (
	"bytes"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/core/model"
	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// TestDecisionTreeClassifier_FitPredict_Binary tests binary classification
func TestDecisionTreeClassifier_FitPredict_Binary(t *testing.T) {
	// Create simple linearly separable data
	X := mat.NewDense(8, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		1, 1,
		3, 3,
		3, 4,
		4, 3,
		4, 4,
	})

	y := mat.NewDense(8, 1, []float64{
		0, 0, 0, 0, // Class 0 (lower left)
		1, 1, 1, 1, // Class 1 (upper right)
	})

	dt := NewDecisionTreeClassifier(
		WithCriterion("gini"),
		WithMaxDepth(5),
	)

	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	predictions, err := dt.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	for i := 0; i < 8; i++ {
		if pred, actual := predictions.At(i, 0), y.At(i, 0); pred != actual {
			t.Errorf("Sample %d: expected %v, got %v", i, actual, pred)
		}
	}

	XTest := mat.NewDense(2, 2, []float64{
		0.5, 0.5, // Should be class 0
		3.5, 3.5, // Should be class 1
	})
	testPreds, err := dt.Predict(XTest)
	if err != nil {
		t.Fatalf("Failed to predict on test data: %v", err)
	}
	if testPreds.At(0, 0) != 0 {
		t.Errorf("Test point (0.5,0.5) should be class 0, got %v", testPreds.At(0, 0))
	}
	if testPreds.At(1, 0) != 1 {
		t.Errorf("Test point (3.5,3.5) should be class 1, got %v", testPreds.At(1, 0))
	}
}

// TestDecisionTreeClassifier_PredictProba tests probability predictions
func TestDecisionTreeClassifier_PredictProba(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		5, 5,
		5, 6,
		6, 5,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	dt := NewDecisionTreeClassifier(WithMaxDepth(3))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	probas, err := dt.PredictProba(X)
	if err != nil {
		t.Fatalf("Failed to predict probabilities: %v", err)
	}
	rows, cols := probas.Dims()
	if rows != 6 || cols != 2 {
		t.Fatalf("Expected 6x2 probabilities, got %dx%d", rows, cols)
	}
	for i := 0; i < rows; i++ {
		sum := probas.At(i, 0) + probas.At(i, 1)
		if math.Abs(sum-1.0) > 1e-10 {
			t.Errorf("Sample %d: probabilities sum to %v, expected 1.0", i, sum)
		}
	}
}

// TestDecisionTreeClassifier_Multiclass tests multiclass classification
func TestDecisionTreeClassifier_Multiclass(t *testing.T) {
	X := mat.NewDense(9, 2, []float64{
		0, 0, 0, 1, 1, 0, // Class 0
		5, 5, 5, 6, 6, 5, // Class 1
		10, 0, 10, 1, 11, 0, // Class 2
	})
	y := mat.NewDense(9, 1, []float64{0, 0, 0, 1, 1, 1, 2, 2, 2})

	dt := NewDecisionTreeClassifier(WithCriterion(CriterionGini))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	if got := len(dt.Classes()); got != 3 {
		t.Errorf("Expected 3 classes, got %d", got)
	}

	score, err := dt.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 1.0 {
		t.Errorf("Expected perfect training accuracy, got %v", score)
	}
}

// TestDecisionTreeClassifier_Entropy tests the entropy criterion
func TestDecisionTreeClassifier_Entropy(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		0, 0,
		1, 1,
		2, 2,
		5, 5,
		6, 6,
		7, 7,
	})
	y := mat.NewDense(6, 1, []float64{0, 0, 0, 1, 1, 1})

	dt := NewDecisionTreeClassifier(WithCriterion(CriterionEntropy))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}
	score, err := dt.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 1.0 {
		t.Errorf("Expected perfect score with entropy, got %v", score)
	}
	if dt.NLeaves() != 2 {
		t.Errorf("Expected a single split, got %d leaves", dt.NLeaves())
	}
}

// TestDecisionTreeClassifier_FeatureImportance checks that only the
// informative feature receives importance.
func TestDecisionTreeClassifier_FeatureImportance(t *testing.T) {
	X := mat.NewDense(8, 3, []float64{
		0, 5, 5,
		1, 5, 5,
		2, 5, 5,
		3, 5, 5,
		10, 5, 5,
		11, 5, 5,
		12, 5, 5,
		13, 5, 5,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	dt := NewDecisionTreeClassifier()
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	importances, err := dt.FeatureImportances()
	if err != nil {
		t.Fatalf("FeatureImportances failed: %v", err)
	}
	if len(importances) != 3 {
		t.Fatalf("Expected 3 importances, got %d", len(importances))
	}
	if math.Abs(importances[0]-1.0) > 1e-12 {
		t.Errorf("Feature 0 should carry all importance, got %v", importances[0])
	}
	if importances[1] != 0 || importances[2] != 0 {
		t.Errorf("Constant features should have zero importance, got %v", importances[1:])
	}
}

// TestDecisionTreeClassifier_MaxDepth tests depth limitation
func TestDecisionTreeClassifier_MaxDepth(t *testing.T) {
	X := mat.NewDense(16, 2, nil)
	y := mat.NewDense(16, 1, nil)
	for i := 0; i < 16; i++ {
		X.Set(i, 0, float64(i))
		X.Set(i, 1, float64(i%4))
		y.Set(i, 0, float64(i%2))
	}

	dt := NewDecisionTreeClassifier(WithMaxDepth(2))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}
	if depth := dt.Depth(); depth > 2 {
		t.Errorf("Tree depth %d exceeds max_depth 2", depth)
	}
}

// TestDecisionTreeClassifier_MinSamples tests min_samples_leaf
func TestDecisionTreeClassifier_MinSamples(t *testing.T) {
	X := mat.NewDense(10, 1, nil)
	y := mat.NewDense(10, 1, nil)
	for i := 0; i < 10; i++ {
		X.Set(i, 0, float64(i))
		y.Set(i, 0, float64(i%2))
	}

	dt := NewDecisionTreeClassifier(WithMinSamplesLeaf(3))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}
	for _, node := range dt.Tree.Nodes {
		if node.IsLeaf() && node.NSamples < 3 {
			t.Errorf("Leaf holds %d samples, want >= 3", node.NSamples)
		}
	}
	if n := dt.NLeaves(); n > 3 {
		t.Errorf("Expected at most 3 leaves, got %d", n)
	}
}

// TestDecisionTreeClassifier_ContinuousTarget treats each distinct value
// as its own class.
func TestDecisionTreeClassifier_ContinuousTarget(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 3, 4})
	y := mat.NewDense(4, 1, []float64{250000.5, 180000, 250000.5, 99000})

	dt := NewDecisionTreeClassifier(WithRandomState(42))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}
	want := []float64{99000, 180000, 250000.5}
	got := dt.Classes()
	if len(got) != len(want) {
		t.Fatalf("Expected classes %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Class %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestDecisionTreeClassifier_GetParams(t *testing.T) {
	dt := NewDecisionTreeClassifier(WithCriterion(CriterionEntropy), WithMaxDepth(5), WithMinSamplesSplit(4))
	params := dt.GetParams()

	if params["criterion"] != "entropy" {
		t.Errorf("criterion: expected 'entropy', got %v", params["criterion"])
	}
	if params["max_depth"] != 5 {
		t.Errorf("max_depth: expected 5, got %v", params["max_depth"])
	}
	if params["min_samples_split"] != 4 {
		t.Errorf("min_samples_split: expected 4, got %v", params["min_samples_split"])
	}
	if params["min_samples_leaf"] != 1 {
		t.Errorf("min_samples_leaf: expected 1, got %v", params["min_samples_leaf"])
	}
}

// TestDecisionTreeClassifier_NotFitted tests error when not fitted
func TestDecisionTreeClassifier_NotFitted(t *testing.T) {
	dt := NewDecisionTreeClassifier()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	_, err := dt.Predict(X)
	var nf *errors.NotFittedError
	if !errors.As(err, &nf) {
		t.Errorf("Expected NotFittedError, got %v", err)
	}
	if _, err := dt.PredictProba(X); err == nil {
		t.Error("Expected error when calling PredictProba before Fit")
	}
}

func TestDecisionTree_InvalidParams(t *testing.T) {
	X := mat.NewDense(2, 1, []float64{1, 2})
	y := mat.NewDense(2, 1, []float64{1, 2})

	tests := []struct {
		name string
		fit  func() error
	}{
		{"regressor with gini", func() error {
			return NewDecisionTreeRegressor(WithCriterion(CriterionGini)).Fit(X, y)
		}},
		{"classifier with squared_error", func() error {
			return NewDecisionTreeClassifier(WithCriterion(CriterionSquaredError)).Fit(X, y)
		}},
		{"unknown criterion", func() error {
			return NewDecisionTreeClassifier(WithCriterion("log_loss2")).Fit(X, y)
		}},
		{"min_samples_split", func() error {
			return NewDecisionTreeRegressor(WithMinSamplesSplit(1)).Fit(X, y)
		}},
		{"min_samples_leaf", func() error {
			return NewDecisionTreeRegressor(WithMinSamplesLeaf(0)).Fit(X, y)
		}},
		{"negative depth", func() error {
			return NewDecisionTreeRegressor(WithMaxDepth(-1)).Fit(X, y)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ve *errors.ValidationError
			if err := tt.fit(); !errors.As(err, &ve) {
				t.Errorf("Expected ValidationError, got %v", err)
			}
		})
	}
}

func TestDecisionTreeRegressor_FitsTrainingData(t *testing.T) {
	X := mat.NewDense(6, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
		5, 50,
		6, 60,
	})
	y := mat.NewDense(6, 1, []float64{100, 120, 150, 300, 320, 330})

	dt := NewDecisionTreeRegressor(WithRandomState(42))
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}

	pred, err := dt.Predict(X)
	if err != nil {
		t.Fatalf("Failed to predict: %v", err)
	}
	for i := 0; i < 6; i++ {
		if pred.At(i, 0) != y.At(i, 0) {
			t.Errorf("Sample %d: expected %v, got %v", i, y.At(i, 0), pred.At(i, 0))
		}
	}
	score, err := dt.Score(X, y)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if math.Abs(score-1.0) > 1e-12 {
		t.Errorf("Expected R² of 1 on training data, got %v", score)
	}
}

func TestDecisionTreeRegressor_FirstSplitMidpoint(t *testing.T) {
	X := mat.NewDense(4, 1, []float64{1, 2, 10, 11})
	y := mat.NewVecDense(4, []float64{1, 1, 5, 5})

	dt := NewDecisionTreeRegressor()
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}
	root := dt.Tree.Nodes[0]
	if root.Feature != 0 || root.Threshold != 6 {
		t.Errorf("Expected split on feature 0 at 6, got feature %d at %v", root.Feature, root.Threshold)
	}
	if dt.Tree.NLeaves() != 2 {
		t.Errorf("Expected 2 leaves, got %d", dt.Tree.NLeaves())
	}
	if dt.Depth() != 1 {
		t.Errorf("Expected depth 1, got %d", dt.Depth())
	}
}

func TestDecisionTreeRegressor_ConstantTarget(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := mat.NewDense(3, 1, []float64{7, 7, 7})

	dt := NewDecisionTreeRegressor()
	if err := dt.Fit(X, y); err != nil {
		t.Fatalf("Failed to fit model: %v", err)
	}
	if len(dt.Tree.Nodes) != 1 {
		t.Errorf("Expected a single leaf, got %d nodes", len(dt.Tree.Nodes))
	}
}

func TestDecisionTreeRegressor_Deterministic(t *testing.T) {
	X := mat.NewDense(20, 3, nil)
	y := mat.NewDense(20, 1, nil)
	for i := 0; i < 20; i++ {
		X.Set(i, 0, float64(i%5))
		X.Set(i, 1, float64(i%3))
		X.Set(i, 2, float64(i%5)) // duplicate of feature 0 so ties exercise the permutation
		y.Set(i, 0, float64(i%5)*10+float64(i%3))
	}

	a := NewDecisionTreeRegressor(WithRandomState(42))
	b := NewDecisionTreeRegressor(WithRandomState(42))
	if err := a.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatal(err)
	}
	pa, _ := a.Predict(X)
	pb, _ := b.Predict(X)
	if !mat.Equal(pa, pb) {
		t.Error("Same seed produced different predictions")
	}
	if len(a.Tree.Nodes) != len(b.Tree.Nodes) {
		t.Error("Same seed produced different trees")
	}
}

func TestDecisionTreeRegressor_FitSampleWithRepeats(t *testing.T) {
	X := mat.NewDense(3, 1, []float64{1, 2, 3})
	y := []float64{10, 20, 30}

	dt := NewDecisionTreeRegressor(WithMaxDepth(1))
	// row 2 dominates the right branch, row 0 never appears
	if err := dt.FitSample(X, y, []int{1, 2, 2, 2}); err != nil {
		t.Fatal(err)
	}
	if _, n := dt.State.GetDimensions(); n != 4 {
		t.Errorf("Expected 4 samples, got %d", n)
	}
	pred, err := dt.Predict(mat.NewDense(1, 1, []float64{3}))
	if err != nil {
		t.Fatal(err)
	}
	if pred.At(0, 0) != 30 {
		t.Errorf("Expected 30, got %v", pred.At(0, 0))
	}
}

func TestDecisionTreeRegressor_PredictFeatureMismatch(t *testing.T) {
	dt := NewDecisionTreeRegressor()
	if err := dt.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4}), mat.NewDense(2, 1, []float64{1, 2})); err != nil {
		t.Fatal(err)
	}
	_, err := dt.Predict(mat.NewDense(1, 3, []float64{1, 2, 3}))
	var de *errors.DimensionError
	if !errors.As(err, &de) {
		t.Errorf("Expected DimensionError, got %v", err)
	}
}

func TestDecisionTreeRegressor_FitRejectsBadInput(t *testing.T) {
	dt := NewDecisionTreeRegressor()
	if err := dt.Fit(mat.NewDense(2, 1, []float64{1, 2}), mat.NewDense(3, 1, []float64{1, 2, 3})); err == nil {
		t.Error("Expected error for mismatched rows")
	}
	if err := dt.Fit(mat.NewDense(2, 1, []float64{1, math.NaN()}), mat.NewDense(2, 1, []float64{1, 2})); err == nil {
		t.Error("Expected error for NaN feature")
	}
}

func TestDecisionTree_PersistenceRoundTrip(t *testing.T) {
	X := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewDense(6, 1, []float64{0, 0, 1, 1, 2, 2})

	estimators := []model.Estimator{
		NewDecisionTreeRegressor(WithRandomState(42)),
		NewDecisionTreeClassifier(WithRandomState(42)),
	}
	for _, est := range estimators {
		if err := est.Fit(X, y); err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := model.Encode(&buf, model.Metadata{ModelType: "tree"}, est); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
		loaded, _, err := model.Decode(&buf)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		want, _ := est.Predict(X)
		got, err := loaded.Predict(X)
		if err != nil {
			t.Fatalf("Predict after load failed: %v", err)
		}
		if !mat.Equal(want, got) {
			t.Errorf("%T predictions changed after round trip", est)
		}
		if model.Kind(loaded) != model.Kind(est) {
			t.Errorf("Kind changed: %s vs %s", model.Kind(est), model.Kind(loaded))
		}
	}
}
