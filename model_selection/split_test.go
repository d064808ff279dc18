package model_selection

import (
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestTrainTestSplit_FiveRows(t *testing.T) {
	split, err := TrainTestSplit(5, 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}
	if len(split.Train) != 4 || len(split.Test) != 1 {
		t.Fatalf("expected 4/1 split, got %d/%d", len(split.Train), len(split.Test))
	}
	if err := split.Validate(5); err != nil {
		t.Fatal(err)
	}

	again, err := TrainTestSplit(5, 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(split, again) {
		t.Errorf("same seed produced different splits: %v vs %v", split, again)
	}
}

func TestTrainTestSplit_Deterministic(t *testing.T) {
	for _, n := range []int{2, 10, 1460} {
		a, err := TrainTestSplit(n, 0.2, 42)
		if err != nil {
			t.Fatal(err)
		}
		b, _ := TrainTestSplit(n, 0.2, 42)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("n=%d: split not reproducible", n)
		}
		if err := a.Validate(n); err != nil {
			t.Errorf("n=%d: %v", n, err)
		}
	}

	a, _ := TrainTestSplit(100, 0.2, 42)
	b, _ := TrainTestSplit(100, 0.2, 7)
	if reflect.DeepEqual(a.Test, b.Test) {
		t.Error("different seeds should give different test sets")
	}
}

func TestTrainTestSplit_Sizes(t *testing.T) {
	tests := []struct {
		n        int
		testSize float64
		wantTest int
	}{
		{n: 1460, testSize: 0.2, wantTest: 292},
		{n: 10, testSize: 0.25, wantTest: 3}, // ceil(2.5)
		{n: 3, testSize: 0.1, wantTest: 1},
	}
	for _, tt := range tests {
		split, err := TrainTestSplit(tt.n, tt.testSize, 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(split.Test) != tt.wantTest || len(split.Train) != tt.n-tt.wantTest {
			t.Errorf("n=%d test_size=%v: got %d/%d", tt.n, tt.testSize, len(split.Train), len(split.Test))
		}
	}
}

func TestTrainTestSplit_Invalid(t *testing.T) {
	cases := []struct {
		n        int
		testSize float64
	}{
		{0, 0.2},
		{5, 0},
		{5, 1},
		{5, -0.1},
		{1, 0.2}, // no training rows left
	}
	for _, c := range cases {
		if _, err := TrainTestSplit(c.n, c.testSize, 42); err == nil {
			t.Errorf("TrainTestSplit(%d, %v) should fail", c.n, c.testSize)
		}
	}
}

func TestSplitValidate(t *testing.T) {
	if err := (Split{Train: []int{0, 1}, Test: []int{1}}).Validate(3); err == nil {
		t.Error("duplicate index should fail")
	}
	if err := (Split{Train: []int{0, 5}, Test: []int{1}}).Validate(3); err == nil {
		t.Error("out of range index should fail")
	}
	if err := (Split{Train: []int{0}, Test: []int{1}}).Validate(3); err == nil {
		t.Error("incomplete cover should fail")
	}
}

func TestTakeRows(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	y := mat.NewVecDense(3, []float64{10, 20, 30})

	got := TakeRows(X, []int{2, 0})
	want := mat.NewDense(2, 2, []float64{5, 6, 1, 2})
	if !mat.Equal(got, want) {
		t.Errorf("TakeRows = %v", mat.Formatted(got))
	}
	if v := TakeVec(y, []int{2, 0}); v.AtVec(0) != 30 || v.AtVec(1) != 10 {
		t.Errorf("TakeVec = %v", mat.Formatted(v))
	}
	if s := Sorted([]int{3, 1, 2}); !reflect.DeepEqual(s, []int{1, 2, 3}) {
		t.Errorf("Sorted = %v", s)
	}
}
