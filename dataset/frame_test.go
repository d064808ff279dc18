package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

const priceCSV = `A,B,SalePrice
1,5,10
2,4,20
3,3,30
4,2,40
5,1,50
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	assert.NilError(t, os.WriteFile(path, []byte(priceCSV), 0o644))

	f, err := Load(path)
	assert.NilError(t, err)
	assert.Equal(t, f.NRows(), 5)
	assert.DeepEqual(t, f.Columns(), []string{"A", "B", "SalePrice"})
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorContains(t, err, "failed to open dataset")
	assert.ErrorContains(t, err, "no such file")
}

func TestLoadReader_Malformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: "file is empty"},
		{name: "header only", in: "A,B,SalePrice\n", want: "no rows"},
		{name: "ragged row", in: "A,B\n1,2\n3\n", want: "malformed record"},
		{name: "duplicate column", in: "A,A\n1,2\n", want: "duplicate column name"},
		{name: "empty column name", in: "A,\n1,2\n", want: "column name is empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadReader(strings.NewReader(tt.in))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestXY(t *testing.T) {
	f, err := LoadReader(strings.NewReader(priceCSV))
	assert.NilError(t, err)

	X, y, features, err := f.XY("SalePrice")
	assert.NilError(t, err)

	rows, cols := X.Dims()
	assert.Equal(t, rows, 5)
	assert.Equal(t, cols, f.NCols()-1)
	assert.DeepEqual(t, features, []string{"A", "B"})
	assert.Check(t, !contains(features, "SalePrice"))

	for i := 0; i < rows; i++ {
		assert.Equal(t, X.At(i, 0), float64(i+1))
		assert.Equal(t, X.At(i, 1), float64(5-i))
		assert.Equal(t, y.AtVec(i), float64(10*(i+1)))
	}
}

func TestXY_TargetInMiddle(t *testing.T) {
	f, err := NewFrame(
		[]string{"LotArea", "SalePrice", "OverallQual", "CentralAir_Y"},
		[][]string{
			{"8450", "208500", "7", "True"},
			{"9600", "181500", "6", "False"},
		},
	)
	assert.NilError(t, err)

	X, y, features, err := f.XY("SalePrice")
	assert.NilError(t, err)
	assert.DeepEqual(t, features, []string{"LotArea", "OverallQual", "CentralAir_Y"})
	assert.Equal(t, X.At(0, 0), 8450.0)
	assert.Equal(t, X.At(0, 1), 7.0)
	assert.Equal(t, X.At(0, 2), 1.0)
	assert.Equal(t, X.At(1, 2), 0.0)
	assert.Equal(t, y.AtVec(1), 181500.0)
}

func TestXY_MissingTarget(t *testing.T) {
	f, err := LoadReader(strings.NewReader("A,B\n1,2\n"))
	assert.NilError(t, err)

	_, _, _, err = f.XY("SalePrice")
	var colErr *errors.ColumnNotFoundError
	assert.Assert(t, errors.As(err, &colErr))
	assert.Equal(t, colErr.Column, "SalePrice")
}

func TestXY_BadCells(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "categorical feature", in: "Street,SalePrice\nPave,100\n", want: `non-numeric value "Pave" in column "Street" at row 1`},
		{name: "missing feature", in: "A,SalePrice\n1,100\n,200\n", want: `missing value in column "A" at row 2`},
		{name: "NaN target", in: "A,SalePrice\n1,NaN\n", want: `missing value in column "SalePrice"`},
		{name: "only target", in: "SalePrice\n100\n", want: "no feature columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := LoadReader(strings.NewReader(tt.in))
			assert.NilError(t, err)
			_, _, _, err = f.XY("SalePrice")
			assert.Check(t, is.ErrorContains(err, tt.want))
		})
	}
}

func TestLoadReader_BOMAndSpaces(t *testing.T) {
	f, err := LoadReader(strings.NewReader("\ufeffA, SalePrice\n1, 2\n"))
	assert.NilError(t, err)
	assert.DeepEqual(t, f.Columns(), []string{"A", "SalePrice"})

	_, y, _, err := f.XY("SalePrice")
	assert.NilError(t, err)
	assert.Equal(t, y.AtVec(0), 2.0)
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
