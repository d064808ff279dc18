// Package dataset loads delimited tabular files into memory and derives the
// feature matrix and target vector used by the estimators.
package dataset

import (
	"bufio"
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/pricefit/pkg/errors"
)

// Frame is a fully materialised table: an ordered header and raw string cells.
type Frame struct {
	header []string
	rows   [][]string
	index  map[string]int
}

// Load reads the CSV file at path. The first record is the header.
func Load(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %s", path)
	}
	defer file.Close()

	f, err := LoadReader(bufio.NewReader(file))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load dataset %s", path)
	}
	return f, nil
}

// LoadReader reads CSV records from r. Every record must have as many
// fields as the header.
func LoadReader(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewValueError("dataset.Load", "file is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, "malformed header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	header = append([]string(nil), header...)

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		header[i] = name
		if name == "" {
			return nil, errors.NewValidationError("header", "column name is empty", i)
		}
		if _, dup := index[name]; dup {
			return nil, errors.NewValidationError("header", "duplicate column name", name)
		}
		index[name] = i
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "malformed record")
	}
	if len(rows) == 0 {
		return nil, errors.NewValueError("dataset.Load", "file has a header but no rows")
	}

	return &Frame{header: header, rows: rows, index: index}, nil
}

// NewFrame builds a frame from an in-memory header and rows.
func NewFrame(header []string, rows [][]string) (*Frame, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(header); err != nil {
		return nil, errors.Wrap(err, "invalid header")
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, errors.Wrap(err, "invalid rows")
	}
	return LoadReader(strings.NewReader(b.String()))
}

// Columns returns a copy of the header.
func (f *Frame) Columns() []string {
	cols := make([]string, len(f.header))
	copy(cols, f.header)
	return cols
}

// NRows returns the number of data rows.
func (f *Frame) NRows() int { return len(f.rows) }

// NCols returns the number of columns.
func (f *Frame) NCols() int { return len(f.header) }

// ColumnIndex returns the position of name in the header.
func (f *Frame) ColumnIndex(name string) (int, error) {
	i, ok := f.index[name]
	if !ok {
		return -1, errors.NewColumnNotFoundError(name, f.header)
	}
	return i, nil
}

// Drop returns the header without the named column, in the original order.
func (f *Frame) Drop(name string) ([]string, error) {
	drop, err := f.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, len(f.header)-1)
	for i, c := range f.header {
		if i != drop {
			cols = append(cols, c)
		}
	}
	return cols, nil
}

// Column parses every cell of the named column as a float.
func (f *Frame) Column(name string) (*mat.VecDense, error) {
	j, err := f.ColumnIndex(name)
	if err != nil {
		return nil, err
	}
	v := mat.NewVecDense(len(f.rows), nil)
	for i, row := range f.rows {
		x, err := parseCell(row[j], i, name)
		if err != nil {
			return nil, err
		}
		v.SetVec(i, x)
	}
	return v, nil
}

// XY splits the frame into the feature matrix (every column except target,
// header order kept) and the target vector. Rows stay aligned by position.
func (f *Frame) XY(target string) (*mat.Dense, *mat.VecDense, []string, error) {
	y, err := f.Column(target)
	if err != nil {
		return nil, nil, nil, err
	}
	features, err := f.Drop(target)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(features) == 0 {
		return nil, nil, nil, errors.NewValueError("dataset.XY", "no feature columns besides the target")
	}

	targetIdx := f.index[target]
	X := mat.NewDense(len(f.rows), len(features), nil)
	for i, row := range f.rows {
		j := 0
		for c, cell := range row {
			if c == targetIdx {
				continue
			}
			x, err := parseCell(cell, i, f.header[c])
			if err != nil {
				return nil, nil, nil, err
			}
			X.Set(i, j, x)
			j++
		}
	}
	return X, y, features, nil
}

// parseCell accepts decimal numbers and the boolean spellings produced by
// one-hot encoders (True/False) which map to 1 and 0.
func parseCell(cell string, row int, column string) (float64, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, errors.NewValueError("dataset.parse",
			"missing value in column "+strconv.Quote(column)+" at row "+strconv.Itoa(row+1))
	}
	if x, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, errors.NewValueError("dataset.parse",
				"missing value in column "+strconv.Quote(column)+" at row "+strconv.Itoa(row+1))
		}
		return x, nil
	}
	switch strings.ToLower(s) {
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	return 0, errors.NewValueError("dataset.parse",
		"non-numeric value "+strconv.Quote(s)+" in column "+strconv.Quote(column)+" at row "+strconv.Itoa(row+1))
}
