// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package series

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// almostEqual compares floats with tolerance
func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestNewFillsNames(t *testing.T) {
	ts, err := New(mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"V1", "V2"}, ts.VarNames)

	_, err = New(mat.NewDense(3, 2, nil), []string{"only"})
	assert.ErrorIs(t, err, ErrInvalidSeries)
}

func TestReadCSV(t *testing.T) {
	in := "x, y\n1,2\n3,4\n\n5,6\n"
	ts, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)

	T, N := ts.Dims()
	assert.Equal(t, 3, T)
	assert.Equal(t, 2, N)
	assert.Equal(t, []string{"x", "y"}, ts.VarNames)
	assert.Equal(t, 6.0, ts.Y.At(2, 1))
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"ragged row", "a,b\n1,2\n3\n"},
		{"not a number", "a,b\n1,x\n"},
		{"header only", "a,b\n"},
		{"empty input", ""},
		{"blank name", "a, ,c\n1,2,3\n"},
		{"duplicate name", "a,b,a\n1,2,3\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tc.in))
			assert.ErrorIs(t, err, ErrInvalidSeries)
		})
	}
}

func TestReadCSVReportsLine(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n\n3,oops\n"))
	require.ErrorIs(t, err, ErrInvalidSeries)
	assert.Contains(t, err.Error(), "line 4 column 3")
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n4,5,6\n"), 0o644))

	ts, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ts.VarNames)

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		y       *mat.Dense
		wantErr bool
	}{
		{"ok", mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6}), false},
		{"one variable", mat.NewDense(3, 1, []float64{1, 2, 3}), true},
		{"one timepoint", mat.NewDense(1, 2, []float64{1, 2}), true},
		{"nan", mat.NewDense(2, 2, []float64{1, math.NaN(), 3, 4}), true},
		{"inf", mat.NewDense(2, 2, []float64{1, 2, math.Inf(1), 4}), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.y)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSeries)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPreprocessStandardise(t *testing.T) {
	y := mat.NewDense(4, 2, []float64{
		1, 5,
		2, 5,
		3, 5,
		4, 5,
	})
	out, err := Preprocess(y, PreprocessOptions{Standardise: true})
	require.NoError(t, err)

	// input untouched
	assert.Equal(t, 1.0, y.At(0, 0))

	col := mat.Col(nil, 0, out)
	mean := (col[0] + col[1] + col[2] + col[3]) / 4
	assert.True(t, almostEqual(mean, 0, 1e-12))
	var ss float64
	for _, v := range col {
		ss += v * v
	}
	assert.True(t, almostEqual(ss/4, 1, 1e-12))

	// constant column is centred only
	for r := 0; r < 4; r++ {
		assert.Equal(t, 0.0, out.At(r, 1))
	}
}

func TestPreprocessDetrend(t *testing.T) {
	y := mat.NewDense(5, 2, nil)
	for r := 0; r < 5; r++ {
		y.Set(r, 0, 2+3*float64(r))
		y.Set(r, 1, float64(r%2))
	}
	out, err := Preprocess(y, PreprocessOptions{Detrend: true})
	require.NoError(t, err)

	for r := 0; r < 5; r++ {
		assert.True(t, almostEqual(out.At(r, 0), 0, 1e-9), "row %d: %v", r, out.At(r, 0))
	}
}
