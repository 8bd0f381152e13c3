// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"selvar"
)

func sampleResult() *selvar.Result {
	lags := selvar.LagMatrix{
		{0, 2},
		{0, 0},
	}
	return &selvar.Result{
		RunID:        uuid.New(),
		Names:        []string{"flu", "temp"},
		Lags:         lags,
		Scores:       mat.NewDense(2, 2, []float64{0, 0.75, 0, 0}),
		Coefficients: mat.NewDense(2, 2, []float64{0, -0.75, 0, 0}),
		PValues:      mat.NewDense(2, 2, []float64{1, 0.002, 1, 1}),
		Info: []selvar.VariableInfo{
			{Target: 0, Ceiling: 2, PRSS: 10, Converged: true},
			{Target: 1, Ceiling: 2, Iterations: 1, PRSS: 6.5, Converged: true},
		},
	}
}

func readCSV(t *testing.T, r *bytes.Buffer) [][]string {
	t.Helper()
	records, err := csv.NewReader(r).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteMatrix(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMatrix(&buf, mat.NewDense(2, 2, []float64{0, 0.5, 1.25, 0}), []string{"a", "b"}))

	assert.Equal(t, [][]string{
		{"Source", "a", "b"},
		{"a", "0", "0.5"},
		{"b", "1.25", "0"},
	}, readCSV(t, &buf))
}

func TestWriteLags(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLags(&buf, selvar.LagMatrix{{1, 0}, {3, 0}}, nil))

	assert.Equal(t, [][]string{
		{"Source", "V1", "V2"},
		{"V1", "1", "0"},
		{"V2", "3", "0"},
	}, readCSV(t, &buf))
}

func TestWriteLinks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLinks(&buf, sampleResult().Links()))

	records := readCSV(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Source", "Target", "Lag", "Score", "Coefficient", "PValue"}, records[0])
	assert.Equal(t, []string{"flu", "temp", "2", "0.750000", "-0.750000", "0.002"}, records[1])
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteAll(dir, sampleResult())
	require.NoError(t, err)
	require.Len(t, paths, 5)

	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	data, err := os.ReadFile(filepath.Join(dir, LagsFile))
	require.NoError(t, err)
	assert.Equal(t, "Source,flu,temp\nflu,0,2\ntemp,0,0\n", string(data))
}

func TestPrintLinks(t *testing.T) {
	var buf bytes.Buffer
	PrintLinks(&buf, sampleResult().Links(), 0.05)

	out := buf.String()
	assert.Contains(t, out, "flu")
	assert.Contains(t, out, "SIGNIFICANT")

	buf.Reset()
	PrintLinks(&buf, nil, 0.05)
	assert.Contains(t, buf.String(), "(no links selected)")
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	res := sampleResult()
	PrintSummary(&buf, res)

	out := buf.String()
	assert.Contains(t, out, res.RunID.String())
	assert.Equal(t, 2, strings.Count(out, "| true"))
}
