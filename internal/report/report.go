// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

// Package report writes run results as CSV files and console tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"selvar"
)

// Output file names written by WriteAll.
const (
	ScoresFile       = "scores.csv"
	LagsFile         = "lags.csv"
	PValuesFile      = "pvalues.csv"
	CoefficientsFile = "coefficients.csv"
	LinksFile        = "links.csv"
)

// WriteAll writes every matrix and the link list of res into dir and returns
// the paths written.
func WriteAll(dir string, res *selvar.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir %s: %w", dir, err)
	}

	var written []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		if err := writeFile(path, fn); err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	steps := []struct {
		name string
		fn   func(io.Writer) error
	}{
		{ScoresFile, func(w io.Writer) error { return WriteMatrix(w, res.Scores, res.Names) }},
		{LagsFile, func(w io.Writer) error { return WriteLags(w, res.Lags, res.Names) }},
		{PValuesFile, func(w io.Writer) error { return WriteMatrix(w, res.PValues, res.Names) }},
		{CoefficientsFile, func(w io.Writer) error { return WriteMatrix(w, res.Coefficients, res.Names) }},
		{LinksFile, func(w io.Writer) error { return WriteLinks(w, res.Links()) }},
	}
	for _, s := range steps {
		if err := write(s.name, s.fn); err != nil {
			return written, err
		}
	}
	return written, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

// WriteMatrix writes an N x N source-by-target matrix. The header holds the
// target names and every row starts with its source name.
func WriteMatrix(w io.Writer, m mat.Matrix, names []string) error {
	rows, cols := m.Dims()
	return writeGrid(w, names, rows, cols, func(i, j int) string {
		return strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
	})
}

// WriteLags writes a lag matrix in the layout of WriteMatrix.
func WriteLags(w io.Writer, lags selvar.LagMatrix, names []string) error {
	return writeGrid(w, names, len(lags), len(lags), func(i, j int) string {
		return strconv.Itoa(lags[i][j])
	})
}

func writeGrid(w io.Writer, names []string, rows, cols int, cell func(i, j int) string) error {
	writer := csv.NewWriter(w)

	// Write header
	header := make([]string, cols+1)
	header[0] = "Source"
	for j := 0; j < cols; j++ {
		header[j+1] = name(names, j)
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	// Write data rows
	for i := 0; i < rows; i++ {
		record := make([]string, cols+1)
		record[0] = name(names, i)
		for j := 0; j < cols; j++ {
			record[j+1] = cell(i, j)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteLinks writes links in long format.
// Columns: Source, Target, Lag, Score, Coefficient, PValue
func WriteLinks(w io.Writer, links []selvar.Link) error {
	writer := csv.NewWriter(w)

	header := []string{"Source", "Target", "Lag", "Score", "Coefficient", "PValue"}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, l := range links {
		record := []string{
			l.SourceName,
			l.TargetName,
			strconv.Itoa(l.Lag),
			fmt.Sprintf("%f", l.Score),
			fmt.Sprintf("%f", l.Coefficient),
			fmt.Sprintf("%g", l.PValue),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// PrintLinks prints the selected links as a table.
func PrintLinks(w io.Writer, links []selvar.Link, alpha float64) {
	fmt.Fprintln(w, "\n=== Selected Links ===")
	fmt.Fprintf(w, "Bonferroni corrected p-values, significance level: α = %g\n", alpha)
	fmt.Fprintln(w, "p-values are computed on the data used for selection; use them to rank links only")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-20s -> %-20s | Lag |    Score | Coefficient |  P-Value | Conclusion\n", "Source", "Target")
	fmt.Fprintln(w, "------------------------------------------------------------------------------------------------")

	if len(links) == 0 {
		fmt.Fprintln(w, "(no links selected)")
	}
	for _, l := range links {
		conclusion := "weak"
		if l.PValue < alpha {
			conclusion = "SIGNIFICANT"
		}
		fmt.Fprintf(w, "%-20s -> %-20s | %3d | %8.4f | %11.4f | %8.6f | %s\n",
			l.SourceName,
			l.TargetName,
			l.Lag,
			l.Score,
			l.Coefficient,
			l.PValue,
			conclusion)
	}
	fmt.Fprintln(w)
}

// PrintSummary prints per-target search diagnostics.
func PrintSummary(w io.Writer, res *selvar.Result) {
	fmt.Fprintln(w, "\n=== Search Summary ===")
	fmt.Fprintf(w, "Run: %s\n", res.RunID)
	fmt.Fprintf(w, "%-20s | Ceiling | Steps |          PRSS | Converged\n", "Target")
	fmt.Fprintln(w, "---------------------------------------------------------------")
	for _, info := range res.Info {
		fmt.Fprintf(w, "%-20s | %7d | %5d | %13.6f | %t\n",
			name(res.Names, info.Target),
			info.Ceiling,
			info.Iterations,
			info.PRSS,
			info.Converged)
	}
	fmt.Fprintln(w, "=======================================")
}

func name(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("V%d", i+1)
}
