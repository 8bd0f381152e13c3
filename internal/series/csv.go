// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package series

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// LoadCSV loads a CSV file with a header row of variable names into a TimeSeries.
func LoadCSV(path string) (*TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ts, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ts, nil
}

// ReadCSV parses CSV data from r: a header row of unique variable names, then
// one row of numbers per timepoint. Blank lines are ignored.
func ReadCSV(r io.Reader) (*TimeSeries, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	names, err := readHeader(cr)
	if err != nil {
		return nil, err
	}

	var data []float64
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSeries, err)
		}
		if data, err = appendRow(data, record, len(names), cr); err != nil {
			return nil, err
		}
	}

	T := len(data) / len(names)
	if T == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrInvalidSeries)
	}
	return New(mat.NewDense(T, len(names), data), names)
}

func readHeader(cr *csv.Reader) ([]string, error) {
	record, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidSeries)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrInvalidSeries, err)
	}

	names := make([]string, len(record))
	seen := make(map[string]bool, len(record))
	for i, field := range record {
		name := strings.TrimSpace(field)
		switch {
		case name == "":
			return nil, fmt.Errorf("%w: header column %d is blank", ErrInvalidSeries, i+1)
		case seen[name]:
			return nil, fmt.Errorf("%w: duplicate variable %q", ErrInvalidSeries, name)
		}
		seen[name] = true
		names[i] = name
	}
	return names, nil
}

// appendRow parses one data record onto data. Positions in errors are the
// file line and column the reader reports.
func appendRow(data []float64, record []string, width int, cr *csv.Reader) ([]float64, error) {
	line, _ := cr.FieldPos(0)
	if len(record) != width {
		return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
			ErrInvalidSeries, line, len(record), width)
	}
	for k, field := range record {
		v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			_, col := cr.FieldPos(k)
			return nil, fmt.Errorf("%w: line %d column %d: %q is not a number",
				ErrInvalidSeries, line, col, field)
		}
		data = append(data, v)
	}
	return data, nil
}
