// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Oct 16th 2026
// Project: SELVAR, Selective Auto-Regressive Lag Selection
// Class: 02-613 at Caregie Mellon University

package search

// LagMatrix holds selected lags: entry [i][j] is the lag at which source i
// predicts target j, 0 meaning no link.
type LagMatrix [][]int

// NewLagMatrix returns an n x n matrix of zeros.
func NewLagMatrix(n int) LagMatrix {
	m := make(LagMatrix, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

// Column returns the lag vector of target j, indexed by source.
func (m LagMatrix) Column(j int) []int {
	col := make([]int, len(m))
	for i := range m {
		col[i] = m[i][j]
	}
	return col
}

// Count returns the number of links.
func (m LagMatrix) Count() int {
	n := 0
	for i := range m {
		for _, l := range m[i] {
			if l > 0 {
				n++
			}
		}
	}
	return n
}

// Max returns the largest lag in the matrix.
func (m LagMatrix) Max() int {
	max := 0
	for i := range m {
		for _, l := range m[i] {
			if l > max {
				max = l
			}
		}
	}
	return max
}
