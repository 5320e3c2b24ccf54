package tsp

import (
	"fmt"
	"math"
)

// validate checks shape and values of dist and returns its order n.
//
// Contract:
//   - every row has length n,
//   - dist[i][i] == 0,
//   - no NaN, no negative distances; +Inf off the diagonal is a missing edge.
func validate(dist [][]float64) (int, error) {
	n := len(dist)
	for i := 0; i < n; i++ {
		if len(dist[i]) != n {
			return 0, fmt.Errorf("%w: row %d has length %d, want %d", ErrNonSquare, i, len(dist[i]), n)
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := dist[i][j]
			switch {
			case math.IsNaN(v):
				return 0, fmt.Errorf("%w at [%d][%d]", ErrNaN, i, j)
			case i == j && v != 0:
				return 0, fmt.Errorf("%w: dist[%d][%d]=%v", ErrNonZeroDiagonal, i, i, v)
			case v < 0:
				return 0, fmt.Errorf("%w: dist[%d][%d]=%v", ErrNegativeWeight, i, j, v)
			}
		}
	}
	return n, nil
}
