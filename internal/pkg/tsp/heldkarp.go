package tsp

import (
	"math"
	"math/bits"
)

// maxVertices keeps n·2ⁿ representable as an int index.
const maxVertices = bits.UintSize - 8

// Solve returns an optimal visiting order over dist for the given mode.
//
// States are (subset, last vertex) pairs indexed by mask*n+last. cost holds
// the cheapest way to visit exactly the vertices of mask ending at last, and
// parent the vertex visited just before last. Masks are expanded in
// increasing order and relaxations only accept strict improvements, so ties
// resolve to the first candidate found and the output is deterministic.
//
// Time complexity:  O(n² · 2ⁿ)
// Memory complexity: O(n · 2ⁿ)
func Solve(dist [][]float64, mode Mode) (Result, error) {
	n, err := validate(dist)
	if err != nil {
		return Result{}, err
	}
	switch n {
	case 0:
		return Result{Order: []int{}}, nil
	case 1:
		return Result{Order: []int{0}}, nil
	}
	if n > maxVertices {
		return Result{}, ErrTooLarge
	}

	size := 1 << n
	full := size - 1
	inf := math.Inf(1)

	cost := make([]float64, size*n)
	parent := make([]int8, size*n)
	for i := range cost {
		cost[i] = inf
		parent[i] = -1
	}

	// --- 1. Seed the single-vertex subsets allowed as a start ---
	if mode == OpenPath {
		for v := 0; v < n; v++ {
			cost[(1<<v)*n+v] = 0
		}
	} else {
		cost[1*n+0] = 0
	}

	// --- 2. Forward relaxation over subsets ---
	for mask := 1; mask < size; mask++ {
		for last := 0; last < n; last++ {
			if mask&(1<<last) == 0 {
				continue
			}
			cur := cost[mask*n+last]
			if math.IsInf(cur, 1) {
				continue
			}
			for next := 0; next < n; next++ {
				if mask&(1<<next) != 0 {
					continue
				}
				d := dist[last][next]
				if math.IsInf(d, 1) {
					continue // no edge
				}
				idx := (mask|1<<next)*n + next
				if c := cur + d; c < cost[idx] {
					cost[idx] = c
					parent[idx] = int8(last)
				}
			}
		}
	}

	// --- 3. Pick the best final vertex ---
	best := inf
	end := -1
	for last := 0; last < n; last++ {
		c := cost[full*n+last]
		if mode == ClosedTour {
			if last == 0 || math.IsInf(dist[last][0], 1) {
				continue
			}
			c += dist[last][0]
		}
		if c < best {
			best = c
			end = last
		}
	}
	if end < 0 || math.IsInf(best, 1) {
		return Result{}, ErrIncompleteGraph
	}

	// --- 4. Walk parents back from the full subset ---
	order := make([]int, n)
	mask := full
	v := end
	for i := n - 1; i >= 0; i-- {
		order[i] = v
		p := parent[mask*n+v]
		mask ^= 1 << v
		v = int(p)
	}

	return Result{Order: order, Cost: best}, nil
}
