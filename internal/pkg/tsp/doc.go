// Package tsp solves small travelling-salesman instances exactly.
//
// Solve runs the Held–Karp dynamic program over a dense distance matrix:
//
//   - Complexity: O(n²·2ⁿ) time, O(n·2ⁿ) memory.
//   - Modes: open path with a free start, open path starting at vertex 0,
//     closed tour through vertex 0.
//   - A distance of math.Inf(1) means "no direct edge".
//
// The result is exact, so the package is only meant for n up to ~20. It does
// not cap n itself; callers decide how much work they are willing to pay for.
package tsp
