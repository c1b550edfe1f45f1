// Package ghung solves the rectangular linear assignment problem
// with the Jonker-Volgenant flavour of the Hungarian method.
package ghung

import (
	"math"

	"github.com/Robogera/track/pkg/seq"
)

const forbidden_cost = 1e18

// Solve returns, for every row of the n x m cost matrix, the column
// assigned to it or -1. The total cost of the assignment is minimal and
// min(n, m) rows get a column. Ties resolve deterministically in index
// order. Non-finite costs are treated as forbidden_cost.
func Solve[T seq.Float](cost [][]T) []int {
	n := len(cost)
	if n == 0 {
		return nil
	}
	m := len(cost[0])
	assignment := make([]int, n)
	for i := range assignment {
		assignment[i] = -1
	}
	if m == 0 {
		return assignment
	}

	// the algorithm needs rows <= cols, transpose otherwise
	transposed := n > m
	rows, cols := n, m
	at := func(r, c int) float64 {
		if transposed {
			r, c = c, r
		}
		value := float64(cost[r][c])
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return forbidden_cost
		}
		return value
	}
	if transposed {
		rows, cols = m, n
	}

	inf := math.Inf(1)
	// 1-indexed, index 0 is the virtual column
	u := make([]float64, rows+1)
	v := make([]float64, cols+1)
	p := make([]int, cols+1)
	way := make([]int, cols+1)
	minv := make([]float64, cols+1)
	used := make([]bool, cols+1)

	for i := 1; i <= rows; i++ {
		p[0] = i
		j0 := 0
		for j := range minv {
			minv[j] = inf
			used[j] = false
		}
		for {
			used[j0] = true
			i0 := p[j0]
			delta := inf
			j1 := 0
			for j := 1; j <= cols; j++ {
				if used[j] {
					continue
				}
				cur := at(i0-1, j-1) - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= cols; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	for j := 1; j <= cols; j++ {
		if p[j] == 0 {
			continue
		}
		if transposed {
			assignment[j-1] = p[j] - 1
		} else {
			assignment[p[j]-1] = j - 1
		}
	}
	return assignment
}
