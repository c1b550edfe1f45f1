package assoc

import (
	"fmt"

	"github.com/Robogera/track/pkg/enums"
	"github.com/Robogera/track/pkg/ghung"
	"github.com/Robogera/track/pkg/gmat"
	hung "github.com/arthurkushman/go-hungarian"
	munkres "github.com/charles-haynes/munkres"
)

// Solves the assignment problem on a similarity matrix.
// Returns the column assigned to every row, or -1, so that
// the summed similarity is maximal.
type Solver interface {
	Solve(similarity *gmat.Mat[float64]) []int
	Name() string
}

var (
	SolverHungarian = enums.SolverHungarian.Value
	SolverMunkres   = enums.SolverMunkres.Value
	SolverJV        = enums.SolverJV.Value
)

// An empty name selects JV
func ParseSolver(name string) (Solver, error) {
	switch name {
	case SolverJV, "":
		return JV{}, nil
	case SolverMunkres:
		return Munkres{}, nil
	case SolverHungarian:
		return Hungarian{}, nil
	default:
		return nil, fmt.Errorf("Unknown solver %q, expected one of %v",
			name, enums.Solvers.Values())
	}
}

func unassigned(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = -1
	}
	return out
}

func negated(m *gmat.Mat[float64]) *gmat.Mat[float64] {
	return gmat.Map(m, func(v float64, _, _ int) float64 { return -v })
}

// go-hungarian, works on square matrices only so the
// similarity matrix is padded with zeros.
// Approximate: the reduction resolves conflicts by iterating over maps,
// so the matching may be suboptimal and may differ between runs on the
// same matrix. Use JV or Munkres where optimality matters.
type Hungarian struct{}

func (Hungarian) Name() string { return SolverHungarian }

func (Hungarian) Solve(similarity *gmat.Mat[float64]) []int {
	rows, cols := similarity.Dims()
	assignment := unassigned(rows)
	if rows == 0 || cols == 0 {
		return assignment
	}
	solution := hung.SolveMax(similarity.Square(0).To2d())
	for row, edges := range solution {
		if row < 0 || row >= rows {
			continue
		}
		for col := range edges {
			if col >= 0 && col < cols {
				assignment[row] = col
			}
			break
		}
	}
	return assignment
}

// Kuhn-Munkres over the negated similarity
type Munkres struct{}

func (Munkres) Name() string { return SolverMunkres }

func (Munkres) Solve(similarity *gmat.Mat[float64]) []int {
	rows, cols := similarity.Dims()
	assignment := unassigned(rows)
	if rows == 0 || cols == 0 {
		return assignment
	}
	algorithm, err := munkres.NewHungarianAlgorithm(negated(similarity).To2d())
	if err != nil {
		return JV{}.Solve(similarity)
	}
	for row, col := range algorithm.Execute() {
		if row < rows && col >= 0 && col < cols {
			assignment[row] = col
		}
	}
	return assignment
}

// Jonker-Volgenant, see ghung
type JV struct{}

func (JV) Name() string { return SolverJV }

func (JV) Solve(similarity *gmat.Mat[float64]) []int {
	rows, _ := similarity.Dims()
	if rows == 0 {
		return []int{}
	}
	return ghung.Solve(negated(similarity).To2d())
}
