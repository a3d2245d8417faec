package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/hssmat/hss"
)

// fixture is the YAML format hssctl reads a dense matrix, an optional
// right-hand side, and a compression configuration from. A fixture either
// names an explicit Matrix (a literal list of rows) or, for quick
// experimentation and bench runs, a Size plus Seed to synthesize one.
type fixture struct {
	// Size generates a Size x Size Cauchy-like kernel matrix
	// (1/(1+|i-j|)) when Matrix is empty — a classically HSS-compressible
	// test case, since its off-diagonal blocks are numerically low rank.
	Size int `yaml:"size"`
	// Seed drives the pseudo-random right-hand side generator when RHS is
	// empty. Fixed per run so a fixture's output is reproducible.
	Seed int64 `yaml:"seed"`

	Matrix [][]float64 `yaml:"matrix"`
	RHS    [][]float64 `yaml:"rhs"`

	Leafsize int     `yaml:"leafsize"`
	Tol      float64 `yaml:"tol"`
	Reltol   bool    `yaml:"reltol"`
}

// loadFixture reads and validates a fixture file, filling in the
// DefaultConfig Leafsize and Tol when either is left at zero. Reltol is
// taken as written (false when absent).
func loadFixture(path string) (*fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %q: %w", path, err)
	}
	var f fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %q: %w", path, err)
	}
	def := hss.DefaultConfig()
	if f.Leafsize == 0 {
		f.Leafsize = def.Leafsize
	}
	if f.Tol == 0 {
		f.Tol = def.Tol
	}
	if len(f.Matrix) == 0 && f.Size <= 0 {
		return nil, fmt.Errorf("fixture %q: must set either matrix or size", path)
	}
	return &f, nil
}

// config builds the hss.Config this fixture describes.
func (f *fixture) config() hss.Config {
	return hss.Config{Tol: f.Tol, Reltol: f.Reltol, Leafsize: f.Leafsize}
}

// denseMatrix materializes f's matrix, generating a Cauchy-like kernel when
// no explicit Matrix rows were given.
func (f *fixture) denseMatrix() *mat.Dense {
	if len(f.Matrix) > 0 {
		return rowsToDense(f.Matrix)
	}
	n := f.Size
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			d := i - j
			if d < 0 {
				d = -d
			}
			rows[i][j] = 1.0 / float64(1+d)
		}
	}
	return rowsToDense(rows)
}

// rhsMatrix materializes f's right-hand side, generating a deterministic
// pseudo-random (Seed-keyed) single column when no explicit RHS rows were
// given.
func (f *fixture) rhsMatrix(n int) *mat.Dense {
	if len(f.RHS) > 0 {
		return rowsToDense(f.RHS)
	}
	r := rand.New(rand.NewPCG(uint64(f.Seed), uint64(f.Seed)+1))
	rows := make([][]float64, n)
	for i := 0; i < n; i++ {
		rows[i] = []float64{r.NormFloat64()}
	}
	return rowsToDense(rows)
}

func rowsToDense(rows [][]float64) *mat.Dense {
	m := len(rows)
	if m == 0 {
		return mat.NewDense(0, 0, nil)
	}
	n := len(rows[0])
	out := mat.NewDense(m, n, nil)
	for i, row := range rows {
		for j, v := range row {
			out.Set(i, j, v)
		}
	}
	return out
}
