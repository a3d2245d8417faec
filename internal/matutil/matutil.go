// Package matutil collects the small dense-matrix plumbing (slicing,
// concatenation, transposition) that compression, mat-vec, and the solve all
// need around the BLAS-like facade in internal/linalg, but that isn't
// itself one of the named facade operations.
package matutil

import "gonum.org/v1/gonum/mat"

// Zeros returns a fresh (rows, cols) zero matrix.
func Zeros(rows, cols int) *mat.Dense {
	return mat.NewDense(rows, cols, nil)
}

// Slice copies the (r0:r1, c0:c1) submatrix of a (half-open ranges) into a
// new, independently-owned Dense.
func Slice(a mat.Matrix, r0, r1, c0, c1 int) *mat.Dense {
	out := mat.NewDense(r1-r0, c1-c0, nil)
	for i := r0; i < r1; i++ {
		for j := c0; j < c1; j++ {
			out.Set(i-r0, j-c0, a.At(i, j))
		}
	}
	return out
}

// RowSlice copies rows [r0,r1) of a, all columns.
func RowSlice(a *mat.Dense, r0, r1 int) *mat.Dense {
	_, n := a.Dims()
	return Slice(a, r0, r1, 0, n)
}

// ColSlice copies columns [c0,c1) of a, all rows.
func ColSlice(a *mat.Dense, c0, c1 int) *mat.Dense {
	m, _ := a.Dims()
	return Slice(a, 0, m, c0, c1)
}

// HConcat horizontally concatenates matrices sharing the same row count.
// With zero arguments it returns a (0,0) matrix; callers are expected to
// know at least one operand's row count when that matters.
func HConcat(mats ...*mat.Dense) *mat.Dense {
	if len(mats) == 0 {
		return mat.NewDense(0, 0, nil)
	}
	rows, _ := mats[0].Dims()
	totalCols := 0
	for _, m := range mats {
		_, c := m.Dims()
		totalCols += c
	}
	out := mat.NewDense(rows, totalCols, nil)
	col := 0
	for _, m := range mats {
		_, c := m.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < c; j++ {
				out.Set(i, col+j, m.At(i, j))
			}
		}
		col += c
	}
	return out
}

// VConcat vertically concatenates matrices sharing the same column count.
func VConcat(mats ...*mat.Dense) *mat.Dense {
	if len(mats) == 0 {
		return mat.NewDense(0, 0, nil)
	}
	_, cols := mats[0].Dims()
	totalRows := 0
	for _, m := range mats {
		r, _ := m.Dims()
		totalRows += r
	}
	out := mat.NewDense(totalRows, cols, nil)
	row := 0
	for _, m := range mats {
		r, _ := m.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < cols; j++ {
				out.Set(row+i, j, m.At(i, j))
			}
		}
		row += r
	}
	return out
}

// TransposeCopy returns an independent transposed copy of a.
func TransposeCopy(a *mat.Dense) *mat.Dense {
	m, n := a.Dims()
	out := mat.NewDense(n, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			out.Set(j, i, a.At(i, j))
		}
	}
	return out
}

// Sub computes a-b elementwise into a new matrix.
func Sub(a, b *mat.Dense) *mat.Dense {
	out := new(mat.Dense)
	out.Sub(a, b)
	return out
}

// GatherRows collects rows idx[i] of a into row i of a new (len(idx), cols)
// matrix. Used by the solve's top-down sweep, whose column ranges are
// concatenations of non-contiguous leftover indices from sibling subtrees.
func GatherRows(a *mat.Dense, idx []int) *mat.Dense {
	_, cols := a.Dims()
	out := mat.NewDense(len(idx), cols, nil)
	for i, r := range idx {
		for j := 0; j < cols; j++ {
			out.Set(i, j, a.At(r, j))
		}
	}
	return out
}

// ScatterRows writes row i of src into row idx[i] of dst, the inverse of
// GatherRows.
func ScatterRows(dst *mat.Dense, idx []int, src *mat.Dense) {
	_, cols := src.Dims()
	for i, r := range idx {
		for j := 0; j < cols; j++ {
			dst.Set(r, j, src.At(i, j))
		}
	}
}

// ConcatInts returns a fresh slice holding a's elements followed by b's.
func ConcatInts(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}
