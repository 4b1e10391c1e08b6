// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compose

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Triplet is one stored entry of a sparse matrix in coordinate form.
type Triplet struct {
	Row, Col int
	Val      float64
}

// Jacobian is a rows×cols sparse matrix of first derivatives,
// accumulated as triplets. Entries are kept sparse through block
// insertion and stacking; densification only happens on an explicit
// Dense call.
//
// Index arguments are checked and out-of-range access panics: writing
// outside the block a constraint was handed would corrupt neighbouring
// blocks undetected.
type Jacobian struct {
	rows, cols int
	index      map[coord]int
	data       []Triplet
}

type coord struct{ r, c int }

// NewJacobian creates an empty rows×cols sparse matrix.
func NewJacobian(rows, cols int) *Jacobian {
	if rows < 0 || cols < 0 {
		panic("jacobian dimension must not be negative")
	}
	return &Jacobian{rows: rows, cols: cols, index: make(map[coord]int)}
}

// Rows returns the number of matrix rows.
func (j *Jacobian) Rows() int { return j.rows }

// Cols returns the number of matrix columns.
func (j *Jacobian) Cols() int { return j.cols }

// NNZ returns the number of stored entries.
func (j *Jacobian) NNZ() int { return len(j.data) }

func (j *Jacobian) check(r, c int) {
	if r < 0 || r >= j.rows || c < 0 || c >= j.cols {
		panic(fmt.Sprintf("jacobian index (%d,%d) out of %d×%d", r, c, j.rows, j.cols))
	}
}

// Set stores v at (r,c), replacing any previous entry. Setting a fresh
// entry to zero is a no-op so untouched positions stay structural zeros.
func (j *Jacobian) Set(r, c int, v float64) {
	j.check(r, c)
	k := coord{r, c}
	if i, ok := j.index[k]; ok {
		j.data[i].Val = v
		return
	}
	if v == 0 {
		return
	}
	j.index[k] = len(j.data)
	j.data = append(j.data, Triplet{r, c, v})
}

// Add accumulates v onto the entry at (r,c).
func (j *Jacobian) Add(r, c int, v float64) {
	j.check(r, c)
	k := coord{r, c}
	if i, ok := j.index[k]; ok {
		j.data[i].Val += v
		return
	}
	if v == 0 {
		return
	}
	j.index[k] = len(j.data)
	j.data = append(j.data, Triplet{r, c, v})
}

// At returns the entry at (r,c), zero when nothing is stored there.
func (j *Jacobian) At(r, c int) float64 {
	j.check(r, c)
	if i, ok := j.index[coord{r, c}]; ok {
		return j.data[i].Val
	}
	return 0
}

// SetBlock copies every stored entry of b into j, shifted by the given
// row and column offsets. The shifted block must fit inside j.
func (j *Jacobian) SetBlock(rowOff, colOff int, b *Jacobian) {
	if rowOff < 0 || colOff < 0 || rowOff+b.rows > j.rows || colOff+b.cols > j.cols {
		panic(fmt.Sprintf("jacobian block %d×%d at (%d,%d) out of %d×%d",
			b.rows, b.cols, rowOff, colOff, j.rows, j.cols))
	}
	for _, t := range b.data {
		j.Set(rowOff+t.Row, colOff+t.Col, t.Val)
	}
}

// Triplets returns a copy of the stored entries in row-major order.
func (j *Jacobian) Triplets() []Triplet {
	out := make([]Triplet, len(j.data))
	copy(out, j.data)
	sort.Slice(out, func(a, b int) bool {
		if out[a].Row != out[b].Row {
			return out[a].Row < out[b].Row
		}
		return out[a].Col < out[b].Col
	})
	return out
}

// Dense expands the matrix into a gonum dense matrix. Meant for small
// problems and tests; both dimensions must be positive.
func (j *Jacobian) Dense() *mat.Dense {
	d := mat.NewDense(j.rows, j.cols, nil)
	for _, t := range j.data {
		d.Set(t.Row, t.Col, t.Val)
	}
	return d
}
