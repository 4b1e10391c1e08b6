// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package numdiff approximates the Jacobian of a composed constraint set
// by finite differences and checks analytic FillJacobianBlock
// implementations against it.
//
// # Reference:
//
//   - https://en.wikipedia.org/wiki/Finite_difference
//   - https://github.com/scipy/scipy/blob/main/scipy/optimize/_numdiff.py
package numdiff

import (
	"errors"
	"fmt"
	"math"

	"github.com/curioloop/nlpblock/compose"
)

var sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
var cubeEps = math.Pow(math.Nextafter(1, 2)-1, 1.0/3)

// Method selects the finite difference scheme.
type Method int

const (
	// Forward uses the first order accuracy forward difference.
	Forward Method = iota
	// Central uses the second order accuracy central difference.
	Central
)

// step computes the absolute step size h = sign(x)·eps·max(1,|x|) with
// eps matching the scheme's truncation order.
func step(x float64, method Method) float64 {
	eps := sqrtEps
	if method == Central {
		eps = cubeEps
	}
	h := math.Copysign(eps, x) * math.Max(1, math.Abs(x))
	if (x+h)-x == 0 {
		h = eps
	}
	return h
}

// ApproxJacobian estimates the Jacobian of constraint set c with respect
// to its linked variables by perturbing one global variable at a time,
// re-evaluating c, and restoring the original values afterwards.
//
// The result has the same rows×n shape as compose.AssembleJacobian but a
// dense non-zero pattern wherever the difference quotient is non-zero.
func ApproxJacobian(c compose.Constraint, method Method) (*compose.Jacobian, error) {
	if method != Forward && method != Central {
		return nil, errors.New("unknown method")
	}

	vars := c.Variables()
	n, m := vars.Rows(), c.Rows()
	jac := compose.NewJacobian(m, n)
	if n == 0 || m == 0 {
		return jac, nil
	}

	x0 := vars.Values()
	x := make([]float64, n)
	defer vars.SetVariables(x0)

	var f0 []float64
	if method == Forward {
		f0 = append([]float64(nil), c.Values()...)
		if len(f0) != m {
			return nil, fmt.Errorf("constraint set %q returned %d values for %d rows", c.Name(), len(f0), m)
		}
	}

	for i := 0; i < n; i++ {
		h := step(x0[i], method)
		copy(x, x0)
		var df []float64
		if method == Forward {
			x[i] = x0[i] + h
			vars.SetVariables(x)
			f := c.Values()
			df = make([]float64, m)
			for j := range df {
				df[j] = (f[j] - f0[j]) / h
			}
		} else {
			x[i] = x0[i] - h
			vars.SetVariables(x)
			f1 := append([]float64(nil), c.Values()...)
			x[i] = x0[i] + h
			vars.SetVariables(x)
			f2 := c.Values()
			df = make([]float64, m)
			for j := range df {
				df[j] = (f2[j] - f1[j]) / (2 * h)
			}
		}
		for j, d := range df {
			jac.Set(j, i, d)
		}
	}
	return jac, nil
}

// CheckJacobian compares the analytic Jacobian assembled from the
// FillJacobianBlock implementation of c against a finite difference
// approximation and reports the worst offending entry beyond tol.
//
// Use it while authoring a constraint, the way one runs a solver's
// derivative test before trusting a hand-written gradient.
func CheckJacobian(c compose.Constraint, method Method, tol float64) error {
	approx, err := ApproxJacobian(c, method)
	if err != nil {
		return err
	}
	exact := compose.AssembleJacobian(c)

	var worst float64
	var worstRow, worstCol int
	for i := 0; i < exact.Rows(); i++ {
		for j := 0; j < exact.Cols(); j++ {
			if d := math.Abs(exact.At(i, j) - approx.At(i, j)); d > worst {
				worst, worstRow, worstCol = d, i, j
			}
		}
	}
	if worst > tol {
		return fmt.Errorf("constraint set %q: jacobian entry (%d,%d) analytic %.8g vs approximated %.8g (diff %.3g > tol %.3g)",
			c.Name(), worstRow, worstCol, exact.At(worstRow, worstCol), approx.At(worstRow, worstCol), worst, tol)
	}
	return nil
}
