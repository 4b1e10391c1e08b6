// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package numdiff

import (
	"math"
	"testing"

	"github.com/curioloop/nlpblock/compose"
)

// waveConstraint has two rows over two variable sets:
//
//	g₀ = a₀·sin(a₁)
//	g₁ = a₁·cos(a₀) + b₀²
type waveConstraint struct {
	compose.ConstraintSet
	breakJac bool
}

func newWaveConstraint() *waveConstraint {
	return &waveConstraint{ConstraintSet: compose.NewConstraintSet(2, "wave")}
}

func (c *waveConstraint) Values() []float64 {
	a, _ := c.Variables().ComponentByName("a")
	b, _ := c.Variables().ComponentByName("b")
	av, bv := a.Values(), b.Values()
	return []float64{
		av[0] * math.Sin(av[1]),
		av[1]*math.Cos(av[0]) + bv[0]*bv[0],
	}
}

func (c *waveConstraint) Bounds() []compose.Bounds {
	return compose.FillBounds(2, compose.BoundZero)
}

func (c *waveConstraint) FillJacobianBlock(set string, jac *compose.Jacobian) {
	vars := c.Variables()
	switch set {
	case "a":
		a, _ := vars.ComponentByName("a")
		av := a.Values()
		jac.Set(0, 0, math.Sin(av[1]))
		jac.Set(0, 1, av[0]*math.Cos(av[1]))
		jac.Set(1, 0, -av[1]*math.Sin(av[0]))
		jac.Set(1, 1, math.Cos(av[0]))
	case "b":
		b, _ := vars.ComponentByName("b")
		bv := b.Values()
		d := 2 * bv[0]
		if c.breakJac {
			d += 0.5
		}
		jac.Set(1, 0, d)
	}
}

func linkWave(c *waveConstraint) *compose.Composite {
	vars := compose.NewComposite("variables")
	_ = vars.Append(compose.NewVariableSet(2, "a"))
	_ = vars.Append(compose.NewVariableSet(1, "b"))
	vars.SetVariables([]float64{1.2, -0.7, 0.3})
	c.LinkVariables(vars)
	return vars
}

func TestApproxJacobian(t *testing.T) {

	c := newWaveConstraint()
	vars := linkWave(c)

	x0 := vars.Values()
	exact := compose.AssembleJacobian(c)

	for _, m := range []Method{Forward, Central} {
		tol := 1e-6
		if m == Forward {
			tol = 1e-5
		}
		approx, err := ApproxJacobian(c, m)
		if err != nil {
			t.Fatal(err)
		}
		if approx.Rows() != 2 || approx.Cols() != 3 {
			t.Fatalf("shape %d×%d", approx.Rows(), approx.Cols())
		}
		for i := 0; i < 2; i++ {
			for j := 0; j < 3; j++ {
				if d := math.Abs(approx.At(i, j) - exact.At(i, j)); d > tol {
					t.Fatalf("method %v entry (%d,%d): approx %v, exact %v", m, i, j, approx.At(i, j), exact.At(i, j))
				}
			}
		}
	}

	// perturbed variables must be restored
	for i, v := range vars.Values() {
		if v != x0[i] {
			t.Fatal("variables not restored after differencing")
		}
	}
}

func TestApproxJacobianBadMethod(t *testing.T) {

	c := newWaveConstraint()
	linkWave(c)

	if _, err := ApproxJacobian(c, Method(42)); err == nil {
		t.Fatal("unknown method accepted")
	}
}

func TestCheckJacobian(t *testing.T) {

	c := newWaveConstraint()
	linkWave(c)

	if err := CheckJacobian(c, Central, 1e-6); err != nil {
		t.Fatal(err)
	}
	if err := CheckJacobian(c, Forward, 1e-5); err != nil {
		t.Fatal(err)
	}
}

func TestCheckJacobianDetectsError(t *testing.T) {

	c := newWaveConstraint()
	c.breakJac = true
	linkWave(c)

	err := CheckJacobian(c, Central, 1e-6)
	if err == nil {
		t.Fatal("wrong derivative not detected")
	}
	t.Log(err)
}

func TestStructuralZeros(t *testing.T) {

	c := newWaveConstraint()
	linkWave(c)

	// g₀ never touches b, so column 2 of row 0 must vanish both ways
	exact := compose.AssembleJacobian(c)
	if exact.At(0, 2) != 0 {
		t.Fatal("analytic jacobian leaked into untouched block")
	}
	approx, err := ApproxJacobian(c, Central)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(approx.At(0, 2)) > 1e-9 {
		t.Fatalf("approximated derivative %v for independent variable", approx.At(0, 2))
	}
}
