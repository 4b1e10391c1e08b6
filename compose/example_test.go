// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compose_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/nlpblock/compose"
)

// speedLimit bounds the total speed |v₀|+|v₁| ≤ limit, depending only on
// the "vel" variable set and ignoring "pos" entirely.
type speedLimit struct {
	compose.ConstraintSet
	limit float64
}

func newSpeedLimit(limit float64) *speedLimit {
	return &speedLimit{
		ConstraintSet: compose.NewConstraintSet(1, "speed-limit"),
		limit:         limit,
	}
}

func (c *speedLimit) Values() []float64 {
	vel, _ := c.Variables().ComponentByName("vel")
	v := vel.Values()
	return []float64{v[0] + v[1]}
}

func (c *speedLimit) Bounds() []compose.Bounds {
	return []compose.Bounds{{Lower: compose.NoBound.Lower, Upper: c.limit}}
}

func (c *speedLimit) FillJacobianBlock(set string, jac *compose.Jacobian) {
	if set != "vel" {
		return
	}
	jac.Set(0, 0, 1)
	jac.Set(0, 1, 1)
}

// The scenario from the package documentation: two variable sets, one
// constraint depending only on the second, assembled into a global 1×4
// Jacobian with the untouched block structurally zero.
func TestSpeedLimitAssembly(t *testing.T) {

	vars := compose.NewComposite("variables")
	require.NoError(t, vars.Append(compose.NewVariableSet(2, "pos")))
	require.NoError(t, vars.Append(compose.NewVariableSet(2, "vel")))

	limit := newSpeedLimit(5)
	limit.LinkVariables(vars)

	vars.SetVariables([]float64{10, 20, 1, 2})

	require.Equal(t, []float64{3}, limit.Values())

	jac := compose.AssembleJacobian(limit)
	require.Equal(t, 1, jac.Rows())
	require.Equal(t, 4, jac.Cols())
	require.Equal(t, 2, jac.NNZ(), "pos block must stay structurally zero")
	require.True(t, mat.Equal(jac.Dense(), mat.NewDense(1, 4, []float64{0, 0, 1, 1})))

	// the constraint author never saw a global index: move the block by
	// prepending another set and the same fill lands at the new offset
	shifted := compose.NewComposite("variables")
	require.NoError(t, shifted.Append(compose.NewVariableSet(3, "extra")))
	require.NoError(t, shifted.Append(compose.NewVariableSet(2, "pos")))
	require.NoError(t, shifted.Append(compose.NewVariableSet(2, "vel")))

	moved := newSpeedLimit(5)
	moved.LinkVariables(shifted)

	jac = compose.AssembleJacobian(moved)
	require.True(t, mat.Equal(jac.Dense(), mat.NewDense(1, 7, []float64{0, 0, 0, 0, 0, 1, 1})))
}

func TestConstraintStacking(t *testing.T) {

	vars := compose.NewComposite("variables")
	require.NoError(t, vars.Append(compose.NewVariableSet(2, "pos")))
	require.NoError(t, vars.Append(compose.NewVariableSet(2, "vel")))
	vars.SetVariables([]float64{1, 2, 3, 4})

	cons := compose.NewComposite("constraints")

	low := newSpeedLimit(5)
	require.NoError(t, cons.Append(low))
	low.LinkVariables(vars)

	high := &speedLimit{ConstraintSet: compose.NewConstraintSet(1, "hard-limit"), limit: 9}
	require.NoError(t, cons.Append(high))
	high.LinkVariables(vars)

	require.Equal(t, 2, cons.Rows())
	require.Equal(t, []float64{7, 7}, cons.Values())

	bounds := cons.Bounds()
	require.Equal(t, 5.0, bounds[0].Upper)
	require.Equal(t, 9.0, bounds[1].Upper)

	jac := cons.Jacobian()
	require.Equal(t, 2, jac.Rows())
	require.Equal(t, 4, jac.Cols())
	require.True(t, mat.Equal(jac.Dense(), mat.NewDense(2, 4, []float64{
		0, 0, 1, 1,
		0, 0, 1, 1,
	})))
}
