// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compose implements the block model for nonlinear programs
//
//	minimize 𝒇(𝐱) subject to 𝒍 ≤ 𝒈(𝐱) ≤ 𝒖 and 𝒍ₓ ≤ 𝐱 ≤ 𝒖ₓ
//
// where the variables 𝐱, the constraint rows 𝒈 and the cost terms of 𝒇
// are authored as independent named blocks. A block only ever sees its
// own local indices; a Composite stacks the blocks into one globally
// indexed value vector, bound vector and sparse Jacobian by tracking the
// offset of every block inside the whole.
//
// Variables and constraints present disjoint capabilities: a Variable
// accepts new values but has no Jacobian, a Constraint supplies values,
// bounds and Jacobian blocks but holds no state to be set. Calling the
// missing operation is therefore a compile error, not a runtime one.
package compose

// Component is the contract every block satisfies: a name that is unique
// within its Composite, a row count fixed at construction, and per-row
// values and bounds.
//
// Values and Bounds must each return exactly Rows elements for the
// lifetime of the block, and must be computable purely from the current
// stored variable values.
type Component interface {
	// Name identifies the block; Composites use it as a lookup key.
	Name() string
	// Rows is the fixed number of rows held by the block. For a
	// variable block a row is one decision variable, for a constraint
	// block one scalar constraint.
	Rows() int
	// Values returns the current value of every row.
	Values() []float64
	// Bounds returns the [lower,upper] interval of every row.
	Bounds() []Bounds
}

// Variable is a block of decision variables. It is the only kind of
// block whose state may be overwritten by the solver.
type Variable interface {
	Component
	// SetVariables replaces the stored values with x. The length of x
	// must equal Rows; values are stored verbatim, bound enforcement is
	// the solver's job.
	SetVariables(x []float64)
}

// Constraint is a block of related constraint rows 𝒍 ≤ 𝒈(𝐱) ≤ 𝒖.
// Concrete constraints embed ConstraintSet and implement Values, Bounds
// and FillJacobianBlock against local indices only.
type Constraint interface {
	Component
	// LinkVariables hands the constraint a read-only view of the full
	// variable composite. Called exactly once, before any evaluation.
	LinkVariables(vars *Composite)
	// Variables returns the linked variable composite.
	Variables() *Composite
	// FillJacobianBlock writes the partial derivatives of this block's
	// rows with respect to the named variable set, starting at local
	// column 0 of jac. If the constraint does not depend on that set it
	// must leave jac untouched, which keeps the sub-block structurally
	// zero.
	FillJacobianBlock(set string, jac *Jacobian)
}

// AssembleJacobian combines the per-variable-set blocks supplied by
// FillJacobianBlock into the full rows×n Jacobian of c, where n is the
// total width of the linked variable composite.
//
// For every variable set, in composite order, a zero block of the right
// size is passed to FillJacobianBlock and the filled columns are shifted
// to the set's global column offset. Constraint authors never deal with
// global indices; this function is the only place they are introduced.
func AssembleJacobian(c Constraint) *Jacobian {
	vars := c.Variables()
	jac := NewJacobian(c.Rows(), vars.Rows())
	for _, v := range vars.Components() {
		block := NewJacobian(c.Rows(), v.Rows())
		c.FillJacobianBlock(v.Name(), block)
		if block.NNZ() == 0 {
			continue
		}
		off, ok := vars.OffsetOf(v.Name())
		if !ok {
			panic("compose: variable set vanished from composite during assembly")
		}
		jac.SetBlock(0, off, block)
	}
	return jac
}
