// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compose

import "fmt"

// VariableSet is a single named group of decision variables representing
// one concept, e.g. "spline-coefficients" or "step-durations".
//
// It can be used directly, seeded through SetValues and SetBounds, or
// embedded by a type that overrides Values or Bounds.
type VariableSet struct {
	name   string
	values []float64
	bounds []Bounds
}

// NewVariableSet creates n zero-initialized, unbounded variables.
func NewVariableSet(n int, name string) *VariableSet {
	if n < 0 {
		panic("variable count must not be negative")
	}
	return &VariableSet{
		name:   name,
		values: make([]float64, n),
		bounds: FillBounds(n, NoBound),
	}
}

// Name returns the set name.
func (v *VariableSet) Name() string { return v.name }

// Rows returns the number of variables in the set.
func (v *VariableSet) Rows() int { return len(v.values) }

// Values returns the stored variable values. Callers must treat the
// slice as read-only; mutation goes through SetVariables only.
func (v *VariableSet) Values() []float64 { return v.values }

// Bounds returns the per-variable bounds.
func (v *VariableSet) Bounds() []Bounds { return v.bounds }

// SetVariables overwrites the stored values with x. No validation
// against bounds happens here, keeping variables inside their bounds is
// the solver's job.
func (v *VariableSet) SetVariables(x []float64) {
	if len(x) != len(v.values) {
		panic(fmt.Sprintf("variable set %q: %d values not match %d variables", v.name, len(x), len(v.values)))
	}
	copy(v.values, x)
}

// SetValues seeds the initial variable values before solving.
func (v *VariableSet) SetValues(x []float64) {
	v.SetVariables(x)
}

// SetBounds replaces the per-variable bounds.
func (v *VariableSet) SetBounds(b []Bounds) {
	if len(b) != len(v.bounds) {
		panic(fmt.Sprintf("variable set %q: %d bounds not match %d variables", v.name, len(b), len(v.bounds)))
	}
	copy(v.bounds, b)
}

// ConstraintSet is the embeddable base of a block of n related
// constraint rows. It carries the name, the row count and the non-owning
// reference to the variable composite the constraint reads from; the
// embedding type supplies Values, Bounds and FillJacobianBlock.
//
// A type that wants to cache direct references to the variable sets it
// depends on can override LinkVariables, as long as the override calls
// the embedded one.
type ConstraintSet struct {
	name      string
	rows      int
	variables *Composite
}

// NewConstraintSet creates the base for n constraint rows.
func NewConstraintSet(n int, name string) ConstraintSet {
	if n < 0 {
		panic("constraint count must not be negative")
	}
	return ConstraintSet{name: name, rows: n}
}

// Name returns the set name.
func (c *ConstraintSet) Name() string { return c.name }

// Rows returns the number of constraint rows.
func (c *ConstraintSet) Rows() int { return c.rows }

// LinkVariables stores the read-only view of the variable composite.
// Linking twice indicates the set was registered with two problems.
func (c *ConstraintSet) LinkVariables(vars *Composite) {
	if c.variables != nil {
		panic(fmt.Sprintf("constraint set %q: variables already linked", c.name))
	}
	c.variables = vars
}

// Variables returns the linked variable composite. The returned
// composite must only be read; variable data is owned by whoever
// distributes SetVariables.
func (c *ConstraintSet) Variables() *Composite {
	if c.variables == nil {
		panic(fmt.Sprintf("constraint set %q: variables not linked", c.name))
	}
	return c.variables
}

// CostTerm is a single scalar cost built from the linked variables.
// A cost gradient is just a one-row Jacobian, so the FillJacobianBlock
// contract is the same as for constraints.
type CostTerm interface {
	Name() string
	Cost() float64
	LinkVariables(vars *Composite)
	Variables() *Composite
	FillJacobianBlock(set string, jac *Jacobian)
}

// NewCostTerm creates the embeddable base for a cost term: a one-row
// constraint set.
func NewCostTerm(name string) ConstraintSet {
	return NewConstraintSet(1, name)
}

// WrapCost adapts a cost term into the one-row, unbounded constraint
// shape so it can be stacked by the same composite plumbing.
func WrapCost(t CostTerm) Constraint {
	return &costConstraint{t}
}

type costConstraint struct {
	CostTerm
}

func (c *costConstraint) Rows() int { return 1 }

func (c *costConstraint) Values() []float64 { return []float64{c.Cost()} }

func (c *costConstraint) Bounds() []Bounds { return []Bounds{NoBound} }
