// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compose

import (
	"fmt"
)

// Composite is an ordered collection of named blocks of one kind: all
// variable sets, all constraint sets, or all cost terms. It assigns each
// block a global offset equal to the total row count of the blocks
// appended before it, and produces the concatenated value vector, bound
// vector and row-stacked Jacobian the solver consumes.
//
// A Composite is itself a Component, so composites nest.
//
// A cost composite (NewCostComposite) aggregates instead of stacking:
// child values are summed into a single row and child Jacobian rows into
// a single gradient row.
type Composite struct {
	name       string
	costSum    bool
	components []Component
	index      map[string]int
	offsets    []int
	rows       int
	frozen     bool
}

// NewComposite creates an empty stacking composite.
func NewComposite(name string) *Composite {
	return &Composite{name: name, index: make(map[string]int)}
}

// NewCostComposite creates an empty composite that sums its children
// into one row.
func NewCostComposite(name string) *Composite {
	cp := NewComposite(name)
	cp.costSum = true
	return cp
}

// Name returns the composite name.
func (cp *Composite) Name() string { return cp.name }

// Rows returns the total row count: the sum of child rows, or 1 for a
// non-empty cost composite.
func (cp *Composite) Rows() int {
	if cp.costSum {
		if len(cp.components) == 0 {
			return 0
		}
		return 1
	}
	return cp.rows
}

// Count returns the number of child blocks.
func (cp *Composite) Count() int { return len(cp.components) }

// Append adds a block at the end of the sequence and assigns its offset.
// Duplicate names and appends after Freeze are configuration errors.
func (cp *Composite) Append(c Component) error {
	if cp.frozen {
		return fmt.Errorf("composite %q: frozen, cannot append %q", cp.name, c.Name())
	}
	if _, dup := cp.index[c.Name()]; dup {
		return fmt.Errorf("composite %q: duplicate component name %q", cp.name, c.Name())
	}
	if c.Rows() < 0 {
		return fmt.Errorf("composite %q: component %q has negative row count", cp.name, c.Name())
	}
	cp.index[c.Name()] = len(cp.components)
	cp.components = append(cp.components, c)
	cp.offsets = append(cp.offsets, cp.rows)
	cp.rows += c.Rows()
	return nil
}

// Clear removes every block and resets all offsets.
func (cp *Composite) Clear() error {
	if cp.frozen {
		return fmt.Errorf("composite %q: frozen, cannot clear", cp.name)
	}
	cp.components = nil
	cp.offsets = nil
	cp.rows = 0
	cp.index = make(map[string]int)
	return nil
}

// Freeze forbids further Append and Clear calls. Once a solver has seen
// the assembled problem, changing the sequence would invalidate every
// offset it was given.
func (cp *Composite) Freeze() { cp.frozen = true }

// Frozen reports whether the composite is frozen.
func (cp *Composite) Frozen() bool { return cp.frozen }

// OffsetOf returns the global starting row (or column) of the named
// block.
func (cp *Composite) OffsetOf(name string) (int, bool) {
	i, ok := cp.index[name]
	if !ok {
		return 0, false
	}
	return cp.offsets[i], true
}

// ComponentByName returns the named block.
func (cp *Composite) ComponentByName(name string) (Component, bool) {
	i, ok := cp.index[name]
	if !ok {
		return nil, false
	}
	return cp.components[i], true
}

// Components returns the child blocks in append order. Callers must not
// modify the returned slice.
func (cp *Composite) Components() []Component {
	return cp.components
}

func (cp *Composite) childValues(c Component) []float64 {
	vals := c.Values()
	if len(vals) != c.Rows() {
		panic(fmt.Sprintf("composite %q: component %q returned %d values for %d rows",
			cp.name, c.Name(), len(vals), c.Rows()))
	}
	return vals
}

func (cp *Composite) childBounds(c Component) []Bounds {
	bnds := c.Bounds()
	if len(bnds) != c.Rows() {
		panic(fmt.Sprintf("composite %q: component %q returned %d bounds for %d rows",
			cp.name, c.Name(), len(bnds), c.Rows()))
	}
	return bnds
}

// Values concatenates the child values at their offsets, or sums them
// for a cost composite.
func (cp *Composite) Values() []float64 {
	if cp.costSum {
		if len(cp.components) == 0 {
			return nil
		}
		sum := 0.0
		for _, c := range cp.components {
			for _, v := range cp.childValues(c) {
				sum += v
			}
		}
		return []float64{sum}
	}
	out := make([]float64, cp.rows)
	for i, c := range cp.components {
		copy(out[cp.offsets[i]:], cp.childValues(c))
	}
	return out
}

// Bounds concatenates the child bounds at their offsets. A cost
// composite reports a single unbounded row.
func (cp *Composite) Bounds() []Bounds {
	if cp.costSum {
		if len(cp.components) == 0 {
			return nil
		}
		return []Bounds{NoBound}
	}
	out := make([]Bounds, cp.rows)
	for i, c := range cp.components {
		copy(out[cp.offsets[i]:], cp.childBounds(c))
	}
	return out
}

// SetVariables slices x at the variable-set offsets and forwards each
// segment to the matching set. Every child must be a Variable; feeding
// variables to a constraint composite is framework misuse.
func (cp *Composite) SetVariables(x []float64) {
	if len(x) != cp.rows {
		panic(fmt.Sprintf("composite %q: %d values not match %d variables", cp.name, len(x), cp.rows))
	}
	for i, c := range cp.components {
		v, ok := c.(Variable)
		if !ok {
			panic(fmt.Sprintf("composite %q: component %q does not accept variables", cp.name, c.Name()))
		}
		off := cp.offsets[i]
		v.SetVariables(x[off : off+c.Rows()])
	}
}

// Jacobian stacks the assembled Jacobian of every child constraint at
// its row offset. All children must be linked against the same variable
// composite. A cost composite sums the child rows into one gradient row.
func (cp *Composite) Jacobian() *Jacobian {
	if len(cp.components) == 0 {
		return NewJacobian(0, 0)
	}
	cols := 0
	jacs := make([]*Jacobian, len(cp.components))
	for i, c := range cp.components {
		con, ok := c.(Constraint)
		if !ok {
			panic(fmt.Sprintf("composite %q: component %q provides no jacobian", cp.name, c.Name()))
		}
		jacs[i] = AssembleJacobian(con)
		if w := jacs[i].Cols(); w > cols {
			cols = w
		}
	}
	jac := NewJacobian(cp.Rows(), cols)
	for i, sub := range jacs {
		if cp.costSum {
			for _, t := range sub.Triplets() {
				jac.Add(0, t.Col, t.Val)
			}
		} else {
			jac.SetBlock(cp.offsets[i], 0, sub)
		}
	}
	return jac
}
