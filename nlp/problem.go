// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nlp assembles composed blocks into one nonlinear program
//
//	minimize 𝒇(𝐱) subject to 𝒍 ≤ 𝒈(𝐱) ≤ 𝒖 and 𝒍ₓ ≤ 𝐱 ≤ 𝒖ₓ
//
// and exposes the flat vector/bound/Jacobian view an iterative solver
// drives: one SetVariables → evaluate cycle per iteration.
package nlp

import (
	"fmt"

	"github.com/curioloop/nlpblock/compose"
	"github.com/curioloop/nlpblock/logger"
)

// Problem aggregates a variable composite, a constraint composite and a
// cost composite into a single globally indexed program.
//
// Registration happens before solving: variable sets first, then the
// constraint sets and cost terms that read them. The first solver-driven
// SetVariables freezes all three composites, because handing out offsets
// and then reordering blocks would corrupt every index already reported.
type Problem struct {
	variables   *compose.Composite
	constraints *compose.Composite
	costs       *compose.Composite
	history     [][]float64
}

// NewProblem creates an empty problem.
func NewProblem() *Problem {
	return &Problem{
		variables:   compose.NewComposite("variable-sets"),
		constraints: compose.NewComposite("constraint-sets"),
		costs:       compose.NewCostComposite("costs"),
	}
}

// AddVariableSet registers a block of decision variables.
func (p *Problem) AddVariableSet(v compose.Variable) error {
	return p.variables.Append(v)
}

// AddConstraintSet registers a block of constraint rows and links it
// against the variable sets registered so far.
func (p *Problem) AddConstraintSet(c compose.Constraint) error {
	if err := p.constraints.Append(c); err != nil {
		return err
	}
	c.LinkVariables(p.variables)
	return nil
}

// AddCostTerm registers a scalar cost term. The term is adapted into the
// one-row constraint shape and summed with its siblings.
func (p *Problem) AddCostTerm(t compose.CostTerm) error {
	w := compose.WrapCost(t)
	if err := p.costs.Append(w); err != nil {
		return err
	}
	w.LinkVariables(p.variables)
	return nil
}

// VariableCount returns the total number of decision variables.
func (p *Problem) VariableCount() int { return p.variables.Rows() }

// ConstraintCount returns the total number of constraint rows.
func (p *Problem) ConstraintCount() int { return p.constraints.Rows() }

// HasCostTerms reports whether any cost term was registered. Solvers use
// it to fall back to pure feasibility problems.
func (p *Problem) HasCostTerms() bool { return p.costs.Rows() > 0 }

// Variables returns the variable composite for read access.
func (p *Problem) Variables() *compose.Composite { return p.variables }

// VariableValues returns the current global variable vector.
func (p *Problem) VariableValues() []float64 { return p.variables.Values() }

// VariableBounds returns the bounds of every variable, in global order.
func (p *Problem) VariableBounds() []compose.Bounds { return p.variables.Bounds() }

// ConstraintBounds returns the bounds of every constraint row, in global
// order.
func (p *Problem) ConstraintBounds() []compose.Bounds { return p.constraints.Bounds() }

// SetVariables distributes the global vector x to the variable sets.
// The first call freezes the block structure.
func (p *Problem) SetVariables(x []float64) {
	if !p.variables.Frozen() {
		p.variables.Freeze()
		p.constraints.Freeze()
		p.costs.Freeze()
	}
	p.variables.SetVariables(x)
}

// EvaluateConstraints returns 𝒈(x) for all constraint rows.
func (p *Problem) EvaluateConstraints(x []float64) []float64 {
	p.SetVariables(x)
	return p.constraints.Values()
}

// EvaluateCostFunction returns 𝒇(x), the sum of all cost terms.
func (p *Problem) EvaluateCostFunction(x []float64) float64 {
	p.SetVariables(x)
	if !p.HasCostTerms() {
		return 0
	}
	return p.costs.Values()[0]
}

// EvaluateCostFunctionGradient returns 𝜵𝒇(x) as a dense n-vector.
func (p *Problem) EvaluateCostFunctionGradient(x []float64) []float64 {
	p.SetVariables(x)
	grad := make([]float64, p.VariableCount())
	for _, t := range p.costs.Jacobian().Triplets() {
		grad[t.Col] += t.Val
	}
	return grad
}

// ConstraintJacobian returns 𝜵𝒈(x), the m×n sparse Jacobian of all
// constraint rows stacked at their offsets.
func (p *Problem) ConstraintJacobian(x []float64) *compose.Jacobian {
	p.SetVariables(x)
	return p.constraints.Jacobian()
}

// CostJacobian returns the 1×n sparse gradient row of the summed cost.
func (p *Problem) CostJacobian(x []float64) *compose.Jacobian {
	p.SetVariables(x)
	return p.costs.Jacobian()
}

// SaveCurrent snapshots the current variable vector. Solvers call it
// once per accepted iterate to build the solve trajectory.
func (p *Problem) SaveCurrent() {
	p.history = append(p.history, p.variables.Values())
}

// Iterations returns the number of saved iterates.
func (p *Problem) Iterations() int { return len(p.history) }

// VariablesAt returns the variable vector saved at the given iterate.
func (p *Problem) VariablesAt(iter int) []float64 {
	if iter < 0 || iter >= len(p.history) {
		panic(fmt.Sprintf("problem: iterate %d out of %d saved", iter, len(p.history)))
	}
	return p.history[iter]
}

// PrintCurrent logs the block layout and the current values at debug
// level.
func (p *Problem) PrintCurrent() {
	log := logger.Logger().With().Str("component", "problem").Logger()
	log.Debug().
		Int("variables", p.VariableCount()).
		Int("constraints", p.ConstraintCount()).
		Int("costs", p.costs.Count()).
		Msg("problem layout")
	for _, v := range p.variables.Components() {
		off, _ := p.variables.OffsetOf(v.Name())
		log.Debug().
			Str("set", v.Name()).
			Int("offset", off).
			Int("rows", v.Rows()).
			Floats64("values", v.Values()).
			Msg("variable set")
	}
	for _, c := range p.constraints.Components() {
		off, _ := p.constraints.OffsetOf(c.Name())
		log.Debug().
			Str("set", c.Name()).
			Int("offset", off).
			Int("rows", c.Rows()).
			Floats64("values", c.Values()).
			Msg("constraint set")
	}
}
