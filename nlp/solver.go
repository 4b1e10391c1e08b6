// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nlp

// Solver is an external NLP solver driving the evaluation cycle of a
// composed problem: repeated SetVariables followed by value, bound and
// Jacobian queries until its own convergence criteria are met.
//
// Solver implementations live outside this module; the problem side only
// guarantees the flat numeric contract they consume.
type Solver interface {
	Solve(p *Problem) error
}
