// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compose

import "math"

// Bounds is the interval [Lower, Upper] a row value must satisfy at the
// solution.
type Bounds struct {
	Lower, Upper float64
}

var inf = math.Inf(1)

var (
	// NoBound leaves a row unconstrained in both directions.
	NoBound = Bounds{-inf, inf}
	// BoundZero pins a row to zero, turning it into an equality.
	BoundZero = Bounds{0, 0}
	// BoundGreaterZero requires a row to be non-negative.
	BoundGreaterZero = Bounds{0, inf}
	// BoundSmallerZero requires a row to be non-positive.
	BoundSmallerZero = Bounds{-inf, 0}
)

// FillBounds returns n copies of b.
func FillBounds(n int, b Bounds) []Bounds {
	out := make([]Bounds, n)
	for i := range out {
		out[i] = b
	}
	return out
}
