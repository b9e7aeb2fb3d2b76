// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

var negInf = math.Inf(-1)

// logSumExp2 and logSumExp3 are the fixed-arity log-sum-exp helpers for
// the two- and three-term recursions used by the evidence accumulator
// (§4.6). logSumExp2 computes log(exp(a)+exp(b)) directly, treating a
// -Inf operand as a zero term, with no slice allocation; logSumExp3
// delegates to floats.LogSumExp.
func logSumExp2(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return b
	}
	if math.IsInf(b, -1) {
		return a
	}
	m := a
	if b > m {
		m = b
	}
	return m + math.Log(math.Exp(a-m)+math.Exp(b-m))
}

func logSumExp3(a, b, c float64) float64 {
	return floats.LogSumExp([]float64{a, b, c})
}

// deadWeight returns the log prior-volume weight assigned to the point
// that dies when the live population has size nlive (§4.6):
// logw = (n-1)*log(n) - n*log(n+1).
func deadWeight(nlive int) float64 {
	n := float64(nlive)
	return (n-1)*math.Log(n) - n*math.Log(n+1)
}

// logDiffExp returns log(exp(a) - exp(b)) for a >= b, clamping tiny
// negative results from floating-point rounding to -Inf (i.e. a
// difference of zero) rather than returning NaN.
func logDiffExp(a, b float64) float64 {
	if math.IsInf(a, -1) {
		return negInf
	}
	diff := 1 - math.Exp(b-a)
	if diff <= 0 {
		return negInf
	}
	return a + math.Log(diff)
}
