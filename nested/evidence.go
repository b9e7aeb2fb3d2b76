// Copyright ©2014 The gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nested

import "math"

// Evidence is C6: the running log-evidence accumulator. All six
// quantities of the evidence state (§3) are maintained in log-space.
//
// LogZ is the point estimate of log Z. LogZ2 tracks the second moment of
// Z (in log-space) via the Keeton two-term log-sum-exp recursion, giving
// a numerically stable running estimate of Var(Z) without ever leaving
// log-space. LogX/LogX2 track the expected remaining prior volume and
// its second moment using the exact moments of the Beta(n,1) shrinkage
// factor at each step. MeanLogLLive and LogX back the live-evidence
// upper bound used by the termination criterion (§4.6); LogZLogX records
// log(Z*X) after each update and is not read by the termination check.
type Evidence struct {
	LogZ     float64
	LogZ2    float64
	LogZLogX float64
	LogX     float64
	LogX2    float64

	MeanLogLLive float64 // ⟨logL⟩_live, refreshed every promotion (§9 open question)

	Precision float64 // precision_criterion (§6)
	MaxNDead  int      // 0 means unbounded
	NDead     int

	Done bool
}

// NewEvidence initializes the accumulator at LogX = 0 (all of prior
// volume remains) and LogZ = -Inf (no evidence collected yet).
func NewEvidence(precision float64, maxNDead int) *Evidence {
	return &Evidence{
		LogZ:      negInf,
		LogZ2:     negInf,
		LogZLogX:  negInf,
		LogX:      0,
		LogX2:     0,
		Precision: precision,
		MaxNDead:  maxNDead,
	}
}

// Update folds one dead point into the accumulator (§4.6). nlive is the
// live population size at the moment of death (ordinarily the
// configured target, but callers may pass a smaller transient value).
func (e *Evidence) Update(deadLogL float64, nlive int) {
	logw := deadWeight(nlive)
	n := float64(nlive)

	term := deadLogL + logw // log of this step's contribution to Z

	// logZ_new = logsumexp(logZ_old, term)
	newLogZ := logSumExp2(e.LogZ, term)

	// E[Z_new^2] = E[Z_old^2] + 2*Z_old*w + w^2, folded via the
	// three-term log-sum-exp recursion (the "Keeton" update named in the
	// design notes): exponentiating and summing the three log terms
	// below reconstructs exactly this expansion.
	newLogZ2 := logSumExp3(e.LogZ2, math.Log(2)+e.LogZ+term, 2*term)

	// logZLogX tracks log(Z*X) incrementally for the live-evidence cross
	// term: log(Z_new * X_new) = logX_new + logsumexp(logZ_old, term).
	newLogX := e.LogX + math.Log(n) - math.Log(n+1)
	e.LogZLogX = newLogX + newLogZ

	// E[X_new^2] = E[X_old^2] * E[t^2] where t ~ Beta(n,1), E[t^2] = n/(n+2).
	e.LogX2 = e.LogX2 + math.Log(n) - math.Log(n+2)

	e.LogZ = newLogZ
	e.LogZ2 = newLogZ2
	e.LogX = newLogX
	e.NDead++

	e.checkTermination()
}

// RefreshLiveMean updates ⟨logL⟩_live from the current live set. The
// source computed this only once, at initialization; per the open
// question in §9 this implementation refreshes it at every promotion for
// robustness.
func (e *Evidence) RefreshLiveMean(stack *Stack) {
	var sum float64
	var n int
	for i := 0; i < stack.Cap(); i++ {
		p := stack.Read(i)
		if !p.Daughter.Live() {
			continue
		}
		sum += p.L0
		n++
	}
	if n == 0 {
		e.MeanLogLLive = negInf
		return
	}
	e.MeanLogLLive = sum / float64(n)
	e.checkTermination()
}

// LogZLive is the upper-bound contribution to log Z from the remaining
// live set (§4.6): ⟨logL⟩_live + logX.
func (e *Evidence) LogZLive() float64 {
	return e.MeanLogLLive + e.LogX
}

// Sigma returns the estimated standard deviation of log Z, derived from
// the running second moment via the delta method: for Z lognormal-ish,
// Var(log Z) ≈ E[Z^2]/E[Z]^2 - 1.
func (e *Evidence) Sigma() float64 {
	if math.IsInf(e.LogZ, -1) {
		return 0
	}
	ratio := math.Exp(e.LogZ2 - 2*e.LogZ)
	variance := ratio - 1
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// checkTermination evaluates §4.6's stopping rule: the remaining live
// evidence is a negligible fraction of the evidence collected so far, or
// the iteration budget is exhausted.
func (e *Evidence) checkTermination() {
	if e.MaxNDead > 0 && e.NDead >= e.MaxNDead {
		e.Done = true
		return
	}
	if math.IsInf(e.LogZ, -1) {
		return
	}
	remaining := math.Exp(e.LogZLive() - e.LogZ)
	if remaining < e.Precision {
		e.Done = true
	}
}
