// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// Summary records statistics of nested runs
type Summary struct {
	Nruns  int          // number of calls to Run
	Nsteps int          // number of converged pseudo-time steps (all runs)
	Ncuts  int          // number of step cutbacks (all runs)
	Niters int          // number of nonlinear iterations (all runs)
	Resids utl.DblSlist // residuals of last run; one row per step
}

// ItersPerStep returns the number of iterations of each step of the last run
func (o *Summary) ItersPerStep() (n []int) {
	P := o.Resids.Ptrs
	for i := 0; i < len(P)-1; i++ {
		n = append(n, P[i+1]-P[i])
	}
	return
}

// String returns a one-line description of the summary
func (o Summary) String() string {
	return io.Sf("nruns=%d nsteps=%d ncuts=%d niters=%d", o.Nruns, o.Nsteps, o.Ncuts, o.Niters)
}
