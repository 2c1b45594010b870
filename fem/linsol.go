// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// LinSol solves the augmented linear system Kb・wb = fb with a dense LU factorisation
type LinSol struct {
	lu mat.LU        // factorisation
	kb *mat.Dense    // [nyb][nyb] Jacobian matrix
	fb *mat.VecDense // [nyb] right-hand side; shares data with Domain.Fb
	wb *mat.VecDense // [nyb] solution; shares data with Domain.Wb
}

// Init initialises linear solver
func (o *LinSol) Init(Kb *mat.Dense, fb, wb []float64) {
	o.kb = Kb
	o.fb = mat.NewVecDense(len(fb), fb)
	o.wb = mat.NewVecDense(len(wb), wb)
}

// Fact performs the factorisation
func (o *LinSol) Fact() (err error) {
	o.lu.Factorize(o.kb)
	if c := o.lu.Cond(); math.IsInf(c, 1) || math.IsNaN(c) {
		return chk.Err("augmented Jacobian matrix is singular")
	}
	return
}

// Solve solves for wb using the last factorisation
func (o *LinSol) Solve() (err error) {
	err = o.lu.SolveVecTo(o.wb, false, o.fb)
	if err != nil {
		if _, ok := err.(mat.Condition); ok {
			return nil // ill-conditioned but solved
		}
		return chk.Err("linear solver failed:\n%v", err)
	}
	return
}
