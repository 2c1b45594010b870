// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	"math"

	"github.com/paddyschmidt/gofe2/msolid"
)

// MicroEnergy returns the average of P:F over the current volume of the RVE
//
//  e = Σ (P:F) J dV0 / Σ J dV0
//
func (o *Instance) MicroEnergy() (e float64) {
	var v float64
	o.Dom.EachIp(func(s *msolid.State, dV0 float64) {
		dv := det(s.F) * dV0
		e += s.PdotF() * dv
		v += dv
	})
	if v > 0 {
		e /= v
	}
	return
}

// MacroEnergy returns P:F
func MacroEnergy(P, F [][]float64) (e float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			e += P[i][j] * F[i][j]
		}
	}
	return
}

// HillMandelOk tells whether the difference between micro and macro energies is within the
// tolerance relative to the largest magnitude of both
func HillMandelOk(macro, micro, tol float64) bool {
	ref := math.Max(math.Abs(macro), math.Abs(micro))
	if ref < 1e-15 {
		return true
	}
	return math.Abs(micro-macro) <= tol*ref
}

// det returns the determinant of a 3x3 matrix
func det(a [][]float64) float64 {
	return a[0][0]*(a[1][1]*a[2][2]-a[1][2]*a[2][1]) -
		a[0][1]*(a[1][0]*a[2][2]-a[1][2]*a[2][0]) +
		a[0][2]*(a[1][0]*a[2][1]-a[1][1]*a[2][0])
}
