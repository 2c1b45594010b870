// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/tsr"
)

// MINDETF is the minimum value allowed for det(F)
const MINDETF = 1e-10

// Alloc4 allocates a 3x3x3x3 fourth order tensor
func Alloc4() (A [][][][]float64) {
	A = make([][][][]float64, 3)
	for i := 0; i < 3; i++ {
		A[i] = make([][][]float64, 3)
		for j := 0; j < 3; j++ {
			A[i][j] = la.MatAlloc(3, 3)
		}
	}
	return
}

// Fill4 sets all components of a fourth order tensor to v
func Fill4(A [][][][]float64, v float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			la.MatFill(A[i][j], v)
		}
	}
}

// ElastConsts reads the Lamé constants from parameters given as {E, nu} or {lam, G}
func ElastConsts(prms fun.Prms) (lam, G float64, err error) {
	var E, ν float64
	var hasE, hasν, hasLam, hasG bool
	for _, p := range prms {
		switch p.N {
		case "E":
			E, hasE = p.V, true
		case "nu":
			ν, hasν = p.V, true
		case "lam":
			lam, hasLam = p.V, true
		case "G":
			G, hasG = p.V, true
		}
	}
	switch {
	case hasE && hasν:
		if E <= 0 || ν <= -1 || ν >= 0.5 {
			return 0, 0, chk.Err("invalid elastic parameters: E=%g and nu=%g", E, ν)
		}
		lam = E * ν / ((1.0 + ν) * (1.0 - 2.0*ν))
		G = E / (2.0 * (1.0 + ν))
	case hasLam && hasG:
		if G <= 0 {
			return 0, 0, chk.Err("invalid elastic parameters: lam=%g and G=%g", lam, G)
		}
	default:
		return 0, 0, chk.Err("elastic parameters must be given as {E, nu} or {lam, G}")
	}
	return
}

// invF computes Fi = inv(F) and J = det(F)
func invF(Fi, F [][]float64) (J float64, err error) {
	J, err = la.MatInv(Fi, F, MINDETF)
	if err != nil {
		return
	}
	if J <= MINDETF {
		err = chk.Err("deformation gradient is not admissible: det(F) = %g", J)
	}
	return
}

// sym33 stores the symmetric part of the 3x3 matrix a in m (Mandel basis)
//  tmp -- scratchpad [3][3]
func sym33(m []float64, a, tmp [][]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tmp[i][j] = (a[i][j] + a[j][i]) / 2.0
		}
	}
	tsr.Ten2Man(m, tmp)
}
