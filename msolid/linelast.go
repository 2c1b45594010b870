// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/la"
)

// LinElast implements Hooke's law written with the small strain tensor of the current
// deformation gradient; i.e. the stress is linear in F
//
//  ε = sym(F) - I
//  σ = λ tr(ε) I + 2 G ε
//  P = J σ F⁻ᵀ
//
type LinElast struct {

	// parameters
	Lam float64 // λ: Lamé's first parameter
	G   float64 // shear modulus

	// auxiliary
	Nsig int         // number of stress components
	fi   [][]float64 // F⁻¹
	σ    [][]float64 // Cauchy stress
	tmp  [][]float64 // scratchpad
}

// add model to factory
func init() {
	allocators["lin-elast"] = func() Model { return new(LinElast) }
}

// Init initialises model
func (o *LinElast) Init(ndim int, pstress bool, prms fun.Prms) (err error) {
	if ndim != 3 || pstress {
		return chk.Err("lin-elast model works in 3D only")
	}
	o.Nsig = 2 * ndim
	o.Lam, o.G, err = ElastConsts(prms)
	if err != nil {
		return
	}
	o.fi = la.MatAlloc(3, 3)
	o.σ = la.MatAlloc(3, 3)
	o.tmp = la.MatAlloc(3, 3)
	return
}

// GetPrms gets (an example) of parameters
func (o LinElast) GetPrms() fun.Prms {
	return []*fun.Prm{
		&fun.Prm{N: "E", V: 1000},
		&fun.Prm{N: "nu", V: 0.3},
	}
}

// InitIntVars initialises internal (secondary) variables
func (o LinElast) InitIntVars(σ []float64) (s *State, err error) {
	s = NewState(o.Nsig)
	copy(s.Sig, σ)
	return
}

// CalcSig computes the Cauchy stress tensor σ (matrix form) for given F
func (o LinElast) CalcSig(σ, F [][]float64) {
	trε := F[0][0] + F[1][1] + F[2][2] - 3.0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			σ[i][j] = o.G * (F[i][j] + F[j][i])
		}
		σ[i][i] += o.Lam*trε - 2.0*o.G
	}
}

// Update updates stresses for given deformation gradient
func (o *LinElast) Update(s *State, F, FΔ [][]float64) (err error) {
	J, err := invF(o.fi, F)
	if err != nil {
		return
	}
	la.MatCopy(s.F, 1, F)
	o.CalcSig(o.σ, F)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s.P[i][j] = 0
			for k := 0; k < 3; k++ {
				s.P[i][j] += J * o.σ[i][k] * o.fi[j][k]
			}
		}
	}
	sym33(s.Sig, o.σ, o.tmp)
	return
}

// CalcA computes A = ∂P/∂F
//  A_iJmN = P_iJ F⁻¹Nm - P_iN F⁻¹Jm + J (λ F⁻¹Ji δmN + G δim F⁻¹JN + G δiN F⁻¹Jm)
func (o *LinElast) CalcA(A [][][][]float64, s *State, firstIt bool) (err error) {
	J, err := invF(o.fi, s.F)
	if err != nil {
		return
	}
	P := s.P
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for m := 0; m < 3; m++ {
				for n := 0; n < 3; n++ {
					A[i][j][m][n] = P[i][j]*o.fi[n][m] - P[i][n]*o.fi[j][m]
					if m == n {
						A[i][j][m][n] += J * o.Lam * o.fi[j][i]
					}
					if i == m {
						A[i][j][m][n] += J * o.G * o.fi[j][n]
					}
					if i == n {
						A[i][j][m][n] += J * o.G * o.fi[j][m]
					}
				}
			}
		}
	}
	return
}
