// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/tsr"
)

// NeoHooke implements a compressible Neo-Hookean model
//
//  W = G/2 (tr(C) - 3) - G ln(J) + λ/2 ln(J)²
//  P = G (F - F⁻ᵀ) + λ ln(J) F⁻ᵀ
//  σ = [G (b - I) + λ ln(J) I] / J
//
type NeoHooke struct {

	// parameters
	Lam float64 // λ: Lamé's first parameter
	G   float64 // shear modulus

	// auxiliary
	Nsig int         // number of stress components
	fi   [][]float64 // F⁻¹
	tmp  [][]float64 // scratchpad
}

// add model to factory
func init() {
	allocators["neo-hooke"] = func() Model { return new(NeoHooke) }
}

// Init initialises model
func (o *NeoHooke) Init(ndim int, pstress bool, prms fun.Prms) (err error) {
	if ndim != 3 || pstress {
		return chk.Err("neo-hooke model works in 3D only")
	}
	o.Nsig = 2 * ndim
	o.Lam, o.G, err = ElastConsts(prms)
	if err != nil {
		return
	}
	o.fi = la.MatAlloc(3, 3)
	o.tmp = la.MatAlloc(3, 3)
	return
}

// GetPrms gets (an example) of parameters
func (o NeoHooke) GetPrms() fun.Prms {
	return []*fun.Prm{
		&fun.Prm{N: "E", V: 1000},
		&fun.Prm{N: "nu", V: 0.3},
	}
}

// InitIntVars initialises internal (secondary) variables
func (o NeoHooke) InitIntVars(σ []float64) (s *State, err error) {
	s = NewState(o.Nsig)
	copy(s.Sig, σ)
	return
}

// Update updates stresses for given deformation gradient
func (o *NeoHooke) Update(s *State, F, FΔ [][]float64) (err error) {
	J, err := invF(o.fi, F)
	if err != nil {
		return
	}
	lnJ := math.Log(J)
	la.MatCopy(s.F, 1, F)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s.P[i][j] = o.G*(F[i][j]-o.fi[j][i]) + o.Lam*lnJ*o.fi[j][i]
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b := 0.0
			for k := 0; k < 3; k++ {
				b += F[i][k] * F[j][k]
			}
			o.tmp[i][j] = o.G * b / J
		}
		o.tmp[i][i] += (o.Lam*lnJ - o.G) / J
	}
	tsr.Ten2Man(s.Sig, o.tmp)
	return
}

// CalcA computes A = ∂P/∂F
//  A_iJkL = G δik δJL + (G - λ ln(J)) F⁻¹Jk F⁻¹Li + λ F⁻¹Ji F⁻¹Lk
func (o *NeoHooke) CalcA(A [][][][]float64, s *State, firstIt bool) (err error) {
	J, err := invF(o.fi, s.F)
	if err != nil {
		return
	}
	c := o.G - o.Lam*math.Log(J)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					A[i][j][k][l] = c*o.fi[j][k]*o.fi[l][i] + o.Lam*o.fi[j][i]*o.fi[l][k]
					if i == k && j == l {
						A[i][j][k][l] += o.G
					}
				}
			}
		}
	}
	return
}
