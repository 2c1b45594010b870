// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ana implements analytical solutions for homogeneous deformations
package ana

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/la"
)

// Hooke implements the small-strain linear elastic response to a homogeneous deformation
//
//  ε = sym(F - I)
//  σ = λ tr(ε) I + 2 G ε
//
type Hooke struct {

	// input
	E float64 // Young's modulus
	ν float64 // Poisson's coefficient

	// derived
	λ float64 // Lamé's first parameter
	G float64 // shear modulus
}

// Init initialises this structure
func (o *Hooke) Init(prms fun.Prms) {

	// default values
	o.E = 1000 // Young's modulus
	o.ν = 0.3  // Poisson's ratio

	// parameters
	for _, p := range prms {
		switch p.N {
		case "E":
			o.E = p.V
		case "nu":
			o.ν = p.V
		}
	}
	o.λ, o.G = lame(o.E, o.ν)
}

// Stress returns the Cauchy stress tensor for the deformation gradient F
func (o Hooke) Stress(F [][]float64) (σ [][]float64) {
	ε := la.MatAlloc(3, 3)
	var trε float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			ε[i][j] = (F[i][j] + F[j][i]) / 2.0
		}
		ε[i][i] -= 1
		trε += ε[i][i]
	}
	σ = la.MatAlloc(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			σ[i][j] = 2.0 * o.G * ε[i][j]
		}
		σ[i][i] += o.λ * trε
	}
	return
}

// Modulus returns the elastic modulus c_ijkl = λ δij δkl + G (δik δjl + δil δjk)
func (o Hooke) Modulus() (c [][][][]float64) {
	c = make([][][][]float64, 3)
	for i := 0; i < 3; i++ {
		c[i] = make([][][]float64, 3)
		for j := 0; j < 3; j++ {
			c[i][j] = la.MatAlloc(3, 3)
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					c[i][j][k][l] = o.λ*δ(i, j)*δ(k, l) + o.G*(δ(i, k)*δ(j, l)+δ(i, l)*δ(j, k))
				}
			}
		}
	}
	return
}

// NeoHooke implements the compressible Neo-Hookean response to a homogeneous deformation
//
//  σ = [G (b - I) + λ ln(J) I] / J   with   b = F・Fᵀ
//
type NeoHooke struct {
	Hooke
}

// Stress returns the Cauchy stress tensor for the deformation gradient F
func (o NeoHooke) Stress(F [][]float64) (σ [][]float64) {
	Fi := la.MatAlloc(3, 3)
	J, err := la.MatInv(Fi, F, 1e-10)
	if err != nil || J <= 0 {
		chk.Panic("deformation gradient is not admissible: det(F)=%g", J)
	}
	lnJ := math.Log(J)
	σ = la.MatAlloc(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b := 0.0
			for k := 0; k < 3; k++ {
				b += F[i][k] * F[j][k]
			}
			σ[i][j] = o.G * b / J
		}
		σ[i][i] += (o.λ*lnJ - o.G) / J
	}
	return
}

// PrincipalMax returns the largest eigenvalue of a symmetric 3x3 tensor
func PrincipalMax(a [][]float64) float64 {
	p1 := a[0][1]*a[0][1] + a[0][2]*a[0][2] + a[1][2]*a[1][2]
	if p1 == 0 {
		return math.Max(a[0][0], math.Max(a[1][1], a[2][2]))
	}
	q := (a[0][0] + a[1][1] + a[2][2]) / 3.0
	p2 := (a[0][0]-q)*(a[0][0]-q) + (a[1][1]-q)*(a[1][1]-q) + (a[2][2]-q)*(a[2][2]-q) + 2.0*p1
	p := math.Sqrt(p2 / 6.0)
	b := la.MatAlloc(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b[i][j] = a[i][j] / p
		}
		b[i][i] -= q / p
	}
	r := (b[0][0]*(b[1][1]*b[2][2]-b[1][2]*b[2][1]) -
		b[0][1]*(b[1][0]*b[2][2]-b[1][2]*b[2][0]) +
		b[0][2]*(b[1][0]*b[2][1]-b[1][1]*b[2][0])) / 2.0
	r = math.Max(-1, math.Min(1, r))
	return q + 2.0*p*math.Cos(math.Acos(r)/3.0)
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func lame(E, ν float64) (λ, G float64) {
	λ = E * ν / ((1.0 + ν) * (1.0 - 2.0*ν))
	G = E / (2.0 * (1.0 + ν))
	return
}

func δ(i, j int) float64 {
	if i == j {
		return 1
	}
	return 0
}
