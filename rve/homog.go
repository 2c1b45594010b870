// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rve

import (
	"math"

	"github.com/paddyschmidt/gofe2/msolid"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// FTOL is the tolerance to compare deformation gradients given to the averaging operators
const FTOL = 1e-12

// AveragedCauchyStress computes the volume average of the Cauchy stress from boundary forces
//
//  σ = sym(Σ w f ⊗ r) / (J V0)   with   r = x - F・Xc
//
//  where w = 1 for nodes with prescribed displacements and w = 2 for periodic slave nodes
//
func (o *Instance) AveragedCauchyStress(F [][]float64, J float64) (σ [][]float64, err error) {
	err = o.checkStress(F)
	if err != nil {
		return
	}
	if J <= 0 {
		return nil, chk.Err("J must be positive. J=%g is incorrect", J)
	}
	FXc := matvec(F, o.Xc)
	a := la.MatAlloc(3, 3)
	o.eachForce(func(vid int, f []float64, w float64) {
		x := o.Dom.NodeX(vid)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				a[i][j] += w * f[i] * (x[j] - FXc[j])
			}
		}
	})
	σ = sym(a, 1.0/(J*o.V0))
	o.stamp(F)
	return
}

// AveragedStressPK1 computes the volume average of the first Piola-Kirchhoff stress
//
//  P = Σ w f ⊗ R / V0   with   R = X - Xc
//
func (o *Instance) AveragedStressPK1(F [][]float64) (P [][]float64, err error) {
	err = o.checkStress(F)
	if err != nil {
		return
	}
	P = la.MatAlloc(3, 3)
	o.eachForce(func(vid int, f []float64, w float64) {
		X := o.Dom.NodeX0(vid)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				P[i][j] += w * f[i] * (X[j] - o.Xc[j]) / o.V0
			}
		}
	})
	o.stamp(F)
	return
}

// AveragedStressPK2 computes the volume average of the second Piola-Kirchhoff stress
//
//  S = sym(Σ w (F⁻¹・f) ⊗ R) / V0
//
func (o *Instance) AveragedStressPK2(F [][]float64) (S [][]float64, err error) {
	err = o.checkStress(F)
	if err != nil {
		return
	}
	Fi := la.MatAlloc(3, 3)
	_, err = la.MatInv(Fi, F, msolid.MINDETF)
	if err != nil {
		return nil, chk.Err("cannot invert F:\n%v", err)
	}
	a := la.MatAlloc(3, 3)
	o.eachForce(func(vid int, f []float64, w float64) {
		X := o.Dom.NodeX0(vid)
		Fif := matvec(Fi, f)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				a[i][j] += w * Fif[i] * (X[j] - o.Xc[j])
			}
		}
	})
	S = sym(a, 1.0/o.V0)
	o.stamp(F)
	return
}

// AveragedTangent computes the homogenised tangent modulus from the element stiffness matrices
// retained at the last converged state; only blocks of boundary nodes are used
//
//  c_ijkl = sym_ij,kl Σ_e Σ_(a,b ∈ boundary) K_(a,i)(b,k) r_a_j r_b_l / (J V0)
//
//  where r_a = x_a - xc and xc is the mean of the current positions of all nodes
//
//  Note: the stress must have been evaluated for the same F beforehand
func (o *Instance) AveragedTangent(F [][]float64, J float64) (c [][][][]float64, err error) {

	// check order of calls
	if !o.Converged() {
		return nil, contractErr("instance %d: tangent requested before a converged solve", o.Id)
	}
	if o.genStress != o.genApplied {
		return nil, contractErr("instance %d: tangent requested before the stress of the current deformation", o.Id)
	}
	if maxdiff(F, o.Fstress) > FTOL {
		return nil, contractErr("instance %d: tangent requested for a deformation different from the one of the last stress", o.Id)
	}
	if J <= 0 {
		return nil, chk.Err("J must be positive. J=%g is incorrect", J)
	}

	// positions of boundary nodes relative to the current centroid
	xc := o.Centroid()
	r := make(map[int][]float64)
	for _, vid := range o.Boundary.Ids {
		x := o.Dom.NodeX(vid)
		r[vid] = []float64{x[0] - xc[0], x[1] - xc[1], x[2] - xc[2]}
	}

	// sum over elements
	a := msolid.Alloc4()
	err = o.Dom.RetainedK(func(verts []int, K [][]float64) error {
		for m, vm := range verts {
			rm, ok := r[vm]
			if !ok {
				continue
			}
			for n, vn := range verts {
				rn, ok := r[vn]
				if !ok {
					continue
				}
				for i := 0; i < 3; i++ {
					for k := 0; k < 3; k++ {
						Kik := K[i+m*3][k+n*3]
						for j := 0; j < 3; j++ {
							for l := 0; l < 3; l++ {
								a[i][j][k][l] += Kik * rm[j] * rn[l]
							}
						}
					}
				}
			}
		}
		return nil
	})
	if err != nil {
		return
	}

	// minor symmetries
	coef := 1.0 / (J * o.V0)
	c = msolid.Alloc4()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					c[i][j][k][l] = coef * (a[i][j][k][l] + a[j][i][k][l] + a[i][j][l][k] + a[j][i][l][k]) / 4.0
				}
			}
		}
	}
	return
}

// Centroid returns the mean of the current positions of all nodes of the nested model
func (o *Instance) Centroid() (xc []float64) {
	xc = make([]float64, 3)
	nodes := o.Dom.Nodes
	if len(nodes) == 0 {
		return
	}
	for _, n := range nodes {
		x := n.X(o.Dom.Sol)
		for i := 0; i < 3; i++ {
			xc[i] += x[i]
		}
	}
	for i := 0; i < 3; i++ {
		xc[i] /= float64(len(nodes))
	}
	return
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

// checkStress checks that the last applied deformation has been solved and that F is the same
func (o *Instance) checkStress(F [][]float64) error {
	if !o.Converged() {
		return contractErr("instance %d: stress requested before a converged solve", o.Id)
	}
	if maxdiff(F, o.F) > FTOL {
		return contractErr("instance %d: stress requested for a deformation different from the applied one", o.Id)
	}
	return nil
}

// stamp records that the stress of the current deformation has been evaluated
func (o *Instance) stamp(F [][]float64) {
	if o.Fstress == nil {
		o.Fstress = la.MatAlloc(3, 3)
	}
	la.MatCopy(o.Fstress, 1, F)
	o.genStress = o.genApplied
}

// eachForce calls fcn for each boundary node with a constraint force and its weight
func (o *Instance) eachForce(fcn func(vid int, f []float64, w float64)) {
	reac := o.Dom.Reactions()
	slav := o.Dom.SlaveForces()
	for _, vid := range o.Boundary.Ids {
		if f, ok := reac[vid]; ok {
			fcn(vid, f, 1)
			continue
		}
		if f, ok := slav[vid]; ok {
			fcn(vid, f, 2)
		}
	}
}

// matvec returns a・v
func matvec(a [][]float64, v []float64) (u []float64) {
	u = make([]float64, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			u[i] += a[i][j] * v[j]
		}
	}
	return
}

// sym returns coef・(a + aᵀ)/2
func sym(a [][]float64, coef float64) (s [][]float64) {
	s = la.MatAlloc(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s[i][j] = coef * (a[i][j] + a[j][i]) / 2.0
		}
	}
	return
}

// maxdiff returns max(|a - b|)
func maxdiff(a, b [][]float64) (res float64) {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return math.Inf(1)
		}
		for j := range a[i] {
			res = math.Max(res, math.Abs(a[i][j]-b[i][j]))
		}
	}
	return
}
